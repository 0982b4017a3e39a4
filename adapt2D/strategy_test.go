package adapt2D

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rankedFrom(errs ...float64) (ranked []ElemError) {
	for i, e := range errs {
		ranked = append(ranked, ElemError{Elem: i, Err: e})
	}
	return
}

func TestMarkingStrategies(t *testing.T) {
	{ // fraction of max marks strict winners only
		marked := MarkElements(rankedFrom(10, 4, 3, 1), FractionOfMax, 0.3, 18)
		// the cut is 3, and 3 > 3 fails, so exactly two elements pass
		assert.Len(t, marked, 2)
		assert.Equal(t, 0, marked[0].Elem)
		assert.Equal(t, 1, marked[1].Elem)
	}
	{ // fraction of total stops once enough error is covered
		marked := MarkElements(rankedFrom(10, 4, 3, 1), FractionOfTotal, 0.3, 18)
		// sqrt(0.3)*18 = 9.86, the worst element alone crosses it
		assert.Len(t, marked, 1)
		assert.Equal(t, 0, marked[0].Elem)
	}
	{ // elements tying the last marked one ride along
		marked := MarkElements(rankedFrom(9, 6, 6, 1), FractionOfTotal, 0.3, 22)
		assert.Len(t, marked, 3)
	}
	{ // absolute threshold compares errors directly
		ranked := rankedFrom(10, 4, 3, 1)
		assert.Len(t, MarkElements(ranked, AbsoluteThreshold, 3.5, 18), 2)
		assert.Len(t, MarkElements(ranked, AbsoluteThreshold, 0.5, 18), 4)
		assert.Empty(t, MarkElements(ranked, AbsoluteThreshold, 10, 18))
	}
	{ // nothing to mark when every error vanishes
		assert.Empty(t, MarkElements(nil, FractionOfTotal, 0.3, 0))
		assert.Empty(t, MarkElements(rankedFrom(0, 0, 0), FractionOfMax, 0.3, 0))
	}
	{ // labels round trip and bad ones panic
		assert.Equal(t, FractionOfMax, NewStrategy("fraction_of_max"))
		assert.Equal(t, AbsoluteThreshold, NewStrategy("ABSOLUTE"))
		assert.Equal(t, "Fraction Of Total Error", FractionOfTotal.Print())
		assert.Panics(t, func() { NewStrategy("bogus") })
	}
}

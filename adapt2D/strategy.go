package adapt2D

import (
	"fmt"
	"math"
	"strings"
)

/*
Strategy picks which ranked elements get refined in one adaptive pass.

FractionOfTotal walks the elements in descending error order and keeps
marking until the accumulated error passes sqrt(threshold) times the
total, continuing through elements whose error ties the last marked one
so equal errors are treated equally. FractionOfMax marks every element
whose error exceeds threshold times the worst error. AbsoluteThreshold
compares each error against the threshold directly.
*/
type Strategy uint

const (
	FractionOfTotal Strategy = iota
	FractionOfMax
	AbsoluteThreshold
)

var (
	StrategyNames = map[string]Strategy{
		"fraction_of_total": FractionOfTotal,
		"fraction_of_max":   FractionOfMax,
		"absolute":          AbsoluteThreshold,
	}
	StrategyPrintNames = []string{
		"Fraction Of Total Error",
		"Fraction Of Maximum Error",
		"Absolute Threshold",
	}
)

func (s Strategy) Print() (txt string) {
	txt = StrategyPrintNames[s]
	return
}

func NewStrategy(label string) (s Strategy) {
	var (
		ok  bool
		err error
	)
	if s, ok = StrategyNames[strings.ToLower(label)]; !ok {
		err = fmt.Errorf("unable to use strategy named %s", label)
		panic(err)
	}
	return
}

// MarkElements applies the strategy to errors ranked in descending
// order; total is the sum over all ranked entries.
func MarkElements(ranked []ElemError, strat Strategy, thr, total float64) (marked []ElemError) {
	if len(ranked) == 0 || ranked[0].Err <= 0 {
		return
	}
	switch strat {
	case FractionOfTotal:
		var (
			processed float64
			last      float64
		)
		for _, ee := range ranked {
			if ee.Err <= 0 {
				break
			}
			if processed > math.Sqrt(thr)*total &&
				math.Abs(ee.Err-last)/last > 1.e-3 {
				break
			}
			marked = append(marked, ee)
			processed += ee.Err
			last = ee.Err
		}
	case FractionOfMax:
		cut := thr * ranked[0].Err
		for _, ee := range ranked {
			if !(ee.Err > cut) {
				break
			}
			marked = append(marked, ee)
		}
	case AbsoluteThreshold:
		for _, ee := range ranked {
			if !(ee.Err > thr) {
				break
			}
			marked = append(marked, ee)
		}
	default:
		panic(fmt.Errorf("unknown marking strategy %d", strat))
	}
	return
}

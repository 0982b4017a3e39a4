package space2D

import (
	"fmt"

	"github.com/erick-santiago/hermes2d/types"
	"github.com/erick-santiago/hermes2d/utils"
)

/*
constrainedEdgeModes expresses the edge modes of a constrained fine
edge through the unknowns of the live coarse edge that covers it. The
fine trace must reproduce the coarse trace along the shared segment, so
each fine mode coefficient is obtained by an L2 projection on the fine
edge: with T the coarse trace pulled back through the affine chain
xi_anc = s*xi + t and va, vb the fine endpoint values,

	M c = b,  M_kl = Int l_k l_l,  b_k = Int (T - va*l0 - vb*l1) l_k

Both sides are linear in the coarse unknowns, so the projection is
solved once for all source columns and folded into LinForms.
*/
func (sp *Space) constrainedEdgeModes(key types.EdgeKey, dFine int) (modes []LinForm) {
	var (
		nm = dFine - 1
	)
	modes = make([]LinForm, 0, nm)
	if nm <= 0 {
		return
	}
	anc, ok := sp.liveAncestor(key)
	if !ok {
		panic(fmt.Errorf("constrained edge %v has no live ancestor", key))
	}
	s, t := sp.edgeParamTo(key, anc)
	danc := sp.edgeDeg[anc]
	if danc == 0 {
		panic(fmt.Errorf("constraining edge %v is not classified live", anc))
	}

	// source columns: coarse endpoints, coarse edge modes, then the
	// subtracted fine endpoint traces
	var (
		av      = anc.GetVertices(false)
		fv      = key.GetVertices(false)
		srcLF   = []*LinForm{sp.resolveVertex(av[0]), sp.resolveVertex(av[1])}
		ancDofs = sp.edgeDof[anc]
	)
	for k := 2; k <= danc; k++ {
		if ancDofs != nil {
			lf := identityLF(ancDofs[k-2])
			srcLF = append(srcLF, &lf)
		} else {
			lf := fixedLF(0)
			srcLF = append(srcLF, &lf)
		}
	}
	fa, fb := sp.resolveVertex(fv[0]), sp.resolveVertex(fv[1])
	srcLF = append(srcLF, fa, fb)
	nq := len(srcLF)

	var (
		x, w = EdgeRule(danc + dFine)
		M    = utils.NewMatrix(nm, nm)
		B    = utils.NewMatrix(nm, nq)
	)
	for q := range x {
		lFine, _ := LobattoAll(dFine, x[q])
		lAnc, _ := LobattoAll(danc, s*x[q]+t)
		alpha := make([]float64, nq)
		alpha[0] = lAnc[0]
		alpha[1] = lAnc[1]
		for k := 2; k <= danc; k++ {
			alpha[k] = lAnc[k]
		}
		alpha[nq-2] = -lFine[0]
		alpha[nq-1] = -lFine[1]
		for k := 2; k <= dFine; k++ {
			i := k - 2
			for l := k; l <= dFine; l++ {
				j := l - 2
				M.Set(i, j, M.At(i, j)+w[q]*lFine[k]*lFine[l])
			}
			for j := 0; j < nq; j++ {
				B.Set(i, j, B.At(i, j)+w[q]*lFine[k]*alpha[j])
			}
		}
	}
	for i := 0; i < nm; i++ {
		for j := i + 1; j < nm; j++ {
			M.Set(j, i, M.At(i, j))
		}
	}

	C := M.CholSolve(B)
	for i := 0; i < nm; i++ {
		var lf LinForm
		for j := 0; j < nq; j++ {
			lf.AddScaled(srcLF[j], C.At(i, j))
		}
		modes = append(modes, lf)
	}
	return
}

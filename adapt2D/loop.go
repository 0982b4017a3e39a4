package adapt2D

import (
	"fmt"
	"time"

	"github.com/erick-santiago/hermes2d/mesh2D"
	"github.com/erick-santiago/hermes2d/space2D"
)

// Solver produces one solution per space. The adaptive loop calls it
// twice per iteration, once on the coarse spaces and once on the
// reference spaces.
type Solver interface {
	Solve(spaces []*space2D.Space) (sols []*space2D.Solution, err error)
}

// ExactSolver projects a known function onto each space, which turns
// the loop into pure approximation driven adaptivity. Useful for
// studying the machinery against functions with known features.
type ExactSolver struct {
	F space2D.ExactFn
}

func (es ExactSolver) Solve(spaces []*space2D.Space) (sols []*space2D.Solution, err error) {
	sols = make([]*space2D.Solution, len(spaces))
	for i, sp := range spaces {
		if sols[i], err = space2D.ProjectGlobal(sp, es.F); err != nil {
			return
		}
	}
	return
}

// AdaptToExactFunction adapts the spaces toward an analytic function:
// both the coarse and the reference solutions are its projections, so
// the loop refines purely on approximation error. Stopping rules are
// those of Run.
func AdaptToExactFunction(spaces []*space2D.Space, f space2D.ExactFn, p LoopParams) (history []IterationRecord, err error) {
	history, err = NewLoop(spaces, ExactSolver{F: f}, p).Run()
	return
}

// IterationRecord is one row of the convergence history.
type IterationRecord struct {
	Iter    int
	NDof    int
	ErrEst  float64 // percent
	Refined int
	Elapsed time.Duration
}

type LoopParams struct {
	Threshold  float64
	Strat      Strategy
	CandList   CandList
	ConvExp    float64
	Regularity int // hanging node bound, -1 for arbitrary
	OrderInc   int // reference space order increment
	ErrStop    float64
	NDofStop   int
	MaxIter    int
}

func DefaultLoopParams() (p LoopParams) {
	p = LoopParams{
		Threshold:  0.3,
		Strat:      FractionOfTotal,
		CandList:   HP_ANISO,
		ConvExp:    1.0,
		Regularity: -1,
		OrderInc:   1,
		ErrStop:    1.0,
		NDofStop:   60000,
		MaxIter:    30,
	}
	return
}

/*
Loop runs the classic hp adaptive cycle: solve on the coarse spaces,
solve on globally refined reference spaces one order higher, estimate
per element errors from the difference, stop when the estimate or the
problem size crosses its bound, otherwise refine the marked elements
and repeat.
*/
type Loop struct {
	Spaces []*space2D.Space
	Solver Solver
	Ad     *Adapt
	Sel    *Selector
	P      LoopParams
}

func NewLoop(spaces []*space2D.Space, solver Solver, p LoopParams) (lp *Loop) {
	if len(spaces) == 0 {
		panic(fmt.Errorf("adaptive loop needs at least one space"))
	}
	lp = &Loop{
		Spaces: spaces,
		Solver: solver,
		Ad:     NewAdapt(len(spaces)),
		Sel:    NewSelector(p.CandList, p.ConvExp),
		P:      p,
	}
	return
}

func (lp *Loop) Run() (history []IterationRecord, err error) {
	for _, sp := range lp.Spaces {
		sp.AssignDOFs()
	}
	for it := 1; it <= lp.P.MaxIter; it++ {
		var (
			start  = time.Now()
			rec    = IterationRecord{Iter: it}
			refSps []*space2D.Space
		)
		if refSps, err = lp.buildReferenceSpaces(); err != nil {
			return
		}
		csols, serr := lp.Solver.Solve(lp.Spaces)
		if serr != nil {
			err = fmt.Errorf("coarse solve at iteration %d: %w", it, serr)
			return
		}
		rsols, serr := lp.Solver.Solve(refSps)
		if serr != nil {
			err = fmt.Errorf("reference solve at iteration %d: %w", it, serr)
			return
		}
		lp.Ad.SetSolutions(csols, rsols)
		rec.ErrEst = 100 * lp.Ad.CalcError()
		for _, sp := range lp.Spaces {
			rec.NDof += sp.NDof()
		}
		if rec.ErrEst < lp.P.ErrStop || rec.NDof >= lp.P.NDofStop {
			rec.Elapsed = time.Since(start)
			history = append(history, rec)
			return
		}
		if rec.Refined, err = lp.Ad.Adapt(lp.Sel, lp.P.Strat, lp.P.Threshold, lp.P.Regularity); err != nil {
			return
		}
		rec.Elapsed = time.Since(start)
		history = append(history, rec)
		if rec.Refined == 0 {
			return
		}
	}
	return
}

// buildReferenceSpaces copies each distinct coarse mesh once, refines
// it globally, and lifts every space onto its copy with the order
// increment applied.
func (lp *Loop) buildReferenceSpaces() (refSps []*space2D.Space, err error) {
	var (
		copies = make(map[*mesh2D.Mesh]*mesh2D.Mesh)
	)
	refSps = make([]*space2D.Space, len(lp.Spaces))
	for i, sp := range lp.Spaces {
		rm, have := copies[sp.M]
		if !have {
			rm = sp.M.Copy()
			if err = rm.RefineAllElements(); err != nil {
				return
			}
			copies[sp.M] = rm
		}
		rsp := sp.Dup(rm)
		rsp.CopyOrders(sp, lp.P.OrderInc)
		rsp.AssignDOFs()
		refSps[i] = rsp
	}
	return
}

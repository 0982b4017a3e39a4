//go:build linux

package adapt2D

import (
	"math"
	"testing"

	"github.com/erick-santiago/hermes2d/mesh2D"
	"github.com/erick-santiago/hermes2d/space2D"
	perf "github.com/hodgesds/perf-utils"
)

func benchmarkEstimator(b *testing.B) (ad *Adapt) {
	wave := func(x, y float64) (u, ux, uy float64) {
		u = math.Sin(3*x) * math.Cos(2*y)
		ux = 3 * math.Cos(3*x) * math.Cos(2*y)
		uy = -2 * math.Sin(3*x) * math.Sin(2*y)
		return
	}
	var (
		m  = mesh2D.NewUnitSquareQuads(4)
		sp = space2D.NewSpace(m, 2)
	)
	sp.AssignDOFs()
	rm := m.Copy()
	if err := rm.RefineAllElements(); err != nil {
		b.Fatal(err)
	}
	rsp := sp.Dup(rm)
	rsp.CopyOrders(sp, 1)
	rsp.AssignDOFs()
	cs, err := space2D.ProjectGlobal(sp, wave)
	if err != nil {
		b.Fatal(err)
	}
	rs, err := space2D.ProjectGlobal(rsp, wave)
	if err != nil {
		b.Fatal(err)
	}
	ad = NewH1Adapt()
	ad.SetSolutions([]*space2D.Solution{cs}, []*space2D.Solution{rs})
	return
}

// BenchmarkCalcErrorCycles pairs the wall clock numbers with hardware
// cycle counts where the kernel exposes perf events.
func BenchmarkCalcErrorCycles(b *testing.B) {
	ad := benchmarkEstimator(b)
	b.ResetTimer()
	pv, err := perf.CPUCycles(func() error {
		for i := 0; i < b.N; i++ {
			ad.CalcError()
		}
		return nil
	})
	if err != nil {
		b.Skipf("perf counters unavailable: %v", err)
	}
	b.ReportMetric(float64(pv.Value)/float64(b.N), "cycles/op")
}

func BenchmarkCalcErrorInstructions(b *testing.B) {
	ad := benchmarkEstimator(b)
	b.ResetTimer()
	pv, err := perf.CPUInstructions(func() error {
		for i := 0; i < b.N; i++ {
			ad.CalcError()
		}
		return nil
	})
	if err != nil {
		b.Skipf("perf counters unavailable: %v", err)
	}
	b.ReportMetric(float64(pv.Value)/float64(b.N), "instructions/op")
}

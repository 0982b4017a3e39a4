/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"time"

	"github.com/erick-santiago/hermes2d/InputParameters"
	"github.com/erick-santiago/hermes2d/adapt2D"
	"github.com/erick-santiago/hermes2d/mesh2D"
	"github.com/erick-santiago/hermes2d/model_problems/Poisson2D"
	"github.com/erick-santiago/hermes2d/space2D"
	"github.com/erick-santiago/hermes2d/types"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

type ModelAdapt struct {
	InputFile string
	ConvFile  string
	Case      CaseType
	Profile   bool
}

type CaseType uint8

const (
	C_SinSin CaseType = iota
	C_Layer
)

// adaptCmd represents the adapt command
var adaptCmd = &cobra.Command{
	Use:   "adapt",
	Short: "Adaptive hp solution of the Poisson model problem",
	Long: `
Runs the automatic hp adaptive loop on a manufactured Poisson problem
and prints the convergence history,

hermes2d adapt -i input.yaml -c 1`,
	Run: func(cmd *cobra.Command, args []string) {
		ma := &ModelAdapt{}
		fmt.Println("adapt called")
		ma.InputFile, _ = cmd.Flags().GetString("input")
		ma.ConvFile, _ = cmd.Flags().GetString("conv")
		caseInt, _ := cmd.Flags().GetInt("case")
		ma.Case = CaseType(caseInt)
		ma.Profile, _ = cmd.Flags().GetBool("profile")
		RunAdapt(ma)
	},
}

func init() {
	rootCmd.AddCommand(adaptCmd)
	adaptCmd.Flags().StringP("input", "i", "", "YAML input file with adaptivity parameters")
	adaptCmd.Flags().StringP("conv", "o", "", "write the ndof/error history to a two column file")
	adaptCmd.Flags().IntP("case", "c", int(C_SinSin),
		"case to run: 0 = Smooth Sine, 1 = Interior Layer")
	adaptCmd.Flags().Bool("profile", false, "write a CPU profile of the run")
}

func RunAdapt(ma *ModelAdapt) {
	if ma.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}
	var ap InputParameters.AdaptParameters2D
	if ma.InputFile != "" {
		data, err := ioutil.ReadFile(ma.InputFile)
		if err != nil {
			fmt.Printf("unable to read input file: %v\n", err)
			os.Exit(1)
		}
		if err = ap.Parse(data); err != nil {
			fmt.Printf("unable to parse input file: %v\n", err)
			os.Exit(1)
		}
	} else if err := ap.Parse([]byte("Title: Poisson hp adaptivity\n")); err != nil {
		panic(err)
	}
	ap.Print()

	var (
		exact, source = adaptCase(ma.Case)
		m             = mesh2D.NewUnitSquareQuads(ap.GridSize)
		bc            = types.BC_Dirichlet
	)
	if name, have := ap.BCs["outer"]; have {
		bc = types.ParseBCName(name)
	}
	m.MarkOuterBoundary(bc)
	for i := 0; i < ap.InitRefinements; i++ {
		if err := m.RefineAllElements(); err != nil {
			fmt.Printf("initial refinement failed: %v\n", err)
			os.Exit(1)
		}
	}
	sp := space2D.NewSpace(m, ap.PolynomialOrder)
	sp.SetEssentialBC(func(x, y float64) float64 {
		u, _, _ := exact(x, y)
		return u
	})
	params := adapt2D.LoopParams{
		Threshold:  ap.Threshold,
		Strat:      adapt2D.NewStrategy(ap.Strategy),
		CandList:   adapt2D.NewCandList(ap.CandidateList),
		ConvExp:    ap.ConvExp,
		Regularity: ap.MeshRegularity,
		OrderInc:   ap.OrderIncrease,
		ErrStop:    ap.ErrorStop,
		NDofStop:   ap.NDofStop,
		MaxIter:    ap.MaxIterations,
	}
	var (
		lp    = adapt2D.NewLoop([]*space2D.Space{sp}, Poisson2D.NewProblem(source), params)
		start = time.Now()
	)
	history, err := lp.Run()
	if err != nil {
		fmt.Printf("adaptive run failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%5s %10s %14s %9s %12s\n", "iter", "ndof", "err_est[%]", "refined", "elapsed")
	for _, rec := range history {
		fmt.Printf("%5d %10d %14.6f %9d %12s\n",
			rec.Iter, rec.NDof, rec.ErrEst, rec.Refined, rec.Elapsed.Round(time.Microsecond))
	}
	if ma.ConvFile != "" {
		var buf bytes.Buffer
		for _, rec := range history {
			fmt.Fprintf(&buf, "%d %.10g\n", rec.NDof, rec.ErrEst)
		}
		if err = ioutil.WriteFile(ma.ConvFile, buf.Bytes(), 0644); err != nil {
			fmt.Printf("unable to write convergence file: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("completed in %s with %d active elements\n",
		time.Since(start).Round(time.Millisecond), len(m.ActiveElements()))
}

// adaptCase pairs each demo case's exact solution with the matching
// volume source of -Laplace(u) = f.
func adaptCase(c CaseType) (exact space2D.ExactFn, source Poisson2D.SourceFn) {
	switch c {
	case C_Layer:
		const S = 60.
		exact = func(x, y float64) (u, ux, uy float64) {
			s := S * (x + y - 1)
			u = math.Atan(s)
			d := S / (1 + s*s)
			return u, d, d
		}
		source = func(x, y float64) float64 {
			s := S * (x + y - 1)
			q := 1 + s*s
			return 4 * S * S * s / (q * q)
		}
	default:
		exact = func(x, y float64) (u, ux, uy float64) {
			sx, cx := math.Sin(math.Pi*x), math.Cos(math.Pi*x)
			sy, cy := math.Sin(math.Pi*y), math.Cos(math.Pi*y)
			return sx * sy, math.Pi * cx * sy, math.Pi * sx * cy
		}
		source = func(x, y float64) float64 {
			return 2 * math.Pi * math.Pi * math.Sin(math.Pi*x) * math.Sin(math.Pi*y)
		}
	}
	return
}

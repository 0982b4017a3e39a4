package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type AdaptParameters2D struct {
	Title           string            `yaml:"Title"`
	GridSize        int               `yaml:"GridSize"`
	PolynomialOrder int               `yaml:"PolynomialOrder"`
	InitRefinements int               `yaml:"InitRefinements"`
	Strategy        string            `yaml:"Strategy"`
	Threshold       float64           `yaml:"Threshold"`
	CandidateList   string            `yaml:"CandidateList"`
	ConvExp         float64           `yaml:"ConvExp"`
	MeshRegularity  int               `yaml:"MeshRegularity"` // -1 allows arbitrary hanging node depth
	OrderIncrease   int               `yaml:"OrderIncrease"`
	ErrorStop       float64           `yaml:"ErrorStop"` // percent
	NDofStop        int               `yaml:"NDofStop"`
	MaxIterations   int               `yaml:"MaxIterations"`
	BCs             map[string]string `yaml:"BCs"` // Key names the boundary region, value the BC type
}

func (ap *AdaptParameters2D) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ap); err != nil {
		return err
	}
	ap.applyDefaults()
	return nil
}

func (ap *AdaptParameters2D) applyDefaults() {
	if ap.GridSize == 0 {
		ap.GridSize = 4
	}
	if ap.PolynomialOrder == 0 {
		ap.PolynomialOrder = 1
	}
	if ap.Strategy == "" {
		ap.Strategy = "fraction_of_total"
	}
	if ap.Threshold == 0 {
		ap.Threshold = 0.3
	}
	if ap.CandidateList == "" {
		ap.CandidateList = "hp_aniso"
	}
	if ap.ConvExp == 0 {
		ap.ConvExp = 1.0
	}
	if ap.MeshRegularity == 0 {
		ap.MeshRegularity = -1
	}
	if ap.OrderIncrease == 0 {
		ap.OrderIncrease = 1
	}
	if ap.ErrorStop == 0 {
		ap.ErrorStop = 1.0
	}
	if ap.NDofStop == 0 {
		ap.NDofStop = 60000
	}
	if ap.MaxIterations == 0 {
		ap.MaxIterations = 30
	}
}

func (ap *AdaptParameters2D) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ap.Title)
	fmt.Printf("[%d x %d]\t\t= Grid Size\n", ap.GridSize, ap.GridSize)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", ap.PolynomialOrder)
	fmt.Printf("[%d]\t\t\t\t= Initial Refinements\n", ap.InitRefinements)
	fmt.Printf("[%s]\t= Strategy\n", ap.Strategy)
	fmt.Printf("%8.5f\t\t= Threshold\n", ap.Threshold)
	fmt.Printf("[%s]\t\t= Candidate List\n", ap.CandidateList)
	fmt.Printf("%8.5f\t\t= Convergence Exponent\n", ap.ConvExp)
	fmt.Printf("[%d]\t\t\t\t= Mesh Regularity\n", ap.MeshRegularity)
	fmt.Printf("%8.5f\t\t= Error Stop (percent)\n", ap.ErrorStop)
	fmt.Printf("[%d]\t\t\t= NDof Stop\n", ap.NDofStop)
	fmt.Printf("[%d]\t\t\t\t= Max Iterations\n", ap.MaxIterations)
}

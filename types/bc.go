package types

import "strings"

type BCFLAG uint8

const (
	BC_None BCFLAG = iota
	BC_Dirichlet
	BC_Neumann
)

var bcNames = map[BCFLAG]string{
	BC_None:      "None",
	BC_Dirichlet: "Dirichlet",
	BC_Neumann:   "Neumann",
}

func (bf BCFLAG) String() string {
	if name, ok := bcNames[bf]; ok {
		return name
	}
	return "Unknown"
}

var BCNameMap = map[string]BCFLAG{
	"dirichlet": BC_Dirichlet,
	"essential": BC_Dirichlet,
	"fixed":     BC_Dirichlet,
	"neumann":   BC_Neumann,
	"natural":   BC_Neumann,
	"flux":      BC_Neumann,
	"none":      BC_None,
	"interior":  BC_None,
}

// ParseBCName matches case insensitively, unknown names default to natural.
func ParseBCName(name string) BCFLAG {
	lowerName := strings.ToLower(strings.TrimSpace(name))
	if bf, ok := BCNameMap[lowerName]; ok {
		return bf
	}
	return BC_Neumann
}

package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type RefinementParameters struct {
	Title         string         `yaml:"Title"`
	MaxLevel      int            `yaml:"MaxLevel"`
	UniformRefine int            `yaml:"UniformRefine"`
	RefineSets    map[string]int `yaml:"RefineSets"` // Key is a named cell/face/node set, value the target level
	Balance       bool           `yaml:"Balance"`
}

func (ip *RefinementParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

// EffectiveMaxLevel is MaxLevel, raised when the refinement program
// itself asks for deeper levels, and at least one
func (ip *RefinementParameters) EffectiveMaxLevel() (lvl int) {
	lvl = ip.MaxLevel
	if lvl < ip.UniformRefine {
		lvl = ip.UniformRefine
	}
	for _, l := range ip.RefineSets {
		if lvl < l {
			lvl = l
		}
	}
	if lvl < 1 {
		lvl = 1
	}
	return
}

func (ip *RefinementParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t\t= Max Level\n", ip.MaxLevel)
	fmt.Printf("[%d]\t\t\t\t= Uniform Refine\n", ip.UniformRefine)
	fmt.Printf("[%v]\t\t\t= Balance\n", ip.Balance)
	keys := make([]string, len(ip.RefineSets))
	i := 0
	for k := range ip.RefineSets {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("RefineSets[%s] = %v\n", key, ip.RefineSets[key])
	}
}

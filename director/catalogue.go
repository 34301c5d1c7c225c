package director

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/expr-lang/expr"
	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var defaultCatalogue []byte

// Catalogue is the scripted plan: instruction sets grouped by phase, plus the
// tail range [LoopPhase, FinalPhase) that repeats once the script runs out.
type Catalogue struct {
	LoopPhase  int              `yaml:"loop_phase"`
	FinalPhase int              `yaml:"final_phase"`
	Sets       []InstructionSet `yaml:"sets"`
}

// DefaultCatalogue returns the built-in CPU script.
func DefaultCatalogue() (*Catalogue, error) {
	return ParseCatalogue(defaultCatalogue)
}

// LoadCatalogue reads and validates a catalogue file.
func LoadCatalogue(path string) (*Catalogue, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	cat, err := ParseCatalogue(raw)
	if err != nil {
		return nil, fmt.Errorf("catalogue %s: %w", path, err)
	}
	return cat, nil
}

// ParseCatalogue decodes YAML, validates every set and compiles the
// skip_when guards. Any problem is returned; a bad script never reaches a
// running match.
func ParseCatalogue(raw []byte) (*Catalogue, error) {
	var cat Catalogue
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks the catalogue and compiles its guards.
func (c *Catalogue) Validate() error {
	if len(c.Sets) == 0 {
		return errors.New("catalogue has no instruction sets")
	}
	if c.LoopPhase < 0 || c.LoopPhase >= c.FinalPhase {
		return fmt.Errorf("loop phase %d must be in [0, final phase %d)", c.LoopPhase, c.FinalPhase)
	}
	for i := range c.Sets {
		s := &c.Sets[i]
		if s.Name == "" {
			return fmt.Errorf("set %d: missing name", i)
		}
		if s.Phase < 0 || s.Phase >= c.FinalPhase {
			return fmt.Errorf("set %q: phase %d outside [0, %d)", s.Name, s.Phase, c.FinalPhase)
		}
		if len(s.Steps) == 0 {
			return fmt.Errorf("set %q: no steps", s.Name)
		}
		for j, step := range s.Steps {
			if err := step.validate(); err != nil {
				return fmt.Errorf("set %q step %d: %w", s.Name, j, err)
			}
		}
		if s.SkipWhen != "" {
			prog, err := expr.Compile(s.SkipWhen, expr.Env(Env{}), expr.AsBool())
			if err != nil {
				return fmt.Errorf("compile skip_when of %q: %w", s.Name, err)
			}
			s.skip = prog
		}
	}
	return nil
}

// instantiate copies the sets into fresh runtime state. Steps and compiled
// guards are immutable and shared.
func (c *Catalogue) instantiate() []*InstructionSet {
	sets := make([]*InstructionSet, len(c.Sets))
	for i := range c.Sets {
		s := c.Sets[i]
		s.reset()
		sets[i] = &s
	}
	return sets
}

package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/animancer/model"
)

// Tuning holds every balance and cadence value of a match. Load overlays a
// YAML file on Default, so a file only needs the keys it changes.
type Tuning struct {
	TickRateHz     int         `yaml:"tick_rate_hz"`
	Arena          model.Arena `yaml:"arena"`
	StartingEnergy float64     `yaml:"starting_energy"`

	Director     Director     `yaml:"director"`
	Selection    Selection    `yaml:"selection"`
	Movement     Movement     `yaml:"movement"`
	Construction Construction `yaml:"construction"`
	Generator    Generator    `yaml:"generator"`
	Producer     Producer     `yaml:"producer"`
	Detection    Detection    `yaml:"detection"`
	Combat       Combat       `yaml:"combat"`
	Conversion   Conversion   `yaml:"conversion"`

	Units      map[model.UnitKind]UnitStats      `yaml:"units"`
	Structures map[model.StructureKind]Structure `yaml:"structures"`
}

// Director paces the scripted opponent. Times are in seconds.
type Director struct {
	StepInterval        float64 `yaml:"step_interval"`
	ForceForward        float64 `yaml:"force_forward"`
	MoveJitter          float64 `yaml:"move_jitter"`
	BuildOffset         float64 `yaml:"build_offset"`
	BuildDirectionScale float64 `yaml:"build_direction_scale"`
}

type Selection struct {
	UnitSize      model.Vec2 `yaml:"unit_size"`
	StructureSize model.Vec2 `yaml:"structure_size"`
}

type Movement struct {
	Closeness        float64 `yaml:"closeness"`
	FormationSpacing float64 `yaml:"formation_spacing"`
}

type Construction struct {
	Boost float64 `yaml:"boost"`
	Range float64 `yaml:"range"`
}

type Generator struct {
	BaseRate     float64 `yaml:"base_rate"`
	WorkingRange float64 `yaml:"working_range"`
}

type Producer struct {
	Rate        float64                          `yaml:"rate"`
	Costs       map[model.ProductionKind]float64 `yaml:"costs"`
	SpawnOffset model.Vec2                       `yaml:"spawn_offset"`
}

type Detection struct {
	Range float64 `yaml:"range"`
}

// Combat and Conversion rates are the cooldown in seconds between two hits.
type Combat struct {
	Range float64 `yaml:"range"`
	Rate  float64 `yaml:"rate"`
}

type Conversion struct {
	Range float64 `yaml:"range"`
	Rate  float64 `yaml:"rate"`
}

// UnitStats are the spawn values of a unit kind. Effort, Strength and
// Persuasion only matter for the kinds that build, fight or convert.
type UnitStats struct {
	Health     float64 `yaml:"health"`
	Faith      float64 `yaml:"faith"`
	Speed      float64 `yaml:"speed"`
	Effort     float64 `yaml:"effort"`
	Strength   float64 `yaml:"strength"`
	Persuasion float64 `yaml:"persuasion"`
}

type Structure struct {
	Health float64 `yaml:"health"`
}

// Default returns the tuning of the standard skirmish.
func Default() Tuning {
	return Tuning{
		TickRateHz:     60,
		Arena:          model.Arena{Width: 1680, Height: 840},
		StartingEnergy: 500,
		Director: Director{
			StepInterval:        5,
			ForceForward:        30,
			MoveJitter:          500,
			BuildOffset:         60,
			BuildDirectionScale: 2,
		},
		Selection: Selection{
			UnitSize:      model.Vec2{X: 32, Y: 32},
			StructureSize: model.Vec2{X: 64, Y: 64},
		},
		Movement:     Movement{Closeness: 1, FormationSpacing: 30},
		Construction: Construction{Boost: 20.5, Range: 80},
		Generator:    Generator{BaseRate: 1, WorkingRange: 60},
		Producer: Producer{
			Rate: 2,
			Costs: map[model.ProductionKind]float64{
				model.ProduceWorker:  10,
				model.ProducePriest:  18,
				model.ProduceWarrior: 14,
			},
			SpawnOffset: model.Vec2{X: 0, Y: -50},
		},
		Detection:  Detection{Range: 150},
		Combat:     Combat{Range: 40, Rate: 0.4},
		Conversion: Conversion{Range: 60, Rate: 0.4},
		Units: map[model.UnitKind]UnitStats{
			model.Hero:    {Health: 120, Faith: 160, Speed: 120, Effort: 4.5},
			model.Worker:  {Health: 24, Faith: 44, Speed: 100, Effort: 1.5},
			model.Priest:  {Health: 16, Faith: 76, Speed: 85, Persuasion: 3},
			model.Warrior: {Health: 42, Faith: 32, Speed: 85, Strength: 2.5},
		},
		Structures: map[model.StructureKind]Structure{
			model.Shrine:   {Health: 200},
			model.Producer: {Health: 300},
		},
	}
}

// Load reads a YAML tuning file over the defaults and validates the result.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	t.Validate()
	return t, nil
}

// Step returns the fixed simulation step in seconds.
func (t Tuning) Step() float64 {
	return 1 / float64(t.TickRateHz)
}

// UnitStats returns the stats for kind, zero if the kind is unknown.
func (t Tuning) UnitStats(kind model.UnitKind) UnitStats {
	return t.Units[kind]
}

// Cost returns the energy price of a production line.
func (t Tuning) Cost(kind model.ProductionKind) (float64, bool) {
	c, ok := t.Producer.Costs[kind]
	return c, ok
}

// Validate clamps every value to a range the simulation can run with.
func (t *Tuning) Validate() {
	t.TickRateHz = clampInt(t.TickRateHz, 1, 240)
	t.Arena.Width = clamp(t.Arena.Width, 0, 100000)
	t.Arena.Height = clamp(t.Arena.Height, 0, 100000)
	t.StartingEnergy = clamp(t.StartingEnergy, 0, 1e9)

	d := &t.Director
	d.StepInterval = clamp(d.StepInterval, 0, 600)
	d.ForceForward = clamp(d.ForceForward, d.StepInterval, 3600)
	d.MoveJitter = clamp(d.MoveJitter, 0, 10000)
	d.BuildOffset = clamp(d.BuildOffset, 0, 10000)
	d.BuildDirectionScale = clamp(d.BuildDirectionScale, 0, 100)

	t.Movement.Closeness = clamp(t.Movement.Closeness, 0.01, 100)
	t.Movement.FormationSpacing = clamp(t.Movement.FormationSpacing, 1, 1000)
	t.Construction.Boost = clamp(t.Construction.Boost, 0, 1e6)
	t.Producer.Rate = clamp(t.Producer.Rate, 0, 1e6)
	t.Combat.Rate = clamp(t.Combat.Rate, 0.01, 60)
	t.Conversion.Rate = clamp(t.Conversion.Rate, 0.01, 60)

	for kind, cost := range t.Producer.Costs {
		t.Producer.Costs[kind] = clamp(cost, 1, 1e6)
	}
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

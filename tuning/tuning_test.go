package tuning

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nstehr/animancer/model"
)

func writeTuning(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeTuning(t, `
director:
  step_interval: 2
  force_forward: 12
producer:
  costs:
    warrior: 20
`)
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Director.StepInterval != 2 || got.Director.ForceForward != 12 {
		t.Errorf("director = %+v, want step 2 force 12", got.Director)
	}
	if got.Director.MoveJitter != 500 {
		t.Errorf("MoveJitter = %v, want default 500", got.Director.MoveJitter)
	}
	if c, _ := got.Cost(model.ProduceWarrior); c != 20 {
		t.Errorf("warrior cost = %v, want 20", c)
	}
	if c, _ := got.Cost(model.ProduceWorker); c != 10 {
		t.Errorf("worker cost = %v, want default 10", c)
	}
	if got.Arena.Width != 1680 {
		t.Errorf("arena width = %v, want default 1680", got.Arena.Width)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file error = %v, want wrapped fs.ErrNotExist", err)
	}
	if err != nil && !strings.HasPrefix(err.Error(), "read tuning: ") {
		t.Errorf("missing file error %q lacks read tuning context", err)
	}
	if _, err := Load(writeTuning(t, "director: [1, 2")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestValidateClamps(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*Tuning)
		check func(Tuning) bool
	}{
		{"tick rate floor", func(c *Tuning) { c.TickRateHz = 0 }, func(c Tuning) bool { return c.TickRateHz == 1 }},
		{"tick rate ceiling", func(c *Tuning) { c.TickRateHz = 1000 }, func(c Tuning) bool { return c.TickRateHz == 240 }},
		{"negative step interval", func(c *Tuning) { c.Director.StepInterval = -3 }, func(c Tuning) bool { return c.Director.StepInterval == 0 }},
		{"force forward at least one step", func(c *Tuning) { c.Director.StepInterval = 10; c.Director.ForceForward = 4 }, func(c Tuning) bool { return c.Director.ForceForward == 10 }},
		{"negative jitter", func(c *Tuning) { c.Director.MoveJitter = -1 }, func(c Tuning) bool { return c.Director.MoveJitter == 0 }},
		{"zero cost", func(c *Tuning) { c.Producer.Costs[model.ProducePriest] = 0 }, func(c Tuning) bool { return c.Producer.Costs[model.ProducePriest] == 1 }},
		{"zero attack rate", func(c *Tuning) { c.Combat.Rate = 0 }, func(c Tuning) bool { return c.Combat.Rate == 0.01 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.apply(&c)
			c.Validate()
			if !tt.check(c) {
				t.Errorf("value not clamped: %+v", c)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	before := c.Director
	c.Validate()
	if c.Director != before {
		t.Errorf("Validate changed defaults: %+v -> %+v", before, c.Director)
	}
	if step := c.Step(); step <= 0 || step > 1 {
		t.Errorf("Step() = %v", step)
	}
}

package sim

import "github.com/nstehr/animancer/model"

// Side returns +1 for the CPU, which starts in the upper half of the arena,
// and -1 for the human player.
func Side(team model.Team) float64 {
	if team == model.CPU {
		return 1
	}
	return -1
}

// SpawnScene lays out the standard skirmish for both teams: a hero, ten
// each of workers, priests and warriors in two-column blocks, one shrine
// and one producer.
func SpawnScene(w *World) {
	for _, team := range []model.Team{model.Human, model.CPU} {
		spawnTeam(w, team)
	}
}

func spawnTeam(w *World, team model.Team) {
	y := 200 * Side(team)
	w.SpawnUnit(model.Hero, team, model.Vec2{X: 0, Y: y})

	blocks := []struct {
		kind model.UnitKind
		x    float64
	}{
		{model.Worker, -100},
		{model.Priest, -200},
		{model.Warrior, -300},
	}
	for _, b := range blocks {
		for n := 0; n < 10; n++ {
			pos := model.Vec2{X: b.x + 30*float64(n%2), Y: y + 30*float64(n/2)}
			w.SpawnUnit(b.kind, team, pos)
		}
	}

	w.SpawnStructure(model.Shrine, team, model.Vec2{X: 100, Y: y})
	w.SpawnStructure(model.Producer, team, model.Vec2{X: 200, Y: y})
}

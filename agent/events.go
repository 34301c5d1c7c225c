package agent

import (
	"fmt"

	"github.com/nstehr/animancer/model"
	"github.com/nstehr/animancer/sim"
)

// EventKind identifies the category of a match event.
type EventKind string

const (
	EventStructureLost  EventKind = "structure_lost"
	EventArmyDevastated EventKind = "army_devastated"
	EventFirstContact   EventKind = "first_contact"
	EventUnitsConverted EventKind = "units_converted"
	EventCampaignLooped EventKind = "campaign_looped"
	EventEconomyCrisis  EventKind = "economy_crisis"
)

// Event is a significant change detected by diffing consecutive snapshots
// of one team.
type Event struct {
	Kind   EventKind
	Team   model.Team
	Tick   int
	Detail string
}

// detectEvents compares cur against the previous snapshot of the same team.
// Returns nil if prev is nil (first check).
func detectEvents(team model.Team, prev *sim.Snapshot, cur sim.Snapshot) []Event {
	if prev == nil {
		return nil
	}

	var events []Event
	add := func(kind EventKind, detail string) {
		events = append(events, Event{Kind: kind, Team: team, Tick: cur.Tick, Detail: detail})
	}

	// 1. structure_lost: fewer structures of some kind than last time
	for kind, n := range prev.Structures {
		if cur.Structures[kind] < n {
			add(EventStructureLost, fmt.Sprintf("Lost %d %s", n-cur.Structures[kind], kind))
			break // one event per check is enough
		}
	}

	// 2. army_devastated: >50% combat units lost (floor of 6 to avoid early noise)
	before, after := prev.CombatUnits(), cur.CombatUnits()
	if before >= 6 && after > 0 {
		lost := before - after
		if lost > 0 && float64(lost)/float64(before) > 0.5 {
			add(EventArmyDevastated, fmt.Sprintf("Army devastated: %d→%d combat units (lost %d%%)", before, after, 100*lost/before))
		}
	}

	// 3. first_contact: units start pursuing enemies after a quiet spell
	if prev.Engaged == 0 && cur.Engaged > 0 {
		add(EventFirstContact, fmt.Sprintf("%d units engaged the enemy", cur.Engaged))
	}

	// 4. units_converted: enemy units won over since the last check
	if n := cur.Converted - prev.Converted; n > 0 {
		add(EventUnitsConverted, fmt.Sprintf("Converted %d enemy units", n))
	}

	// 5. economy_crisis: energy collapsed with no shrine to rebuild it
	if prev.Energy > 100 && cur.Energy < 10 && cur.Structures[model.Shrine] == 0 {
		add(EventEconomyCrisis, fmt.Sprintf("Energy collapsed from %.0f to %.0f with no shrine", prev.Energy, cur.Energy))
	}

	return events
}

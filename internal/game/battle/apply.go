package battle

import (
	"fmt"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/events"
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/rules"
)

// Apply performs the effects of an outcome: spice forfeits, force losses,
// leader deaths, forced discards and the winner's payout. Cards the winner
// may keep stay in hand until the post-resolution choice.
func Apply(s *game.GameState, o Outcome) (*game.GameState, []events.PhaseEvent, error) {
	var evs []events.PhaseEvent
	next := s
	var err error

	for _, side := range []*Side{&o.Aggressor, &o.Defender} {
		if side.Plan.Leader != "" {
			if next, err = game.UseLeader(next, side.Plan.Leader, o.Territory); err != nil {
				return nil, nil, err
			}
		}
		if side.SpiceForfeit > 0 {
			if next, err = game.TransferSpice(next, side.Faction, core.NoFaction, side.SpiceForfeit); err != nil {
				return nil, nil, err
			}
		}
	}

	for _, side := range []*Side{&o.Aggressor, &o.Defender} {
		var lost game.ForceCount
		switch {
		case side.LosesAll:
			next, lost, err = game.AllFightersToTanks(next, side.Faction, o.Territory)
		case side.Losses.Total() > 0:
			next, err = game.LoseForcesInTerritory(next, side.Faction, o.Territory, side.Losses.Regular, side.Losses.Elite)
			lost = side.Losses
		}
		if err != nil {
			return nil, nil, err
		}
		if lost.Total() > 0 {
			evs = append(evs, events.NewPhaseEvent(events.EventForcesLost, map[string]interface{}{
				"faction":   string(side.Faction),
				"territory": string(o.Territory),
				"regular":   lost.Regular,
				"elite":     lost.Elite,
			}, "%s loses %d forces in %s", side.Faction, lost.Total(), o.Territory))
		}
	}

	if o.Explosion {
		var removed int
		next, removed = game.RemoveTerritorySpice(next, o.Territory)
		if removed > 0 {
			evs = append(evs, events.NewPhaseEvent(events.EventSpiceDestroyed, map[string]interface{}{
				"territory": string(o.Territory),
				"amount":    removed,
			}, "%d spice destroyed in %s", removed, o.Territory))
		}
	}

	for _, id := range o.KilledLeaders {
		if next, err = game.KillLeader(next, id); err != nil {
			return nil, nil, err
		}
	}

	for _, side := range []*Side{&o.Aggressor, &o.Defender} {
		for _, card := range side.Discards {
			if next, err = game.DiscardCard(next, side.Faction, card); err != nil {
				return nil, nil, err
			}
			evs = append(evs, events.NewPhaseEvent(events.EventCardDiscarded, map[string]interface{}{
				"faction": string(side.Faction),
				"card":    string(card),
			}, "%s discards %s", side.Faction, card))
		}
	}

	if o.Winner != core.NoFaction && o.Payout > 0 {
		if next, err = game.TransferSpice(next, core.NoFaction, o.Winner, o.Payout); err != nil {
			return nil, nil, err
		}
		evs = append(evs, events.NewPhaseEvent(events.EventSpicePaid, map[string]interface{}{
			"faction": string(o.Winner),
			"amount":  o.Payout,
		}, "%s collects %d spice for fallen leaders", o.Winner, o.Payout))
	}

	next = unlockKwisatzHaderach(next)

	next, released, err := ReleasePrisoners(next)
	if err != nil {
		return nil, nil, err
	}
	evs = append(evs, released...)

	next = game.AppendLog(next, o.Winner, "battle", fmt.Sprintf("%s vs %s in %s", o.Aggressor.Faction, o.Defender.Faction, o.Territory))
	return next, evs, nil
}

func unlockKwisatzHaderach(s *game.GameState) *game.GameState {
	if s.KwisatzHaderachActive {
		return s
	}
	f, ok := rules.FactionWith(s, func(c rules.Capability) bool { return c.KwisatzHaderach })
	if !ok {
		return s
	}
	if s.Factions[f].ForcesLostInBattle >= s.Catalog.Constants.KwisatzHaderachThreshold {
		return game.ActivateKwisatzHaderach(s)
	}
	return s
}

// Capture moves a leader into the captor's pool
func Capture(s *game.GameState, captor core.Faction, id core.LeaderID) (*game.GameState, []events.PhaseEvent, error) {
	next, err := game.CaptureLeader(s, id, captor)
	if err != nil {
		return nil, nil, err
	}
	evs := []events.PhaseEvent{events.NewPhaseEvent(events.EventLeaderCaptured, map[string]interface{}{
		"captor": string(captor),
		"leader": string(id),
	}, "%s captures %s", captor, id)}
	next, released, err := ReleasePrisoners(next)
	if err != nil {
		return nil, nil, err
	}
	return next, append(evs, released...), nil
}

// KillForReward kills a capturable leader and pays the captor the fixed reward
func KillForReward(s *game.GameState, captor core.Faction, id core.LeaderID) (*game.GameState, []events.PhaseEvent, error) {
	next, err := game.KillLeader(s, id)
	if err != nil {
		return nil, nil, err
	}
	reward := s.Catalog.Constants.CaptureKillReward
	if next, err = game.TransferSpice(next, core.NoFaction, captor, reward); err != nil {
		return nil, nil, err
	}
	evs := []events.PhaseEvent{events.NewPhaseEvent(events.EventCapturedLeaderKilled, map[string]interface{}{
		"captor": string(captor),
		"leader": string(id),
		"reward": reward,
	}, "%s kills %s for %d spice", captor, id, reward)}
	next, released, err := ReleasePrisoners(next)
	if err != nil {
		return nil, nil, err
	}
	return next, append(evs, released...), nil
}

// ReleasePrisoners returns every captured leader to its owner when the
// captor has no leader of its own left alive
func ReleasePrisoners(s *game.GameState) (*game.GameState, []events.PhaseEvent, error) {
	next := s
	var evs []events.PhaseEvent
	for _, captor := range s.FactionList() {
		fs := s.Factions[captor]
		ownAlive := false
		for _, l := range fs.Leaders {
			if l.Alive() {
				ownAlive = true
				break
			}
		}
		if ownAlive {
			continue
		}
		for _, l := range s.LeadersHeldBy(captor) {
			if l.OriginalFaction == captor {
				continue
			}
			var err error
			if next, err = game.ReturnLeader(next, l.ID); err != nil {
				return nil, nil, err
			}
			evs = append(evs, events.NewPhaseEvent(events.EventPrisonBreak, map[string]interface{}{
				"captor": string(captor),
				"leader": string(l.ID),
				"owner":  string(l.OriginalFaction),
			}, "%s escapes from %s", l.ID, captor))
		}
	}
	return next, evs, nil
}

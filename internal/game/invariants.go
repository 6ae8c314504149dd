package game

import (
	"errors"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
)

// CheckInvariants verifies the conservation laws and structural rules of a
// state. Every violation is reported, each wrapping core.ErrInvariant.
func CheckInvariants(s *GameState) error {
	var errs []error

	boardSpice := 0
	for _, sp := range s.Spice {
		if sp.Amount <= 0 {
			errs = append(errs, core.Invariantf("non-positive spice stack %d in %s/%d", sp.Amount, sp.Territory, sp.Sector))
		}
		boardSpice += sp.Amount
	}
	held := 0

	for _, f := range s.FactionList() {
		fs := s.Factions[f]
		held += fs.Spice + fs.Bribes
		if fs.Spice < 0 || fs.Bribes < 0 {
			errs = append(errs, core.Invariantf("%s has negative spice", f))
		}
		if fs.Reserves.Regular < 0 || fs.Reserves.Elite < 0 || fs.Tanks.Regular < 0 || fs.Tanks.Elite < 0 {
			errs = append(errs, core.Invariantf("%s has negative force pools", f))
		}
		for _, st := range fs.Forces {
			if st.Regular < 0 || st.Elite < 0 || st.Advisors < 0 || st.Total() == 0 {
				errs = append(errs, core.Invariantf("%s has invalid stack %+v", f, st))
			}
		}
		if total := fs.Reserves.Total() + fs.Tanks.Total() + fs.OnBoard(); total != fs.TotalForces {
			errs = append(errs, core.Invariantf("%s force total %d, expected %d", f, total, fs.TotalForces))
		}
		if len(fs.Hand) > fs.HandLimit {
			errs = append(errs, core.Invariantf("%s holds %d cards, limit %d", f, len(fs.Hand), fs.HandLimit))
		}
		if fs.Ally != core.NoFaction {
			other, ok := s.Factions[fs.Ally]
			if !ok || other.Ally != f {
				errs = append(errs, core.Invariantf("alliance %s -> %s is not mirrored", f, fs.Ally))
			}
		}
	}

	if expected := s.Ledger.Initial + s.Ledger.Minted - s.Ledger.Burned; held+boardSpice != expected {
		errs = append(errs, core.Invariantf("spice in play %d, ledger expects %d", held+boardSpice, expected))
	}

	return errors.Join(errs...)
}

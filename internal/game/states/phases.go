package states

import "fmt"

// GamePhase represents the current phase of a game turn
type GamePhase int

const (
	// PhaseSetup - Traitor selection, prediction, starting hands
	PhaseSetup GamePhase = iota

	// PhaseStorm - Storm placement or movement
	PhaseStorm

	// PhaseSpiceBlow - Spice deck draws, worms and nexus
	PhaseSpiceBlow

	// PhaseChoamCharity - Low-spice factions top up from the bank
	PhaseChoamCharity

	// PhaseBidding - Treachery card auction
	PhaseBidding

	// PhaseRevival - Forces and leaders return from the tanks
	PhaseRevival

	// PhaseShipmentMovement - Shipping from reserves and moving on the board
	PhaseShipmentMovement

	// PhaseBattle - Battles in every contested territory
	PhaseBattle

	// PhaseSpiceCollection - Forces harvest spice where they stand
	PhaseSpiceCollection

	// PhaseMentatPause - Victory check and end of turn bookkeeping
	PhaseMentatPause

	// PhaseGameOver - Final state
	PhaseGameOver
)

var phaseNames = map[GamePhase]string{
	PhaseSetup:            "SETUP",
	PhaseStorm:            "STORM",
	PhaseSpiceBlow:        "SPICE_BLOW",
	PhaseChoamCharity:     "CHOAM_CHARITY",
	PhaseBidding:          "BIDDING",
	PhaseRevival:          "REVIVAL",
	PhaseShipmentMovement: "SHIPMENT_MOVEMENT",
	PhaseBattle:           "BATTLE",
	PhaseSpiceCollection:  "SPICE_COLLECTION",
	PhaseMentatPause:      "MENTAT_PAUSE",
	PhaseGameOver:         "GAME_OVER",
}

// String returns the string representation of a GamePhase
func (p GamePhase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(p))
}

// MarshalText encodes the phase by name
func (p GamePhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *GamePhase) UnmarshalText(text []byte) error {
	parsed, ok := ParsePhase(string(text))
	if !ok {
		return fmt.Errorf("unknown phase %q", string(text))
	}
	*p = parsed
	return nil
}

// IsTerminal returns true if the phase represents a terminal state
func (p GamePhase) IsTerminal() bool {
	return p == PhaseGameOver
}

// TurnOrder lists the phases played each turn, in order
func TurnOrder() []GamePhase {
	return []GamePhase{
		PhaseStorm,
		PhaseSpiceBlow,
		PhaseChoamCharity,
		PhaseBidding,
		PhaseRevival,
		PhaseShipmentMovement,
		PhaseBattle,
		PhaseSpiceCollection,
		PhaseMentatPause,
	}
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p GamePhase) AllowedTransitions() []GamePhase {
	switch p {
	case PhaseSetup:
		return []GamePhase{PhaseStorm}
	case PhaseStorm:
		return []GamePhase{PhaseSpiceBlow}
	case PhaseSpiceBlow:
		return []GamePhase{PhaseChoamCharity}
	case PhaseChoamCharity:
		return []GamePhase{PhaseBidding}
	case PhaseBidding:
		return []GamePhase{PhaseRevival}
	case PhaseRevival:
		return []GamePhase{PhaseShipmentMovement}
	case PhaseShipmentMovement:
		return []GamePhase{PhaseBattle}
	case PhaseBattle:
		return []GamePhase{PhaseSpiceCollection}
	case PhaseSpiceCollection:
		return []GamePhase{PhaseMentatPause}
	case PhaseMentatPause:
		return []GamePhase{PhaseStorm, PhaseGameOver}
	default:
		return []GamePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a phase name to a GamePhase
func ParsePhase(s string) (GamePhase, bool) {
	for phase, name := range phaseNames {
		if name == s {
			return phase, true
		}
	}
	return PhaseSetup, false
}

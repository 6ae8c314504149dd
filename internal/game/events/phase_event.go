package events

import "fmt"

// PhaseEventType tags a rule-significant occurrence
type PhaseEventType string

const (
	EventCardsDealt           PhaseEventType = "CARDS_DEALT"
	EventTraitorSelected      PhaseEventType = "TRAITOR_SELECTED"
	EventPredictionMade       PhaseEventType = "PREDICTION_MADE"
	EventStormDialed          PhaseEventType = "STORM_DIALED"
	EventStormMoved           PhaseEventType = "STORM_MOVED"
	EventForcesKilledByStorm  PhaseEventType = "FORCES_KILLED_BY_STORM"
	EventSpiceDestroyed       PhaseEventType = "SPICE_DESTROYED"
	EventSpicePlaced          PhaseEventType = "SPICE_PLACED"
	EventShaiHulud            PhaseEventType = "SHAI_HULUD"
	EventWormDevoured         PhaseEventType = "WORM_DEVOURED"
	EventNexusStarted         PhaseEventType = "NEXUS_STARTED"
	EventAllianceFormed       PhaseEventType = "ALLIANCE_FORMED"
	EventAllianceBroken       PhaseEventType = "ALLIANCE_BROKEN"
	EventCharityClaimed       PhaseEventType = "CHARITY_CLAIMED"
	EventCardPeeked           PhaseEventType = "CARD_PEEKED"
	EventBidPlaced            PhaseEventType = "BID_PLACED"
	EventBidPassed            PhaseEventType = "BID_PASSED"
	EventCardWon              PhaseEventType = "CARD_WON"
	EventBonusCardDrawn       PhaseEventType = "BONUS_CARD_DRAWN"
	EventBoughtIn             PhaseEventType = "BOUGHT_IN"
	EventBiddingComplete      PhaseEventType = "BIDDING_COMPLETE"
	EventForcesRevived        PhaseEventType = "FORCES_REVIVED"
	EventLeaderRevived        PhaseEventType = "LEADER_REVIVED"
	EventForcesShipped        PhaseEventType = "FORCES_SHIPPED"
	EventForcesMoved          PhaseEventType = "FORCES_MOVED"
	EventAdvisorSent          PhaseEventType = "ADVISOR_SENT"
	EventNoBattles            PhaseEventType = "NO_BATTLES"
	EventBattleStarted        PhaseEventType = "BATTLE_STARTED"
	EventPrescienceUsed       PhaseEventType = "PRESCIENCE_USED"
	EventPrescienceRevealed   PhaseEventType = "PRESCIENCE_REVEALED"
	EventVoiceUsed            PhaseEventType = "VOICE_USED"
	EventBattlePlansRevealed  PhaseEventType = "BATTLE_PLANS_REVEALED"
	EventTraitorRevealed      PhaseEventType = "TRAITOR_REVEALED"
	EventLasgunShield         PhaseEventType = "LASGUN_SHIELD_EXPLOSION"
	EventLeaderKilled         PhaseEventType = "LEADER_KILLED"
	EventForcesLost           PhaseEventType = "FORCES_LOST"
	EventBattleResolved       PhaseEventType = "BATTLE_RESOLVED"
	EventSpicePaid            PhaseEventType = "SPICE_PAID"
	EventCardDiscarded        PhaseEventType = "CARD_DISCARDED"
	EventCardKept             PhaseEventType = "CARD_KEPT"
	EventLeaderCaptured       PhaseEventType = "LEADER_CAPTURED"
	EventCapturedLeaderKilled PhaseEventType = "CAPTURED_LEADER_KILLED"
	EventPrisonBreak          PhaseEventType = "PRISON_BREAK"
	EventSpiceCollected       PhaseEventType = "SPICE_COLLECTED"
	EventBribesPaid           PhaseEventType = "BRIBES_PAID"
	EventVictory              PhaseEventType = "VICTORY"
	EventTurnEnded            PhaseEventType = "TURN_ENDED"
	EventValidationFailed     PhaseEventType = "VALIDATION_FAILED"
)

// PhaseEvent is an append-only record of something that happened during a
// phase. Engine logic never reads these back.
type PhaseEvent struct {
	Type    PhaseEventType         `json:"type"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// NewPhaseEvent builds a PhaseEvent with a formatted message
func NewPhaseEvent(t PhaseEventType, data map[string]interface{}, format string, args ...interface{}) PhaseEvent {
	return PhaseEvent{Type: t, Message: fmt.Sprintf(format, args...), Data: data}
}

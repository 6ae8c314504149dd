// Package agent defines the decision protocol between the rules engine and
// the players, and ships reference agents plus a gRPC transport for agents
// running out of process.
package agent

import (
	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
)

// RequestType tags what kind of decision is being asked for
type RequestType string

const (
	RequestSelectTraitor     RequestType = "SELECT_TRAITOR"
	RequestPredictWinner     RequestType = "PREDICT_WINNER"
	RequestDialStorm         RequestType = "DIAL_STORM"
	RequestAllianceDecision  RequestType = "ALLIANCE_DECISION"
	RequestClaimCharity      RequestType = "CLAIM_CHARITY"
	RequestBidOrPass         RequestType = "BID_OR_PASS"
	RequestReviveForces      RequestType = "REVIVE_FORCES"
	RequestShipForces        RequestType = "SHIP_FORCES"
	RequestMoveForces        RequestType = "MOVE_FORCES"
	RequestSendAdvisor       RequestType = "SEND_ADVISOR"
	RequestChooseBattle      RequestType = "CHOOSE_BATTLE"
	RequestUsePrescience     RequestType = "USE_PRESCIENCE"
	RequestUseVoice          RequestType = "USE_VOICE"
	RequestCreateBattlePlan  RequestType = "CREATE_BATTLE_PLAN"
	RequestCallTraitor       RequestType = "CALL_TRAITOR"
	RequestChooseCardsToKeep RequestType = "CHOOSE_CARDS_TO_KEEP"
	RequestCaptureLeader     RequestType = "CAPTURE_LEADER"
)

// ActionType tags the action an agent chose
type ActionType string

const (
	ActionPass           ActionType = "PASS"
	ActionSelectTraitor  ActionType = "SELECT_TRAITOR"
	ActionPredict        ActionType = "PREDICT"
	ActionDialStorm      ActionType = "DIAL_STORM"
	ActionFormAlliance   ActionType = "FORM_ALLIANCE"
	ActionBreakAlliance  ActionType = "BREAK_ALLIANCE"
	ActionClaimCharity   ActionType = "CLAIM_CHARITY"
	ActionBid            ActionType = "BID"
	ActionRevive         ActionType = "REVIVE"
	ActionReviveLeader   ActionType = "REVIVE_LEADER"
	ActionShip           ActionType = "SHIP"
	ActionMove           ActionType = "MOVE"
	ActionSendAdvisor    ActionType = "SEND_ADVISOR"
	ActionChooseBattle   ActionType = "CHOOSE_BATTLE"
	ActionUsePrescience  ActionType = "USE_PRESCIENCE"
	ActionUseVoice       ActionType = "USE_VOICE"
	ActionSubmitPlan     ActionType = "SUBMIT_PLAN"
	ActionCallTraitor    ActionType = "CALL_TRAITOR"
	ActionKeepCards      ActionType = "KEEP_CARDS"
	ActionCaptureLeader  ActionType = "CAPTURE_LEADER"
	ActionKillCaptured   ActionType = "KILL_LEADER"
	ActionDeclineCapture ActionType = "DECLINE_CAPTURE"
)

// Request is a decision the engine needs from one faction. Prompt is
// informational; Context carries every number the decision needs.
type Request struct {
	Faction          core.Faction           `json:"faction"`
	Type             RequestType            `json:"type"`
	Prompt           string                 `json:"prompt"`
	Context          map[string]interface{} `json:"context"`
	AvailableActions []ActionType           `json:"available_actions"`
}

// Allows reports whether the action is offered by the request
func (r Request) Allows(a ActionType) bool {
	for _, offered := range r.AvailableActions {
		if offered == a {
			return true
		}
	}
	return false
}

// Int reads an integer from the request context
func (r Request) Int(key string) int {
	n, _ := intValue(r.Context[key])
	return n
}

// String reads a string from the request context
func (r Request) String(key string) string {
	s, _ := r.Context[key].(string)
	return s
}

// Bool reads a boolean from the request context
func (r Request) Bool(key string) bool {
	b, _ := r.Context[key].(bool)
	return b
}

// Strings reads a string list from the request context
func (r Request) Strings(key string) []string {
	return stringsValue(r.Context[key])
}

// Maps reads a list of objects from the request context
func (r Request) Maps(key string) []map[string]interface{} {
	return mapsValue(r.Context[key])
}

// Response is an agent's answer to a Request. Data is validated by the
// engine before it is applied.
type Response struct {
	Faction    core.Faction           `json:"faction"`
	ActionType ActionType             `json:"action_type"`
	Passed     bool                   `json:"passed"`
	Data       map[string]interface{} `json:"data"`
}

// Pass builds a pass response
func Pass(f core.Faction) Response {
	return Response{Faction: f, ActionType: ActionPass, Passed: true}
}

// Act builds a response choosing an action
func Act(f core.Faction, a ActionType, data map[string]interface{}) Response {
	return Response{Faction: f, ActionType: a, Data: data}
}

// Int reads an integer from the response data
func (r Response) Int(key string) (int, bool) {
	return intValue(r.Data[key])
}

// IntOr reads an integer, falling back to def when absent or malformed
func (r Response) IntOr(key string, def int) int {
	if n, ok := r.Int(key); ok {
		return n
	}
	return def
}

// String reads a string from the response data
func (r Response) String(key string) string {
	s, _ := r.Data[key].(string)
	return s
}

// Bool reads a boolean from the response data
func (r Response) Bool(key string) bool {
	b, _ := r.Data[key].(bool)
	return b
}

// Strings reads a string list from the response data
func (r Response) Strings(key string) []string {
	return stringsValue(r.Data[key])
}

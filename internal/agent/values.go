package agent

import (
	"encoding/json"
	"math"
)

// Context keys sent by the engine
const (
	CtxSpice           = "spice"
	CtxCurrentBid      = "current_bid"
	CtxMinBid          = "min_bid"
	CtxHighBidder      = "high_bidder"
	CtxCardNumber      = "card_number"
	CtxCardsInAuction  = "cards_in_auction"
	CtxPeekedCard      = "peeked_card"
	CtxDealtTraitors   = "dealt_traitors"
	CtxFactions        = "factions"
	CtxMaxTurns        = "max_turns"
	CtxMaxDial         = "max_dial"
	CtxCharityAmount   = "charity_amount"
	CtxTanksRegular    = "tanks_regular"
	CtxTanksElite      = "tanks_elite"
	CtxFreeRevival     = "free_revival"
	CtxMaxRevival      = "max_revival"
	CtxRevivalCost     = "revival_cost"
	CtxDeadLeaders     = "dead_leaders"
	CtxReservesRegular = "reserves_regular"
	CtxReservesElite   = "reserves_elite"
	CtxShipmentTargets = "shipment_targets"
	CtxStacks          = "stacks"
	CtxBattles         = "battles"
	CtxTerritory       = "territory"
	CtxOpponent        = "opponent"
	CtxAggressor       = "aggressor"
	CtxDefender        = "defender"
	CtxLeaders         = "leaders"
	CtxWeapons         = "weapons"
	CtxDefenses        = "defenses"
	CtxCheapHeroes     = "cheap_heroes"
	CtxKwisatzHaderach = "kwisatz_haderach"
	CtxVoice           = "voice"
	CtxPrescience      = "prescience"
	CtxOpponentLeader  = "opponent_leader"
	CtxPlayedCards     = "played_cards"
	CtxCandidates      = "candidates"
	CtxElements        = "elements"
	CtxCardTypes       = "card_types"
	CtxAlly            = "ally"
	CtxShipper         = "shipper"
	CtxAdvancedCombat  = "advanced_combat"
	CtxDestinations    = "destinations"
	CtxSector          = "sector"
	CtxRegular         = "regular"
	CtxElite           = "elite"
)

// Data keys sent back by agents
const (
	KeyTraitor         = "traitor"
	KeyFaction         = "faction"
	KeyTurn            = "turn"
	KeyDial            = "dial"
	KeyTarget          = "target"
	KeyAmount          = "amount"
	KeyCount           = "count"
	KeyElite           = "elite"
	KeyLeader          = "leader"
	KeyTerritory       = "territory"
	KeySector          = "sector"
	KeyRegular         = "regular"
	KeyFrom            = "from"
	KeyFromSector      = "from_sector"
	KeyTo              = "to"
	KeyToSector        = "to_sector"
	KeyElement         = "element"
	KeyCommand         = "command"
	KeyCardType        = "card_type"
	KeyForcesDialed    = "forces_dialed"
	KeyWeapon          = "weapon"
	KeyDefense         = "defense"
	KeyCheapHero       = "cheap_hero"
	KeySpiceDialed     = "spice_dialed"
	KeyKwisatzHaderach = "kwisatz_haderach"
	KeyKeep            = "keep"
)

// intValue accepts the numeric shapes produced by Go callers, JSON and
// structpb decoding
func intValue(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

func stringsValue(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func mapsValue(v interface{}) []map[string]interface{} {
	switch list := v.(type) {
	case []map[string]interface{}:
		return list
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// MapInt reads an integer field from a context object
func MapInt(m map[string]interface{}, key string) int {
	n, _ := intValue(m[key])
	return n
}

// MapString reads a string field from a context object
func MapString(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

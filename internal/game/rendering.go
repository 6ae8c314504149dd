package game

import (
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
)

// This file contains the text rendering of a game state.

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

var factionColors = map[core.Faction]string{
	core.Atreides:     ColorGreen,
	core.BeneGesserit: ColorPurple,
	core.Emperor:      ColorRed,
	core.Fremen:       ColorYellow,
	core.Harkonnen:    ColorCyan,
	core.SpacingGuild: ColorBlue,
}

var factionSymbols = map[core.Faction]string{
	core.Atreides:     "A",
	core.BeneGesserit: "B",
	core.Emperor:      "E",
	core.Fremen:       "F",
	core.Harkonnen:    "H",
	core.SpacingGuild: "G",
}

// Render returns a text view of the board: a header, one line per territory
// holding units or spice (catalog order), and a holdings line per faction.
// Stacks read SYMBOL:regular[+elite*][~advisors]@sector.
func Render(s *GameState, colored bool) string {
	var sb strings.Builder
	paint := func(color, text string) {
		if colored {
			sb.WriteString(color)
			sb.WriteString(text)
			sb.WriteString(ColorReset)
			return
		}
		sb.WriteString(text)
	}

	fmt.Fprintf(&sb, "Turn %d/%d  %s  storm@%d  order:", s.Turn, s.Variant.MaxTurns, s.Phase, s.StormSector)
	for _, f := range s.StormOrder {
		sb.WriteString(" ")
		paint(factionColors[f], factionSymbols[f])
	}
	sb.WriteString("\n")

	for _, t := range s.Catalog.TerritoryIDs() {
		spice := s.SpiceIn(t)
		var stacks []ForceStack
		var owners []core.Faction
		for _, f := range s.orderedFactions() {
			for _, st := range s.Factions[f].StacksIn(t) {
				stacks = append(stacks, st)
				owners = append(owners, f)
			}
		}
		if len(stacks) == 0 && spice == 0 {
			continue
		}

		fmt.Fprintf(&sb, "  %-24s", t)
		for i, st := range stacks {
			sb.WriteString(" ")
			color := factionColors[owners[i]]
			if s.InStorm(st.Sector) {
				color = ColorGray
			}
			paint(color, stackLabel(owners[i], st))
		}
		if spice > 0 {
			sb.WriteString(" ")
			paint(ColorYellow, fmt.Sprintf("$%d", spice))
		}
		sb.WriteString("\n")
	}

	for _, st := range s.Stats() {
		sb.WriteString("  ")
		paint(factionColors[st.Faction], fmt.Sprintf("%-14s", st.Faction))
		fmt.Fprintf(&sb, " spice=%d reserves=%d tanks=%d cards=%d strongholds=%d",
			st.Spice, st.Reserves, st.InTanks, st.Cards, len(st.Strongholds))
		if st.Ally != core.NoFaction {
			fmt.Fprintf(&sb, " ally=%s", st.Ally)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func stackLabel(f core.Faction, st ForceStack) string {
	var sb strings.Builder
	sb.WriteString(factionSymbols[f])
	sb.WriteString(":")
	fmt.Fprintf(&sb, "%d", st.Regular)
	if st.Elite > 0 {
		fmt.Fprintf(&sb, "+%d*", st.Elite)
	}
	if st.Advisors > 0 {
		fmt.Fprintf(&sb, "~%d", st.Advisors)
	}
	fmt.Fprintf(&sb, "@%d", st.Sector)
	return sb.String()
}

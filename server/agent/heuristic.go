package agent

import (
	"context"
	"fmt"

	"uno-arbiter/server/engine"
)

// HeuristicProposer is a deterministic strategy: play the legal card that
// keeps the most follow-ups available, pick the hand's most frequent color
// for wilds, draw when stuck. It powers demo mode and shows the proposer
// boundary is strategy-agnostic.
type HeuristicProposer struct{}

func (HeuristicProposer) ProposeMove(_ context.Context, state *engine.GameState) (engine.Move, error) {
	top := state.TopCard()

	var playable []engine.Card
	for _, c := range state.CurrentPlayerHand {
		if engine.CanPlay(top, c, state.LastPlayerDrew) {
			playable = append(playable, c)
		}
	}
	if len(playable) == 0 {
		reason := "No playable card, drawing"
		if state.PendingDraw > 0 {
			reason = fmt.Sprintf("Drawing %d cards to discharge the pending penalty", state.PendingDraw)
		}
		return engine.Move{Action: engine.Draw, Reasoning: reason}, nil
	}

	// Most discardable card: the one that leaves the most hand cards still
	// playable on it afterwards.
	best := playable[0]
	maxSpare := -1
	for _, candidate := range playable {
		spare := 0
		for _, handCard := range state.CurrentPlayerHand {
			if handCard.ID == candidate.ID {
				continue
			}
			if engine.CanPlay(&candidate, handCard, false) {
				spare++
			}
		}
		if spare > maxSpare {
			maxSpare = spare
			best = candidate
		}
	}

	move := engine.Move{
		Action:    engine.Play,
		CardID:    best.ID,
		Reasoning: fmt.Sprintf("Playing %s, keeping %d follow-ups available", best.String(), maxSpare),
	}
	if best.Action == engine.Wild || best.Action == engine.DrawFour {
		move.Color = mostFrequentColor(state.CurrentPlayerHand, best.ID)
		move.Reasoning = fmt.Sprintf("Playing %s and binding %s, the hand's strongest color", best.String(), move.Color)
	}
	return move, nil
}

// AnalyzeGame scores threat by the smallest opponent hand: fewer cards,
// bigger threat.
func (HeuristicProposer) AnalyzeGame(_ context.Context, state *engine.GameState) Analysis {
	out := NeutralAnalysis()
	minCount := -1
	for _, o := range state.Opponents {
		if minCount < 0 || o.CardCount < minCount {
			minCount = o.CardCount
		}
	}
	if minCount >= 0 {
		threat := 10 - minCount
		if threat < 1 {
			threat = 1
		}
		if threat > 10 {
			threat = 10
		}
		out.OpponentThreatLevel = threat
	}
	for _, c := range state.CurrentPlayerHand {
		if c.Action == engine.Wild || c.Action == engine.DrawFour {
			out.BestCardsToKeep = append(out.BestCardsToKeep, c.ID)
		}
	}
	out.StrategicNotes = fmt.Sprintf("Hold wilds for endgame pressure; closest opponent holds %d cards", minCount)
	if minCount < 0 {
		out.StrategicNotes = "No opponents visible"
	}
	return out
}

func mostFrequentColor(hand []engine.Card, excludeID string) engine.Color {
	counts := map[engine.Color]int{}
	for _, c := range hand {
		if c.ID == excludeID {
			continue
		}
		switch c.Color {
		case engine.Red, engine.Blue, engine.Green, engine.Yellow:
			counts[c.Color]++
		case engine.Black:
			for _, p := range engine.PickableColors {
				counts[p]++
			}
		}
	}

	best := engine.Blue
	bestCount := 0
	// Fixed iteration order keeps the pick deterministic on ties.
	for _, c := range engine.PickableColors {
		if counts[c] > bestCount {
			bestCount = counts[c]
			best = c
		}
	}
	return best
}

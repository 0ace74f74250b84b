package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"uno-arbiter/server/engine"
)

func TestHeuristicProposalsAlwaysValidate(t *testing.T) {
	scenarios := []struct {
		description string
		state       *engine.GameState
	}{
		{
			description: "open_table",
			state: &engine.GameState{
				CurrentPlayerHand: []engine.Card{
					{ID: "card_1", Color: engine.Red, Digit: digit(5)},
					{ID: "card_2", Color: engine.Blue, Digit: digit(7)},
				},
				DiscardPile: []engine.Card{{ID: "t", Color: engine.Blue, Digit: digit(8)}},
				Direction:   1,
			},
		},
		{
			description: "pending_draw_with_stackable_card",
			state:       drawTwoState(),
		},
		{
			description: "pending_draw_without_stackable_card",
			state: &engine.GameState{
				CurrentPlayerHand: []engine.Card{{ID: "card_1", Color: engine.Red, Digit: digit(4)}},
				DiscardPile:       []engine.Card{{ID: "t", Color: engine.Blue, Action: engine.DrawTwo}},
				PendingDraw:       2,
			},
		},
		{
			description: "only_a_wild_in_hand",
			state: &engine.GameState{
				CurrentPlayerHand: []engine.Card{{ID: "card_1", Color: engine.Black, Action: engine.Wild}},
				DiscardPile:       []engine.Card{{ID: "t", Color: engine.Green, Digit: digit(2)}},
			},
		},
		{
			description: "empty_table",
			state: &engine.GameState{
				CurrentPlayerHand: []engine.Card{{ID: "card_1", Color: engine.Red, Digit: digit(5)}},
			},
		},
		{
			description: "empty_hand",
			state: &engine.GameState{
				DiscardPile: []engine.Card{{ID: "t", Color: engine.Green, Digit: digit(2)}},
			},
		},
	}

	var p HeuristicProposer
	for _, scenario := range scenarios {
		t.Run(scenario.description, func(t *testing.T) {
			move, err := p.ProposeMove(context.Background(), scenario.state)
			require.NoError(t, err)
			ok, msg := engine.ValidateMove(scenario.state, move)
			require.True(t, ok, "heuristic proposed an illegal move: %s", msg)
			require.NotEmpty(t, move.Reasoning)
		})
	}
}

func TestHeuristicBindsMostFrequentColor(t *testing.T) {
	state := &engine.GameState{
		CurrentPlayerHand: []engine.Card{
			{ID: "card_1", Color: engine.Black, Action: engine.Wild},
			{ID: "card_2", Color: engine.Yellow, Digit: digit(1)},
			{ID: "card_3", Color: engine.Yellow, Digit: digit(2)},
			{ID: "card_4", Color: engine.Red, Digit: digit(3)},
		},
		// Green top with no green/matching cards: only the wild is playable.
		DiscardPile: []engine.Card{{ID: "t", Color: engine.Green, Digit: digit(9)}},
	}

	move, err := HeuristicProposer{}.ProposeMove(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, engine.Play, move.Action)
	require.Equal(t, "card_1", move.CardID)
	require.Equal(t, engine.Yellow, move.Color)
}

func TestHeuristicAnalysisNeverPanics(t *testing.T) {
	a := HeuristicProposer{}.AnalyzeGame(context.Background(), &engine.GameState{})
	require.Equal(t, 5, a.OpponentThreatLevel)

	a = HeuristicProposer{}.AnalyzeGame(context.Background(), &engine.GameState{
		Opponents: []engine.Opponent{{Name: "Ann", CardCount: 1}},
	})
	require.Equal(t, 9, a.OpponentThreatLevel, "short opponent hand scores high threat")
}

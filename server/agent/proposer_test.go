package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"uno-arbiter/server/engine"
)

func TestGameContextRendersState(t *testing.T) {
	state := &engine.GameState{
		CurrentPlayerHand: []engine.Card{
			{ID: "card_1", Color: engine.Red, Digit: digit(5)},
			{ID: "card_2", Color: engine.Black, Action: engine.Wild},
		},
		DiscardPile:    []engine.Card{{ID: "t", Color: engine.Green, Digit: digit(5)}},
		Direction:      -1,
		PendingDraw:    2,
		LastPlayerDrew: false,
		Opponents: []engine.Opponent{
			{Name: "Ann", CardCount: 4},
			{Name: "Bo", CardCount: 1},
		},
	}

	ctx := GameContext(state)
	require.Contains(t, ctx, "card_1: red 5")
	require.Contains(t, ctx, "card_2: black wild")
	require.Contains(t, ctx, "Top card on table: green 5")
	require.Contains(t, ctx, "counter-clockwise")
	require.Contains(t, ctx, "Cards to draw if you must draw: 2")
	require.Contains(t, ctx, "Ann (4 cards); Bo (1 cards)")
	require.NotContains(t, ctx, "PREVIOUS ERROR")
}

func TestGameContextIncludesRetryFeedback(t *testing.T) {
	state := &engine.GameState{
		LastValidationError: "Must play a draw card or draw 2 cards due to pending draw",
		LastInvalidMove:     &engine.Move{Action: engine.Play, CardID: "card_1"},
	}

	ctx := GameContext(state)
	require.Contains(t, ctx, "PREVIOUS ERROR: Must play a draw card or draw 2 cards due to pending draw")
	require.Contains(t, ctx, "Invalid move was: action=play card_id=card_1")
}

func TestGameContextEmptyState(t *testing.T) {
	ctx := GameContext(&engine.GameState{Direction: 1})
	require.Contains(t, ctx, "Your cards: No cards")
	require.Contains(t, ctx, "Top card on table: No card played yet")
	require.Contains(t, ctx, "Other players: No other players")
	require.True(t, strings.Contains(ctx, "clockwise"))
}

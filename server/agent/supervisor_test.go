package agent

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"uno-arbiter/server/engine"
)

// scriptedProposer replays a fixed sequence of proposals, recording the
// state it saw on each call.
type scriptedProposer struct {
	moves    []engine.Move
	errs     []error
	calls    int
	feedback []string
}

func (p *scriptedProposer) ProposeMove(_ context.Context, state *engine.GameState) (engine.Move, error) {
	i := p.calls
	p.calls++
	p.feedback = append(p.feedback, state.LastValidationError)
	if i < len(p.errs) && p.errs[i] != nil {
		return engine.Move{}, p.errs[i]
	}
	if i < len(p.moves) {
		return p.moves[i], nil
	}
	return engine.Move{Action: engine.Draw, Reasoning: "default"}, nil
}

func (p *scriptedProposer) AnalyzeGame(context.Context, *engine.GameState) Analysis {
	return NeutralAnalysis()
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func drawTwoState() *engine.GameState {
	return &engine.GameState{
		CurrentPlayerHand: []engine.Card{
			{ID: "card_1", Color: engine.Red, Digit: digit(4)},
			{ID: "card_2", Color: engine.Yellow, Action: engine.DrawTwo},
		},
		DiscardPile: []engine.Card{{ID: "t", Color: engine.Blue, Action: engine.DrawTwo}},
		Direction:   1,
		PendingDraw: 2,
	}
}

func digit(n int) *int { return &n }

func TestDecideAcceptsFirstValidMove(t *testing.T) {
	prop := &scriptedProposer{moves: []engine.Move{
		{Action: engine.Play, CardID: "card_2", Reasoning: "stack the penalty"},
	}}
	sup := NewSupervisor(prop, quietLogger())
	state := drawTwoState()

	out := sup.Decide(context.Background(), state)
	require.True(t, out.Valid)
	require.False(t, out.Fallback)
	require.Equal(t, 1, out.Attempts)
	require.Equal(t, "Move is valid", out.Message)
	require.Equal(t, 4, state.PendingDraw, "stacked draw two")
	require.Equal(t, "card_2", state.DiscardPile[0].ID)
}

func TestDecideFeedsRejectionContextToNextAttempt(t *testing.T) {
	prop := &scriptedProposer{moves: []engine.Move{
		{Action: engine.Play, CardID: "card_1"}, // blocked by pending draw
		{Action: engine.Play, CardID: "card_2"},
	}}
	sup := NewSupervisor(prop, quietLogger())
	state := drawTwoState()

	out := sup.Decide(context.Background(), state)
	require.True(t, out.Valid)
	require.Equal(t, 2, out.Attempts)

	require.Len(t, prop.feedback, 2)
	require.Empty(t, prop.feedback[0], "first attempt sees no feedback")
	require.Equal(t, "Must play a draw card or draw 2 cards due to pending draw", prop.feedback[1])

	require.Empty(t, state.LastValidationError, "retry context cleared on acceptance")
	require.Nil(t, state.LastInvalidMove)
}

func TestDecideTerminatesAtBudgetWithFallback(t *testing.T) {
	prop := &scriptedProposer{moves: []engine.Move{
		{Action: engine.Play, CardID: "card_1"},
		{Action: engine.Play, CardID: "card_1"},
		{Action: engine.Play, CardID: "card_1"},
		{Action: engine.Play, CardID: "card_1"}, // must never be reached
	}}
	sup := NewSupervisor(prop, quietLogger())
	state := drawTwoState()

	out := sup.Decide(context.Background(), state)
	require.True(t, out.Fallback)
	require.True(t, out.Valid, "caller always receives a structurally valid move")
	require.Equal(t, DefaultBudget, out.Attempts)
	require.Equal(t, DefaultBudget, prop.calls, "exactly budget proposer calls")
	require.Equal(t, engine.Draw, out.Move.Action)
	require.Equal(t, "fallback after exhausted retries", out.Move.Reasoning)

	require.True(t, state.LastPlayerDrew, "fallback draw applied")
	require.Zero(t, state.PendingDraw)
	require.Empty(t, state.LastValidationError)
	require.Nil(t, state.LastInvalidMove)
}

func TestDecideProposerErrorsConsumeAttempts(t *testing.T) {
	boom := errors.New("upstream timeout")
	prop := &scriptedProposer{
		errs:  []error{boom, boom},
		moves: []engine.Move{{}, {}, {Action: engine.Play, CardID: "card_2", Reasoning: "third try"}},
	}
	sup := NewSupervisor(prop, quietLogger())
	state := drawTwoState()

	out := sup.Decide(context.Background(), state)
	require.True(t, out.Valid)
	require.False(t, out.Fallback)
	require.Equal(t, 3, out.Attempts)
	// A failed call leaves no move to remember.
	require.Empty(t, prop.feedback[1])
	require.Empty(t, prop.feedback[2])
}

func TestDecideCancelledContextShortCircuits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prop := &scriptedProposer{}
	sup := NewSupervisor(prop, quietLogger())
	state := drawTwoState()

	out := sup.Decide(ctx, state)
	require.True(t, out.Fallback)
	require.Zero(t, prop.calls, "no proposer calls after cancellation")
}

func TestDecideZeroBudgetUsesDefault(t *testing.T) {
	prop := &scriptedProposer{moves: []engine.Move{
		{Action: engine.Play, CardID: "card_1"},
		{Action: engine.Play, CardID: "card_1"},
		{Action: engine.Play, CardID: "card_1"},
	}}
	sup := &Supervisor{Proposer: prop, Log: quietLogger()}
	out := sup.Decide(context.Background(), drawTwoState())
	require.Equal(t, DefaultBudget, out.Attempts)
}

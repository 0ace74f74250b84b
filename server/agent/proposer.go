package agent

import (
	"context"
	"fmt"
	"strings"

	"uno-arbiter/server/engine"
	"uno-arbiter/server/llm"
)

// Proposer is any strategy that can suggest a move for a game state. Moves
// are never trusted: the supervisor re-validates everything a proposer
// returns. AnalyzeGame is advisory and must not fail; implementations return
// NeutralAnalysis when they have nothing better.
type Proposer interface {
	ProposeMove(ctx context.Context, state *engine.GameState) (engine.Move, error)
	AnalyzeGame(ctx context.Context, state *engine.GameState) Analysis
}

const moveSystemPrompt = `You are an expert UNO player with advanced strategic thinking.

Your goal is to:
1. Make legal moves according to UNO rules
2. Play strategically to win the game
3. Adapt your strategy based on game state
4. Provide clear reasoning for your decisions

You must respond with structured data containing:
- action: "play" or "draw"
- card_id: ID of card to play (if playing)
- color: color choice for wild cards
- reasoning: brief explanation of your strategy

Always ensure your moves are legal according to UNO rules.`

const analysisSystemPrompt = "You are a strategic UNO analyst providing detailed game insights."

// LLMProposer drives an OpenAI-compatible model through the llm.Client,
// trying structured output first and falling back to free-text extraction.
type LLMProposer struct {
	Client *llm.Client
}

func NewLLMProposer(client *llm.Client) *LLMProposer {
	return &LLMProposer{Client: client}
}

func (p *LLMProposer) ProposeMove(ctx context.Context, state *engine.GameState) (engine.Move, error) {
	user := movePrompt(GameContext(state))

	text, err := p.Client.Complete(ctx, moveSystemPrompt, user, llm.CompleteOptions{
		StructuredSchemaName: "uno_move",
		StructuredSchema:     llm.MoveSchema(),
		StructuredStrict:     true,
	})
	if err != nil {
		// Some providers reject json_schema; retry once without it and
		// extract the move from whatever text comes back.
		text, err = p.Client.Complete(ctx, moveSystemPrompt, user, llm.CompleteOptions{})
		if err != nil {
			return engine.Move{}, fmt.Errorf("proposer call failed: %w", err)
		}
	}
	return ExtractMove(text)
}

func (p *LLMProposer) AnalyzeGame(ctx context.Context, state *engine.GameState) Analysis {
	user := analysisPrompt(GameContext(state))

	text, err := p.Client.Complete(ctx, analysisSystemPrompt, user, llm.CompleteOptions{
		StructuredSchemaName: "uno_analysis",
		StructuredSchema:     llm.AnalysisSchema(),
		StructuredStrict:     true,
	})
	if err != nil {
		text, err = p.Client.Complete(ctx, analysisSystemPrompt, user, llm.CompleteOptions{})
		if err != nil {
			return NeutralAnalysis()
		}
	}
	return ExtractAnalysis(text)
}

// GameContext renders the state as the prompt context block, including the
// previous rejection feedback when a retry is in flight.
func GameContext(state *engine.GameState) string {
	var cards []string
	for _, c := range state.CurrentPlayerHand {
		cards = append(cards, fmt.Sprintf("%s: %s", c.ID, c.String()))
	}
	cardsStr := "No cards"
	if len(cards) > 0 {
		cardsStr = strings.Join(cards, ", ")
	}

	topStr := "No card played yet"
	if top := state.TopCard(); top != nil {
		topStr = top.String()
	}

	directionStr := "clockwise"
	if state.Direction < 0 {
		directionStr = "counter-clockwise"
	}

	var opponents []string
	for _, o := range state.Opponents {
		opponents = append(opponents, fmt.Sprintf("%s (%d cards)", o.Name, o.CardCount))
	}
	opponentsStr := "No other players"
	if len(opponents) > 0 {
		opponentsStr = strings.Join(opponents, "; ")
	}

	var feedback strings.Builder
	if state.LastValidationError != "" {
		fmt.Fprintf(&feedback, "\nPREVIOUS ERROR: %s", state.LastValidationError)
		if state.LastInvalidMove != nil {
			fmt.Fprintf(&feedback, "\nInvalid move was: action=%s card_id=%s color=%s",
				state.LastInvalidMove.Action, state.LastInvalidMove.CardID, state.LastInvalidMove.Color)
		}
	}

	return fmt.Sprintf(`CURRENT GAME STATE:
- Your cards: %s
- Top card on table: %s
- Game direction: %s
- Cards to draw if you must draw: %d
- Last player drew: %t
- Other players: %s

UNO RULES:
- Match color, number, or action with the top card
- Special cards: reverse (changes direction), skip (skips next player), draw two (+2), draw four (+4), wild (change color)
- Black cards (wild, draw four) can be played anytime
- If pending draws exist and you didn't draw, play a matching draw card or draw the pending amount
- Goal: Get rid of all cards first

STRATEGY PRIORITIES:
1. Play high-value cards early (draw four, wild, action cards)
2. Save wild cards for strategic moments
3. Consider opponents' card counts
4. Block opponents when they have few cards
5. Manage your hand size efficiently
%s`,
		cardsStr, topStr, directionStr, state.PendingDraw, state.LastPlayerDrew, opponentsStr, feedback.String())
}

func movePrompt(gameContext string) string {
	return fmt.Sprintf(`%s

Analyze the current game state and decide your best move. Consider:

1. LEGAL MOVES: What cards can you legally play?
2. STRATEGY: Which move gives you the best advantage?
3. OPPONENTS: How can you disrupt their strategies?
4. HAND MANAGEMENT: Which cards should you keep/play?

Make your decision and explain your reasoning.`, gameContext)
}

func analysisPrompt(gameContext string) string {
	return fmt.Sprintf(`%s

Provide a strategic analysis of the current game state:

1. Identify which cards you should keep for strategic advantage
2. Assess the threat level of your opponents (1-10 scale)
3. Provide additional strategic notes and recommendations

Focus on long-term strategy and optimal play.`, gameContext)
}

package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"uno-arbiter/server/agent"
	"uno-arbiter/server/engine"
)

var cardPainters = map[engine.Color]*color.Color{
	engine.Red:    color.New(color.FgRed),
	engine.Blue:   color.New(color.FgBlue),
	engine.Green:  color.New(color.FgGreen),
	engine.Yellow: color.New(color.FgYellow),
	engine.Black:  color.New(color.FgWhite, color.Bold),
}

func paintCard(c engine.Card) string {
	p, ok := cardPainters[c.Color]
	if !ok {
		p = color.New(color.FgWhite)
	}
	return p.Sprintf("[%s]", c.String())
}

func intp(n int) *int { return &n }

type demoScenario struct {
	name  string
	state *engine.GameState
}

func demoScenarios() []demoScenario {
	return []demoScenario{
		{
			name: "color and number options",
			state: &engine.GameState{
				CurrentPlayerHand: []engine.Card{
					{ID: "card_1", Color: engine.Red, Digit: intp(5)},
					{ID: "card_2", Color: engine.Blue, Digit: intp(7)},
					{ID: "card_3", Color: engine.Green, Action: engine.Skip},
				},
				DiscardPile: []engine.Card{{ID: "top", Color: engine.Blue, Digit: intp(8)}},
				Direction:   1,
				Opponents:   []engine.Opponent{{Name: "Ann", CardCount: 5}, {Name: "Bo", CardCount: 2}},
			},
		},
		{
			name: "pending draw must be stacked or drawn",
			state: &engine.GameState{
				CurrentPlayerHand: []engine.Card{
					{ID: "card_1", Color: engine.Red, Digit: intp(4)},
					{ID: "card_2", Color: engine.Yellow, Action: engine.DrawTwo},
				},
				DiscardPile: []engine.Card{{ID: "top", Color: engine.Blue, Action: engine.DrawTwo}},
				Direction:   1,
				PendingDraw: 2,
				Opponents:   []engine.Opponent{{Name: "Ann", CardCount: 3}},
			},
		},
		{
			name: "stuck hand falls back to drawing",
			state: &engine.GameState{
				CurrentPlayerHand: []engine.Card{
					{ID: "card_1", Color: engine.Red, Digit: intp(4)},
				},
				DiscardPile: []engine.Card{{ID: "top", Color: engine.Blue, Action: engine.DrawTwo}},
				Direction:   1,
				PendingDraw: 2,
				Opponents:   []engine.Opponent{{Name: "Ann", CardCount: 7}},
			},
		},
		{
			name: "wild binds the dominant color",
			state: &engine.GameState{
				CurrentPlayerHand: []engine.Card{
					{ID: "card_1", Color: engine.Black, Action: engine.Wild},
					{ID: "card_2", Color: engine.Yellow, Digit: intp(1)},
					{ID: "card_3", Color: engine.Yellow, Digit: intp(3)},
				},
				DiscardPile: []engine.Card{{ID: "top", Color: engine.Green, Digit: intp(9)}},
				Direction:   1,
				Opponents:   []engine.Opponent{{Name: "Ann", CardCount: 1}},
			},
		},
	}
}

// runDemo plays scripted table scenarios through the supervisor with the
// deterministic heuristic strategy. No network, no deck: fixed hands only.
func runDemo(log *logrus.Logger) {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	sup := agent.NewSupervisor(agent.HeuristicProposer{}, log)
	for _, sc := range demoScenarios() {
		bold.Printf("\n== %s ==\n", sc.name)
		fmt.Print("  hand: ")
		for _, c := range sc.state.CurrentPlayerHand {
			fmt.Printf("%s ", paintCard(c))
		}
		fmt.Printf("\n  top:  %s", paintCard(*sc.state.TopCard()))
		if sc.state.PendingDraw > 0 {
			dim.Printf("  (pending draw %d)", sc.state.PendingDraw)
		}
		fmt.Println()

		outcome := sup.Decide(context.Background(), sc.state)
		verdict := color.GreenString("accepted")
		if outcome.Fallback {
			verdict = color.YellowString("fallback")
		}
		fmt.Printf("  -> %s %s", verdict, outcome.Move.Action)
		if outcome.Move.CardID != "" {
			fmt.Printf(" %s", outcome.Move.CardID)
		}
		if outcome.Move.Color != "" {
			fmt.Printf(" (%s)", outcome.Move.Color)
		}
		dim.Printf("  attempts=%d\n", outcome.Attempts)
		dim.Printf("     %s\n", outcome.Move.Reasoning)

		analysis := agent.HeuristicProposer{}.AnalyzeGame(context.Background(), sc.state)
		dim.Printf("     threat=%d keep=%v\n", analysis.OpponentThreatLevel, analysis.BestCardsToKeep)
	}
	fmt.Println()
}

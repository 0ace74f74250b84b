package engine

import "fmt"

// ApplyMove mutates state with an accepted move. Callers validate first; the
// only error path is a play whose card is no longer in the hand.
func ApplyMove(state *GameState, move Move) error {
	// Any accepted transition discharges the retry feedback.
	state.LastValidationError = ""
	state.LastInvalidMove = nil

	switch move.Action {
	case Draw:
		state.LastPlayerDrew = true
		// Honoring the obligation discharges it fully; penalties are never
		// partially drawn.
		state.PendingDraw = 0
		return nil

	case Play:
		idx := -1
		for i := range state.CurrentPlayerHand {
			if state.CurrentPlayerHand[i].ID == move.CardID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("card %s not in hand", move.CardID)
		}
		played := state.CurrentPlayerHand[idx]
		state.CurrentPlayerHand = append(state.CurrentPlayerHand[:idx], state.CurrentPlayerHand[idx+1:]...)

		switch played.Action {
		case Reverse:
			state.Direction *= -1
		case DrawTwo:
			state.PendingDraw += 2
		case DrawFour:
			state.PendingDraw += 4
			if move.Color != "" {
				played.Color = move.Color
			}
		case Wild:
			if move.Color != "" {
				played.Color = move.Color
			}
		}

		// The bound color rides on the discarded card itself so the next
		// legality check sees the chosen color, not black.
		state.DiscardPile = append([]Card{played}, state.DiscardPile...)
		state.LastPlayerDrew = false
		return nil

	default:
		return fmt.Errorf("unknown move action %q", string(move.Action))
	}
}

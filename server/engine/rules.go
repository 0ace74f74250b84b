package engine

import "fmt"

// CanPlay decides whether candidate may be placed on top. This mirrors the
// frontend game server's rules, including the looseness that an unbound black
// top card permits any play while no draw is pending.
func CanPlay(top *Card, candidate Card, lastPlayerDrew bool) bool {
	// First card of the game.
	if top == nil {
		return true
	}

	haveToDraw := top.Action.IsDraw() && !lastPlayerDrew

	// Wild plays anytime when no draw is pending.
	if !haveToDraw && candidate.Action == Wild {
		return true
	}

	// Draw four plays anytime, pending draw or not.
	if candidate.Action == DrawFour {
		return true
	}

	// Unbound wild/draw-four on top: anything goes until a color is chosen.
	if top.Color == Black && !haveToDraw {
		return true
	}

	// A pending draw can only be stacked with another draw card.
	if haveToDraw {
		return candidate.Action.IsDraw()
	}

	if top.Color == candidate.Color {
		return true
	}
	if top.Digit != nil && candidate.Digit != nil && *top.Digit == *candidate.Digit {
		return true
	}
	return false
}

// RejectionReason explains why a candidate is not playable. The message is
// fed back to the proposer on retry, so it names the blocking obligation.
func RejectionReason(top *Card, candidate Card, lastPlayerDrew bool, pendingDraw int) string {
	if top == nil {
		return "No top card to match against"
	}

	haveToDraw := top.Action.IsDraw() && !lastPlayerDrew
	if haveToDraw && !candidate.Action.IsDraw() {
		return fmt.Sprintf("Must play a draw card or draw %d cards due to pending draw", pendingDraw)
	}

	if top.Color != Black {
		colorMatch := top.Color == candidate.Color
		digitMatch := top.Digit != nil && candidate.Digit != nil && *top.Digit == *candidate.Digit
		if !colorMatch && !digitMatch && candidate.Action != Wild && candidate.Action != DrawFour {
			return fmt.Sprintf("Card must match color (%s) or number (%s) of top card", top.Color, digitString(top.Digit))
		}
	}

	return "Move does not follow UNO rules"
}

func digitString(d *int) string {
	if d == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *d)
}

// ValidateMove layers hand and color checks on top of CanPlay. Both must pass
// before a move is applied.
func ValidateMove(state *GameState, move Move) (bool, string) {
	if move.Action == Draw {
		return true, "Draw action is always valid"
	}
	if move.Action != Play {
		return false, fmt.Sprintf("Unknown action %q: must be play or draw", string(move.Action))
	}
	if move.CardID == "" {
		return false, "Card ID is required for play action"
	}

	card := state.CardInHand(move.CardID)
	if card == nil {
		return false, fmt.Sprintf("Card with ID %s not found in player's hand", move.CardID)
	}

	top := state.TopCard()
	if !CanPlay(top, *card, state.LastPlayerDrew) {
		return false, RejectionReason(top, *card, state.LastPlayerDrew, state.PendingDraw)
	}

	if card.Action == Wild || card.Action == DrawFour {
		if _, err := ParseColor(string(move.Color)); err != nil {
			return false, fmt.Sprintf("Invalid color %q for wild card. Must be red, blue, green, or yellow", string(move.Color))
		}
	}

	return true, "Move is valid"
}

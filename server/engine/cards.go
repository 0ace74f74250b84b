package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Green  Color = "green"
	Yellow Color = "yellow"
	Black  Color = "black"
)

// PickableColors are the colors a wild/draw-four can be bound to. Black is
// never pickable.
var PickableColors = []Color{Red, Blue, Green, Yellow}

func ParseColor(s string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	for _, p := range PickableColors {
		if c == p {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid color %q: must be red, blue, green, or yellow", s)
}

type CardAction string

const (
	Skip     CardAction = "skip"
	Reverse  CardAction = "reverse"
	DrawTwo  CardAction = "draw_two"
	DrawFour CardAction = "draw_four"
	Wild     CardAction = "wild"
)

// normalizeAction canonicalizes the space-separated wire spellings
// ("draw two", "draw four") that the frontend sends.
func normalizeAction(s string) CardAction {
	s = strings.ToLower(strings.TrimSpace(s))
	return CardAction(strings.ReplaceAll(s, " ", "_"))
}

// IsDraw reports whether the action carries a forced-draw penalty.
func (a CardAction) IsDraw() bool {
	return strings.Contains(string(a), "draw")
}

// Card is one UNO card. A card carries a digit or an action (malformed input
// may carry neither); color is black for an unbound wild/draw-four.
type Card struct {
	ID     string     `json:"id"`
	Color  Color      `json:"color,omitempty"`
	Digit  *int       `json:"digit,omitempty"`
	Action CardAction `json:"action,omitempty"`
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     json.RawMessage `json:"id"`
		Color  string          `json:"color"`
		Digit  *int            `json:"digit"`
		Action string          `json:"action"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.ID = coerceID(raw.ID)
	c.Color = Color(strings.ToLower(strings.TrimSpace(raw.Color)))
	c.Digit = raw.Digit
	if raw.Action != "" {
		c.Action = normalizeAction(raw.Action)
	}
	return nil
}

func (c Card) String() string {
	var parts []string
	if c.Color != "" {
		parts = append(parts, string(c.Color))
	}
	if c.Digit != nil {
		parts = append(parts, strconv.Itoa(*c.Digit))
	}
	if c.Action != "" {
		parts = append(parts, strings.ReplaceAll(string(c.Action), "_", " "))
	}
	if len(parts) == 0 {
		return "unknown card"
	}
	return strings.Join(parts, " ")
}

type MoveAction string

const (
	Play MoveAction = "play"
	Draw MoveAction = "draw"
)

// Move is a candidate decision from a proposer. Play requires CardID; Color
// is required exactly when the played card is a wild or draw-four.
type Move struct {
	Action    MoveAction `json:"action"`
	CardID    string     `json:"card_id,omitempty"`
	Color     Color      `json:"color,omitempty"`
	Reasoning string     `json:"reasoning"`
}

func (m *Move) UnmarshalJSON(data []byte) error {
	var raw struct {
		Action    string          `json:"action"`
		CardID    json.RawMessage `json:"card_id"`
		Color     string          `json:"color"`
		Reasoning string          `json:"reasoning"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Action = MoveAction(strings.ToLower(strings.TrimSpace(raw.Action)))
	m.CardID = coerceID(raw.CardID)
	m.Color = Color(strings.ToLower(strings.TrimSpace(raw.Color)))
	m.Reasoning = raw.Reasoning
	return nil
}

// coerceID accepts string or numeric ids (models emit both) and returns the
// decimal string form.
func coerceID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return strings.TrimSpace(string(raw))
}

// Opponent is another player seen only by name and card count.
type Opponent struct {
	Name      string `json:"name"`
	CardCount int    `json:"cardCount"`
}

func (o *Opponent) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name      string          `json:"name"`
		CardCount *int            `json:"cardCount"`
		Cards     json.RawMessage `json:"cards"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Name = raw.Name
	// Accept cardCount int, cards int, or cards as a list of card objects.
	if raw.CardCount != nil {
		o.CardCount = *raw.CardCount
		return nil
	}
	if len(raw.Cards) > 0 {
		var n int
		if err := json.Unmarshal(raw.Cards, &n); err == nil {
			o.CardCount = n
			return nil
		}
		var list []json.RawMessage
		if err := json.Unmarshal(raw.Cards, &list); err == nil {
			o.CardCount = len(list)
		}
	}
	return nil
}

// GameState is one player's view of the table for a single decision request.
// LastValidationError/LastInvalidMove carry rejection feedback between retry
// attempts and are cleared on every accepted transition.
type GameState struct {
	CurrentPlayerHand []Card     `json:"currentPlayerHand"`
	DiscardPile       []Card     `json:"discardPile"` // index 0 = top / most recent
	Direction         int        `json:"direction"`   // +1 clockwise, -1 counter-clockwise
	PendingDraw       int        `json:"pendingDraw"` // accumulated forced-draw count
	LastPlayerDrew    bool       `json:"lastPlayerDrew"`
	Opponents         []Opponent `json:"otherPlayers"`
	GamePhase         string     `json:"gamePhase,omitempty"`

	LastValidationError string `json:"lastValidationError,omitempty"`
	LastInvalidMove     *Move  `json:"lastInvalidMove,omitempty"`
}

// TopCard returns the head of the discard pile, or nil before the first play.
func (s *GameState) TopCard() *Card {
	if len(s.DiscardPile) == 0 {
		return nil
	}
	return &s.DiscardPile[0]
}

// CardInHand resolves a card id against the current hand, string-normalized.
func (s *GameState) CardInHand(id string) *Card {
	id = strings.TrimSpace(id)
	for i := range s.CurrentPlayerHand {
		if s.CurrentPlayerHand[i].ID == id {
			return &s.CurrentPlayerHand[i]
		}
	}
	return nil
}

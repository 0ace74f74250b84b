package agent

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"uno-arbiter/server/engine"
)

var (
	fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	braceRe      = regexp.MustCompile(`(?s)(\{.*?\})`)
)

// ErrNoMove means the text contained nothing that looks like a move. The
// supervisor treats this as a proposer failure consuming one attempt.
var ErrNoMove = errors.New("no structured move in response")

// ExtractMove pulls a move out of free-form model output. It strips <think>
// blocks, prefers a fenced json block, then the first bare {...}. Missing
// fields default to a draw with a stock reasoning line. Pure function; safe
// to call on anything.
func ExtractMove(raw string) (engine.Move, error) {
	clean := stripThink(raw)

	block := ""
	if m := fencedJSONRe.FindStringSubmatch(clean); m != nil {
		block = m[1]
	} else if m := braceRe.FindStringSubmatch(clean); m != nil {
		block = m[1]
	}
	if block == "" {
		return engine.Move{}, ErrNoMove
	}

	var fields struct {
		Action    string          `json:"action"`
		CardID    json.RawMessage `json:"card_id"`
		Color     string          `json:"color"`
		Reasoning string          `json:"reasoning"`
		Resoning  string          `json:"resoning"` // recurring model typo
	}
	if err := json.Unmarshal([]byte(block), &fields); err != nil {
		return engine.Move{}, ErrNoMove
	}

	var move engine.Move
	if err := json.Unmarshal([]byte(block), &move); err != nil {
		return engine.Move{}, ErrNoMove
	}
	if move.Action == "" {
		move.Action = engine.Draw
	}
	if move.Reasoning == "" {
		move.Reasoning = fields.Resoning
	}
	if move.Reasoning == "" {
		move.Reasoning = "no reasoning provided"
	}
	return move, nil
}

func stripThink(s string) string {
	s = strings.ReplaceAll(s, "<think>", "")
	s = strings.ReplaceAll(s, "</think>", "")
	return strings.TrimSpace(s)
}

// Analysis is the advisory strategic read of a game state. It never affects
// legality or state transitions.
type Analysis struct {
	BestCardsToKeep     []string `json:"best_cards_to_keep"`
	OpponentThreatLevel int      `json:"opponent_threat_level"`
	StrategicNotes      string   `json:"strategic_notes"`
}

// NeutralAnalysis is the safe default returned on any failure.
func NeutralAnalysis() Analysis {
	return Analysis{BestCardsToKeep: []string{}, OpponentThreatLevel: 5}
}

var (
	keepCardRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)keep\s+(card_?\d+)`),
		regexp.MustCompile(`(?i)save\s+(card_?\d+)`),
		regexp.MustCompile(`(?i)hold\s+(card_?\d+)`),
		regexp.MustCompile(`(?i)card_(\d+)`),
		regexp.MustCompile(`(?i)card(\d+)`),
	}
	threatRe = regexp.MustCompile(`(?i)threat\s*level[:\s]*(\d+)`)
)

const maxNotesLen = 300

// ExtractAnalysis parses an analysis from model output, structured or not.
// It never fails: anything unparseable degrades toward the neutral default.
func ExtractAnalysis(raw string) Analysis {
	clean := stripThink(raw)

	// Structured response first.
	block := ""
	if m := fencedJSONRe.FindStringSubmatch(clean); m != nil {
		block = m[1]
	} else if strings.HasPrefix(strings.TrimSpace(clean), "{") {
		block = clean
	}
	if block != "" {
		var a Analysis
		if err := json.Unmarshal([]byte(block), &a); err == nil && a.OpponentThreatLevel >= 1 && a.OpponentThreatLevel <= 10 {
			if a.BestCardsToKeep == nil {
				a.BestCardsToKeep = []string{}
			}
			a.StrategicNotes = truncateNotes(a.StrategicNotes)
			return a
		}
	}

	// Heuristic parse over free text.
	out := NeutralAnalysis()
	seen := map[string]bool{}
	for _, re := range keepCardRes {
		for _, m := range re.FindAllStringSubmatch(clean, -1) {
			id := m[1]
			if !strings.HasPrefix(id, "card") {
				id = "card_" + id
			}
			if !seen[id] {
				seen[id] = true
				out.BestCardsToKeep = append(out.BestCardsToKeep, id)
			}
		}
	}
	if m := threatRe.FindStringSubmatch(clean); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 10 {
			out.OpponentThreatLevel = n
		}
	}
	out.StrategicNotes = truncateNotes(clean)
	return out
}

func truncateNotes(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxNotesLen {
		return s
	}
	return string(runes[:maxNotesLen]) + "..."
}

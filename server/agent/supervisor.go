package agent

import (
	"context"

	"github.com/sirupsen/logrus"

	"uno-arbiter/server/engine"
)

// DefaultBudget is how many proposer consultations one decision may spend.
const DefaultBudget = 3

const fallbackReasoning = "fallback after exhausted retries"

// Outcome is the final answer of a decision run. The move inside is always
// structurally valid: either an accepted proposal or the fallback draw.
type Outcome struct {
	Move     engine.Move
	Valid    bool
	Message  string
	Attempts int
	Fallback bool
}

// Supervisor runs the bounded propose→validate→apply loop. Rejections feed
// their reason back to the proposer through the state's retry context; the
// loop terminates after at most Budget proposer calls.
type Supervisor struct {
	Proposer Proposer
	Budget   int
	Log      *logrus.Logger
}

func NewSupervisor(p Proposer, log *logrus.Logger) *Supervisor {
	return &Supervisor{Proposer: p, Budget: DefaultBudget, Log: log}
}

// Decide resolves one move for the state. The state is mutated only when a
// proposal is accepted, so abandoning a run mid-retry loses nothing.
func (s *Supervisor) Decide(ctx context.Context, state *engine.GameState) Outcome {
	budget := s.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}

	attempts := 0
	for attempts < budget {
		if ctx.Err() != nil {
			break
		}
		attempts++

		move, err := s.Proposer.ProposeMove(ctx, state)
		if err != nil {
			// A failed call consumes the attempt with no move to remember.
			s.logger().WithFields(logrus.Fields{
				"attempt": attempts,
				"error":   err,
			}).Warn("proposer attempt failed")
			continue
		}

		ok, msg := engine.ValidateMove(state, move)
		if ok {
			if err := engine.ApplyMove(state, move); err != nil {
				// Validated against this very hand, so this cannot happen
				// short of a concurrent mutation by the caller.
				s.logger().WithError(err).Error("apply failed after validation")
				continue
			}
			s.logger().WithFields(logrus.Fields{
				"attempt": attempts,
				"action":  move.Action,
				"card_id": move.CardID,
			}).Info("move accepted")
			return Outcome{Move: move, Valid: true, Message: msg, Attempts: attempts}
		}

		s.logger().WithFields(logrus.Fields{
			"attempt": attempts,
			"reason":  msg,
			"card_id": move.CardID,
		}).Warn("move rejected")

		rejected := move
		state.LastValidationError = msg
		state.LastInvalidMove = &rejected
	}

	// Budget spent (or context gone): fall back to a draw. Drawing is always
	// legal, so the fallback is never validated and consumes no attempt.
	fallback := engine.Move{Action: engine.Draw, Reasoning: fallbackReasoning}
	_ = engine.ApplyMove(state, fallback) // draw cannot fail; also clears retry context
	s.logger().WithField("attempts", attempts).Warn("all attempts failed, using fallback draw move")
	return Outcome{
		Move:     fallback,
		Valid:    true,
		Message:  "Draw action is always valid",
		Attempts: attempts,
		Fallback: true,
	}
}

func (s *Supervisor) logger() *logrus.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}

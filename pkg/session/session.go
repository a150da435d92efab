package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oguzatay/gundem/internal/models"
	"github.com/oguzatay/gundem/pkg/composer"
)

// Answerer is the composer-side contract the session drives.
type Answerer interface {
	Ask(ctx context.Context, question string) (composer.Answer, error)
}

// Session holds the append-only transcript of one conversation. A
// successful question appends a user turn and an assistant turn; a
// failed one appends only the user turn, so the number of assistant
// turns never exceeds the number of user turns and the conversation
// replays deterministically from the stored sequence.
type Session struct {
	id       string
	composer Answerer
	turns    []models.Turn
}

func New(c Answerer) *Session {
	return &Session{
		id:       uuid.NewString(),
		composer: c,
	}
}

func (s *Session) ID() string {
	return s.id
}

// Ask records the user turn, runs the composer, and records the
// assistant turn only on success.
func (s *Session) Ask(ctx context.Context, question string) (composer.Answer, error) {
	s.append(models.RoleUser, question)

	answer, err := s.composer.Ask(ctx, question)
	if err != nil {
		return composer.Answer{}, err
	}

	s.append(models.RoleAssistant, answer.Text)
	return answer, nil
}

func (s *Session) append(role models.Role, text string) {
	s.turns = append(s.turns, models.Turn{
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	})
}

// Turns returns a copy of the transcript in order.
func (s *Session) Turns() []models.Turn {
	out := make([]models.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

package usecases

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"chatrelay/internal/entities"
	"chatrelay/internal/interfaces"
	"chatrelay/internal/logger"
)

var (
	terminationKeywords = map[string]struct{}{"exit": {}, "quit": {}, "stop": {}}
	greetingKeywords    = map[string]struct{}{"hi": {}, "hello": {}, "hey": {}}
)

// SessionManager decides, per incoming text, whether to start, continue or
// end a user's conversation, and what to answer.
type SessionManager struct {
	store   interfaces.SessionStore
	ai      interfaces.AIClient
	prompts Prompts
	log     *slog.Logger

	// one mutex per user; held for the whole transition including the completion call
	locks sync.Map
}

func NewSessionManager(store interfaces.SessionStore, ai interfaces.AIClient, prompts Prompts, log *slog.Logger) *SessionManager {
	if log == nil {
		log = slog.Default()
	}
	return &SessionManager{
		store:   store,
		ai:      ai,
		prompts: prompts.withDefaults(),
		log:     log.With("component", "session"),
	}
}

// Normalize is the canonical form of user text: trimmed and lower-cased.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func isTermination(text string) bool {
	_, ok := terminationKeywords[text]
	return ok
}

func isGreeting(text string) bool {
	_, ok := greetingKeywords[text]
	return ok
}

func (m *SessionManager) lock(userID string) func() {
	v, _ := m.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ProcessMessage runs one state transition for userID and returns the reply.
// An empty reply means nothing should be sent.
func (m *SessionManager) ProcessMessage(ctx context.Context, userID, text string) string {
	text = Normalize(text)

	unlock := m.lock(userID)
	defer unlock()

	// Termination wins over everything, including when already inactive.
	if isTermination(text) {
		m.store.Reset(userID)
		m.log.Info("session.end", slog.String("user_id", userID))
		return m.prompts.Farewell
	}

	session := m.store.Get(userID)

	if !session.Active {
		if !isGreeting(text) {
			m.log.Debug("session.ignore", slog.String("user_id", userID), slog.String("text", logger.Preview(text)))
			return ""
		}
		session.Active = true
		session.History = []entities.Turn{
			entities.SystemTurn(m.prompts.System),
			entities.AssistantTurn(m.prompts.Greeting),
		}
		m.store.Set(session)
		m.log.Info("session.start", slog.String("user_id", userID))
		return m.prompts.Greeting
	}

	// The user turn is kept even if the completion fails, so a retry carries it.
	session.History = append(session.History, entities.UserTurn(text))
	m.store.Set(session)

	res := m.ai.Complete(ctx, session.Clone().History)
	if res.Failed() {
		m.log.Error("completion.fail",
			slog.String("user_id", userID),
			slog.String("error", res.Err.Error()),
			slog.String("error_kind", res.Kind),
			slog.Int("history_len", len(session.History)),
		)
		return m.prompts.Apology
	}

	session.History = append(session.History, entities.AssistantTurn(res.Content))
	m.store.Set(session)
	m.log.Debug("completion.success",
		slog.String("user_id", userID),
		slog.Int("history_len", len(session.History)),
	)
	return res.Content
}

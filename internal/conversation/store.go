// Package conversation persists per-session chat history on top of a kv.Store.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/babel/internal/hermes"
	"github.com/MikeSquared-Agency/babel/internal/kv"
)

// messagesKey is the single key each session partition holds.
const messagesKey = "messages"

const lockStripes = 64

// Notifier receives conversation events. *hermes.Client satisfies it.
type Notifier interface {
	Publish(subject string, data any) error
}

// Store owns the conversations of all sessions. Read-modify-write cycles for
// one session are serialized within this process; separate processes sharing
// a backend still race with last-write-wins.
type Store struct {
	kv       kv.Store
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time

	locks [lockStripes]sync.Mutex
}

// NewStore wraps a kv.Store. notifier may be nil.
func NewStore(store kv.Store, notifier Notifier, logger *slog.Logger) *Store {
	return &Store{
		kv:       store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Store) lock(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%lockStripes]
}

// History returns the session's messages in append order. A session that was
// never written yields an empty slice.
func (s *Store) History(ctx context.Context, sessionID string) ([]Message, error) {
	return s.load(ctx, sessionID)
}

// Append adds a message stamped with the current time and returns the new
// message count. Role and text are stored as given.
func (s *Store) Append(ctx context.Context, sessionID string, role Role, text, language string) (int, error) {
	mu := s.lock(sessionID)
	mu.Lock()
	history, err := s.load(ctx, sessionID)
	if err != nil {
		mu.Unlock()
		return 0, err
	}

	msg := Message{
		Role:      role,
		Text:      text,
		Language:  language,
		Timestamp: s.now().UnixMilli(),
	}
	history = append(history, msg)
	err = s.save(ctx, sessionID, history)
	mu.Unlock()
	if err != nil {
		return 0, err
	}

	s.notify(hermes.SubjectMessageAppended, hermes.ConversationEvent{
		SessionID: sessionID,
		Role:      string(role),
		Language:  language,
		Count:     len(history),
		Timestamp: msg.Timestamp,
	})
	return len(history), nil
}

// Clear resets the session to an empty conversation. The key is kept.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	mu := s.lock(sessionID)
	mu.Lock()
	err := s.save(ctx, sessionID, []Message{})
	mu.Unlock()
	if err != nil {
		return err
	}

	s.notify(hermes.SubjectHistoryCleared, hermes.ConversationEvent{
		SessionID: sessionID,
		Timestamp: s.now().UnixMilli(),
	})
	return nil
}

func (s *Store) load(ctx context.Context, sessionID string) ([]Message, error) {
	raw, err := s.kv.Get(ctx, sessionID, messagesKey)
	if errors.Is(err, kv.ErrNotFound) {
		return []Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	history := []Message{}
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if history == nil {
		history = []Message{}
	}
	return history, nil
}

func (s *Store) save(ctx context.Context, sessionID string, history []Message) error {
	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Put(ctx, sessionID, messagesKey, raw); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (s *Store) notify(subject string, evt hermes.ConversationEvent) {
	if s.notifier == nil {
		return
	}
	evt.EventID = uuid.NewString()
	if err := s.notifier.Publish(subject, evt); err != nil {
		s.logger.Warn("failed to publish conversation event",
			"subject", subject,
			"session_id", evt.SessionID,
			"error", err,
		)
	}
}

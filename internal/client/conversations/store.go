// Package conversations holds the conversation list, the active
// conversation and its message log.
//
// The log is keyed by an epoch that changes whenever the active
// conversation is switched or reset. Writers pass the epoch they observed,
// so replies that arrive after a switch are dropped instead of leaking into
// another conversation.
package conversations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/events"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	cache "github.com/dmitrijs2005/docchat/internal/client/repositories/conversations"
	"github.com/dmitrijs2005/docchat/internal/common"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

type Store struct {
	api     client.ConversationAPI
	cache   cache.Repository
	log     logging.Logger
	timeout time.Duration

	mu       sync.RWMutex
	list     []models.Conversation
	stale    bool
	activeID string
	messages []models.Message
	epoch    uint64
	loads    uint64
}

// NewStore creates a store. cache may be nil; timeout bounds every server
// call and is ignored when zero.
func NewStore(api client.ConversationAPI, c cache.Repository, timeout time.Duration, log logging.Logger) *Store {
	return &Store{api: api, cache: c, timeout: timeout, log: log}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// List fetches the conversation list in server order. When the server is
// unreachable the cached list is served and marked stale.
func (s *Store) List(ctx context.Context) ([]models.Conversation, error) {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	convs, err := s.api.ListConversations(callCtx)
	if err != nil {
		if errors.Is(err, common.ErrTransport) {
			if cached, ok := s.fromCache(ctx); ok {
				s.log.Warn(ctx, "server unreachable, serving cached conversations", "error", err, "count", len(cached))
				s.mu.Lock()
				s.list, s.stale = cached, true
				s.mu.Unlock()
				return cloneList(cached), nil
			}
		}
		return nil, err
	}

	s.mu.Lock()
	s.list, s.stale = convs, false
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.ReplaceAll(ctx, convs); err != nil {
			s.log.Warn(ctx, "failed to cache conversations", "error", err)
		}
	}
	return cloneList(convs), nil
}

func (s *Store) fromCache(ctx context.Context) ([]models.Conversation, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, err := s.cache.List(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to read conversation cache", "error", err)
		return nil, false
	}
	return cached, len(cached) > 0
}

// Conversations returns the last known list.
func (s *Store) Conversations() []models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneList(s.list)
}

// Stale reports whether the list came from the offline cache.
func (s *Store) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stale
}

// Load switches to conversation id and fetches its history. Each stored
// exchange becomes a user message followed by the assistant reply, both
// with the exchange timestamp. The current conversation stays active until
// the history arrives, so a failed fetch leaves the store unchanged. A
// vanished conversation resets the store to the empty state and returns
// common.ErrNotFound.
func (s *Store) Load(ctx context.Context, id string) ([]models.Message, error) {
	s.mu.Lock()
	s.loads++
	seq, epoch := s.loads, s.epoch
	s.mu.Unlock()

	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	exchanges, err := s.api.GetConversation(callCtx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	superseded := s.loads != seq || s.epoch != epoch

	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.log.Info(ctx, "conversation vanished, resetting", "conversation_id", id)
			if !superseded {
				s.resetLocked()
			}
			s.list = removeByID(s.list, id)
		}
		return nil, err
	}
	if superseded {
		return nil, fmt.Errorf("conversation %s was switched away while loading: %w", id, context.Canceled)
	}

	msgs := splitExchanges(exchanges)
	s.epoch++
	s.activeID = id
	s.messages = msgs
	return cloneMessages(msgs), nil
}

func splitExchanges(exchanges []models.Exchange) []models.Message {
	msgs := make([]models.Message, 0, 2*len(exchanges))
	for _, e := range exchanges {
		msgs = append(msgs,
			models.Message{
				ID:        fmt.Sprintf("%d-q", e.ID),
				Text:      e.Question,
				Role:      models.RoleUser,
				Timestamp: e.Timestamp,
				State:     models.StateConfirmed,
			},
			models.Message{
				ID:        fmt.Sprintf("%d-a", e.ID),
				Text:      e.Answer,
				Role:      models.RoleAssistant,
				Timestamp: e.Timestamp,
				State:     models.StateConfirmed,
			},
		)
	}
	return msgs
}

// Rename applies title locally right away and rolls it back when the server
// refuses.
func (s *Store) Rename(ctx context.Context, id, title string) (models.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Conversation{}, &client.APIError{Detail: "title must not be empty", Err: common.ErrConflict}
	}

	s.mu.Lock()
	idx := indexByID(s.list, id)
	var previous string
	if idx >= 0 {
		previous = s.list[idx].Title
		s.list[idx].Title = title
	}
	s.mu.Unlock()

	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	updated, err := s.api.RenameConversation(callCtx, id, title)
	if err != nil {
		s.mu.Lock()
		// only undo our own edit
		if i := indexByID(s.list, id); i >= 0 && idx >= 0 && s.list[i].Title == title {
			s.list[i].Title = previous
		}
		s.mu.Unlock()
		s.log.Warn(ctx, "rename rejected, rolled back", "conversation_id", id, "error", err)
		return models.Conversation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexByID(s.list, id); i >= 0 {
		s.list[i].Title = updated.Title
		if !updated.UpdatedAt.IsZero() {
			s.list[i].UpdatedAt = updated.UpdatedAt
		}
		return s.list[i], nil
	}
	return *updated, nil
}

// Delete removes the conversation on the server and then locally. Deleting
// the active conversation resets the selection and clears the messages.
func (s *Store) Delete(ctx context.Context, id string) error {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.api.DeleteConversation(callCtx, id); err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		s.log.Info(ctx, "conversation already gone on server", "conversation_id", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = removeByID(s.list, id)
	if s.activeID == id {
		s.resetLocked()
	}
	return nil
}

// NewConversation resets to "no conversation selected" with an empty log.
func (s *Store) NewConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Store) resetLocked() {
	s.epoch++
	s.activeID = ""
	s.messages = nil
}

// Active returns the selected conversation id, "" when none.
func (s *Store) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Snapshot returns the active id together with the current epoch.
func (s *Store) Snapshot() (string, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID, s.epoch
}

func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMessages(s.messages)
}

// Append adds messages to the log if epoch is still current.
func (s *Store) Append(epoch uint64, msgs ...models.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return false
	}
	s.messages = append(s.messages, msgs...)
	return true
}

// Settle moves a pending entry to its final state.
func (s *Store) Settle(epoch uint64, msgID string, state models.EntryState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return false
	}
	for i := range s.messages {
		if s.messages[i].ID == msgID && s.messages[i].State == models.StatePending {
			s.messages[i].State = state
			return true
		}
	}
	return false
}

// Promote adopts a server-minted id for the empty state. An id, once
// assigned, is never replaced.
func (s *Store) Promote(epoch uint64, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.activeID != "" || id == "" {
		return false
	}
	s.activeID = id
	return true
}

// Watch refreshes the list whenever a conversation is created, until ctx
// is done or ch closes. ch is a subscription of the event bus.
func (s *Store) Watch(ctx context.Context, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if e.Kind != events.ConversationCreated {
				continue
			}
			if _, err := s.List(ctx); err != nil {
				s.log.Warn(ctx, "failed to refresh conversations", "conversation_id", e.ID, "error", err)
			}
		}
	}
}

func indexByID(list []models.Conversation, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func removeByID(list []models.Conversation, id string) []models.Conversation {
	out := list[:0:0]
	for _, c := range list {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func cloneList(in []models.Conversation) []models.Conversation {
	if in == nil {
		return nil
	}
	out := make([]models.Conversation, len(in))
	copy(out, in)
	return out
}

func cloneMessages(in []models.Message) []models.Message {
	if in == nil {
		return nil
	}
	out := make([]models.Message, len(in))
	copy(out, in)
	return out
}

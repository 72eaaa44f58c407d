// Package composer runs the message exchange of the active conversation.
//
// A send moves the composer from Idle to Sending and back. While Sending,
// further sends fail with common.ErrBusy before reaching the network, so at
// most one chat request is in flight per composer.
package composer

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/conversations"
	"github.com/dmitrijs2005/docchat/internal/client/events"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/common"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

type Composer struct {
	api     client.ChatAPI
	store   *conversations.Store
	bus     *events.Bus
	log     logging.Logger
	timeout time.Duration

	now   func() time.Time
	newID func() string

	sending atomic.Bool
}

// SendResult describes a finished exchange.
type SendResult struct {
	// ConversationID is the id the exchange ran on, after promotion.
	ConversationID string
	// Promoted is set when this exchange minted the conversation id.
	Promoted bool
	// Reply is the assistant message, synthetic on failure.
	Reply models.Message
	// Dropped is set when the active conversation changed before the reply
	// arrived; the log was left untouched.
	Dropped bool
}

func New(api client.ChatAPI, store *conversations.Store, bus *events.Bus, timeout time.Duration, log logging.Logger) *Composer {
	return &Composer{
		api:     api,
		store:   store,
		bus:     bus,
		log:     log,
		timeout: timeout,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Sending reports whether a request is outstanding.
func (c *Composer) Sending() bool { return c.sending.Load() }

// Send echoes text into the log as a pending user message and asks the
// server. On success the assistant reply is appended and, for a
// conversation without an id, the server id is adopted and
// events.ConversationCreated published. On failure a synthetic assistant
// message carrying common.ChatErrorReply is appended, the id stays as it
// was, and the error is returned alongside the result.
func (c *Composer) Send(ctx context.Context, text string) (SendResult, error) {
	if strings.TrimSpace(text) == "" {
		return SendResult{}, common.ErrEmptyMessage
	}
	if !c.sending.CompareAndSwap(false, true) {
		return SendResult{}, common.ErrBusy
	}
	defer c.sending.Store(false)

	convID, epoch := c.store.Snapshot()

	userMsg := models.Message{
		ID:        c.newID(),
		Text:      text,
		Role:      models.RoleUser,
		Timestamp: c.now(),
		State:     models.StatePending,
	}
	c.store.Append(epoch, userMsg)

	callCtx, cancel := c.callContext(ctx)
	reply, err := c.api.Chat(callCtx, text, convID)
	cancel()

	if err != nil {
		c.log.Warn(ctx, "chat exchange failed", "conversation_id", convID, "error", err)

		failed := models.Message{
			ID:        c.newID(),
			Text:      common.ChatErrorReply,
			Role:      models.RoleAssistant,
			Timestamp: c.now(),
			State:     models.StateFailed,
		}
		res := SendResult{ConversationID: convID, Reply: failed}
		if c.store.Settle(epoch, userMsg.ID, models.StateFailed) {
			c.store.Append(epoch, failed)
		} else {
			res.Dropped = true
		}
		return res, fmt.Errorf("send message: %w", err)
	}

	res := SendResult{ConversationID: convID}

	if convID == "" {
		if reply.ConversationID != "" {
			// the server created it either way, so the list must learn about it
			c.bus.Publish(events.Event{Kind: events.ConversationCreated, ID: reply.ConversationID})
		}
		if c.store.Promote(epoch, reply.ConversationID) {
			res.ConversationID = reply.ConversationID
			res.Promoted = true
		}
	} else if reply.ConversationID != "" && reply.ConversationID != convID {
		c.log.Warn(ctx, "server answered on another conversation, keeping ours",
			"conversation_id", convID, "reply_conversation_id", reply.ConversationID)
	}

	res.Reply = models.Message{
		ID:        c.newID(),
		Text:      reply.Answer,
		Role:      models.RoleAssistant,
		Timestamp: c.now(),
		State:     models.StateConfirmed,
	}

	if !c.store.Settle(epoch, userMsg.ID, models.StateConfirmed) {
		c.log.Info(ctx, "dropping late reply for a conversation no longer shown", "conversation_id", convID)
		res.Dropped = true
		return res, nil
	}
	c.store.Append(epoch, res.Reply)
	return res, nil
}

func (c *Composer) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Package reply answers inbound messages with the registered handlers and
// keeps the per-conversation state engines share.
package reply

import (
	"context"
	"time"

	"github.com/atlanticdynamic/bottery/internal/conversations"
	"github.com/atlanticdynamic/bottery/internal/handlers"
)

// State is what the built-in engines keep per conversation.
type State struct {
	Platform  string
	Handler   string
	Messages  int
	LastText  string
	LastReply string
	UpdatedAt time.Time
}

// Key returns the conversation store key of msg.
func Key(msg handlers.Message) string {
	return msg.Platform + ":" + msg.Conversation
}

// Answer finds the handler for msg, asks it for a reply and records the
// exchange in store. The store update is a single step, so callers must hold
// the scheduler turn but need not worry about suspension in between.
func Answer(ctx context.Context, set handlers.Set, store *conversations.Store, msg handlers.Message) (string, error) {
	h, ok := set.Find(msg.Text)
	if !ok {
		return set.Respond(ctx, msg)
	}

	out, err := h.Respond(ctx, msg)
	if err != nil {
		return "", err
	}

	if store != nil {
		store.Update(Key(msg), func(prev any, _ bool) any {
			s, _ := prev.(State)
			s.Platform = msg.Platform
			s.Handler = h.Name()
			s.Messages++
			s.LastText = msg.Text
			s.LastReply = out
			s.UpdatedAt = time.Now()
			return s
		})
	}
	return out, nil
}

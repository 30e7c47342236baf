package host

import (
	"context"
	"encoding/json"
	"fmt"
)

// wireContext is the JSON shape of a snapshot on the push endpoint and
// on Redis. Messages travel inline because a lazy accessor cannot.
type wireContext struct {
	Type          ContextType    `json:"type"`
	Conversation  *Conversation  `json:"conversation,omitempty"`
	Teammate      *Teammate      `json:"teammate,omitempty"`
	Conversations []Conversation `json:"conversations,omitempty"`
	Messages      []Message      `json:"messages,omitempty"`
}

// EncodeContext serializes c, resolving its messages.
func EncodeContext(ctx context.Context, c Context) ([]byte, error) {
	w := wireContext{
		Type:          c.Type,
		Conversation:  c.Conversation,
		Teammate:      c.Teammate,
		Conversations: c.Conversations,
	}
	if c.Type == ContextSingleConversation {
		list, err := c.ListMessages(ctx)
		if err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}
		w.Messages = list.Results
	}
	return json.Marshal(w)
}

// DecodeContext parses a wire snapshot.
func DecodeContext(raw []byte) (Context, error) {
	var w wireContext
	if err := json.Unmarshal(raw, &w); err != nil {
		return Context{}, fmt.Errorf("decode host context: %w", err)
	}
	switch w.Type {
	case ContextNoConversation:
		return NoConversation(w.Teammate), nil
	case ContextMultiConversations:
		return MultiConversations(w.Teammate, w.Conversations), nil
	case ContextSingleConversation:
		conversation := Conversation{}
		if w.Conversation != nil {
			conversation = *w.Conversation
		}
		return SingleConversation(conversation, w.Teammate, StaticMessages(w.Messages)), nil
	default:
		return Context{}, fmt.Errorf("decode host context: unknown type %q", w.Type)
	}
}

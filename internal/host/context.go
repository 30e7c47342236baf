// Package host connects the dashboard to the helpdesk application that
// embeds it as a sidebar plugin. The host pushes context snapshots
// describing which conversation the teammate is looking at.
package host

import (
	"context"
	"errors"
	"time"
)

// ContextType discriminates host snapshots.
type ContextType string

const (
	ContextNoConversation     ContextType = "noConversation"
	ContextSingleConversation ContextType = "singleConversation"
	ContextMultiConversations ContextType = "multiConversations"
)

func (t ContextType) Valid() bool {
	switch t {
	case ContextNoConversation, ContextSingleConversation, ContextMultiConversations:
		return true
	}
	return false
}

// ErrNotSingleConversation is returned by accessors that only make sense
// when exactly one conversation is focused.
var ErrNotSingleConversation = errors.New("host: context is not a single conversation")

// Recipient is the external party of a conversation.
type Recipient struct {
	Name   string `json:"name,omitempty"`
	Handle string `json:"handle,omitempty"`
}

// Conversation is the focused helpdesk conversation.
type Conversation struct {
	ID        string     `json:"id,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	Recipient *Recipient `json:"recipient,omitempty"`
}

// Teammate is the helpdesk user running the plugin.
type Teammate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// MessageContent is the body of a conversation message.
type MessageContent struct {
	Body string `json:"body"`
	Type string `json:"type,omitempty"`
}

// Message is one message of a conversation.
type Message struct {
	ID        string         `json:"id,omitempty"`
	Content   MessageContent `json:"content"`
	CreatedAt *time.Time     `json:"createdAt,omitempty"`
}

// MessageList is a page of messages, oldest first.
type MessageList struct {
	Results []Message `json:"results"`
}

// Latest returns the newest message, if any.
func (l MessageList) Latest() (Message, bool) {
	if len(l.Results) == 0 {
		return Message{}, false
	}
	return l.Results[len(l.Results)-1], true
}

// MessageLister loads a conversation's messages on demand.
type MessageLister interface {
	ListMessages(ctx context.Context) (MessageList, error)
}

// StaticMessages serves a fixed message list.
type StaticMessages []Message

func (m StaticMessages) ListMessages(context.Context) (MessageList, error) {
	return MessageList{Results: append([]Message(nil), m...)}, nil
}

// Context is one snapshot pushed by the host.
type Context struct {
	Type          ContextType
	Conversation  *Conversation
	Teammate      *Teammate
	Conversations []Conversation

	messages MessageLister
}

// NoConversation builds a snapshot for an empty selection.
func NoConversation(teammate *Teammate) Context {
	return Context{Type: ContextNoConversation, Teammate: teammate}
}

// SingleConversation builds a snapshot for one focused conversation.
// messages may be nil when the host cannot list messages.
func SingleConversation(conversation Conversation, teammate *Teammate, messages MessageLister) Context {
	return Context{
		Type:         ContextSingleConversation,
		Conversation: &conversation,
		Teammate:     teammate,
		messages:     messages,
	}
}

// MultiConversations builds a snapshot for a multi-selection.
func MultiConversations(teammate *Teammate, conversations []Conversation) Context {
	return Context{Type: ContextMultiConversations, Teammate: teammate, Conversations: conversations}
}

// Subject is the focused conversation's subject, or "".
func (c Context) Subject() string {
	if c.Type != ContextSingleConversation || c.Conversation == nil {
		return ""
	}
	return c.Conversation.Subject
}

// ListMessages lazily loads the focused conversation's messages. It is
// only valid for single-conversation snapshots.
func (c Context) ListMessages(ctx context.Context) (MessageList, error) {
	if c.Type != ContextSingleConversation {
		return MessageList{}, ErrNotSingleConversation
	}
	if c.messages == nil {
		return MessageList{}, nil
	}
	return c.messages.ListMessages(ctx)
}

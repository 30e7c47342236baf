package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStreamDelivery(t *testing.T) {
	s := NewMemoryStream()
	var got []ContextType
	sub := s.Subscribe(func(c Context) { got = append(got, c.Type) })

	require.NoError(t, s.Publish(context.Background(), NoConversation(nil)))
	require.NoError(t, s.Publish(context.Background(), MultiConversations(nil, []Conversation{{ID: "a"}, {ID: "b"}})))
	require.Equal(t, []ContextType{ContextNoConversation, ContextMultiConversations}, got)

	sub.Unsubscribe()
	require.NoError(t, s.Publish(context.Background(), NoConversation(nil)))
	require.Len(t, got, 2)
}

func TestMemoryStreamReplaysLatest(t *testing.T) {
	s := NewMemoryStream()
	require.NoError(t, s.Publish(context.Background(), NoConversation(nil)))
	require.NoError(t, s.Publish(context.Background(), SingleConversation(Conversation{Subject: "latest"}, nil, nil)))

	var got []string
	sub := s.Subscribe(func(c Context) { got = append(got, c.Subject()) })
	defer sub.Unsubscribe()
	require.Equal(t, []string{"latest"}, got)
}

func TestWireRoundTrip(t *testing.T) {
	ctx := context.Background()
	original := SingleConversation(
		Conversation{ID: "cnv_1", Subject: "VPN down", Recipient: &Recipient{Name: "Grace"}},
		&Teammate{Name: "Ada"},
		StaticMessages{{ID: "msg_1", Content: MessageContent{Body: "It stopped working"}}},
	)

	raw, err := EncodeContext(ctx, original)
	require.NoError(t, err)

	decoded, err := DecodeContext(raw)
	require.NoError(t, err)
	require.Equal(t, ContextSingleConversation, decoded.Type)
	require.Equal(t, "VPN down", decoded.Subject())
	require.Equal(t, "Grace", decoded.Conversation.Recipient.Name)
	require.Equal(t, "Ada", decoded.Teammate.Name)

	messages, err := decoded.ListMessages(ctx)
	require.NoError(t, err)
	latest, ok := messages.Latest()
	require.True(t, ok)
	require.Equal(t, "It stopped working", latest.Content.Body)
}

func TestDecodeContextRejectsUnknownType(t *testing.T) {
	_, err := DecodeContext([]byte(`{"type":"somethingElse"}`))
	require.Error(t, err)

	_, err = DecodeContext([]byte(`not json`))
	require.Error(t, err)
}

func TestNestedFromFetchDest(t *testing.T) {
	for dest, want := range map[string]bool{"iframe": true, "frame": true, "EMBED": true, "document": false} {
		got, err := NestedFromFetchDest(dest)
		require.NoError(t, err, dest)
		require.Equal(t, want, got, dest)
	}
	_, err := NestedFromFetchDest("")
	require.ErrorIs(t, err, ErrFrameUnknown)

	var hint FrameHint
	hint.Record("document")
	nested, err := hint.IsNested()
	require.NoError(t, err)
	require.False(t, nested)
}

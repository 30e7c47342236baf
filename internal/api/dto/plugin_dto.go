package dto

// Plugin view modes.
const (
	PluginModeConnecting         = "connecting"
	PluginModeSetupRequired      = "setup_required"
	PluginModeNoConversation     = "no_conversation"
	PluginModeMultiConversations = "multi_conversations"
	PluginModeSingleConversation = "single_conversation"
)

// EmptyState is the placeholder shown when there is nothing to act on.
type EmptyState struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// SetupInstructions explain how to install the plugin in the host.
type SetupInstructions struct {
	Title     string   `json:"title"`
	Message   string   `json:"message"`
	Steps     []string `json:"steps"`
	PluginURL string   `json:"pluginUrl"`
}

// ConversationSummary describes the focused conversation.
type ConversationSummary struct {
	Subject string `json:"subject"`
	From    string `json:"from"`
}

// RelatedTicket links a ticket from the plugin.
type RelatedTicket struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
	Link   string `json:"link"`
}

// PluginView response.
type PluginView struct {
	Mode           string               `json:"mode"`
	Message        string               `json:"message,omitempty"`
	Setup          *SetupInstructions   `json:"setup,omitempty"`
	Empty          *EmptyState          `json:"empty,omitempty"`
	Greeting       string               `json:"greeting,omitempty"`
	Conversation   *ConversationSummary `json:"conversation,omitempty"`
	RelatedTickets []RelatedTicket      `json:"relatedTickets,omitempty"`
	DraftLink      string               `json:"draftLink,omitempty"`
	AllTicketsLink string               `json:"allTicketsLink,omitempty"`
}

// DraftView response for the create-from-conversation action.
type DraftView struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Link  string `json:"link"`
}

// HostContextAck acknowledges a pushed snapshot.
type HostContextAck struct {
	Type     string `json:"type"`
	Accepted bool   `json:"accepted"`
}

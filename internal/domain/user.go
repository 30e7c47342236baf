package domain

// User is the technician a ticket can be assigned to.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Client is the customer organisation that raised a ticket.
type Client struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Timezone string `json:"timezone,omitempty"`
	Status   string `json:"status,omitempty"`
}

// RmmDevice is the managed endpoint a ticket refers to.
type RmmDevice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// KnowledgeBaseArticle holds the article used to resolve a ticket.
type KnowledgeBaseArticle struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

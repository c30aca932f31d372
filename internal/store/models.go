package store

import "time"

// QAPair is a stored question/answer row. Question is unique; the most
// recent upsert for a question wins.
type QAPair struct {
	Question  string  `json:"question"`
	Answer    string  `json:"answer"`
	UpdatedAt float64 `json:"updated_at"` // unix seconds
}

type Conversation struct {
	ID        string    `json:"id"` // UUID
	CreatedAt time.Time `json:"created_at"`
}

type Message struct {
	ID             string    `json:"id"` // UUID
	ConversationID string    `json:"conversation_id"`
	Sender         string    `json:"sender"` // "user" or "model"
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}

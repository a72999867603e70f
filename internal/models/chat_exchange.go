package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatExchange is one completed prompt/response pair. History is
// append-only; exchanges are never updated or deleted by the service.
type ChatExchange struct {
	ID        uuid.UUID `db:"id"`
	Prompt    string    `db:"prompt"`
	Response  string    `db:"response"`
	CreatedAt time.Time `db:"created_at"`
}

func NewChatExchange(prompt, response string) *ChatExchange {
	return &ChatExchange{
		ID:        uuid.New(),
		Prompt:    prompt,
		Response:  response,
		CreatedAt: time.Now().UTC(),
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an operator account. Ingestion triggers are authenticated; read
// and chat endpoints are public. Accounts are created once and never
// edited, so there is no update path or modification timestamp.
type User struct {
	ID        uuid.UUID `db:"id"`
	Username  string    `db:"username"`
	Email     string    `db:"email"`
	Password  string    `db:"password"`
	CreatedAt time.Time `db:"created_at"`
}

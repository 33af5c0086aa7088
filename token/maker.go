package token

import (
	"time"

	"github.com/google/uuid"
)

// Maker abstracts token creation and verification so the rest of the
// application does not care which token scheme is in use.
type Maker interface {
	CreateToken(userID uuid.UUID, email string, duration time.Duration) (string, error)

	VerifyToken(token string) (*Payload, error)
}

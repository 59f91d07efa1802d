package domain

import (
	"fmt"
	"time"
)

// Role identifies the sender of a conversation turn.
type Role string

const (
	RoleHuman Role = "human"
	RoleAI    Role = "ai"
)

// ParseRole validates a role read back from storage. Anything other than the
// two known roles is treated as corruption, not coerced.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleHuman, RoleAI:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Turn is a single message in a session's conversation. History is an
// ordered, append-only sequence; the timestamp is advisory, ordering is the
// stored sequence order.
type Turn struct {
	Role      Role      `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Window returns the most recent n turns, oldest first. It never mutates the
// input and returns it unchanged when it already fits.
func Window(turns []Turn, n int) []Turn {
	if n <= 0 || len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

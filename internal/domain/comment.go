package domain

import "time"

// Comment is a message on a ticket thread. IsInternal marks agent-only
// notes; the flag is stored but read paths do not filter on it yet.
type Comment struct {
	ID         string
	TicketID   string
	UserID     string
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}

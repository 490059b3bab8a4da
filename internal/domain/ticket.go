package domain

import "time"

// TicketStatus enumerates kanban columns. The workflow is ordered but no
// transition graph is enforced; any status may follow any other.
type TicketStatus string

const (
	TicketStatusTodo       TicketStatus = "todo"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// ValidTicketStatus reports whether the value is a known status.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusTodo, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// ValidTicketPriority reports whether the value is a known priority.
func ValidTicketPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Ticket is the unit of work.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Category    *string
	ReporterID  string
	AssigneeID  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	// ResolvedAt is informational only; nothing sets it on status change.
	ResolvedAt *time.Time
}

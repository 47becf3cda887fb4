package events

import (
	"time"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted     EventType = "complaint_submitted"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventComplaintReassigned    EventType = "complaint_reassigned"
	EventDepartmentNotified     EventType = "department_notified"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	ActorID     string      `json:"actor_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	Category   domain.ComplaintCategory `json:"category"`
	Department string                   `json:"department"`
	Priority   domain.ComplaintPriority `json:"priority"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
	Note      string                 `json:"note,omitempty"`
}

// ComplaintReassignedPayload payload.
type ComplaintReassignedPayload struct {
	OldOfficerID *string `json:"old_officer_id,omitempty"`
	NewOfficerID string  `json:"new_officer_id"`
}

// DepartmentNotifiedPayload payload.
type DepartmentNotifiedPayload struct {
	Department string `json:"department"`
}

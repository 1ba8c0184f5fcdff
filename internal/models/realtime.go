package models

import "time"

const (
	EventComplaintCreated = "complaint.created"
	EventComplaintUpdated = "complaint.updated"
)

// ComplaintEvent is pushed to feed subscribers whenever a complaint changes.
type ComplaintEvent struct {
	Type           string    `json:"type"`
	ComplaintID    string    `json:"complaintId"`
	SubmittedBy    string    `json:"submittedBy,omitempty"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	Priority       string    `json:"priority"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// NewComplaintEvent snapshots a complaint into an event.
func NewComplaintEvent(eventType string, c *Complaint, previousStatus string) ComplaintEvent {
	evt := ComplaintEvent{
		Type:           eventType,
		ComplaintID:    c.ID,
		Title:          c.Title,
		Category:       c.Category,
		Status:         c.Status,
		PreviousStatus: previousStatus,
		Priority:       c.Priority,
		OccurredAt:     c.UpdatedAt,
	}
	if c.SubmittedBy != nil {
		evt.SubmittedBy = *c.SubmittedBy
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}
	return evt
}

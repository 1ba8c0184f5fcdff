package feed

import (
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/models"
)

// Client is any subscriber of the complaint feed (WebSocket, Telegram).
// The hub writes events to GetSendChannel and calls Close exactly once when it
// drops the client.
type Client interface {
	// GetUserID returns the id of the user behind the connection.
	GetUserID() string
	// GetRole returns the role used to decide which events the client sees.
	GetRole() string
	// GetSendChannel returns the channel the hub delivers events on.
	GetSendChannel() chan<- models.ComplaintEvent

	// Run starts the client's pumps.
	Run()
	// Close shuts the client down.
	Close()
}

// Durable is implemented by clients that must stay subscribed when they fall
// behind. The hub skips the event for them instead of dropping the client.
type Durable interface {
	Durable() bool
}

func isDurable(c Client) bool {
	d, ok := c.(Durable)
	return ok && d.Durable()
}

// Wants reports whether c should receive evt. Administrators and department
// heads see every event, citizens only events about their own complaints.
func Wants(c Client, evt models.ComplaintEvent) bool {
	switch c.GetRole() {
	case config.RoleAdmin, config.RoleDepartmentHead:
		return true
	}
	return evt.SubmittedBy != "" && evt.SubmittedBy == c.GetUserID()
}

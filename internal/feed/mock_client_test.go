package feed_test

import (
	"civicdesk/backend/internal/models"
	"sync/atomic"
)

type MockClient struct {
	userID      string
	role        string
	RecvChannel chan models.ComplaintEvent
	closed      atomic.Bool
}

func newMockClient(userID, role string, buffer int) *MockClient {
	return &MockClient{
		userID:      userID,
		role:        role,
		RecvChannel: make(chan models.ComplaintEvent, buffer),
	}
}

func (c *MockClient) GetUserID() string { return c.userID }

func (c *MockClient) GetRole() string { return c.role }

func (c *MockClient) GetSendChannel() chan<- models.ComplaintEvent {
	return c.RecvChannel
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.closed.Store(true)
}

func (c *MockClient) IsClosed() bool { return c.closed.Load() }

// durableClient is a MockClient that asks the hub to skip events rather than
// drop it.
type durableClient struct {
	*MockClient
}

func (durableClient) Durable() bool { return true }

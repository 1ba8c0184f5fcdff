// Package feed fans complaint events out to live subscribers.
package feed

import (
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/models"
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrBacklogged is returned by Publish when the broadcast queue is full.
var ErrBacklogged = errors.New("feed broadcast queue is full")

// EventBus carries events between API replicas. storage.Service implements it on Redis.
type EventBus interface {
	PublishEvent(ctx context.Context, evt models.ComplaintEvent) error
	SubscribeEvents(ctx context.Context) *redis.PubSub
}

// ManagerService is the hub. Its Run goroutine is the only writer of the client set.
type ManagerService struct {
	RegisterCh   chan Client
	UnregisterCh chan Client
	BroadcastCh  chan models.ComplaintEvent

	Bus    EventBus
	Logger *zap.Logger

	mu      sync.RWMutex
	clients map[Client]struct{}
	done    chan struct{}
}

// NewManagerService creates a hub. With a nil bus events stay in-process.
func NewManagerService(bus EventBus, logger *zap.Logger) *ManagerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManagerService{
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		BroadcastCh:  make(chan models.ComplaintEvent, config.HubBroadcastBuffer),
		Bus:          bus,
		Logger:       logger,
		clients:      make(map[Client]struct{}),
		done:         make(chan struct{}),
	}
}

// Publish hands an event to every replica through the bus, or straight to
// this hub when there is no bus.
func (m *ManagerService) Publish(ctx context.Context, evt models.ComplaintEvent) error {
	if m.Bus != nil {
		return m.Bus.PublishEvent(ctx, evt)
	}
	select {
	case m.BroadcastCh <- evt:
		return nil
	default:
		return ErrBacklogged
	}
}

// Register adds a client. It returns false once the hub has stopped.
func (m *ManagerService) Register(c Client) bool {
	select {
	case m.RegisterCh <- c:
		return true
	case <-m.done:
		return false
	}
}

// Unregister removes a client and closes it. Safe after the hub has stopped.
func (m *ManagerService) Unregister(c Client) {
	select {
	case m.UnregisterCh <- c:
	case <-m.done:
	}
}

// ClientCount returns the number of connected clients.
func (m *ManagerService) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Done is closed when Run returns.
func (m *ManagerService) Done() <-chan struct{} { return m.done }

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every remaining client.
func (m *ManagerService) Run(ctx context.Context) {
	defer close(m.done)

	if m.Bus != nil {
		go m.listen(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			for c := range m.clients {
				delete(m.clients, c)
				c.Close()
			}
			m.mu.Unlock()
			m.Logger.Info("feed hub stopped")
			return

		case c := <-m.RegisterCh:
			m.mu.Lock()
			m.clients[c] = struct{}{}
			m.mu.Unlock()
			m.Logger.Debug("feed client registered", zap.String("user_id", c.GetUserID()), zap.String("role", c.GetRole()))

		case c := <-m.UnregisterCh:
			m.remove(c)

		case evt := <-m.BroadcastCh:
			m.deliver(evt)
		}
	}
}

func (m *ManagerService) remove(c Client) {
	m.mu.Lock()
	_, ok := m.clients[c]
	delete(m.clients, c)
	m.mu.Unlock()
	if ok {
		c.Close()
		m.Logger.Debug("feed client removed", zap.String("user_id", c.GetUserID()))
	}
}

func (m *ManagerService) deliver(evt models.ComplaintEvent) {
	m.mu.RLock()
	targets := make([]Client, 0, len(m.clients))
	for c := range m.clients {
		if Wants(c, evt) {
			targets = append(targets, c)
		}
	}
	m.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.GetSendChannel() <- evt:
		default:
			if isDurable(c) {
				m.Logger.Warn("feed client backlogged, event skipped",
					zap.String("user_id", c.GetUserID()),
					zap.String("complaint_id", evt.ComplaintID),
				)
				continue
			}
			// Slow consumer: drop it here rather than through UnregisterCh,
			// which only this goroutine reads.
			m.Logger.Warn("feed client too slow, dropping", zap.String("user_id", c.GetUserID()))
			m.remove(c)
		}
	}
}

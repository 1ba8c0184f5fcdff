package feed

import (
	"civicdesk/backend/internal/models"
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// listen forwards events published by any replica into BroadcastCh.
func (m *ManagerService) listen(ctx context.Context) {
	pubsub := m.Bus.SubscribeEvents(ctx)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				m.Logger.Warn("feed subscription closed")
				return
			}
			var evt models.ComplaintEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				m.Logger.Error("failed to decode feed event", zap.Error(err))
				continue
			}
			select {
			case m.BroadcastCh <- evt:
			case <-ctx.Done():
				return
			}
		}
	}
}

package telegram

import (
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/localization"
	"civicdesk/backend/internal/models"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Client implements feed.Client for the admin chat: every complaint event the
// hub delivers is posted there as a localized message.
type Client struct {
	ChatID    int64
	Sender    Sender
	Localizer *localization.Localizer
	Lang      string
	Send      chan models.ComplaintEvent
	Logger    *zap.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewClient creates a notifier for chatID.
func NewClient(chatID int64, sender Sender, localizer *localization.Localizer, lang string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		ChatID:    chatID,
		Sender:    sender,
		Localizer: localizer,
		Lang:      lang,
		Send:      make(chan models.ComplaintEvent, config.ClientSendBuffer),
		Logger:    logger,
		done:      make(chan struct{}),
	}
}

func (c *Client) GetUserID() string                            { return "telegram:" + strconv.FormatInt(c.ChatID, 10) }
func (c *Client) GetRole() string                              { return config.RoleAdmin }
func (c *Client) GetSendChannel() chan<- models.ComplaintEvent { return c.Send }

// Durable keeps the notifier subscribed while Telegram rate limits slow it
// down; events that do not fit the buffer are skipped.
func (c *Client) Durable() bool { return true }

// Run starts the write pump. Commands are read centrally by BotService.
func (c *Client) Run() {
	go c.writePump()
}

// Close stops the write pump.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// Done is closed once the write pump has drained and exited.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) writePump() {
	defer func() {
		close(c.done)
		c.Logger.Info("telegram notifier stopped", zap.Int64("chat_id", c.ChatID))
	}()

	for evt := range c.Send {
		text, ok := c.Render(evt)
		if !ok {
			continue
		}
		if _, err := c.Sender.Send(tgbotapi.NewMessage(c.ChatID, text)); err != nil {
			c.Logger.Error("failed to send telegram notification",
				zap.String("complaint_id", evt.ComplaintID),
				zap.Error(err),
			)
		}
	}
}

// Render builds the notification text. Updates that keep the status are skipped.
func (c *Client) Render(evt models.ComplaintEvent) (string, bool) {
	switch evt.Type {
	case models.EventComplaintCreated:
		return c.Localizer.Format(c.Lang, "complaint_created",
			shortID(evt.ComplaintID), evt.Title, evt.Category, evt.Priority), true
	case models.EventComplaintUpdated:
		if evt.PreviousStatus == "" || evt.PreviousStatus == evt.Status {
			return "", false
		}
		return c.Localizer.Format(c.Lang, "complaint_status_changed",
			shortID(evt.ComplaintID), evt.Title, c.statusName(evt.PreviousStatus), c.statusName(evt.Status)), true
	}
	c.Logger.Warn("unhandled feed event for telegram", zap.String("type", evt.Type))
	return "", false
}

func (c *Client) statusName(status string) string {
	key := "status_" + status
	if name := c.Localizer.GetString(c.Lang, key); name != key {
		return name
	}
	return status
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Package telegram posts complaint notifications to an administrators' chat
// and answers a few read-only bot commands there.
package telegram

import (
	"civicdesk/backend/internal/feed"
	"civicdesk/backend/internal/localization"
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// BotService receives Telegram updates and keeps the admin-chat notifier
// registered with the feed hub.
type BotService struct {
	BotAPI   *tgbotapi.BotAPI
	Hub      *feed.ManagerService
	Client   *Client
	Commands *CommandHandler
	Logger   *zap.Logger
}

// NewBotService authorizes the bot and wires the notifier and command handler.
func NewBotService(token string, adminChatID int64, lang string, hub *feed.ManagerService, complaints ComplaintSource, localizer *localization.Localizer, logger *zap.Logger) (*BotService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorize telegram bot: %w", err)
	}
	bot.Debug = false
	logger.Info("telegram bot authorized", zap.String("username", bot.Self.UserName))

	return &BotService{
		BotAPI: bot,
		Hub:    hub,
		Client: NewClient(adminChatID, bot, localizer, lang, logger),
		Commands: &CommandHandler{
			Complaints:  complaints,
			Sender:      bot,
			Localizer:   localizer,
			Lang:        lang,
			AdminChatID: adminChatID,
			Logger:      logger,
		},
		Logger: logger,
	}, nil
}

// Run registers the notifier and processes updates until ctx is cancelled.
func (s *BotService) Run(ctx context.Context) {
	if s.Hub.Register(s.Client) {
		s.Client.Run()
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			s.BotAPI.StopReceivingUpdates()
			s.Hub.Unregister(s.Client)
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil && update.Message.IsCommand() {
				s.Commands.HandleCommand(ctx, update.Message)
			}
		}
	}
}

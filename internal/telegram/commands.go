package telegram

import (
	"civicdesk/backend/internal/auth"
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/localization"
	"civicdesk/backend/internal/models"
	"civicdesk/backend/internal/storage"
	"context"
	"errors"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender is the part of *tgbotapi.BotAPI the bot needs to reply.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ComplaintSource is the part of complaint.Service the commands read from.
type ComplaintSource interface {
	Stats(ctx context.Context) (map[string]int64, error)
	Get(ctx context.Context, id string, viewer auth.Identity) (*models.Complaint, error)
}

// botIdentity is who the bot acts as when reading complaints.
var botIdentity = auth.Identity{ID: "telegram-bot", Role: config.RoleAdmin}

// CommandHandler answers bot commands sent from the admin chat.
type CommandHandler struct {
	Complaints  ComplaintSource
	Sender      Sender
	Localizer   *localization.Localizer
	Lang        string
	AdminChatID int64
	Logger      *zap.Logger
}

// HandleCommand replies to /help, /stats and /complaint <id>. Messages from
// any chat other than the admin chat are ignored.
func (h *CommandHandler) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || !msg.IsCommand() {
		return
	}
	if msg.Chat.ID != h.AdminChatID {
		h.Logger.Warn("ignoring command from foreign chat", zap.Int64("chat_id", msg.Chat.ID), zap.String("command", msg.Command()))
		return
	}

	var text string
	switch msg.Command() {
	case "start", "help":
		text = h.Localizer.GetString(h.Lang, "help")
	case "stats":
		text = h.statsText(ctx)
	case "complaint":
		text = h.complaintText(ctx, strings.TrimSpace(msg.CommandArguments()))
	default:
		text = h.Localizer.GetString(h.Lang, "unknown_command")
	}

	if _, err := h.Sender.Send(tgbotapi.NewMessage(msg.Chat.ID, text)); err != nil {
		h.Logger.Error("failed to send command reply", zap.String("command", msg.Command()), zap.Error(err))
	}
}

func (h *CommandHandler) statsText(ctx context.Context) string {
	stats, err := h.Complaints.Stats(ctx)
	if err != nil {
		h.Logger.Error("failed to load stats for bot", zap.Error(err))
		return h.Localizer.GetString(h.Lang, "stats_failed")
	}
	if len(stats) == 0 {
		return h.Localizer.GetString(h.Lang, "stats_empty")
	}

	lines := []string{h.Localizer.GetString(h.Lang, "stats_header")}
	for _, status := range orderedStatuses(stats) {
		lines = append(lines, h.Localizer.Format(h.Lang, "stats_line", h.statusName(status), stats[status]))
	}
	return strings.Join(lines, "\n")
}

func (h *CommandHandler) complaintText(ctx context.Context, id string) string {
	if id == "" {
		return h.Localizer.GetString(h.Lang, "complaint_usage")
	}
	c, err := h.Complaints.Get(ctx, id, botIdentity)
	if errors.Is(err, storage.ErrNotFound) {
		return h.Localizer.GetString(h.Lang, "complaint_not_found")
	}
	if err != nil {
		h.Logger.Error("failed to load complaint for bot", zap.String("complaint_id", id), zap.Error(err))
		return h.Localizer.GetString(h.Lang, "complaint_not_found")
	}
	return h.Localizer.Format(h.Lang, "complaint_details",
		c.ID, c.Title, c.Category, h.statusName(c.Status), c.Priority, c.CreatedAt.Format("2006-01-02 15:04"))
}

func (h *CommandHandler) statusName(status string) string {
	key := "status_" + status
	if name := h.Localizer.GetString(h.Lang, key); name != key {
		return name
	}
	return status
}

// orderedStatuses lists known statuses in lifecycle order, then any others alphabetically.
func orderedStatuses(stats map[string]int64) []string {
	out := make([]string, 0, len(stats))
	seen := make(map[string]bool, len(stats))
	for _, s := range config.Statuses {
		if _, ok := stats[s]; ok {
			out = append(out, s)
			seen[s] = true
		}
	}
	var rest []string
	for s := range stats {
		if !seen[s] {
			rest = append(rest, s)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/axz356574-a11y/Confession/internal/activity"
	"github.com/axz356574-a11y/Confession/internal/inference"
	"github.com/axz356574-a11y/Confession/internal/models"
	"github.com/axz356574-a11y/Confession/internal/storage"
)

// Callback payloads for the confession inline keyboard.
const (
	callbackSubmit = "confess:submit"
	callbackReply  = "confess:reply"
)

// pendingKind tracks a user who pressed a confession button and whose next
// message will be consumed as input instead of logged as plain activity.
type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingConfession
	pendingReply
)

// Config is the collaborator-layer policy: where confessions go, who may run
// admin commands, and how long a user must be observed before analysis.
type Config struct {
	Token            string
	ConfessionChatID int64
	AdminIDs         []int64
	MinObservation   time.Duration
}

type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      Config
	activity *activity.Store
	counter  *activity.Counter
	archive  storage.Storage
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[int64]pendingKind
}

func New(cfg Config, store *activity.Store, counter *activity.Counter, archive storage.Storage, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	if cfg.MinObservation <= 0 {
		cfg.MinObservation = MinObservation
	}

	return &Bot{
		api:      api,
		cfg:      cfg,
		activity: store,
		counter:  counter,
		archive:  archive,
		logger:   logger,
		pending:  make(map[int64]pendingKind),
	}, nil
}

// Start consumes updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.CallbackQuery != nil {
				go b.handleCallback(update.CallbackQuery)
				continue
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(update.Message)
		}
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.From == nil || message.From.IsBot {
		return
	}

	if message.IsCommand() {
		b.handleCommand(message)
		return
	}

	// A pressed confession button claims the user's next message.
	if kind := b.takePending(message.From.ID); kind != pendingNone {
		b.handlePendingInput(kind, message)
		return
	}

	b.activity.RecordMessage(message.From.ID, int64(message.Date))
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "confess":
		b.handleConfess(message)
	case "checktimezone":
		b.handleCheckTimezone(message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome! 🤫
I run the anonymous confession board and keep activity statistics for this server.

Use /confess <text> to post anonymously.
Use /help to see all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/confess <text> - Post an anonymous confession
/checktimezone <user id> - Estimate a member's timezone (admins only)

Every confession is posted without your name. Admins receive a private audit copy.`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleConfess(message *tgbotapi.Message) {
	content := message.CommandArguments()
	if content == "" {
		b.setPending(message.From.ID, pendingConfession)
		b.promptForInput(message.Chat.ID, "Send your confession as your next message.")
		return
	}
	b.postConfession(message.From, content)
}

func (b *Bot) handlePendingInput(kind pendingKind, message *tgbotapi.Message) {
	content := message.Text
	if message.Caption != "" {
		content = message.Caption
	}
	if content == "" {
		b.sendErrorMessage(message.Chat.ID, "I can only post text. Please try again.")
		return
	}

	switch kind {
	case pendingConfession:
		b.postConfession(message.From, content)
		b.sendMessage(message.Chat.ID, "Your confession has been posted anonymously.")
	case pendingReply:
		b.postReply(message.From, content)
		b.sendMessage(message.Chat.ID, "Your reply has been posted anonymously.")
	}
}

func (b *Bot) handleCallback(query *tgbotapi.CallbackQuery) {
	if query.From == nil {
		return
	}

	switch query.Data {
	case callbackSubmit:
		b.setPending(query.From.ID, pendingConfession)
		b.promptForInput(query.From.ID, "Send your confession as your next message.")
	case callbackReply:
		b.setPending(query.From.ID, pendingReply)
		b.promptForInput(query.From.ID, "Send your anonymous reply as your next message.")
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Error("Failed to answer callback query",
			zap.Error(err),
			zap.String("callback_id", query.ID))
	}
}

// postConfession assigns the next sequence number, posts the anonymous
// message with its interaction keyboard, alerts the admins, and archives the
// confession.
func (b *Bot) postConfession(from *tgbotapi.User, content string) {
	number := b.counter.Next()

	text := fmt.Sprintf("*Anonymous Confession \\#%d*\n\n%s\n\n_Submitted Anonymously_",
		number, escapeMarkdown(content))

	msg := tgbotapi.NewMessage(b.cfg.ConfessionChatID, text)
	msg.ParseMode = "MarkdownV2"
	msg.ReplyMarkup = confessionKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to post confession",
			zap.Error(err),
			zap.Int64("number", number))
	}

	b.alertAdmins(number, from, content)
	b.archiveConfession(from.ID, number, content, false)
}

// postReply posts an anonymous reply to the confession board. Replies carry
// no sequence number and no admin alert, but they are archived.
func (b *Bot) postReply(from *tgbotapi.User, content string) {
	text := fmt.Sprintf("*Anonymous Reply*\n\n%s\n\n_Sent Anonymously_", escapeMarkdown(content))

	msg := tgbotapi.NewMessage(b.cfg.ConfessionChatID, text)
	msg.ParseMode = "MarkdownV2"
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to post anonymous reply", zap.Error(err))
	}

	b.archiveConfession(from.ID, 0, content, true)
}

// alertAdmins mirrors the confession, with the real author, to every admin.
// Per-admin send failures are logged and skipped.
func (b *Bot) alertAdmins(number int64, from *tgbotapi.User, content string) {
	text := fmt.Sprintf("*New Confession Logged*\n\n*Confession \\#%d*\n%s\n\nUser: %s \\(`%d`\\)",
		number, escapeMarkdown(content), escapeMarkdown(from.UserName), from.ID)

	for _, adminID := range b.cfg.AdminIDs {
		msg := tgbotapi.NewMessage(adminID, text)
		msg.ParseMode = "MarkdownV2"
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Warn("Failed to alert admin",
				zap.Error(err),
				zap.Int64("admin_id", adminID),
				zap.Int64("number", number))
		}
	}
}

func (b *Bot) archiveConfession(authorID, number int64, content string, reply bool) {
	confession := &models.Confession{
		ID:        uuid.New().String(),
		Number:    number,
		AuthorID:  authorID,
		Content:   content,
		Reply:     reply,
		CreatedAt: time.Now().UTC(),
	}

	if err := b.archive.SaveConfession(context.Background(), confession); err != nil {
		b.logger.Error("Failed to archive confession",
			zap.Error(err),
			zap.String("confession_id", confession.ID),
			zap.Int64("number", number))
	}
}

func (b *Bot) handleCheckTimezone(message *tgbotapi.Message) {
	if !b.isAdmin(message.From.ID) {
		b.sendErrorMessage(message.Chat.ID, "You are not allowed to use this command.")
		return
	}

	targetID, err := targetUserID(message.CommandArguments(), message.ReplyToMessage)
	if err != nil {
		b.sendErrorMessage(message.Chat.ID, "Reply to the user's message or pass their numeric ID: /checktimezone <user id>")
		return
	}

	rec, ok := b.activity.Snapshot(targetID)
	observed := time.Duration(0)
	if ok {
		observed = observedFor(rec, time.Now())
	}
	if !ok || observed < b.cfg.MinObservation {
		b.sendErrorMessage(message.Chat.ID, fmt.Sprintf(
			"User %d has not been observed for %d hours yet (seen for %.1f hours).",
			targetID, int(b.cfg.MinObservation.Hours()), observed.Hours()))
		return
	}

	report, err := inference.Analyze(rec)
	if err != nil {
		// Only ErrInsufficientData escapes Analyze.
		b.sendErrorMessage(message.Chat.ID, fmt.Sprintf(
			"Not enough activity data for user %d yet (need at least %d messages).",
			targetID, inference.MinSamples))
		return
	}

	text := formatReport(report, observed)
	b.sendMarkdown(message.Chat.ID, text)

	// Mirror the report to the other admins.
	for _, adminID := range b.cfg.AdminIDs {
		if adminID == message.From.ID {
			continue
		}
		b.sendMarkdown(adminID, text)
	}
}

func (b *Bot) promptForInput(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.ForceReply{ForceReply: true, Selective: true}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send input prompt",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func confessionKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Submit Confession", callbackSubmit),
			tgbotapi.NewInlineKeyboardButtonData("Reply Anonymously", callbackReply),
		),
	)
}

func (b *Bot) setPending(userID int64, kind pendingKind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[userID] = kind
}

func (b *Bot) takePending(userID int64) pendingKind {
	b.mu.Lock()
	defer b.mu.Unlock()
	kind, ok := b.pending[userID]
	if !ok {
		return pendingNone
	}
	delete(b.pending, userID)
	return kind
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "MarkdownV2"
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

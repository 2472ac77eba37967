// Package telegram is the gateway adapter: it translates Telegram
// updates into core events, runs them through the quiz and stats
// services, and renders the results back as messages, keyboards and
// file attachments. Wire-format concerns (commands, callback data)
// stay inside this package.
package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"quiz-tutor-bot/internal/app"
	"quiz-tutor-bot/internal/domain"
	"quiz-tutor-bot/internal/report"
)

const (
	cmdStart = "start"
	cmdTest  = "test"
	cmdStats = "stats"
	cmdAdmin = "admin"

	callbackTopicPrefix  = "topic_idx:"
	callbackTopicsMenu   = "show_topics_menu"
	callbackAdminSummary = "admin:summary"
	callbackAdminExcel   = "admin:excel"
)

// Handler owns the long-polling loop and per-update routing.
type Handler struct {
	api   *tgbotapi.BotAPI
	quiz  *app.QuizService
	stats *app.StatsService
	log   *logrus.Entry
}

func NewHandler(api *tgbotapi.BotAPI, quiz *app.QuizService, stats *app.StatsService, log *logrus.Entry) *Handler {
	return &Handler{api: api, quiz: quiz, stats: stats, log: log}
}

// Run polls for updates until the context is cancelled. Updates are
// handled sequentially in arrival order, which also serializes all
// events of any single user.
func (h *Handler) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := h.api.GetUpdatesChan(u)

	h.log.Info("telegram polling started")
	for {
		select {
		case <-ctx.Done():
			h.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate is the failure boundary of one event: nothing that
// happens inside may take the process down or leak to other users.
func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			h.log.WithField("panic", r).Error("recovered from update handler panic")
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	switch {
	case message.IsCommand() && message.Command() == cmdStart:
		h.handleStart(ctx, message)
	case message.IsCommand() && message.Command() == cmdTest:
		h.sendTopicMenu(ctx, userID, message.Chat.ID)
	case message.IsCommand() && message.Command() == cmdStats:
		h.handleStats(ctx, message)
	case message.IsCommand() && message.Command() == cmdAdmin:
		h.handleAdminPanel(message)
	case message.IsCommand():
		h.send(message.Chat.ID, msgUnknownCommand)
	default:
		h.handleAnswerText(ctx, message)
	}
}

func (h *Handler) handleStart(ctx context.Context, message *tgbotapi.Message) {
	user := domain.User{
		ID:        message.From.ID,
		Username:  message.From.UserName,
		FirstName: message.From.FirstName,
	}
	if err := h.quiz.Start(ctx, user); err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Error("start failed")
		h.send(message.Chat.ID, msgGenericFailure)
		return
	}
	h.send(message.Chat.ID, msgGreeting)
}

func (h *Handler) sendTopicMenu(ctx context.Context, userID, chatID int64) {
	entries, err := h.quiz.TopicMenu(ctx, userID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", userID).Error("topic menu failed")
		h.send(chatID, msgGenericFailure)
		return
	}
	msg := tgbotapi.NewMessage(chatID, msgPickTopic)
	msg.ReplyMarkup = topicKeyboard(entries)
	h.sendMessage(msg)
}

func (h *Handler) handleAnswerText(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	feedback, err := h.quiz.SubmitAnswer(ctx, userID, message.Text)
	if errors.Is(err, domain.ErrNoActiveSession) {
		// Stray text outside a question round is deliberately ignored.
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("user_id", userID).Error("submit failed")
		h.send(message.Chat.ID, msgGenericFailure)
		return
	}

	h.send(message.Chat.ID, formatFeedback(feedback))

	msg := tgbotapi.NewMessage(message.Chat.ID, msgContinue)
	msg.ReplyMarkup = continueKeyboard(feedback.NextSelector)
	h.sendMessage(msg)
}

func (h *Handler) handleStats(ctx context.Context, message *tgbotapi.Message) {
	stats, err := h.quiz.Personal(ctx, message.From.ID)
	if errors.Is(err, domain.ErrNoAttempts) {
		h.send(message.Chat.ID, msgNoStatsYet)
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("user_id", message.From.ID).Error("personal stats failed")
		h.send(message.Chat.ID, msgGenericFailure)
		return
	}
	h.send(message.Chat.ID, formatPersonal(stats))
}

func (h *Handler) handleAdminPanel(message *tgbotapi.Message) {
	if err := h.stats.Authorize(message.From.ID); err != nil {
		h.send(message.Chat.ID, msgUnauthorized)
		return
	}
	msg := tgbotapi.NewMessage(message.Chat.ID, msgAdminWelcome)
	msg.ReplyMarkup = adminKeyboard()
	h.sendMessage(msg)
}

func (h *Handler) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Telegram omits the message for callbacks on messages older than
	// 48 hours; without it there is no chat to respond into.
	if callback.Message == nil {
		h.log.WithFields(logrus.Fields{"user_id": callback.From.ID, "data": callback.Data}).
			Warn("callback without message context ignored")
		return
	}

	userID := callback.From.ID
	chatID := callback.Message.Chat.ID
	data := callback.Data

	// Acknowledge immediately so Telegram stops the button spinner.
	h.answerCallback(callback.ID)
	h.removeKeyboard(chatID, callback.Message.MessageID)

	switch {
	case strings.HasPrefix(data, callbackTopicPrefix):
		h.handleTopicChosen(ctx, userID, chatID, strings.TrimPrefix(data, callbackTopicPrefix))
	case data == callbackTopicsMenu:
		h.sendTopicMenu(ctx, userID, chatID)
	case data == callbackAdminSummary:
		h.handleAdminSummary(ctx, userID, chatID)
	case data == callbackAdminExcel:
		h.handleAdminExport(ctx, userID, chatID)
	default:
		h.log.WithFields(logrus.Fields{"user_id": userID, "data": data}).Warn("unknown callback")
	}
}

func (h *Handler) handleTopicChosen(ctx context.Context, userID, chatID int64, selector string) {
	view, err := h.quiz.PresentQuestion(ctx, userID, selector)
	switch {
	case errors.Is(err, domain.ErrNoQuestions):
		h.send(chatID, msgNoQuestions)
		return
	case errors.Is(err, domain.ErrInvalidSelection):
		h.send(chatID, msgInvalidSelection)
		return
	case err != nil:
		h.log.WithError(err).WithField("user_id", userID).Error("present failed")
		h.send(chatID, msgGenericFailure)
		return
	}
	h.send(chatID, formatQuestion(view))
}

func (h *Handler) handleAdminSummary(ctx context.Context, userID, chatID int64) {
	if err := h.stats.Authorize(userID); err != nil {
		h.send(chatID, msgUnauthorized)
		return
	}
	summary, err := h.stats.Summary(ctx)
	if err != nil {
		h.log.WithError(err).Error("summary failed")
		h.send(chatID, msgGenericFailure)
		return
	}
	h.send(chatID, formatSummary(summary))
}

func (h *Handler) handleAdminExport(ctx context.Context, userID, chatID int64) {
	if err := h.stats.Authorize(userID); err != nil {
		h.send(chatID, msgUnauthorized)
		return
	}
	h.send(chatID, msgPreparingReport)

	users, attempts, err := h.stats.ExportDatasets(ctx)
	if err != nil {
		h.log.WithError(err).Error("export datasets failed")
		h.send(chatID, msgGenericFailure)
		return
	}
	workbook, err := report.BuildWorkbook(users, attempts)
	if err != nil {
		h.log.WithError(err).Error("workbook build failed")
		h.send(chatID, msgGenericFailure)
		return
	}
	defer workbook.Close()

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		h.log.WithError(err).Error("workbook write failed")
		h.send(chatID, msgGenericFailure)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: report.FileName, Bytes: buf.Bytes()})
	doc.Caption = msgReportCaption
	if _, err := h.api.Send(doc); err != nil {
		h.log.WithError(err).Error("report delivery failed")
		h.send(chatID, msgGenericFailure)
	}
}

func (h *Handler) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	h.sendMessage(msg)
}

func (h *Handler) sendMessage(msg tgbotapi.MessageConfig) {
	if msg.ParseMode == "" {
		msg.ParseMode = tgbotapi.ModeHTML
	}
	if _, err := h.api.Send(msg); err != nil {
		h.log.WithError(err).Error("send failed")
	}
}

func (h *Handler) answerCallback(callbackID string) {
	if _, err := h.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		h.log.WithError(err).Warn("callback ack failed")
	}
}

// removeKeyboard strips the inline keyboard from a consumed menu so
// stale buttons cannot be pressed twice.
func (h *Handler) removeKeyboard(chatID int64, messageID int) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	if _, err := h.api.Request(edit); err != nil {
		h.log.WithError(err).Debug("keyboard removal failed")
	}
}

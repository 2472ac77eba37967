package telegram

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"quiz-tutor-bot/internal/app"
	"quiz-tutor-bot/internal/domain"
)

const (
	msgGreeting  = "Hi! I am your olympiad preparation assistant. 🏆\nUse /test to start a quiz."
	msgPickTopic = "Pick a topic for your quiz:"
	msgContinue  = "Ready to continue?"

	msgNoQuestions      = "There are no questions in this category yet."
	msgInvalidSelection = "That topic selection is no longer valid. Use /test to pick again."
	msgGenericFailure   = "Something went wrong, please try again."
	msgNoStatsYet       = "You have not answered any questions yet. Start with /test"
	msgUnknownCommand   = "Unknown command. Use /test to start a quiz or /stats to see your progress."

	msgUnauthorized    = "You do not have access to this command."
	msgAdminWelcome    = "Welcome to the admin panel!"
	msgPreparingReport = "Please wait, generating the report..."
	msgReportCaption   = "Detailed student performance report."

	btnRandomQuiz   = "🎲 Random quiz"
	btnNextQuestion = "➡️ Next question"
	btnOtherTopic   = "📋 Choose another topic"
	btnAdminSummary = "📊 Quick summary"
	btnAdminExcel   = "📄 Detailed report (Excel)"
)

// formatQuestion renders the presented question: topic header, question
// number, prompt, labeled options and the per-type instruction line.
func formatQuestion(view app.QuestionView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Topic: %s</b>\n\n", html.EscapeString(view.Topic))
	fmt.Fprintf(&b, "<b>Question %d:</b>\n%s\n", view.ID, html.EscapeString(view.Prompt))
	if len(view.Options) > 0 {
		b.WriteString("\n")
		for _, opt := range view.Options {
			fmt.Fprintf(&b, "<b>%s.</b> %s\n", strings.ToUpper(opt.Label), html.EscapeString(opt.Text))
		}
	}
	fmt.Fprintf(&b, "\n➡️ <i>%s</i>", view.Instruction)
	return b.String()
}

func formatFeedback(feedback app.Feedback) string {
	if feedback.Correct {
		return "✅ Absolutely right!"
	}
	return fmt.Sprintf("❌ Incorrect.\nThe correct answer is: <b>%s</b>\n\n<b>Explanation:</b> %s",
		html.EscapeString(strings.ToUpper(feedback.CanonicalAnswer)),
		html.EscapeString(feedback.Explanation))
}

func formatPersonal(stats domain.PersonalStats) string {
	return fmt.Sprintf(
		"📊 <b>Your statistics:</b>\n\nQuestions answered: %d\nCorrect answers: %d\nAccuracy: %.2f%%\n\nTopic with the most mistakes: <b>%s</b>\n\nKeep it up!",
		stats.TotalAnswered, stats.TotalCorrect, stats.AccuracyPercent, html.EscapeString(stats.WorstTopic))
}

func formatSummary(stats domain.SummaryStats) string {
	topics := "No data"
	if len(stats.TopErrorTopics) > 0 {
		var lines []string
		for _, te := range stats.TopErrorTopics {
			lines = append(lines, fmt.Sprintf("  - %s (%d mistakes)", html.EscapeString(te.Topic), te.Errors))
		}
		topics = strings.Join(lines, "\n")
	}
	return fmt.Sprintf(
		"📈 <b>Summary across all students:</b>\n\n👤 Students: <b>%d</b>\n📝 Answers: <b>%d</b>\n🎯 Average accuracy: <b>%.2f%%</b>\n\nHardest topics:\n%s",
		stats.TotalUsers, stats.TotalAttempts, stats.AccuracyPercent, topics)
}

// topicKeyboard renders the topic menu as a one-column inline keyboard;
// the random entry arrives last from the core.
func topicKeyboard(entries []app.MenuEntry) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(entries))
	for _, entry := range entries {
		title := entry.Title
		if entry.Selector == domain.RandomTopic {
			title = btnRandomQuiz
		}
		button := tgbotapi.NewInlineKeyboardButtonData(title, callbackTopicPrefix+entry.Selector)
		rows = append(rows, []tgbotapi.InlineKeyboardButton{button})
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func continueKeyboard(nextSelector string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(btnNextQuestion, callbackTopicPrefix+nextSelector),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(btnOtherTopic, callbackTopicsMenu),
		},
	)
}

func adminKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(btnAdminSummary, callbackAdminSummary),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(btnAdminExcel, callbackAdminExcel),
		},
	)
}

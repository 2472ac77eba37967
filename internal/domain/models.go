package domain

import (
	"encoding/json"
	"sort"
)

// QuestionKind classifies how a question expects to be answered.
type QuestionKind string

const (
	KindSingleChoice QuestionKind = "single_choice"
	KindTrueFalse    QuestionKind = "true_false"
	KindMultiChoice  QuestionKind = "multi_choice"
	KindOpen         QuestionKind = "open"
)

// RandomTopic is the selector sentinel for "any topic".
const RandomTopic = "random"

// UndeterminedTopic is reported when a user has no errors to rank.
const UndeterminedTopic = "undetermined"

// User is a chat identity, upserted on first interaction and never deleted.
type User struct {
	ID        int64
	Username  string
	FirstName string
}

// Option is one labeled answer choice of a question.
type Option struct {
	Label string
	Text  string
}

// Question is an immutable question-bank entry.
type Question struct {
	ID            int64
	Topic         string
	SubTopic      string
	Kind          QuestionKind
	Author        string
	Source        string
	Prompt        string
	Options       []Option
	CorrectAnswer string
	Explanation   string
}

// Session is the transient per-user record of an outstanding question.
// It exists only between presentation and grading (or cancellation).
type Session struct {
	QuestionID    int64
	CorrectAnswer string
	Topic         string
	Explanation   string
}

// Attempt is one graded submission, append-only.
type Attempt struct {
	ID         int64
	UserID     int64
	QuestionID int64
	Correct    bool
	Topic      string
}

// TopicErrors counts incorrect attempts for one topic.
type TopicErrors struct {
	Topic  string
	Errors int64
}

// SummaryStats is the administrator-facing aggregate view.
type SummaryStats struct {
	TotalUsers      int64
	TotalAttempts   int64
	AccuracyPercent float64
	TopErrorTopics  []TopicErrors
}

// PersonalStats is one user's accumulated performance.
type PersonalStats struct {
	TotalAnswered   int64
	TotalCorrect    int64
	AccuracyPercent float64
	WorstTopic      string
}

// UserAggregate is one export row of the per-user summary sheet.
type UserAggregate struct {
	UserID          int64
	FirstName       string
	Username        string
	TotalAnswers    int64
	CorrectAnswers  int64
	AccuracyPercent float64
}

// AttemptRow is one export row of the all-attempts sheet, with the
// user's display name joined in.
type AttemptRow struct {
	ID         int64
	UserID     int64
	FirstName  string
	QuestionID int64
	Topic      string
	Correct    bool
}

// DecodeOptions parses the stored option mapping (label -> text). The
// JSON object carries no order, so options come back sorted by label;
// labels in the bank are single letters, which restores authored order.
// An empty or absent mapping is valid for open-ended questions.
func DecodeOptions(raw string) ([]Option, error) {
	if raw == "" {
		return nil, nil
	}
	byLabel := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &byLabel); err != nil {
		return nil, err
	}
	options := make([]Option, 0, len(byLabel))
	for label, text := range byLabel {
		options = append(options, Option{Label: label, Text: text})
	}
	sort.Slice(options, func(i, j int) bool { return options[i].Label < options[j].Label })
	return options, nil
}

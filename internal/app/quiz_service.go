package app

import (
	"context"
	"fmt"
	"strconv"

	"quiz-tutor-bot/internal/domain"
)

// SessionStore abstracts how per-user sessions are kept (in-memory, Redis-backed).
// TakeAndClear must read and remove the session as one atomic step per user
// key; it is the correctness boundary against duplicate submissions.
type SessionStore interface {
	Put(userID int64, session domain.Session)
	TakeAndClear(userID int64) (domain.Session, bool)
	Clear(userID int64)
}

// QuestionBank serves read-only question content.
type QuestionBank interface {
	// ListTopics returns distinct topic names, lexicographically sorted.
	ListTopics(ctx context.Context) ([]string, error)
	// FetchRandom picks one question uniformly at random. An empty topic or
	// the "random" sentinel selects from the whole bank. Returns
	// domain.ErrNoQuestions when nothing matches.
	FetchRandom(ctx context.Context, topic string) (domain.Question, error)
}

// ResponseLog records graded attempts and answers aggregate queries over them.
type ResponseLog interface {
	UpsertUser(ctx context.Context, user domain.User) error
	LogAttempt(ctx context.Context, attempt domain.Attempt) error
	Summary(ctx context.Context) (domain.SummaryStats, error)
	// Personal returns domain.ErrNoAttempts for users with no history.
	Personal(ctx context.Context, userID int64) (domain.PersonalStats, error)
	UserAggregates(ctx context.Context) ([]domain.UserAggregate, error)
	AttemptRows(ctx context.Context) ([]domain.AttemptRow, error)
}

// MenuEntry is one row of the topic selection menu. The selector is the
// opaque value the gateway sends back on selection (a positional index
// or the "random" sentinel).
type MenuEntry struct {
	Selector string
	Title    string
}

// QuestionView is a presented question with markup already stripped,
// ready for the gateway to render.
type QuestionView struct {
	ID          int64
	Topic       string
	Prompt      string
	Options     []domain.Option
	Instruction string
}

// Feedback is the grading outcome for one submission. NextSelector is
// the selector for "next question in the same topic", resolved against
// the current topic list.
type Feedback struct {
	Correct         bool
	CanonicalAnswer string
	Explanation     string
	Topic           string
	NextSelector    string
}

// NoExplanation is rendered when a question carries no explanation text.
const NoExplanation = "No explanation available."

const (
	instructionLetter  = "Send the letter of the correct answer."
	instructionLetters = "Send all the correct letters concatenated (for example, abc)."
	instructionOpen    = "Send your answer as text or a number."
)

// QuizService drives the per-user interaction protocol: topic selection,
// question presentation, answer grading and continuation. Each user is
// either idle (no session stored) or awaiting an answer (session stored).
type QuizService struct {
	sessions SessionStore
	bank     QuestionBank
	log      ResponseLog
}

func NewQuizService(sessions SessionStore, bank QuestionBank, log ResponseLog) *QuizService {
	return &QuizService{sessions: sessions, bank: bank, log: log}
}

// Start registers the user (idempotent) and discards any pending question.
func (s *QuizService) Start(ctx context.Context, user domain.User) error {
	s.sessions.Clear(user.ID)
	if err := s.log.UpsertUser(ctx, user); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// TopicMenu discards any pending question and returns the topic menu:
// one entry per topic, indexed positionally, plus the random entry.
func (s *QuizService) TopicMenu(ctx context.Context, userID int64) ([]MenuEntry, error) {
	s.sessions.Clear(userID)
	topics, err := s.bank.ListTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	entries := make([]MenuEntry, 0, len(topics)+1)
	for i, topic := range topics {
		entries = append(entries, MenuEntry{Selector: strconv.Itoa(i), Title: topic})
	}
	entries = append(entries, MenuEntry{Selector: domain.RandomTopic, Title: "Random quiz"})
	return entries, nil
}

// PresentQuestion runs the present transition: it resolves the selector
// against a fresh topic list, fetches a random question, stores the
// session and returns the view to render. A pending session is discarded
// first, ungraded and unlogged; picking a topic is a cancellation, not a
// submission. The topic list may have drifted since the menu was
// rendered, so an out-of-range index yields domain.ErrInvalidSelection.
func (s *QuizService) PresentQuestion(ctx context.Context, userID int64, selector string) (QuestionView, error) {
	s.sessions.Clear(userID)

	topic, err := s.resolveSelector(ctx, selector)
	if err != nil {
		return QuestionView{}, err
	}

	question, err := s.bank.FetchRandom(ctx, topic)
	if err != nil {
		// Covers domain.ErrNoQuestions; either way no session is left behind.
		return QuestionView{}, err
	}

	s.sessions.Put(userID, domain.Session{
		QuestionID:    question.ID,
		CorrectAnswer: question.CorrectAnswer,
		Topic:         question.Topic,
		Explanation:   question.Explanation,
	})
	return newQuestionView(question), nil
}

// SubmitAnswer runs the submit transition. The session is captured and
// cleared before anything else happens, so a rapid duplicate submission
// finds no session and grades nothing. Exactly one attempt is logged per
// presented question; the user ends up idle regardless of correctness
// and even if logging fails.
func (s *QuizService) SubmitAnswer(ctx context.Context, userID int64, text string) (Feedback, error) {
	session, ok := s.sessions.TakeAndClear(userID)
	if !ok {
		return Feedback{}, domain.ErrNoActiveSession
	}

	correct := domain.Grade(text, session.CorrectAnswer)

	err := s.log.LogAttempt(ctx, domain.Attempt{
		UserID:     userID,
		QuestionID: session.QuestionID,
		Correct:    correct,
		Topic:      session.Topic,
	})
	if err != nil {
		return Feedback{}, fmt.Errorf("log attempt: %w", err)
	}

	explanation := domain.StripMarkup(session.Explanation)
	if explanation == "" {
		explanation = NoExplanation
	}
	return Feedback{
		Correct:         correct,
		CanonicalAnswer: session.CorrectAnswer,
		Explanation:     explanation,
		Topic:           session.Topic,
		NextSelector:    s.continueSelector(ctx, session.Topic),
	}, nil
}

// Personal returns the user's statistics (domain.ErrNoAttempts when empty).
func (s *QuizService) Personal(ctx context.Context, userID int64) (domain.PersonalStats, error) {
	return s.log.Personal(ctx, userID)
}

func (s *QuizService) resolveSelector(ctx context.Context, selector string) (string, error) {
	if selector == domain.RandomTopic || selector == "" {
		return "", nil
	}
	index, err := strconv.Atoi(selector)
	if err != nil {
		return "", domain.ErrInvalidSelection
	}
	topics, err := s.bank.ListTopics(ctx)
	if err != nil {
		return "", fmt.Errorf("list topics: %w", err)
	}
	if index < 0 || index >= len(topics) {
		return "", domain.ErrInvalidSelection
	}
	return topics[index], nil
}

// continueSelector finds the current index of a topic so the "next
// question" button stays on it. If the topic vanished from the list in
// the meantime, fall back to a random question.
func (s *QuizService) continueSelector(ctx context.Context, topic string) string {
	topics, err := s.bank.ListTopics(ctx)
	if err != nil {
		return domain.RandomTopic
	}
	for i, t := range topics {
		if t == topic {
			return strconv.Itoa(i)
		}
	}
	return domain.RandomTopic
}

func newQuestionView(q domain.Question) QuestionView {
	options := make([]domain.Option, len(q.Options))
	for i, opt := range q.Options {
		options[i] = domain.Option{Label: opt.Label, Text: domain.StripMarkup(opt.Text)}
	}
	return QuestionView{
		ID:          q.ID,
		Topic:       q.Topic,
		Prompt:      domain.StripMarkup(q.Prompt),
		Options:     options,
		Instruction: instructionFor(q.Kind),
	}
}

func instructionFor(kind domain.QuestionKind) string {
	switch kind {
	case domain.KindSingleChoice, domain.KindTrueFalse:
		return instructionLetter
	case domain.KindMultiChoice:
		return instructionLetters
	default:
		return instructionOpen
	}
}

package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-tutor-bot/internal/domain"
)

// ResponseLog is an in-memory implementation of app.ResponseLog. It
// mirrors the SQL store's aggregation semantics so services can be
// exercised without a database.
type ResponseLog struct {
	mu       sync.Mutex
	users    map[int64]domain.User
	order    []int64 // user insertion order, for stable export of zero-attempt users
	attempts []domain.Attempt
	nextID   int64
}

func NewResponseLog() *ResponseLog {
	return &ResponseLog{users: make(map[int64]domain.User), nextID: 1}
}

// UpsertUser registers the user once; later calls are ignored, matching
// the store's insert-or-ignore behavior.
func (l *ResponseLog) UpsertUser(_ context.Context, user domain.User) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.users[user.ID]; !ok {
		l.users[user.ID] = user
		l.order = append(l.order, user.ID)
	}
	return nil
}

// LogAttempt appends one graded attempt.
func (l *ResponseLog) LogAttempt(_ context.Context, attempt domain.Attempt) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	attempt.ID = l.nextID
	l.nextID++
	l.attempts = append(l.attempts, attempt)
	return nil
}

// Attempts returns a copy of the log, for tests.
func (l *ResponseLog) Attempts() []domain.Attempt {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Attempt, len(l.attempts))
	copy(out, l.attempts)
	return out
}

func (l *ResponseLog) Summary(_ context.Context) (domain.SummaryStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := domain.SummaryStats{
		TotalUsers:    int64(len(l.users)),
		TotalAttempts: int64(len(l.attempts)),
	}
	var correct int64
	errorsByTopic := make(map[string]int64)
	for _, a := range l.attempts {
		if a.Correct {
			correct++
		} else {
			errorsByTopic[a.Topic]++
		}
	}
	if stats.TotalAttempts > 0 {
		stats.AccuracyPercent = 100 * float64(correct) / float64(stats.TotalAttempts)
	}
	stats.TopErrorTopics = topTopicErrors(errorsByTopic, 3)
	return stats, nil
}

func (l *ResponseLog) Personal(_ context.Context, userID int64) (domain.PersonalStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var stats domain.PersonalStats
	errorsByTopic := make(map[string]int64)
	for _, a := range l.attempts {
		if a.UserID != userID {
			continue
		}
		stats.TotalAnswered++
		if a.Correct {
			stats.TotalCorrect++
		} else {
			errorsByTopic[a.Topic]++
		}
	}
	if stats.TotalAnswered == 0 {
		return domain.PersonalStats{}, domain.ErrNoAttempts
	}
	stats.AccuracyPercent = 100 * float64(stats.TotalCorrect) / float64(stats.TotalAnswered)

	stats.WorstTopic = domain.UndeterminedTopic
	if ranked := topTopicErrors(errorsByTopic, 1); len(ranked) > 0 {
		stats.WorstTopic = ranked[0].Topic
	}
	return stats, nil
}

func (l *ResponseLog) UserAggregates(_ context.Context) ([]domain.UserAggregate, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	byUser := make(map[int64]*domain.UserAggregate, len(l.users))
	rows := make([]*domain.UserAggregate, 0, len(l.users))
	for _, id := range l.order {
		u := l.users[id]
		row := &domain.UserAggregate{UserID: u.ID, FirstName: u.FirstName, Username: u.Username}
		byUser[id] = row
		rows = append(rows, row)
	}
	for _, a := range l.attempts {
		row, ok := byUser[a.UserID]
		if !ok {
			continue
		}
		row.TotalAnswers++
		if a.Correct {
			row.CorrectAnswers++
		}
	}
	for _, row := range rows {
		if row.TotalAnswers > 0 {
			row.AccuracyPercent = 100 * float64(row.CorrectAnswers) / float64(row.TotalAnswers)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].AccuracyPercent > rows[j].AccuracyPercent
	})

	out := make([]domain.UserAggregate, len(rows))
	for i, row := range rows {
		out[i] = *row
	}
	return out, nil
}

func (l *ResponseLog) AttemptRows(_ context.Context) ([]domain.AttemptRow, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows := make([]domain.AttemptRow, 0, len(l.attempts))
	for _, a := range l.attempts {
		rows = append(rows, domain.AttemptRow{
			ID:         a.ID,
			UserID:     a.UserID,
			FirstName:  l.users[a.UserID].FirstName,
			QuestionID: a.QuestionID,
			Topic:      a.Topic,
			Correct:    a.Correct,
		})
	}
	// attempts are appended in id order already
	return rows, nil
}

// topTopicErrors ranks topics by error count descending, ties broken by
// topic name so the ordering is deterministic.
func topTopicErrors(errorsByTopic map[string]int64, limit int) []domain.TopicErrors {
	ranked := make([]domain.TopicErrors, 0, len(errorsByTopic))
	for topic, errs := range errorsByTopic {
		ranked = append(ranked, domain.TopicErrors{Topic: topic, Errors: errs})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Errors != ranked[j].Errors {
			return ranked[i].Errors > ranked[j].Errors
		}
		return ranked[i].Topic < ranked[j].Topic
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

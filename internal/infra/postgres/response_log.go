package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"quiz-tutor-bot/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	UserID    int64  `bun:"user_id,pk"`
	Username  string `bun:"username"`
	FirstName string `bun:"first_name"`
}

type answerRow struct {
	bun.BaseModel `bun:"table:user_answers"`

	ID         int64  `bun:"id,pk,autoincrement"`
	UserID     int64  `bun:"user_id"`
	QuestionID int64  `bun:"question_id"`
	IsCorrect  int    `bun:"is_correct"`
	Topic      string `bun:"topic"`
}

// ResponseLog persists users and graded attempts and serves the
// aggregate queries behind the statistics reporter.
type ResponseLog struct {
	db *bun.DB
}

func NewResponseLog(db *bun.DB) *ResponseLog {
	return &ResponseLog{db: db}
}

// UpsertUser registers the user on first contact; repeats are no-ops.
func (l *ResponseLog) UpsertUser(ctx context.Context, user domain.User) error {
	row := userRow{UserID: user.ID, Username: user.Username, FirstName: user.FirstName}
	_, err := l.db.NewInsert().
		Model(&row).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// LogAttempt appends one attempt row.
func (l *ResponseLog) LogAttempt(ctx context.Context, attempt domain.Attempt) error {
	row := answerRow{
		UserID:     attempt.UserID,
		QuestionID: attempt.QuestionID,
		Topic:      attempt.Topic,
	}
	if attempt.Correct {
		row.IsCorrect = 1
	}
	if _, err := l.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (l *ResponseLog) Summary(ctx context.Context) (domain.SummaryStats, error) {
	var stats domain.SummaryStats

	if err := l.db.NewRaw(`SELECT COUNT(*) FROM users`).Scan(ctx, &stats.TotalUsers); err != nil {
		return stats, fmt.Errorf("count users: %w", err)
	}

	var correct int64
	err := l.db.NewRaw(`SELECT COUNT(*), COALESCE(SUM(is_correct), 0) FROM user_answers`).
		Scan(ctx, &stats.TotalAttempts, &correct)
	if err != nil {
		return stats, fmt.Errorf("count attempts: %w", err)
	}
	if stats.TotalAttempts > 0 {
		stats.AccuracyPercent = 100 * float64(correct) / float64(stats.TotalAttempts)
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT topic, SUM(1 - is_correct) AS errors
		FROM user_answers
		GROUP BY topic
		HAVING SUM(1 - is_correct) > 0
		ORDER BY errors DESC, topic ASC
		LIMIT 3`)
	if err != nil {
		return stats, fmt.Errorf("top error topics: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var te domain.TopicErrors
		if err := rows.Scan(&te.Topic, &te.Errors); err != nil {
			return stats, fmt.Errorf("scan error topic: %w", err)
		}
		stats.TopErrorTopics = append(stats.TopErrorTopics, te)
	}
	return stats, rows.Err()
}

func (l *ResponseLog) Personal(ctx context.Context, userID int64) (domain.PersonalStats, error) {
	var stats domain.PersonalStats

	err := l.db.NewRaw(`SELECT COUNT(*), COALESCE(SUM(is_correct), 0) FROM user_answers WHERE user_id = ?`, userID).
		Scan(ctx, &stats.TotalAnswered, &stats.TotalCorrect)
	if err != nil {
		return stats, fmt.Errorf("personal totals: %w", err)
	}
	if stats.TotalAnswered == 0 {
		return domain.PersonalStats{}, domain.ErrNoAttempts
	}
	stats.AccuracyPercent = 100 * float64(stats.TotalCorrect) / float64(stats.TotalAnswered)

	stats.WorstTopic = domain.UndeterminedTopic
	var worst domain.TopicErrors
	err = l.db.NewRaw(`
		SELECT topic, SUM(1 - is_correct) AS errors
		FROM user_answers
		WHERE user_id = ?
		GROUP BY topic
		HAVING SUM(1 - is_correct) > 0
		ORDER BY errors DESC, topic ASC
		LIMIT 1`, userID).Scan(ctx, &worst.Topic, &worst.Errors)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Every answer correct, nothing to rank.
	case err != nil:
		return domain.PersonalStats{}, fmt.Errorf("worst topic: %w", err)
	default:
		stats.WorstTopic = worst.Topic
	}
	return stats, nil
}

func (l *ResponseLog) UserAggregates(ctx context.Context) ([]domain.UserAggregate, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT u.user_id, u.first_name, u.username,
			COUNT(ua.id) AS total_answers,
			COALESCE(SUM(ua.is_correct), 0) AS correct_answers,
			COALESCE(SUM(ua.is_correct)::float / NULLIF(COUNT(ua.id), 0) * 100, 0) AS accuracy
		FROM users u
		LEFT JOIN user_answers ua ON u.user_id = ua.user_id
		GROUP BY u.user_id, u.first_name, u.username
		ORDER BY accuracy DESC, u.user_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("user aggregates: %w", err)
	}
	defer rows.Close()

	var out []domain.UserAggregate
	for rows.Next() {
		var row domain.UserAggregate
		if err := rows.Scan(&row.UserID, &row.FirstName, &row.Username, &row.TotalAnswers, &row.CorrectAnswers, &row.AccuracyPercent); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (l *ResponseLog) AttemptRows(ctx context.Context) ([]domain.AttemptRow, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT ua.id, ua.user_id, u.first_name, ua.question_id, ua.topic, ua.is_correct
		FROM user_answers ua
		JOIN users u ON ua.user_id = u.user_id
		ORDER BY ua.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("attempt rows: %w", err)
	}
	defer rows.Close()

	var out []domain.AttemptRow
	for rows.Next() {
		var (
			row       domain.AttemptRow
			isCorrect int
		)
		if err := rows.Scan(&row.ID, &row.UserID, &row.FirstName, &row.QuestionID, &row.Topic, &isCorrect); err != nil {
			return nil, fmt.Errorf("scan attempt row: %w", err)
		}
		row.Correct = isCorrect == 1
		out = append(out, row)
	}
	return out, rows.Err()
}

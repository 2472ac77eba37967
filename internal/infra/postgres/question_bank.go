package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-tutor-bot/internal/domain"
)

// QuestionBank reads question content from the tasks table.
type QuestionBank struct {
	pool *pgxpool.Pool
}

func NewQuestionBank(pool *pgxpool.Pool) *QuestionBank {
	return &QuestionBank{pool: pool}
}

// ListTopics returns distinct topics; the ORDER BY keeps menu rendering
// and index resolution on the same stable ordering.
func (b *QuestionBank) ListTopics(ctx context.Context) ([]string, error) {
	rows, err := b.pool.Query(ctx, `SELECT DISTINCT topic FROM tasks ORDER BY topic`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

const questionColumns = `id, topic, COALESCE(sub_topic, ''), question_type, COALESCE(author, ''), COALESCE(source, ''),
	question_text, options_json, correct_answer, COALESCE(explanation, '')`

// FetchRandom picks one row uniformly at random, optionally filtered by
// topic. No matching row maps to domain.ErrNoQuestions.
func (b *QuestionBank) FetchRandom(ctx context.Context, topic string) (domain.Question, error) {
	var row pgx.Row
	if topic == "" || topic == domain.RandomTopic {
		row = b.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM tasks ORDER BY random() LIMIT 1`)
	} else {
		row = b.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM tasks WHERE topic = $1 ORDER BY random() LIMIT 1`, topic)
	}

	var (
		q           domain.Question
		kind        string
		optionsJSON string
	)
	err := row.Scan(&q.ID, &q.Topic, &q.SubTopic, &kind, &q.Author, &q.Source, &q.Prompt, &optionsJSON, &q.CorrectAnswer, &q.Explanation)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrNoQuestions
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("fetch question: %w", err)
	}
	q.Kind = domain.QuestionKind(kind)
	q.Options, err = domain.DecodeOptions(optionsJSON)
	if err != nil {
		return domain.Question{}, fmt.Errorf("decode options for task %d: %w", q.ID, err)
	}
	return q, nil
}

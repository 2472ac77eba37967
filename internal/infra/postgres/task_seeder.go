package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"
)

type taskRow struct {
	bun.BaseModel `bun:"table:tasks"`

	ID            int64  `bun:"id,pk"`
	Topic         string `bun:"topic"`
	SubTopic      string `bun:"sub_topic"`
	QuestionType  string `bun:"question_type"`
	Author        string `bun:"author"`
	Source        string `bun:"source"`
	QuestionText  string `bun:"question_text"`
	OptionsJSON   string `bun:"options_json"`
	CorrectAnswer string `bun:"correct_answer"`
	Explanation   string `bun:"explanation"`
}

// TaskRecord is one question-bank entry as authored in the seed file.
type TaskRecord struct {
	ID            int64             `json:"id"`
	Topic         string            `json:"topic"`
	SubTopic      string            `json:"sub_topic"`
	QuestionType  string            `json:"question_type"`
	Author        string            `json:"author"`
	Source        string            `json:"source"`
	QuestionText  string            `json:"question_text"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
}

// SeedTasks bulk-loads bank entries into the tasks table. Existing ids
// are skipped, so re-running a seed file is safe. Content is stored as
// authored; the bank is not validated at ingestion time.
func SeedTasks(ctx context.Context, db *bun.DB, records []TaskRecord) (int, error) {
	inserted := 0
	for _, record := range records {
		optionsJSON, err := json.Marshal(record.Options)
		if err != nil {
			return inserted, fmt.Errorf("encode options for task %d: %w", record.ID, err)
		}
		row := taskRow{
			ID:            record.ID,
			Topic:         record.Topic,
			SubTopic:      record.SubTopic,
			QuestionType:  record.QuestionType,
			Author:        record.Author,
			Source:        record.Source,
			QuestionText:  record.QuestionText,
			OptionsJSON:   string(optionsJSON),
			CorrectAnswer: record.CorrectAnswer,
			Explanation:   record.Explanation,
		}
		res, err := db.NewInsert().Model(&row).On("CONFLICT (id) DO NOTHING").Exec(ctx)
		if err != nil {
			return inserted, fmt.Errorf("insert task %d: %w", record.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	return inserted, nil
}

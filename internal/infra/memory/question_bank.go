package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"quiz-tutor-bot/internal/domain"
)

// QuestionBank is an in-memory implementation of app.QuestionBank,
// used when no database is configured and throughout the tests.
type QuestionBank struct {
	questions []domain.Question

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionBank(questions []domain.Question) *QuestionBank {
	return &QuestionBank{
		questions: questions,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ListTopics returns the distinct topics, sorted.
func (b *QuestionBank) ListTopics(_ context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	topics := make([]string, 0)
	for _, q := range b.questions {
		if _, ok := seen[q.Topic]; ok {
			continue
		}
		seen[q.Topic] = struct{}{}
		topics = append(topics, q.Topic)
	}
	sort.Strings(topics)
	return topics, nil
}

// FetchRandom picks uniformly from the bank, or from one topic when the
// filter is set. The empty string and the "random" sentinel both mean
// the whole bank.
func (b *QuestionBank) FetchRandom(_ context.Context, topic string) (domain.Question, error) {
	candidates := b.questions
	if topic != "" && topic != domain.RandomTopic {
		candidates = nil
		for _, q := range b.questions {
			if q.Topic == topic {
				candidates = append(candidates, q)
			}
		}
	}
	if len(candidates) == 0 {
		return domain.Question{}, domain.ErrNoQuestions
	}

	b.mu.Lock()
	i := b.rnd.Intn(len(candidates))
	b.mu.Unlock()
	return candidates[i], nil
}

package memory

import (
	"context"
	"errors"
	"testing"

	"quiz-tutor-bot/internal/domain"
)

func testQuestions() []domain.Question {
	return []domain.Question{
		{ID: 1, Topic: "Geometry", Kind: domain.KindSingleChoice, CorrectAnswer: "a"},
		{ID: 2, Topic: "Algebra", Kind: domain.KindSingleChoice, CorrectAnswer: "b"},
		{ID: 3, Topic: "Algebra", Kind: domain.KindMultiChoice, CorrectAnswer: "bd"},
	}
}

func TestListTopicsSortedDistinct(t *testing.T) {
	bank := NewQuestionBank(testQuestions())
	topics, err := bank.ListTopics(context.Background())
	if err != nil {
		t.Fatalf("list topics: %v", err)
	}
	if len(topics) != 2 || topics[0] != "Algebra" || topics[1] != "Geometry" {
		t.Fatalf("expected sorted distinct topics, got %v", topics)
	}
}

func TestFetchRandomFiltersByTopic(t *testing.T) {
	bank := NewQuestionBank(testQuestions())
	for i := 0; i < 10; i++ {
		q, err := bank.FetchRandom(context.Background(), "Algebra")
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if q.Topic != "Algebra" {
			t.Fatalf("expected Algebra question, got %+v", q)
		}
	}
}

func TestFetchRandomSentinelSpansBank(t *testing.T) {
	bank := NewQuestionBank(testQuestions())
	if _, err := bank.FetchRandom(context.Background(), domain.RandomTopic); err != nil {
		t.Fatalf("fetch random: %v", err)
	}
	if _, err := bank.FetchRandom(context.Background(), ""); err != nil {
		t.Fatalf("fetch with empty filter: %v", err)
	}
}

func TestFetchRandomUnknownTopic(t *testing.T) {
	bank := NewQuestionBank(testQuestions())
	_, err := bank.FetchRandom(context.Background(), "NoSuchTopic")
	if !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

package report

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"quiz-tutor-bot/internal/domain"
)

func TestBuildWorkbook(t *testing.T) {
	users := []domain.UserAggregate{
		{UserID: 2, FirstName: "Bob", Username: "bob", TotalAnswers: 1, CorrectAnswers: 1, AccuracyPercent: 100},
		{UserID: 1, FirstName: "Alice", Username: "alice", TotalAnswers: 3, CorrectAnswers: 1, AccuracyPercent: 33.333333},
	}
	attempts := []domain.AttemptRow{
		{ID: 1, UserID: 1, FirstName: "Alice", QuestionID: 10, Topic: "Algebra", Correct: true},
		{ID: 2, UserID: 2, FirstName: "Bob", QuestionID: 11, Topic: "Geometry", Correct: false},
	}

	f, err := BuildWorkbook(users, attempts)
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reread, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer reread.Close()

	sheets := reread.GetSheetList()
	if len(sheets) != 2 || sheets[0] != SheetStudentSummary || sheets[1] != SheetAllAttempts {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	name, err := reread.GetCellValue(SheetStudentSummary, "B2")
	if err != nil || name != "Bob" {
		t.Fatalf("expected Bob in first data row, got %q err %v", name, err)
	}
	accuracy, err := reread.GetCellValue(SheetStudentSummary, "F3")
	if err != nil || accuracy != "33.33" {
		t.Fatalf("expected rounded accuracy 33.33, got %q err %v", accuracy, err)
	}
	topic, err := reread.GetCellValue(SheetAllAttempts, "E3")
	if err != nil || topic != "Geometry" {
		t.Fatalf("expected Geometry in second attempt row, got %q err %v", topic, err)
	}
	correct, err := reread.GetCellValue(SheetAllAttempts, "F2")
	if err != nil || correct != "1" {
		t.Fatalf("expected is_correct 1, got %q err %v", correct, err)
	}
}

func TestBuildWorkbookEmptyDatasets(t *testing.T) {
	f, err := BuildWorkbook(nil, nil)
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteToBuffer(); err != nil {
		t.Fatalf("empty report must still render: %v", err)
	}
}

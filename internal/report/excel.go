// Package report renders the administrator spreadsheet from the export
// datasets: one sheet per student with aggregate accuracy and one sheet
// listing every graded attempt.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"quiz-tutor-bot/internal/domain"
)

const (
	SheetStudentSummary = "Student Summary"
	SheetAllAttempts    = "All Attempts"

	// FileName is the attachment name the report is delivered under.
	FileName = "student_stats_report.xlsx"
)

// BuildWorkbook assembles the two-sheet report. The caller owns the
// returned file and should close it after writing it out.
func BuildWorkbook(users []domain.UserAggregate, attempts []domain.AttemptRow) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetStudentSummary); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetAllAttempts); err != nil {
		return nil, fmt.Errorf("create attempts sheet: %w", err)
	}

	summaryHeader := []interface{}{"User ID", "First Name", "Username", "Total Answers", "Correct Answers", "Accuracy %"}
	if err := f.SetSheetRow(SheetStudentSummary, "A1", &summaryHeader); err != nil {
		return nil, err
	}
	for i, u := range users {
		row := []interface{}{u.UserID, u.FirstName, u.Username, u.TotalAnswers, u.CorrectAnswers, round2(u.AccuracyPercent)}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetStudentSummary, cell, &row); err != nil {
			return nil, fmt.Errorf("summary row %d: %w", i, err)
		}
	}

	attemptsHeader := []interface{}{"ID", "User ID", "First Name", "Question ID", "Topic", "Is Correct"}
	if err := f.SetSheetRow(SheetAllAttempts, "A1", &attemptsHeader); err != nil {
		return nil, err
	}
	for i, a := range attempts {
		correct := 0
		if a.Correct {
			correct = 1
		}
		row := []interface{}{a.ID, a.UserID, a.FirstName, a.QuestionID, a.Topic, correct}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetAllAttempts, cell, &row); err != nil {
			return nil, fmt.Errorf("attempt row %d: %w", i, err)
		}
	}

	return f, nil
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// Package export writes staged questions to a spreadsheet for reviewers who
// work outside the web UI.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
)

const sheetName = "Questions"

var headers = []any{
	"Source File", "Q#", "Topic", "Tier", "Title", "Content", "Answer",
	"Answer Type", "Accepted Answers", "Hints", "Solution", "Heuristic",
	"Confidence", "Status", "Reasoning",
}

type SheetWriter struct{}

func NewSheetWriter() *SheetWriter { return &SheetWriter{} }

func (w *SheetWriter) Write(path string, rows []domain.StagedQuestion) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("remove default sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	for i, row := range rows {
		c := row.Candidate
		cells := []any{
			row.SourceFile,
			row.SourceQuestionNum,
			string(c.Topic),
			c.Tier,
			c.Title,
			c.Content,
			c.Answer,
			string(c.AnswerType),
			strings.Join(c.AcceptedAnswers, "; "),
			strings.Join(c.Hints, "; "),
			c.Solution,
			c.Heuristic,
			c.Confidence,
			string(row.Status),
			c.Reasoning,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save review sheet: %w", err)
	}
	return nil
}

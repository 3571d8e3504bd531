package app

import (
	"context"

	"sheet_image_gen/internal/notifications"
	"sheet_image_gen/internal/sheets"
)

// PromptSheet is the spreadsheet side of a run.
type PromptSheet interface {
	ReadPromptRows(ctx context.Context) ([]sheets.PromptRow, error)
	WriteResultURL(ctx context.Context, row int, url string) error
}

// ImageGenerator turns a prompt into an image URL.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RunState is everything one run accumulates. URLs holds exactly one entry per
// processed row, in row order; an empty entry means no image for that row.
type RunState struct {
	Rows    []sheets.PromptRow
	URLs    []string
	Summary notifications.RunSummary
}

func (s *RunState) add(url string) {
	s.URLs = append(s.URLs, url)
}

package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// PromptRow is one data row of the prompt sheet.
type PromptRow struct {
	Row         int
	Prompt      string
	ExistingURL string
}

// Sheet binds a Client to the prompt sheet layout.
type Sheet struct {
	client *Client
	cfg    Config
}

func NewSheet(client *Client, cfg Config) *Sheet {
	return &Sheet{client: client, cfg: cfg}
}

// ReadPromptRows reads the prompt and result columns and combines them positionally.
func (s *Sheet) ReadPromptRows(ctx context.Context) ([]PromptRow, error) {
	log.Debug().
		Str("prompt_range", s.cfg.PromptRange()).
		Str("result_range", s.cfg.ResultRange()).
		Msg("Reading prompt rows")

	columns, err := s.client.ReadColumns(ctx, s.cfg.SpreadsheetID, s.cfg.PromptRange(), s.cfg.ResultRange())
	if err != nil {
		return nil, err
	}

	rows := BuildPromptRows(columns[0], columns[1], s.cfg.StartRow)
	log.Debug().Int("rows", len(rows)).Msg("Retrieved prompt rows")
	return rows, nil
}

// WriteResultURL stores url in the result column of row.
func (s *Sheet) WriteResultURL(ctx context.Context, row int, url string) error {
	cell := s.cfg.ResultCell(row)
	log.Debug().Int("row", row).Str("cell", cell).Str("url", url).Msg("Writing result URL")

	if err := s.client.UpdateRange(ctx, s.cfg.SpreadsheetID, cell, [][]interface{}{{url}}); err != nil {
		return fmt.Errorf("write %s: %w", cell, err)
	}
	return nil
}

// BuildPromptRows zips the two columns by index. The shorter column is padded with
// empty strings and row numbers start at startRow.
func BuildPromptRows(prompts, urls []interface{}, startRow int) []PromptRow {
	n := max(len(prompts), len(urls))
	rows := make([]PromptRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, PromptRow{
			Row:         startRow + i,
			Prompt:      extractStringField(prompts, i),
			ExistingURL: extractStringField(urls, i),
		})
	}
	return rows
}

// extractStringField safely extracts a trimmed string at the given index
func extractStringField(values []interface{}, index int) string {
	if len(values) > index && values[index] != nil {
		return strings.TrimSpace(fmt.Sprintf("%v", values[index]))
	}
	return ""
}

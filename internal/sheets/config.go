package sheets

import (
	"fmt"
	"strings"
)

// Config describes the fixed column layout of the prompt sheet.
type Config struct {
	SpreadsheetID string
	Tab           string
	PromptColumn  string
	ResultColumn  string
	StartRow      int
}

// PromptRange returns the open-ended A1 range of the prompt column, e.g. RECIPES!K2:K.
func (c Config) PromptRange() string {
	return columnRange(c.Tab, c.PromptColumn, c.StartRow)
}

// ResultRange returns the open-ended A1 range of the result column, e.g. RECIPES!D2:D.
func (c Config) ResultRange() string {
	return columnRange(c.Tab, c.ResultColumn, c.StartRow)
}

// ResultCell returns the A1 reference of the result cell for row, e.g. RECIPES!D7.
func (c Config) ResultCell(row int) string {
	return fmt.Sprintf("%s!%s%d", c.Tab, strings.ToUpper(c.ResultColumn), row)
}

// URL is the browser address of the spreadsheet.
func (c Config) URL() string {
	return "https://docs.google.com/spreadsheets/d/" + c.SpreadsheetID
}

func columnRange(tab, column string, startRow int) string {
	column = strings.ToUpper(column)
	return fmt.Sprintf("%s!%s%d:%s", tab, column, startRow, column)
}

// ColumnIndex converts a column letter sequence to its zero-based index: A=0, E=4, AA=26.
// It returns -1 for anything that is not a column name.
func ColumnIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return -1
	}
	n := 0
	for _, r := range column {
		if r < 'A' || r > 'Z' {
			return -1
		}
		n = n*26 + int(r-'A'+1)
	}
	return n - 1
}

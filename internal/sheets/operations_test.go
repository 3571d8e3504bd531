package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPromptRowsNumbering(t *testing.T) {
	tests := []struct {
		name     string
		prompts  []interface{}
		urls     []interface{}
		startRow int
		want     []PromptRow
	}{
		{
			name:     "equal lengths",
			prompts:  []interface{}{"p1", "p2"},
			urls:     []interface{}{"u1", ""},
			startRow: 2,
			want: []PromptRow{
				{Row: 2, Prompt: "p1", ExistingURL: "u1"},
				{Row: 3, Prompt: "p2"},
			},
		},
		{
			name:     "more urls than prompts",
			prompts:  []interface{}{"p1"},
			urls:     []interface{}{"", "", "u3"},
			startRow: 5,
			want: []PromptRow{
				{Row: 5, Prompt: "p1"},
				{Row: 6},
				{Row: 7, ExistingURL: "u3"},
			},
		},
		{
			name:     "no urls",
			prompts:  []interface{}{"  p1  ", 42},
			startRow: 2,
			want: []PromptRow{
				{Row: 2, Prompt: "p1"},
				{Row: 3, Prompt: "42"},
			},
		},
		{
			name:     "empty",
			startRow: 2,
			want:     []PromptRow{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildPromptRows(tt.prompts, tt.urls, tt.startRow)
			assert.Equal(t, tt.want, got)
			for i, row := range got {
				assert.Equal(t, tt.startRow+i, row.Row)
			}
		})
	}
}

func TestConfigRanges(t *testing.T) {
	cfg := Config{SpreadsheetID: "abc", Tab: "RECIPES", PromptColumn: "k", ResultColumn: "D", StartRow: 2}

	assert.Equal(t, "RECIPES!K2:K", cfg.PromptRange())
	assert.Equal(t, "RECIPES!D2:D", cfg.ResultRange())
	assert.Equal(t, "RECIPES!D9", cfg.ResultCell(9))
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc", cfg.URL())
}

func TestColumnIndex(t *testing.T) {
	assert.Equal(t, 0, ColumnIndex("A"))
	assert.Equal(t, 4, ColumnIndex("e"))
	assert.Equal(t, 25, ColumnIndex("Z"))
	assert.Equal(t, 26, ColumnIndex("AA"))
	assert.Equal(t, -1, ColumnIndex(""))
	assert.Equal(t, -1, ColumnIndex("4"))
}

package embed

import (
	"context"
	"errors"
	"testing"
	"time"

	"sheet_image_gen/internal/browser/browsertest"

	"github.com/chromedp/chromedp/kb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var instantConfig = Config{StartRow: 2, Column: 4}

func keys(actions []browsertest.Action) []string {
	var out []string
	for _, a := range actions {
		if a.Kind == "press" {
			out = append(out, a.Value)
		}
	}
	return out
}

func TestEmbedFirstEntryNavigation(t *testing.T) {
	page := &browsertest.Page{}
	require.NoError(t, NewEmbedder(page, instantConfig, DefaultSelectors).EmbedAll(context.Background(), []string{""}))

	assert.Equal(t, []string{kb.ArrowDown, kb.ArrowRight, kb.ArrowRight, kb.ArrowRight, kb.ArrowRight}, keys(page.Actions()))
	assert.Zero(t, page.Count("click"))
}

func TestEmbedInsertsImage(t *testing.T) {
	page := &browsertest.Page{}
	url := "https://media.example.com/cat.png?ex=1"
	require.NoError(t, NewEmbedder(page, instantConfig, DefaultSelectors).EmbedAll(context.Background(), []string{url}))

	actions := page.Actions()
	var dialog []browsertest.Action
	for _, a := range actions {
		if a.Kind != "press" {
			dialog = append(dialog, a)
		}
	}
	assert.Equal(t, []browsertest.Action{
		{Kind: "click", Selector: DefaultSelectors.InsertMenu},
		{Kind: "hover", Selector: DefaultSelectors.ImageMenu},
		{Kind: "click", Selector: DefaultSelectors.ImageInCell},
		{Kind: "insert_text", Value: url},
	}, dialog)

	assert.Equal(t, []string{
		kb.ArrowDown, kb.ArrowRight, kb.ArrowRight, kb.ArrowRight, kb.ArrowRight,
		kb.Tab, kb.Tab, kb.ArrowRight, kb.ArrowRight, kb.Enter, kb.Tab,
		kb.Tab, kb.Tab, kb.Enter,
	}, keys(actions))
}

func TestEmbedEmptyURLAdvancesOneRow(t *testing.T) {
	page := &browsertest.Page{}
	urls := []string{"https://img/a.png", "", "", "https://img/d.png"}
	require.NoError(t, NewEmbedder(page, instantConfig, DefaultSelectors).EmbedAll(context.Background(), urls))

	// one ArrowDown to reach row 2, then exactly one per later entry
	downs := 0
	for _, k := range keys(page.Actions()) {
		if k == kb.ArrowDown {
			downs++
		}
	}
	assert.Equal(t, 1+len(urls)-1, downs)
	assert.Equal(t, 2, page.Count("insert_text"))
	assert.Equal(t, 2, page.Count("hover"))
}

func TestEmbedAbortsOnError(t *testing.T) {
	page := &browsertest.Page{Fail: map[string]error{"hover": errors.New("menu not open")}}
	err := NewEmbedder(page, instantConfig, DefaultSelectors).EmbedAll(context.Background(), []string{"https://img/a.png", "https://img/b.png"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Equal(t, 1, page.Count("hover"))
	assert.Zero(t, page.Count("insert_text"))
}

func TestEmbedSettlesAfterLastInsert(t *testing.T) {
	cfg := instantConfig
	cfg.SettlePause = 40 * time.Millisecond

	page := &browsertest.Page{}
	start := time.Now()
	require.NoError(t, NewEmbedder(page, cfg, DefaultSelectors).EmbedAll(context.Background(), []string{"https://img/a.png"}))
	assert.GreaterOrEqual(t, time.Since(start), cfg.SettlePause)

	// nothing inserted, nothing to wait for
	start = time.Now()
	require.NoError(t, NewEmbedder(&browsertest.Page{}, cfg, DefaultSelectors).EmbedAll(context.Background(), []string{"", ""}))
	assert.Less(t, time.Since(start), cfg.SettlePause)
}

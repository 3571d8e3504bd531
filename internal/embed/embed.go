// Package embed replays the spreadsheet UI steps that put each generated image
// inside its cell. The replay is blind: nothing checks that a step landed where
// it was meant to.
package embed

import (
	"context"
	"fmt"
	"time"

	"sheet_image_gen/internal/browser"

	"github.com/chromedp/chromedp/kb"
	"github.com/rs/zerolog/log"
)

type Selectors struct {
	InsertMenu  string
	ImageMenu   string
	ImageInCell string
}

var DefaultSelectors = Selectors{
	InsertMenu:  `//*[@role="menuitem" and normalize-space(.)="Insert"]`,
	ImageMenu:   `[aria-label="Image g"]`,
	ImageInCell: `[aria-label="Insert image in cell i"]`,
}

type Config struct {
	// StartRow and Column locate the cell of the first entry. The sheet is
	// assumed to open with A1 active.
	StartRow int
	Column   int

	FirstPause  time.Duration
	RowPause    time.Duration
	DialogPause time.Duration
	URLPause    time.Duration
	KeyPause    time.Duration
	// SettlePause gives the last insert time to land before the caller moves on.
	SettlePause time.Duration
}

// DefaultConfig puts images in column E starting at row 2.
var DefaultConfig = Config{
	StartRow:    2,
	Column:      4,
	FirstPause:  5 * time.Second,
	RowPause:    time.Second,
	DialogPause: time.Second,
	URLPause:    5 * time.Second,
	KeyPause:    300 * time.Millisecond,
	SettlePause: 3 * time.Second,
}

type Embedder struct {
	page browser.Page
	cfg  Config
	sel  Selectors
}

func NewEmbedder(page browser.Page, cfg Config, sel Selectors) *Embedder {
	return &Embedder{page: page, cfg: cfg, sel: sel}
}

// EmbedAll walks down the image column, one row per URL, and inserts every
// non-empty URL as an in-cell image. The first error aborts the walk.
func (e *Embedder) EmbedAll(ctx context.Context, urls []string) error {
	inserted := 0
	for i, url := range urls {
		row := e.cfg.StartRow + i
		if err := e.moveTo(ctx, i); err != nil {
			return fmt.Errorf("row %d: move to cell: %w", row, err)
		}
		if url == "" {
			log.Debug().Int("row", row).Msg("No image for row, leaving cell empty")
			continue
		}
		if err := e.insertImage(ctx, url); err != nil {
			return fmt.Errorf("row %d: insert image: %w", row, err)
		}
		log.Info().Int("row", row).Str("url", url).Msg("Embedded image")
		inserted++
	}
	if inserted == 0 {
		return nil
	}
	log.Debug().Dur("pause", e.cfg.SettlePause).Msg("Waiting for the last insert to settle")
	return browser.Sleep(ctx, e.cfg.SettlePause)
}

// moveTo advances the active cell to the entry at index. Entry 0 starts from A1;
// every later entry is exactly one row below the previous one.
func (e *Embedder) moveTo(ctx context.Context, index int) error {
	if index > 0 {
		if err := browser.Sleep(ctx, e.cfg.RowPause); err != nil {
			return err
		}
		return e.press(ctx, kb.ArrowDown)
	}

	if err := browser.Sleep(ctx, e.cfg.FirstPause); err != nil {
		return err
	}
	for i := 1; i < e.cfg.StartRow; i++ {
		if err := e.press(ctx, kb.ArrowDown); err != nil {
			return err
		}
	}
	for i := 0; i < e.cfg.Column; i++ {
		if err := e.press(ctx, kb.ArrowRight); err != nil {
			return err
		}
	}
	return nil
}

func (e *Embedder) insertImage(ctx context.Context, url string) error {
	if err := e.page.Click(ctx, e.sel.InsertMenu); err != nil {
		return err
	}
	if err := e.page.Hover(ctx, e.sel.ImageMenu); err != nil {
		return err
	}
	if err := e.page.Click(ctx, e.sel.ImageInCell); err != nil {
		return err
	}
	if err := browser.Sleep(ctx, e.cfg.DialogPause); err != nil {
		return err
	}

	// focus the "By URL" tab of the dialog
	if err := e.press(ctx, kb.Tab, kb.Tab, kb.ArrowRight, kb.ArrowRight, kb.Enter, kb.Tab); err != nil {
		return err
	}
	if err := e.page.InsertText(ctx, url); err != nil {
		return err
	}
	// preview has to load before the insert button enables
	if err := browser.Sleep(ctx, e.cfg.URLPause); err != nil {
		return err
	}
	return e.press(ctx, kb.Tab, kb.Tab, kb.Enter)
}

func (e *Embedder) press(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if err := e.page.PressKey(ctx, k); err != nil {
			return err
		}
		if err := browser.Sleep(ctx, e.cfg.KeyPause); err != nil {
			return err
		}
	}
	return nil
}

package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sheet_image_gen/internal/browser"

	"github.com/chromedp/chromedp/kb"
	"github.com/rs/zerolog/log"
)

// ErrTimedOut is returned when the chat did not finish a prompt within the poll budget.
var ErrTimedOut = errors.New("timed out waiting for generated image")

// Selectors are the on-page hooks of the chat UI.
type Selectors struct {
	Textbox       string
	LastMessage   string
	UpscaleButton string
	ImageLink     string
	ImageAttr     string

	UpscaleMarkers   []string
	VariationMarkers []string
}

var DefaultSelectors = Selectors{
	Textbox:       `div[role="textbox"]`,
	LastMessage:   `li.messageListItem__5126c`,
	UpscaleButton: `//button[contains(., "U1")]`,
	ImageLink:     `a.originalLink_af017a`,
	ImageAttr:     "data-safe-src",

	UpscaleMarkers:   []string{"U1"},
	VariationMarkers: []string{"Vary (Strong)", "Web"},
}

// Generator drives one prompt at a time through the chat page.
type Generator struct {
	page      browser.Page
	poller    *Poller
	sel       Selectors
	typePause time.Duration
}

func NewGenerator(page browser.Page, poller *Poller, sel Selectors) *Generator {
	return &Generator{
		page:      page,
		poller:    poller,
		sel:       sel,
		typePause: time.Second,
	}
}

// Submit types prompt into the chat box and sends it.
func (g *Generator) Submit(ctx context.Context, prompt string) error {
	if err := g.page.Fill(ctx, g.sel.Textbox, prompt); err != nil {
		return fmt.Errorf("type prompt: %w", err)
	}
	if err := browser.Sleep(ctx, g.typePause); err != nil {
		return err
	}
	if err := g.page.PressKey(ctx, kb.Enter); err != nil {
		return fmt.Errorf("send prompt: %w", err)
	}
	return nil
}

// Generate submits prompt, waits for the grid, upscales the first image, waits for the
// upscale to finish and returns the cleaned image URL. Both waits share one budget.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.Submit(ctx, prompt); err != nil {
		return "", err
	}

	budget := g.poller.NewBudget()
	upscaleReady := MarkerDetector{Selector: g.sel.LastMessage, Markers: g.sel.UpscaleMarkers}
	state, err := g.poller.Wait(ctx, g.page, upscaleReady, budget)
	if err != nil {
		return "", err
	}
	if state != StateReady {
		return "", fmt.Errorf("waiting for upscale control: %w", ErrTimedOut)
	}

	log.Debug().Msg("Upscale control found")
	if err := g.page.ClickLast(ctx, g.sel.UpscaleButton); err != nil {
		return "", fmt.Errorf("click upscale: %w", err)
	}

	variationReady := MarkerDetector{Selector: g.sel.LastMessage, Markers: g.sel.VariationMarkers}
	state, err = g.poller.Wait(ctx, g.page, variationReady, budget)
	if err != nil {
		return "", err
	}
	if state != StateReady {
		return "", fmt.Errorf("waiting for upscaled image: %w", ErrTimedOut)
	}

	// the link element renders shortly after the buttons
	if err := browser.Sleep(ctx, g.poller.Interval); err != nil {
		return "", err
	}
	return g.scrapeImageURL(ctx)
}

func (g *Generator) scrapeImageURL(ctx context.Context) (string, error) {
	html, err := g.page.LastOuterHTML(ctx, g.sel.ImageLink)
	if err != nil {
		return "", fmt.Errorf("find image link: %w", err)
	}
	src, err := ImageSource(html, g.sel.ImageAttr)
	if err != nil {
		return "", err
	}
	url := CleanImageURL(src)
	log.Debug().Str("raw", src).Str("url", url).Msg("Scraped image URL")
	return url, nil
}

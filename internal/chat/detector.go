package chat

import (
	"context"
	"fmt"
	"strings"

	"sheet_image_gen/internal/browser"

	"github.com/PuerkitoBio/goquery"
)

// State is the outcome of a completion check.
type State int

const (
	StateIdle State = iota
	StateReady
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateTimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Detector decides whether the chat has reached a stage. It reports only Idle or
// Ready; timing out is the poller's job.
type Detector interface {
	Detect(ctx context.Context, page browser.Page) (State, error)
}

// MarkerDetector is Ready when the last element matching Selector contains every marker in its text.
type MarkerDetector struct {
	Selector string
	Markers  []string
}

func (d MarkerDetector) Detect(ctx context.Context, page browser.Page) (State, error) {
	html, err := page.LastOuterHTML(ctx, d.Selector)
	if err != nil {
		return StateIdle, fmt.Errorf("read last message: %w", err)
	}
	text, err := textContent(html)
	if err != nil {
		return StateIdle, err
	}
	for _, m := range d.Markers {
		if !strings.Contains(text, m) {
			return StateIdle, nil
		}
	}
	return StateReady, nil
}

func textContent(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse message html: %w", err)
	}
	return doc.Text(), nil
}

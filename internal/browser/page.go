package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a selector matches no element.
var ErrNotFound = errors.New("element not found")

// Page is the scripted surface of one browser tab. Selectors are CSS selectors or,
// when they start with "//", XPath expressions.
type Page interface {
	Navigate(ctx context.Context, url string) error

	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error
	// ClickLast clicks the last element matching selector.
	ClickLast(ctx context.Context, selector string) error
	// Hover moves the mouse over the first element matching selector.
	Hover(ctx context.Context, selector string) error
	// Fill replaces the content of an editable element with text.
	Fill(ctx context.Context, selector, text string) error

	// PressKey dispatches a single key, using chromedp/kb names for special keys.
	PressKey(ctx context.Context, key string) error
	// InsertText inserts text at the focused element as if pasted.
	InsertText(ctx context.Context, text string) error

	// LastOuterHTML returns the outer HTML of the last element matching selector,
	// or ErrNotFound.
	LastOuterHTML(ctx context.Context, selector string) (string, error)

	Close(ctx context.Context) error
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Package browsertest provides an in-memory browser.Page for tests.
package browsertest

import (
	"context"
	"fmt"
	"sync"

	"sheet_image_gen/internal/browser"
)

// Action is one recorded call on a Page.
type Action struct {
	Kind     string
	Selector string
	Value    string
}

func (a Action) String() string {
	return fmt.Sprintf("%s(%s|%s)", a.Kind, a.Selector, a.Value)
}

// Page records every call. HTML answers LastOuterHTML; a nil HTML or an empty
// answer reports browser.ErrNotFound. Errors in Fail are keyed by action kind
// ("click", "press", ...) and returned by the matching call after it is recorded.
type Page struct {
	mu      sync.Mutex
	actions []Action

	HTML func(selector string) (string, error)
	Fail map[string]error
}

var _ browser.Page = (*Page)(nil)

func (p *Page) record(kind, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions = append(p.actions, Action{Kind: kind, Selector: selector, Value: value})
	return p.Fail[kind]
}

// Actions returns a copy of the recorded calls.
func (p *Page) Actions() []Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Action(nil), p.actions...)
}

// Count returns how many recorded calls have the given kind.
func (p *Page) Count(kind string) int {
	n := 0
	for _, a := range p.Actions() {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.record("navigate", "", url)
}

func (p *Page) Click(ctx context.Context, selector string) error {
	return p.record("click", selector, "")
}

func (p *Page) ClickLast(ctx context.Context, selector string) error {
	return p.record("click_last", selector, "")
}

func (p *Page) Hover(ctx context.Context, selector string) error {
	return p.record("hover", selector, "")
}

func (p *Page) Fill(ctx context.Context, selector, text string) error {
	return p.record("fill", selector, text)
}

func (p *Page) PressKey(ctx context.Context, key string) error {
	return p.record("press", "", key)
}

func (p *Page) InsertText(ctx context.Context, text string) error {
	return p.record("insert_text", "", text)
}

func (p *Page) LastOuterHTML(ctx context.Context, selector string) (string, error) {
	if err := p.record("read", selector, ""); err != nil {
		return "", err
	}
	if p.HTML == nil {
		return "", fmt.Errorf("%s: %w", selector, browser.ErrNotFound)
	}
	html, err := p.HTML(selector)
	if err != nil {
		return "", err
	}
	if html == "" {
		return "", fmt.Errorf("%s: %w", selector, browser.ErrNotFound)
	}
	return html, nil
}

func (p *Page) Close(ctx context.Context) error {
	return p.record("close", "", "")
}

package chat

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

const (
	gridMessage     = `<li class="messageListItem__5126c">a cat --v 6 <button>U1</button><button>U2</button><button>V1</button></li>`
	progressMessage = `<li class="messageListItem__5126c">a cat (31%) (fast)</li>`
	upscaleMessage  = `<li class="messageListItem__5126c">a cat - Image #1 <button>Vary (Subtle)</button><button>Vary (Strong)</button><a>Web</a></li>`
	imageLink       = `<a class="originalLink_af017a" data-safe-src="https://media.example.com/attachments/1/2/cat.png?ex=68a1&amp;width=512&amp;height=512"></a>`
)

func newTestGenerator(page *browsertest.Page, timeout time.Duration) *Generator {
	g := NewGenerator(page, NewPoller(5*time.Millisecond, timeout), DefaultSelectors)
	g.typePause = 0
	return g
}

func TestGenerateUpscalesAndScrapes(t *testing.T) {
	reads := 0
	page := &browsertest.Page{}
	page.HTML = func(selector string) (string, error) {
		switch selector {
		case DefaultSelectors.ImageLink:
			return imageLink, nil
		case DefaultSelectors.LastMessage:
			reads++
			if page.Count("click_last") > 0 {
				return upscaleMessage, nil
			}
			if reads < 3 {
				return progressMessage, nil
			}
			return gridMessage, nil
		}
		return "", nil
	}

	url, err := newTestGenerator(page, time.Second).Generate(context.Background(), "a cat --v 6")
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/attachments/1/2/cat.png?ex=68a1", url)

	actions := page.Actions()
	require.GreaterOrEqual(t, len(actions), 2)
	assert.Equal(t, browsertest.Action{Kind: "fill", Selector: DefaultSelectors.Textbox, Value: "a cat --v 6"}, actions[0])
	assert.Equal(t, browsertest.Action{Kind: "press", Value: kb.Enter}, actions[1])
	assert.Equal(t, 1, page.Count("click_last"))
}

func TestGenerateTimesOutWhenGridNeverAppears(t *testing.T) {
	page := &browsertest.Page{HTML: func(string) (string, error) { return progressMessage, nil }}

	start := time.Now()
	_, err := newTestGenerator(page, 40*time.Millisecond).Generate(context.Background(), "a dog")
	assert.ErrorIs(t, err, ErrTimedOut)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Zero(t, page.Count("click_last"))
}

func TestGenerateTimesOutWhenUpscaleNeverFinishes(t *testing.T) {
	page := &browsertest.Page{HTML: func(string) (string, error) { return gridMessage, nil }}

	_, err := newTestGenerator(page, 40*time.Millisecond).Generate(context.Background(), "a dog")
	assert.ErrorIs(t, err, ErrTimedOut)
	assert.Equal(t, 1, page.Count("click_last"))
}

func TestGenerateSubmitFailure(t *testing.T) {
	page := &browsertest.Page{Fail: map[string]error{"fill": errors.New("textbox not found")}}

	_, err := newTestGenerator(page, time.Second).Generate(context.Background(), "a dog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type prompt")
	assert.Zero(t, page.Count("press"))
}

func TestGenerateMissingImageLink(t *testing.T) {
	page := &browsertest.Page{}
	page.HTML = func(selector string) (string, error) {
		if selector == DefaultSelectors.LastMessage {
			if page.Count("click_last") > 0 {
				return upscaleMessage, nil
			}
			return gridMessage, nil
		}
		return "", nil
	}

	_, err := newTestGenerator(page, time.Second).Generate(context.Background(), "a cat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "find image link")
}

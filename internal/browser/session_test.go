package browser

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/stretchr/testify/assert"
)

func TestSelectorKind(t *testing.T) {
	assert.True(t, isXPath(`//button[contains(., "U1")]`))
	assert.True(t, isXPath(`(//a)[last()]`))
	assert.False(t, isXPath(`li.messageListItem__5126c`))
}

func TestQuadCenter(t *testing.T) {
	x, y := quadCenter(dom.Quad{10, 20, 30, 20, 30, 40, 10, 40})
	assert.InDelta(t, 20.0, x, 0.001)
	assert.InDelta(t, 30.0, y, 0.001)

	x, y = quadCenter(nil)
	assert.Zero(t, x)
	assert.Zero(t, y)
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
}

func TestSessionCloseLeavesTabsOpen(t *testing.T) {
	root, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()
	tabCtx, cancelTab := context.WithCancel(root)
	defer cancelTab()

	tab := &Tab{ctx: tabCtx, cancel: cancelTab}
	s := &Session{browserCtx: root, tabs: []*Tab{tab}}
	s.Close()

	// cancelling a tab context makes chromedp close the target
	assert.NoError(t, tabCtx.Err())
	assert.NoError(t, root.Err())
	assert.True(t, tab.closed)
}

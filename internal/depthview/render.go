// Package depthview renders a book.Engine's read-only depth queries into
// a terminal-style frame. Grounded on
// original_source/OrderBook/src/main.cpp's printOrderBook/fastPrint: the
// ANSI "clear and redraw in place" behavior is kept, but the frame is
// returned as a string rather than written directly to stdout, so a CLI
// ticker and a WebSocket push (SPEC_FULL.md §4.10) can share one renderer.
package depthview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dsouth/femtobook/book"
)

const (
	clearScreen = "\033[H\033[2J"
	ruleWidth   = 80
	barWidth    = 50
)

// Querier is the read-only subset of book.Engine the renderer depends on.
// It must tolerate empty results and must never be used to cache
// positional handles, per SPEC_FULL.md §6.
type Querier interface {
	BestBid() (book.Price, bool)
	BestAsk() (book.Price, bool)
	Spread() (book.Price, bool)
	BidDepth(n int) []book.DepthLevel
	AskDepth(n int) []book.DepthLevel
	OrderCount() int
}

// Render builds one frame showing up to levels rows of depth per side, an
// ANSI-home-and-clear prefix (so a terminal ticker can redraw in place),
// a volume bar per level, the spread/mid line, and an order count footer.
func Render(q Querier, levels int) string {
	asks := q.AskDepth(levels)
	bids := q.BidDepth(levels)

	if len(asks) == 0 && len(bids) == 0 {
		return clearScreen + "order book is empty\n"
	}

	maxVolume := book.Qty(0)
	for _, lvl := range asks {
		if lvl.Volume > maxVolume {
			maxVolume = lvl.Volume
		}
	}
	for _, lvl := range bids {
		if lvl.Volume > maxVolume {
			maxVolume = lvl.Volume
		}
	}

	var buf strings.Builder
	buf.WriteString(clearScreen)
	rule := strings.Repeat("=", ruleWidth)
	dash := strings.Repeat("-", ruleWidth)

	buf.WriteString(rule + "\nORDER BOOK DEPTH\n" + rule + "\n")

	buf.WriteString("\nASKS (Sell Orders):\n" + dash + "\n")
	// Worst ask at the top, best ask directly above the spread line —
	// asks arrive best-first from AskDepth, so print in reverse.
	for i := len(asks) - 1; i >= 0; i-- {
		writeLevelRow(&buf, asks[i], maxVolume)
	}

	bestAsk, askOK := q.BestAsk()
	bestBid, bidOK := q.BestBid()
	spread, spreadOK := q.Spread()
	if askOK && bidOK && spreadOK {
		mid := (bestAsk + bestBid) / 2
		buf.WriteString(dash + "\n")
		buf.WriteString("SPREAD: " + strconv.FormatInt(int64(spread), 10) +
			" | MID: " + strconv.FormatInt(int64(mid), 10) + "\n")
		buf.WriteString(dash + "\n")
	}

	buf.WriteString("\nBIDS (Buy Orders):\n" + dash + "\n")
	for _, lvl := range bids {
		writeLevelRow(&buf, lvl, maxVolume)
	}

	buf.WriteString(rule + "\n")
	buf.WriteString(fmt.Sprintf("Total Orders: %d\n", q.OrderCount()))
	buf.WriteString(rule + "\n")

	return buf.String()
}

func writeLevelRow(buf *strings.Builder, lvl book.DepthLevel, maxVolume book.Qty) {
	barLength := 0
	if maxVolume > 0 {
		barLength = int(uint64(lvl.Volume) * uint64(barWidth) / uint64(maxVolume))
	}
	fmt.Fprintf(buf, "%d | %d | %s\n", lvl.Price, lvl.Volume, strings.Repeat("#", barLength))
}

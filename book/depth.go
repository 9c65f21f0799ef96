package book

// DepthLevel is one row of a top-N depth query: a price and the total
// resting volume at that price.
type DepthLevel struct {
	Price  Price
	Volume Qty
}

// BestBid returns the highest resting bid price, if any.
func (e *Engine) BestBid() (Price, bool) {
	lvl, ok := e.bids.best()
	if !ok {
		return 0, false
	}
	return lvl.price, true
}

// BestAsk returns the lowest resting ask price, if any.
func (e *Engine) BestAsk() (Price, bool) {
	lvl, ok := e.asks.best()
	if !ok {
		return 0, false
	}
	return lvl.price, true
}

// Spread returns bestAsk - bestBid, empty if either side is empty.
func (e *Engine) Spread() (Price, bool) {
	bid, ok := e.BestBid()
	if !ok {
		return 0, false
	}
	ask, ok := e.BestAsk()
	if !ok {
		return 0, false
	}
	return ask - bid, true
}

// VolumeAt returns the total resting volume at price on the given side.
func (e *Engine) VolumeAt(side Side, price Price) Qty {
	return e.sideBookFor(side).volumeAt(price)
}

// BidDepth returns up to n bid levels, best (highest price) first.
func (e *Engine) BidDepth(n int) []DepthLevel {
	return e.bids.depth(n)
}

// AskDepth returns up to n ask levels, best (lowest price) first.
func (e *Engine) AskDepth(n int) []DepthLevel {
	return e.asks.depth(n)
}

// OrderCount returns the number of orders currently resting in the book.
func (e *Engine) OrderCount() int {
	return len(e.index)
}

// IsEmpty reports whether the book has no resting orders on either side.
func (e *Engine) IsEmpty() bool {
	return len(e.index) == 0
}

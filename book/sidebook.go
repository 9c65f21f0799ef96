package book

import "github.com/google/btree"

// sideBook is a price-indexed ordered map of priceLevel, with a key
// ordering chosen so that Min() always returns the best price for this
// side: bids order descending (best = highest price sorts first), asks
// order ascending (best = lowest price sorts first). Both sides reuse the
// same BTreeG type with only the comparator flipped, per the design note
// that prefers two comparator specializations over negated-price tricks.
type sideBook struct {
	side   Side
	levels *btree.BTreeG[*priceLevel]
}

func newSideBook(side Side) *sideBook {
	var less btree.LessFunc[*priceLevel]
	if side == Buy {
		less = func(a, b *priceLevel) bool { return a.price > b.price }
	} else {
		less = func(a, b *priceLevel) bool { return a.price < b.price }
	}
	return &sideBook{side: side, levels: btree.NewG(32, less)}
}

func (b *sideBook) lookup(price Price) (*priceLevel, bool) {
	return b.levels.Get(&priceLevel{price: price})
}

// getOrCreate returns the level at price, creating and inserting an empty
// one if it is not already present.
func (b *sideBook) getOrCreate(price Price) *priceLevel {
	if lvl, ok := b.lookup(price); ok {
		return lvl
	}
	lvl := newPriceLevel(price)
	b.levels.ReplaceOrInsert(lvl)
	return lvl
}

// remove deletes the level at price. Invariant: must only be called once
// the level's FIFO is already empty.
func (b *sideBook) remove(price Price) {
	b.levels.Delete(&priceLevel{price: price})
}

// best returns the level at the best price for this side, if any.
func (b *sideBook) best() (*priceLevel, bool) {
	return b.levels.Min()
}

func (b *sideBook) len() int {
	return b.levels.Len()
}

// ascend walks levels from best to worst (best-first for this side's
// polarity), invoking fn until it returns false or the book is exhausted.
func (b *sideBook) ascend(fn func(lvl *priceLevel) bool) {
	b.levels.Ascend(func(lvl *priceLevel) bool { return fn(lvl) })
}

// depth returns up to n levels from best to worst, in the side's natural
// traversal order (bids descending, asks ascending).
func (b *sideBook) depth(n int) []DepthLevel {
	out := make([]DepthLevel, 0, n)
	b.ascend(func(lvl *priceLevel) bool {
		if len(out) >= n {
			return false
		}
		out = append(out, DepthLevel{Price: lvl.price, Volume: lvl.totalVolume})
		return true
	})
	return out
}

// volumeAt returns the cached total resting volume at price, 0 if there is
// no level there.
func (b *sideBook) volumeAt(price Price) Qty {
	if lvl, ok := b.lookup(price); ok {
		return lvl.totalVolume
	}
	return 0
}

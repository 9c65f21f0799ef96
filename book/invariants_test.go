package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// checkInvariants asserts the quantified invariants of SPEC_FULL.md §8
// against the engine's current state.
func checkInvariants(t *testing.T, e *Engine) {
	t.Helper()

	checkSide := func(sb *sideBook) {
		var prev Price
		first := true
		sb.ascend(func(lvl *priceLevel) bool {
			var sum Qty
			for el := lvl.orders.Front(); el != nil; el = el.Next() {
				sum += el.Value.(*Order).Remaining()
			}
			assert.Equal(t, sum, lvl.totalVolume, "level %d totalVolume out of sync", lvl.price)
			assert.False(t, lvl.empty(), "empty level %d must not persist", lvl.price)

			if !first {
				if sb.side == Buy {
					assert.Less(t, lvl.price, prev, "bid levels must be strictly descending")
				} else {
					assert.Greater(t, lvl.price, prev, "ask levels must be strictly ascending")
				}
			}
			prev = lvl.price
			first = false
			return true
		})
	}
	checkSide(e.bids)
	checkSide(e.asks)

	for id, h := range e.index {
		o := h.elem.Value.(*Order)
		assert.Equal(t, id, o.ID, "index entry must dereference to an order with matching id")
	}

	assert.Equal(t, len(e.index), e.OrderCount())

	bid, bidOK := e.BestBid()
	ask, askOK := e.BestAsk()
	if bidOK && askOK {
		assert.Less(t, bid, ask, "book must never be crossed")
	}
}

func TestInvariantsHoldThroughMixedSequence(t *testing.T) {
	e := NewEngine()

	ops := []func(){
		func() { e.AddOrder(lim(1, Buy, 100, 10, GTC)) },
		func() { e.AddOrder(lim(2, Buy, 101, 5, GTC)) },
		func() { e.AddOrder(lim(3, Sell, 103, 8, GTC)) },
		func() { e.AddOrder(lim(4, Sell, 102, 4, GTC)) },
		func() { e.AddOrder(lim(5, Buy, 102, 6, GTC)) },
		func() { e.CancelOrder(2) },
		func() { e.AddOrder(lim(6, Sell, 100, 3, IOC)) },
		func() { e.ModifyOrder(ModifyRequest{ID: 1, Price: 99, Qty: 20}) },
		func() { e.AddOrder(mkt(7, Sell, 50)) },
		func() { e.AddOrder(lim(8, Buy, 105, 1, FOK)) },
		func() { e.CancelOrder(999) }, // no-op on an absent id
	}

	for _, op := range ops {
		op()
		checkInvariants(t, e)
	}
}

func TestCancelIdempotenceLaw(t *testing.T) {
	e := NewEngine()
	e.AddOrder(lim(1, Buy, 100, 10, GTC))

	first := e.CancelOrder(1)
	second := e.CancelOrder(1)

	assert.True(t, first)
	assert.False(t, second)
	assert.True(t, e.IsEmpty())
}

func TestFOKNonMutationOnFailure(t *testing.T) {
	e := NewEngine()
	e.AddOrder(lim(1, Sell, 101, 5, GTC))

	beforeAsk, _ := e.BestAsk()
	beforeVol := e.VolumeAt(Sell, 101)
	beforeCount := e.OrderCount()

	trades := e.AddOrder(lim(2, Buy, 101, 10, FOK))
	assert.Empty(t, trades)

	afterAsk, _ := e.BestAsk()
	assert.Equal(t, beforeAsk, afterAsk)
	assert.Equal(t, beforeVol, e.VolumeAt(Sell, 101))
	assert.Equal(t, beforeCount, e.OrderCount())
}

func TestFillSumNeverExceedsSubmittedQuantity(t *testing.T) {
	e := NewEngine()
	e.AddOrder(lim(1, Sell, 100, 5, GTC))
	e.AddOrder(lim(2, Sell, 100, 5, GTC))

	trades := e.AddOrder(lim(3, Buy, 100, 7, GTC))

	var filled Qty
	for _, tr := range trades {
		filled += tr.Qty
	}
	assert.LessOrEqual(t, filled, Qty(7))
	assert.Equal(t, Qty(7), filled) // aggressor ends fully filled
}

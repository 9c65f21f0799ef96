// Package book implements a single-instrument, single-threaded limit
// order book matching engine: price-indexed side books ordered bid
// descending / ask ascending, FIFO price levels with O(1) cancel via a
// stable positional handle, and an order index kept in lock-step with
// both. See SPEC_FULL.md for the full contract.
package book

// Engine is a single-instrument limit order book. It is not safe for
// concurrent use: every mutating or read-only call must be serialized by
// the caller (see SPEC_FULL.md §5).
type Engine struct {
	bids  *sideBook
	asks  *sideBook
	index map[OrderID]handle
	seq   OrderID
}

// NewEngine returns an empty order book.
func NewEngine() *Engine {
	return &Engine{
		bids:  newSideBook(Buy),
		asks:  newSideBook(Sell),
		index: make(map[OrderID]handle),
	}
}

// NextOrderID returns the next process-unique, monotonically increasing
// order id. It is a convenience for callers (simulator, server) that do
// not already have their own id source; the engine itself never inspects
// how an id was produced.
func (e *Engine) NextOrderID() OrderID {
	e.seq++
	return e.seq
}

// ModifyRequest carries the new price/quantity for ModifyOrder. Qty is
// the new *original* quantity: any previous partial fill is discarded.
type ModifyRequest struct {
	ID    OrderID
	Price Price
	Qty   Qty
}

// AddOrder accepts an order whose id is not currently resting (a
// precondition the caller must uphold; violating it is a programming bug
// and panics rather than risk desynchronizing the index from the books).
// It returns the trades produced, in execution order.
func (e *Engine) AddOrder(o Order) []Trade {
	if _, exists := e.index[o.ID]; exists {
		panic("book: duplicate order id submitted to AddOrder")
	}

	if o.Type == Limit && o.TIF == FOK {
		if !e.fokFeasible(o.Side, o.Price, o.Remaining()) {
			return nil
		}
	}

	trades := e.match(&o)

	if o.Type == Limit && o.TIF == GTC && o.Remaining() > 0 {
		e.rest(&o)
	}

	return trades
}

// CancelOrder removes id from the book if it is resting, returning true.
// Returns false for an id that is not currently resting; this is
// idempotent and never an error.
func (e *Engine) CancelOrder(id OrderID) bool {
	h, ok := e.index[id]
	if !ok {
		return false
	}
	resting := h.elem.Value.(*Order)

	h.level.erase(h)
	if h.level.empty() {
		e.sideBookFor(resting.Side).remove(h.level.price)
	}
	delete(e.index, id)
	return true
}

// ModifyOrder cancels the resting order id and resubmits it with the
// modify's price and quantity, preserving its original side/type/TIF. The
// resubmission loses time priority at its new price and re-enters the
// full matching pipeline (including FOK/IOC semantics where applicable).
// Returns ErrOrderNotFound if id is not currently resting.
func (e *Engine) ModifyOrder(req ModifyRequest) ([]Trade, error) {
	h, ok := e.index[req.ID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	old := h.elem.Value.(*Order)
	side, typ, tif := old.Side, old.Type, old.TIF

	e.CancelOrder(req.ID)

	fresh := Order{
		ID:       req.ID,
		Side:     side,
		Type:     typ,
		Price:    req.Price,
		Original: req.Qty,
		TIF:      tif,
	}
	return e.AddOrder(fresh), nil
}

// match drains the opposite side book into aggr under price-time
// priority, emitting one Trade per consuming fill, in the exact order
// those fills occur. aggr's Filled field is mutated in place.
func (e *Engine) match(aggr *Order) []Trade {
	opposite := e.sideBookFor(opposite(aggr.Side))
	var trades []Trade

	for aggr.Remaining() > 0 {
		lvl, ok := opposite.best()
		if !ok {
			break
		}
		if aggr.Type == Limit && !crossesLimit(aggr.Side, aggr.Price, lvl.price) {
			break
		}

		for aggr.Remaining() > 0 && !lvl.empty() {
			resting := lvl.front()
			fillQty := min(aggr.Remaining(), resting.Remaining())

			aggr.Filled += fillQty
			resting.Filled += fillQty
			lvl.totalVolume -= fillQty

			var buyID, sellID OrderID
			if aggr.Side == Buy {
				buyID, sellID = aggr.ID, resting.ID
			} else {
				buyID, sellID = resting.ID, aggr.ID
			}
			trades = append(trades, Trade{BuyID: buyID, SellID: sellID, Price: lvl.price, Qty: fillQty})

			if resting.IsFilled() {
				delete(e.index, resting.ID) // must precede the FIFO pop (§9 ordering contract)
				lvl.popFront()
			}
		}

		if lvl.empty() {
			opposite.remove(lvl.price)
		}
	}

	return trades
}

// fokFeasible walks the opposite side in best-first order, accumulating
// totalVolume at every level within the limit, stopping as soon as it can
// answer. It performs no mutation and uses the same crossesLimit
// comparison the matcher uses, so a feasible result can never be followed
// by only a partial fill.
func (e *Engine) fokFeasible(side Side, price Price, need Qty) bool {
	opposite := e.sideBookFor(opposite(side))
	var acc Qty
	feasible := false
	opposite.ascend(func(lvl *priceLevel) bool {
		if !crossesLimit(side, price, lvl.price) {
			return false
		}
		acc += lvl.totalVolume
		if acc >= need {
			feasible = true
			return false
		}
		return true
	})
	return feasible
}

// rest inserts o's remainder into its own side book and registers it in
// the order index, in the same step as required by §9's dual-index
// consistency contract.
func (e *Engine) rest(o *Order) {
	lvl := e.sideBookFor(o.Side).getOrCreate(o.Price)
	e.index[o.ID] = lvl.pushBack(o)
}

func (e *Engine) sideBookFor(side Side) *sideBook {
	if side == Buy {
		return e.bids
	}
	return e.asks
}

func opposite(side Side) Side {
	if side == Buy {
		return Sell
	}
	return Buy
}

// crossesLimit reports whether a limit order on side at limitPrice would
// cross a resting level priced at levelPrice. Market orders never call
// this: they are unconditionally crossing, handled by the caller.
func crossesLimit(side Side, limitPrice, levelPrice Price) bool {
	if side == Buy {
		return levelPrice <= limitPrice
	}
	return levelPrice >= limitPrice
}

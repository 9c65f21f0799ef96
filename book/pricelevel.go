package book

import "container/list"

// priceLevel holds the FIFO of resting orders at one price on one side,
// plus a cached running total of their remaining quantity. A level is
// destroyed the instant its FIFO goes empty; callers must not retain a
// *priceLevel past the call in which it was emptied.
type priceLevel struct {
	price       Price
	orders      *list.List // of *Order, oldest at Front
	totalVolume Qty
}

func newPriceLevel(price Price) *priceLevel {
	return &priceLevel{price: price, orders: list.New()}
}

// handle is the stable positional reference used by the order index: it
// survives unrelated pushes/erases elsewhere in the same level's FIFO,
// which is exactly what container/list's *list.Element guarantees.
type handle struct {
	level *priceLevel
	elem  *list.Element
}

// pushBack appends o to the level's FIFO and registers its volume,
// returning the handle that cancel/fill-erase must use to find it again.
func (lvl *priceLevel) pushBack(o *Order) handle {
	elem := lvl.orders.PushBack(o)
	lvl.totalVolume += o.Remaining()
	return handle{level: lvl, elem: elem}
}

// front returns the oldest resting order at this level, or nil if empty.
func (lvl *priceLevel) front() *Order {
	elem := lvl.orders.Front()
	if elem == nil {
		return nil
	}
	return elem.Value.(*Order)
}

// popFront removes the oldest order. Callers must have already erased any
// order-index entry for it (see the matching loop's ordering contract).
func (lvl *priceLevel) popFront() {
	elem := lvl.orders.Front()
	if elem != nil {
		lvl.orders.Remove(elem)
	}
}

// erase removes the order referenced by h from this level in O(1), without
// touching any sibling handle.
func (lvl *priceLevel) erase(h handle) {
	o := h.elem.Value.(*Order)
	lvl.totalVolume -= o.Remaining()
	lvl.orders.Remove(h.elem)
}

func (lvl *priceLevel) empty() bool {
	return lvl.orders.Len() == 0
}

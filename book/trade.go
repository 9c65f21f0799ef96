package book

// Trade is an immutable execution record. Price is always the resting
// order's level price: price improvement accrues to the incoming
// aggressor, never to the order that was already resting.
type Trade struct {
	BuyID  OrderID
	SellID OrderID
	Price  Price
	Qty    Qty
}

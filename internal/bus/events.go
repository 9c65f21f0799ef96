// Package bus adapts book.Engine operations into OutputEvents and fans
// them out to any number of subscribers (one per WebSocket session of
// internal/server's Hub) without ever blocking the
// single goroutine that owns the engine.
package bus

import (
	"github.com/google/uuid"

	"github.com/dsouth/femtobook/book"
)

// EventKind tags what happened inside one AddOrder/CancelOrder/ModifyOrder
// call that a subscriber might care about.
type EventKind uint8

const (
	OrderAccepted EventKind = iota
	OrderRejected
	Execution
	Canceled
)

func (k EventKind) String() string {
	switch k {
	case OrderAccepted:
		return "ORDER_ACCEPTED"
	case OrderRejected:
		return "ORDER_REJECTED"
	case Execution:
		return "EXECUTION"
	case Canceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

// OutputEvent is the wire/event-stream shape derived from a book.Trade or
// a mutating operation's outcome. It is never produced by the core
// itself — the core returns only trades, bools and errors per
// SPEC_FULL.md §4.1 — this is a thin adapter.
type OutputEvent struct {
	Kind           EventKind
	OrderID        book.OrderID
	CounterOrderID book.OrderID // populated for Execution
	Side           book.Side
	Price          book.Price
	Qty            book.Qty
	Trader         uuid.UUID
}

// CommandKind tags which of the three mutating operations an InputCommand
// carries.
type CommandKind uint8

const (
	SubmitOrder CommandKind = iota
	CancelOrder
	ModifyOrder
)

// InputCommand is produced by the TCP server's sessions and consumed by
// the single goroutine that owns the book.Engine. The simulator does not
// use it: that goroutine ticks the simulator, which calls the engine
// directly.
type InputCommand struct {
	Kind     CommandKind
	Order    book.Order        // for SubmitOrder
	CancelID book.OrderID      // for CancelOrder
	Modify   book.ModifyRequest // for ModifyOrder
	Trader   uuid.UUID
}

// TradesToEvents converts the trades returned by AddOrder into Execution
// events, one per fill, in the same execution order.
func TradesToEvents(trader uuid.UUID, aggressorSide book.Side, trades []book.Trade) []OutputEvent {
	out := make([]OutputEvent, 0, len(trades))
	for _, tr := range trades {
		aggressorID, counterID := tr.SellID, tr.BuyID
		if aggressorSide == book.Buy {
			aggressorID, counterID = tr.BuyID, tr.SellID
		}
		out = append(out, OutputEvent{
			Kind:           Execution,
			OrderID:        aggressorID,
			CounterOrderID: counterID,
			Side:           aggressorSide,
			Price:          tr.Price,
			Qty:            tr.Qty,
			Trader:         trader,
		})
	}
	return out
}

// TradesToEventsForOrder is TradesToEvents without requiring the caller
// to already know the aggressor's side: it derives it by finding
// aggressorID on either the buy or sell leg of the first trade. Useful
// for callers (e.g. the modify path) that only have the order id, not its
// side, to hand.
func TradesToEventsForOrder(trader uuid.UUID, aggressorID book.OrderID, trades []book.Trade) []OutputEvent {
	if len(trades) == 0 {
		return nil
	}
	side := book.Sell
	if trades[0].BuyID == aggressorID {
		side = book.Buy
	}
	return TradesToEvents(trader, side, trades)
}

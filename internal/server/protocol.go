package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dsouth/femtobook/book"
	"github.com/dsouth/femtobook/internal/bus"
)

// parseCommand decodes one line of the order-entry protocol:
//
//	LIMIT <side> <type> <tif> <price> <qty>
//	CANCEL <id>
//	MODIFY <id> <price> <qty>
//
// side is BUY/SELL, type is LIMIT/MARKET, tif is GTC/IOC/FOK. This widens
// the teacher's fixed "LIMIT symbol side price size" line to carry the
// type/TIF the core's order model requires (SPEC_FULL.md §4.10).
func parseCommand(line string) (bus.InputCommand, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return bus.InputCommand{}, fmt.Errorf("server: empty command")
	}

	switch strings.ToUpper(fields[0]) {
	case "LIMIT":
		return parseLimit(fields)
	case "CANCEL":
		return parseCancel(fields)
	case "MODIFY":
		return parseModify(fields)
	default:
		return bus.InputCommand{}, fmt.Errorf("server: unknown command %q", fields[0])
	}
}

func parseLimit(fields []string) (bus.InputCommand, error) {
	if len(fields) != 6 {
		return bus.InputCommand{}, fmt.Errorf("server: LIMIT wants 5 arguments, got %d", len(fields)-1)
	}
	side, err := parseSide(fields[1])
	if err != nil {
		return bus.InputCommand{}, err
	}
	typ, err := parseOrderType(fields[2])
	if err != nil {
		return bus.InputCommand{}, err
	}
	tif, err := parseTIF(fields[3])
	if err != nil {
		return bus.InputCommand{}, err
	}
	price, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return bus.InputCommand{}, fmt.Errorf("server: bad price %q: %w", fields[4], err)
	}
	qty, err := strconv.ParseUint(fields[5], 10, 64)
	if err != nil {
		return bus.InputCommand{}, fmt.Errorf("server: bad qty %q: %w", fields[5], err)
	}

	return bus.InputCommand{
		Kind: bus.SubmitOrder,
		Order: book.Order{
			Side:     side,
			Type:     typ,
			Price:    book.Price(price),
			Original: book.Qty(qty),
			TIF:      tif,
		},
	}, nil
}

func parseCancel(fields []string) (bus.InputCommand, error) {
	if len(fields) != 2 {
		return bus.InputCommand{}, fmt.Errorf("server: CANCEL wants 1 argument, got %d", len(fields)-1)
	}
	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return bus.InputCommand{}, fmt.Errorf("server: bad order id %q: %w", fields[1], err)
	}
	return bus.InputCommand{Kind: bus.CancelOrder, CancelID: book.OrderID(id)}, nil
}

func parseModify(fields []string) (bus.InputCommand, error) {
	if len(fields) != 4 {
		return bus.InputCommand{}, fmt.Errorf("server: MODIFY wants 3 arguments, got %d", len(fields)-1)
	}
	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return bus.InputCommand{}, fmt.Errorf("server: bad order id %q: %w", fields[1], err)
	}
	price, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return bus.InputCommand{}, fmt.Errorf("server: bad price %q: %w", fields[2], err)
	}
	qty, err := strconv.ParseUint(fields[3], 10, 64)
	if err != nil {
		return bus.InputCommand{}, fmt.Errorf("server: bad qty %q: %w", fields[3], err)
	}
	return bus.InputCommand{
		Kind:   bus.ModifyOrder,
		Modify: book.ModifyRequest{ID: book.OrderID(id), Price: book.Price(price), Qty: book.Qty(qty)},
	}, nil
}

func parseSide(s string) (book.Side, error) {
	switch strings.ToUpper(s) {
	case "BUY":
		return book.Buy, nil
	case "SELL":
		return book.Sell, nil
	default:
		return 0, fmt.Errorf("server: bad side %q", s)
	}
}

func parseOrderType(s string) (book.OrderType, error) {
	switch strings.ToUpper(s) {
	case "LIMIT":
		return book.Limit, nil
	case "MARKET":
		return book.Market, nil
	default:
		return 0, fmt.Errorf("server: bad order type %q", s)
	}
}

func parseTIF(s string) (book.TIF, error) {
	switch strings.ToUpper(s) {
	case "GTC":
		return book.GTC, nil
	case "IOC":
		return book.IOC, nil
	case "FOK":
		return book.FOK, nil
	default:
		return 0, fmt.Errorf("server: bad TIF %q", s)
	}
}

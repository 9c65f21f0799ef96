package server

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dsouth/femtobook/book"
	"github.com/dsouth/femtobook/internal/bus"
	"github.com/dsouth/femtobook/internal/ring"
)

// runLoop drains in into engine on a background goroutine, checking stop
// between batches, mirroring the single goroutine the CLI starts between the server/
// simulator producers and the book.Engine, including assigning a fresh
// id to each SubmitOrder the same way cmd/femtobook's real dispatch
// does — the wire protocol never carries an id for a new order.
func runLoop(t *testing.T, engine *book.Engine, in *ring.Buffer[bus.InputCommand], stop chan struct{}) {
	t.Helper()
	go func() {
		buf := make([]bus.InputCommand, 16)
		for {
			select {
			case <-stop:
				return
			default:
			}
			n := in.Read(buf)
			for i := 0; i < n; i++ {
				cmd := buf[i]
				switch cmd.Kind {
				case bus.SubmitOrder:
					cmd.Order.ID = engine.NextOrderID()
					engine.AddOrder(cmd.Order)
				case bus.CancelOrder:
					engine.CancelOrder(cmd.CancelID)
				case bus.ModifyOrder:
					engine.ModifyOrder(cmd.Modify)
				}
			}
		}
	}()
}

func TestTCPLimitCancelModifyRoundTrip(t *testing.T) {
	engine := book.NewEngine()
	in := ring.New[bus.InputCommand](64)
	stop := make(chan struct{})
	defer close(stop)
	runLoop(t, engine, in, stop)

	srv := New("127.0.0.1:0", in, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv.listener = ln
	go srv.acceptLoop(ln)
	defer srv.Close()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	w := bufio.NewWriter(conn)

	_, err = w.WriteString("LIMIT BUY LIMIT GTC 100 10\n")
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	require.Eventually(t, func() bool { return engine.OrderCount() == 1 }, time.Second, time.Millisecond)

	bid, ok := engine.BestBid()
	require.True(t, ok)
	require.Equal(t, book.Price(100), bid)

	_, err = w.WriteString("MODIFY 1 101 5\n")
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	require.Eventually(t, func() bool {
		bid, ok := engine.BestBid()
		return ok && bid == 101
	}, time.Second, time.Millisecond)

	_, err = w.WriteString("CANCEL 1\n")
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	require.Eventually(t, func() bool { return engine.IsEmpty() }, time.Second, time.Millisecond)
}

func TestParseCommandRejectsMalformedInput(t *testing.T) {
	for _, line := range []string{
		"",
		"LIMIT BUY LIMIT GTC 100",
		"CANCEL notanumber",
		"MODIFY 1 100",
		"FROB 1",
	} {
		_, err := parseCommand(line)
		require.Error(t, err, "expected error for %q", line)
	}
}

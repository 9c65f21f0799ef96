// Package sim is the random market simulator: a driver collaborator that
// constructs synthetic orders and feeds them through book.Engine's public
// operations only, per SPEC_FULL.md §4.7. It is grounded on
// original_source/OrderBook/include/marketSimulator.h's action/order/TIF
// mix and original_source/src/benchmark.cpp's fixed-seed reproducibility,
// and reuses the teacher's xorshift PRNG and fixed-size recent-id window
// (main.go's fastRand and recentIDs) instead of math/rand, since neither
// needs cryptographic quality and xorshift is materially cheaper per
// tick.
package sim

import "github.com/dsouth/femtobook/book"

// Config parameterizes the synthetic order flow.
type Config struct {
	CenterPrice book.Price // moving mid the simulator seeds liquidity around
	SpreadHalf  book.Price // half-width of the gap deliberately left around the mid
	Band        book.Price // width of the price band on each side of the spread
	MaxQty      book.Qty   // quantities are drawn uniformly from [1, MaxQty]
	Seed        uint64     // xorshift seed; 0 is remapped to 1 (xorshift's fixed point)
	TrackWindow int        // how many recent order ids are kept as cancel/modify targets
	DriftEvery  int        // ticks between center-price random-walk steps; 0 disables drift
	DriftStep   book.Price // magnitude of each random-walk step
}

// DefaultConfig mirrors the original simulator's defaults (center 10000,
// spread-half 50, 100-tick bands either side, quantities up to 1000).
func DefaultConfig() Config {
	return Config{
		CenterPrice: 10000,
		SpreadHalf:  50,
		Band:        100,
		MaxQty:      1000,
		Seed:        0xC0FFEE,
		TrackWindow: 1024,
		DriftEvery:  500,
		DriftStep:   1,
	}
}

// Stats tallies the actions a Simulator has driven through the engine so
// far, mirroring original_source/src/benchmark.cpp's BenchmarkResult
// (adds/cancels/modifies/trades), per SPEC_FULL.md §4.9.
type Stats struct {
	Adds     uint64
	Cancels  uint64
	Modifies uint64
	Trades   uint64
}

// Simulator drives a book.Engine with synthetic order flow. It must only
// ever be ticked from the goroutine that owns the Engine.
type Simulator struct {
	engine *book.Engine
	cfg    Config
	rng    uint64
	ticks  int
	stats  Stats

	recent      []book.OrderID
	recentCount int
}

// New returns a Simulator bound to engine.
func New(engine *book.Engine, cfg Config) *Simulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}
	window := cfg.TrackWindow
	if window <= 0 {
		window = 1024
	}
	return &Simulator{
		engine: engine,
		cfg:    cfg,
		rng:    seed,
		recent: make([]book.OrderID, window),
	}
}

// fastRand is a xorshift64 step, faster than crypto/rand or math/rand for
// high-frequency synthetic load generation.
func (s *Simulator) fastRand() uint32 {
	s.rng ^= s.rng << 13
	s.rng ^= s.rng >> 7
	s.rng ^= s.rng << 17
	return uint32(s.rng)
}

// Tick performs exactly one simulated action: 70% add, 20% cancel, 10%
// modify (always add if nothing is tracked yet to cancel/modify).
func (s *Simulator) Tick() {
	s.ticks++
	if s.cfg.DriftEvery > 0 && s.ticks%s.cfg.DriftEvery == 0 {
		s.driftCenter()
	}

	action := s.fastRand() % 100
	switch {
	case action < 70 || s.recentCount == 0:
		s.addRandomOrder()
	case action < 90:
		s.cancelRandomOrder()
	default:
		s.modifyRandomOrder()
	}
}

// Stats returns a snapshot of the action/trade counts accumulated since
// the Simulator was created.
func (s *Simulator) Stats() Stats {
	return s.stats
}

func (s *Simulator) driftCenter() {
	if s.fastRand()%2 == 0 {
		s.cfg.CenterPrice += s.cfg.DriftStep
	} else {
		s.cfg.CenterPrice -= s.cfg.DriftStep
	}
}

func (s *Simulator) addRandomOrder() {
	side := book.Buy
	if s.fastRand()%2 == 1 {
		side = book.Sell
	}

	isMarket := s.fastRand()%100 < 10 // 90% limit, 10% market
	var (
		typ   = book.Limit
		tif   = book.GTC
		price book.Price
	)
	if isMarket {
		typ = book.Market
		tif = book.IOC
	} else {
		tifRoll := s.fastRand() % 100 // 80% GTC, 15% IOC, 5% FOK
		switch {
		case tifRoll < 80:
			tif = book.GTC
		case tifRoll < 95:
			tif = book.IOC
		default:
			tif = book.FOK
		}
		price = s.priceFor(side)
	}

	qty := book.Qty(1+s.fastRand()%uint32(s.cfg.MaxQty))
	id := s.engine.NextOrderID()

	order := book.Order{ID: id, Side: side, Type: typ, Price: price, Original: qty, TIF: tif}
	trades := s.engine.AddOrder(order)

	s.stats.Adds++
	s.stats.Trades += uint64(len(trades))

	if typ == book.Limit && tif == book.GTC {
		s.track(id)
	}
}

// priceFor draws a price from the non-crossing band on side's side of the
// spread, so GTC resting liquidity accumulates before aggressive orders
// start consuming it.
func (s *Simulator) priceFor(side book.Side) book.Price {
	offset := book.Price(s.fastRand() % uint32(s.cfg.Band))
	if side == book.Buy {
		return s.cfg.CenterPrice - s.cfg.SpreadHalf - offset
	}
	return s.cfg.CenterPrice + s.cfg.SpreadHalf + offset
}

func (s *Simulator) cancelRandomOrder() {
	id, ok := s.pickTracked()
	if !ok {
		return
	}
	s.engine.CancelOrder(id) // false (no-op) if it already filled/cancelled; not an error
	s.stats.Cancels++
}

func (s *Simulator) modifyRandomOrder() {
	id, ok := s.pickTracked()
	if !ok {
		return
	}
	side := book.Buy
	if s.fastRand()%2 == 1 {
		side = book.Sell
	}
	qty := book.Qty(1 + s.fastRand()%uint32(s.cfg.MaxQty))
	trades, err := s.engine.ModifyOrder(book.ModifyRequest{ID: id, Price: s.priceFor(side), Qty: qty})
	// ErrOrderNotFound is expected whenever the tracked id already
	// resolved (filled or cancelled); the simulator does not special-case it.
	s.stats.Modifies++
	if err == nil {
		s.stats.Trades += uint64(len(trades))
	}
}

// track records id in the fixed-size recent-id window, overwriting the
// oldest entry once full (mirrors the teacher's recentIDs array).
func (s *Simulator) track(id book.OrderID) {
	s.recent[s.recentCount%len(s.recent)] = id
	s.recentCount++
}

func (s *Simulator) pickTracked() (book.OrderID, bool) {
	if s.recentCount == 0 {
		return 0, false
	}
	window := len(s.recent)
	if s.recentCount < window {
		window = s.recentCount
	}
	idx := int(s.fastRand()) % window
	return s.recent[idx], true
}

// Package binance implements the Binance-style JSON/WebSocket leg of the MD
// Normalizer (spec C7): depth snapshots, book-ticker top-of-book, and trade
// stream payloads, normalized into model.CanonicalBook/CanonicalTick.
//
// Transport follows the teacher pack's WebSocket feed shape (auto-reconnect
// with exponential backoff, a dedicated read loop invoking a callback);
// JSON parsing uses valyala/fastjson rather than encoding/json so the hot
// path of normalizing a depth update does not allocate a throwaway struct
// per message.
package binance

import (
	"context"
	"math/rand"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"github.com/nyx-systems/fixcore/logging"
	"github.com/nyx-systems/fixcore/model"
)

const (
	minReconnectDelay = time.Second
	maxReconnectDelay = 30 * time.Second
	readTimeout       = 90 * time.Second
)

// Normalizer holds one CanonicalBook per symbol, fed from combined-stream
// JSON payloads, plus the rolling buy/sell volume the trade stream
// contributes to each symbol's next CanonicalTick (spec §4.6: "Trade stream
// updates buyVol/sellVol based on the m flag").
type Normalizer struct {
	books   map[string]*model.CanonicalBook
	volumes map[string]volumePair
}

type volumePair struct {
	buy, sell decimal.Decimal
}

// NewNormalizer returns an empty normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		books:   make(map[string]*model.CanonicalBook),
		volumes: make(map[string]volumePair),
	}
}

func (n *Normalizer) book(symbol string) *model.CanonicalBook {
	b, ok := n.books[symbol]
	if !ok {
		b = &model.CanonicalBook{Symbol: model.SymbolFromString(symbol)}
		n.books[symbol] = b
	}
	return b
}

// Feed manages one WebSocket connection to a combined-stream endpoint
// (`/stream?streams=...`), auto-reconnecting with exponential backoff and
// delivering each normalized message to onUpdate.
type Feed struct {
	url        string
	normalizer *Normalizer
	onUpdate   func(symbol string, book *model.CanonicalBook, tick *model.CanonicalTick)
	logger     *logging.Logger
}

// NewFeed constructs a Feed pointed at url (a combined-stream endpoint).
// onUpdate is invoked after every depth/bookTicker/trade message is
// normalized. logger may be nil, in which case dial/reconnect failures are
// silently absorbed rather than logged.
func NewFeed(url string, onUpdate func(symbol string, book *model.CanonicalBook, tick *model.CanonicalTick), logger *logging.Logger) *Feed {
	return &Feed{url: url, normalizer: NewNormalizer(), onUpdate: onUpdate, logger: logger}
}

// Run connects and processes messages until ctx is canceled, reconnecting
// with exponential backoff on any read error.
func (f *Feed) Run(ctx context.Context) {
	delay := minReconnectDelay
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
		if err != nil {
			if f.logger != nil {
				f.logger.Warn("binance: dial failed", zap.String("url", f.url), zap.Error(err))
			}
			if !sleepWithContext(ctx, jitter(delay)) {
				return
			}
			delay = nextDelay(delay)
			continue
		}
		delay = minReconnectDelay

		f.readLoop(ctx, conn)
		_ = conn.Close()

		select {
		case <-ctx.Done():
			return
		default:
		}
		if !sleepWithContext(ctx, jitter(delay)) {
			return
		}
		delay = nextDelay(delay)
	}
}

func (f *Feed) readLoop(ctx context.Context, conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	var p fastjson.Parser
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		v, err := p.ParseBytes(raw)
		if err != nil {
			continue
		}
		f.handleValue(v)
	}
}

// handleValue dispatches a parsed combined-stream envelope (or a bare
// single-stream payload) by inspecting its shape: depth updates carry
// "bids"/"asks" arrays, book-ticker carries "b"/"B"/"a"/"A" scalars, trade carries
// "p"/"q"/"m".
func (f *Feed) handleValue(v *fastjson.Value) {
	payload := v
	if data := v.Get("data"); data != nil {
		payload = data
	}

	symbol := string(payload.GetStringBytes("s"))
	if symbol == "" {
		return
	}
	book := f.normalizer.book(symbol)

	switch {
	case payload.Exists("bids") || payload.Exists("asks"):
		applyDepth(book, payload)
	case payload.Exists("b") && payload.Exists("B") && payload.Exists("a") && payload.Exists("A"):
		applyBookTicker(book, payload)
	case payload.Exists("p") && payload.Exists("q") && payload.Exists("m"):
		f.applyTrade(symbol, book, payload)
	default:
		return
	}

	tick := f.toTick(symbol, book)
	f.normalizer.volumes[symbol] = volumePair{}
	if f.onUpdate != nil {
		f.onUpdate(symbol, book, &tick)
	}
}

func applyDepth(book *model.CanonicalBook, v *fastjson.Value) {
	book.Clear()
	fillSide(&book.Bids, v.GetArray("bids"))
	fillSide(&book.Asks, v.GetArray("asks"))
	book.TsLocalMicros = time.Now().UnixMicro()
}

func fillSide(levels *[model.BookDepth]model.Level, entries []*fastjson.Value) {
	for i, e := range entries {
		if i >= model.BookDepth {
			break
		}
		arr, err := e.Array()
		if err != nil || len(arr) < 2 {
			continue
		}
		levels[i] = model.Level{
			Price: decimalFromJSON(arr[0]),
			Size:  decimalFromJSON(arr[1]),
		}
	}
}

func applyBookTicker(book *model.CanonicalBook, v *fastjson.Value) {
	book.Bids[0] = model.Level{Price: decimalFromJSON(v.Get("b")), Size: decimalFromJSON(v.Get("B"))}
	book.Asks[0] = model.Level{Price: decimalFromJSON(v.Get("a")), Size: decimalFromJSON(v.Get("A"))}
	book.TsLocalMicros = time.Now().UnixMicro()
}

// applyTrade accumulates buy/sell volume for symbol: buyer-is-maker ("m"
// true) means a sell-side aggressor traded into the bid, so the volume
// counts as sell flow; otherwise it counts as buy flow.
func (f *Feed) applyTrade(symbol string, book *model.CanonicalBook, v *fastjson.Value) {
	book.TsLocalMicros = time.Now().UnixMicro()
	qty := decimalFromJSON(v.Get("q"))
	vp := f.normalizer.volumes[symbol]
	if v.GetBool("m") {
		vp.sell = vp.sell.Add(qty)
	} else {
		vp.buy = vp.buy.Add(qty)
	}
	f.normalizer.volumes[symbol] = vp
}

// decimalFromJSON reads a price/size field that Binance-style payloads
// represent either as a JSON string (REST depth snapshots) or a bare number
// (some WebSocket payloads), returning decimal.Zero for anything else.
func decimalFromJSON(v *fastjson.Value) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	switch v.Type() {
	case fastjson.TypeString:
		d, err := decimal.NewFromString(string(v.GetStringBytes()))
		if err != nil {
			return decimal.Zero
		}
		return d
	case fastjson.TypeNumber:
		return decimal.NewFromFloat(v.GetFloat64())
	default:
		return decimal.Zero
	}
}

func (f *Feed) toTick(symbol string, book *model.CanonicalBook) model.CanonicalTick {
	vp := f.normalizer.volumes[symbol]
	return model.CanonicalTick{
		Symbol:           book.Symbol,
		Bid:              book.Bids[0].Price,
		Ask:              book.Asks[0].Price,
		BidSize:          book.Bids[0].Size,
		AskSize:          book.Asks[0].Size,
		BuyVolume:        vp.buy,
		SellVolume:       vp.sell,
		TsExchangeMillis: book.TsExchangeMillis,
		TsLocalMicros:    book.TsLocalMicros,
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func jitter(d time.Duration) time.Duration {
	return time.Duration(float64(d) * (0.8 + 0.4*rand.Float64()))
}

func nextDelay(d time.Duration) time.Duration {
	next := d * 2
	if next > maxReconnectDelay {
		return maxReconnectDelay
	}
	return next
}

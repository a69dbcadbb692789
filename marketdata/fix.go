// Package marketdata implements the MD Normalizer spec component C7
// describes: ingestion of FIX market-data-snapshot/incremental messages
// (and, in the marketdata/binance subpackage, a Binance-style JSON feed)
// into the canonical model.CanonicalBook/CanonicalTick shape, with mid,
// spread, imbalance and pressure derived on every update.
package marketdata

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nyx-systems/fixcore/constants"
	"github.com/nyx-systems/fixcore/fixcodec"
	"github.com/nyx-systems/fixcore/model"
)

// FixNormalizer holds one CanonicalBook per symbol and applies FIX
// MarketDataSnapshot (35=W) / MarketDataIncremental (35=X) messages to it.
type FixNormalizer struct {
	books map[string]*model.CanonicalBook
}

// NewFixNormalizer returns an empty normalizer.
func NewFixNormalizer() *FixNormalizer {
	return &FixNormalizer{books: make(map[string]*model.CanonicalBook)}
}

// Book returns the current book for symbol, creating an empty one on first
// reference.
func (n *FixNormalizer) Book(symbol string) *model.CanonicalBook {
	b, ok := n.books[symbol]
	if !ok {
		b = &model.CanonicalBook{Symbol: model.SymbolFromString(symbol)}
		n.books[symbol] = b
	}
	return b
}

// mdEntry is one decoded repeating-group entry from tags 269/270/271/290.
type mdEntry struct {
	entryType string
	price     float64
	size      float64
	posNo     int
	action    string // only meaningful on incremental (35=X)
}

// Apply ingests one decoded FIX message, dispatching on MsgType (35). It
// returns the affected symbol's book, or nil if the message carried no
// usable market-data content.
func (n *FixNormalizer) Apply(msg *fixcodec.Message) *model.CanonicalBook {
	msgType, _ := msg.String(int(constants.TagMsgType))
	symbol, ok := msg.String(int(constants.TagSymbol))
	if !ok {
		return nil
	}
	book := n.Book(symbol)
	entries := decodeMDEntries(msg)

	switch msgType {
	case constants.MsgTypeMarketDataSnapshot:
		applySnapshot(book, entries)
	case constants.MsgTypeMarketDataIncremental:
		applyIncremental(book, entries)
	default:
		return nil
	}
	book.TsExchangeMillis = exchangeTimestampMillis(msg)
	book.TsLocalMicros = time.Now().UnixMicro()
	return book
}

// decodeMDEntries decodes the tag-268/269/270/271/290/279 repeating group:
// every 269=MDEntryType occurrence in the wire message starts one entry,
// accumulating whatever of 270/271/290/279 follow it until the next 269 or
// end of message. A snapshot or incremental with several levels arrives as
// one message carrying several group instances; BeginSnapshot still clears
// the book once before a snapshot, but a single Apply call now processes
// the whole group rather than one level at a time.
func decodeMDEntries(msg *fixcodec.Message) []mdEntry {
	groups := msg.Groups(int(constants.TagMdEntryType),
		int(constants.TagMdEntryPx), int(constants.TagMdEntrySize),
		int(constants.TagMdEntryPositionNo), int(constants.TagMdUpdateAction))

	entries := make([]mdEntry, 0, len(groups))
	for _, g := range groups {
		entryType, hasType := g.String(int(constants.TagMdEntryType))
		if !hasType {
			continue
		}
		price, _ := g.Float64(int(constants.TagMdEntryPx))
		size, _ := g.Float64(int(constants.TagMdEntrySize))
		action, _ := g.String(int(constants.TagMdUpdateAction))

		e := mdEntry{entryType: entryType, price: price, size: size, action: action}
		if posNo, hasPos := g.Int(int(constants.TagMdEntryPositionNo)); hasPos {
			e.posNo = int(posNo)
		}
		entries = append(entries, e)
	}
	return entries
}

// applySnapshot places entries into book. A level not covered by any entry
// across the snapshot's group is left zeroed per spec §4.6 "Topology" —
// callers must call BeginSnapshot once before the first Apply of a new
// snapshot.
func applySnapshot(book *model.CanonicalBook, entries []mdEntry) {
	for _, e := range entries {
		placeEntry(book, e)
	}
	recompute(book)
}

// BeginSnapshot clears symbol's book ahead of a MarketDataSnapshot message,
// since a snapshot replaces the whole book rather than merging into it.
func (n *FixNormalizer) BeginSnapshot(symbol string) {
	n.Book(symbol).Clear()
}

// applyIncremental updates or inserts by price level; action 2 (delete)
// zeroes the matching level.
func applyIncremental(book *model.CanonicalBook, entries []mdEntry) {
	for _, e := range entries {
		if e.action == constants.MDUpdateActionDelete {
			removeLevel(book, e)
			continue
		}
		placeEntry(book, e)
	}
	recompute(book)
}

func placeEntry(book *model.CanonicalBook, e mdEntry) {
	lvl := model.Level{Price: decimal.NewFromFloat(e.price), Size: decimal.NewFromFloat(e.size)}
	switch e.entryType {
	case constants.MdEntryTypeBid:
		insertSorted(&book.Bids, lvl, e.posNo, true)
	case constants.MdEntryTypeOffer:
		insertSorted(&book.Asks, lvl, e.posNo, false)
	}
}

func removeLevel(book *model.CanonicalBook, e mdEntry) {
	switch e.entryType {
	case constants.MdEntryTypeBid:
		removeAt(&book.Bids, e.posNo, e.price)
	case constants.MdEntryTypeOffer:
		removeAt(&book.Asks, e.posNo, e.price)
	}
}

// levelEmpty reports whether a slot holds no level, per model.Level's own
// doc comment (Size == 0 means absent).
func levelEmpty(l model.Level) bool {
	return l.Size.IsZero()
}

// insertSorted updates or inserts lvl per spec §4.6 "incrementals update or
// insert by price level": a level already present at lvl.Price is merged in
// place (its size overwritten, not re-ranked, since the price hasn't moved).
// Only when no existing level matches does it fall back to the
// venue-supplied position (1-indexed, when posNo > 0) or a sorted insert by
// price (bids descending, asks ascending), shifting down and truncating at
// N=10.
func insertSorted(levels *[model.BookDepth]model.Level, lvl model.Level, posNo int, descending bool) {
	for i := 0; i < model.BookDepth; i++ {
		if !levelEmpty(levels[i]) && levels[i].Price.Equal(lvl.Price) {
			levels[i].Size = lvl.Size
			return
		}
	}

	if posNo > 0 && posNo <= model.BookDepth {
		levels[posNo-1] = lvl
		return
	}
	for i := 0; i < model.BookDepth; i++ {
		if levelEmpty(levels[i]) {
			levels[i] = lvl
			sortLevels(levels, descending)
			return
		}
		if (descending && lvl.Price.GreaterThan(levels[i].Price)) ||
			(!descending && lvl.Price.LessThan(levels[i].Price)) {
			copy(levels[i+1:], levels[i:model.BookDepth-1])
			levels[i] = lvl
			return
		}
	}
}

func sortLevels(levels *[model.BookDepth]model.Level, descending bool) {
	for i := 1; i < model.BookDepth; i++ {
		for j := i; j > 0; j-- {
			swap := false
			if descending {
				swap = levels[j].Price.GreaterThan(levels[j-1].Price)
			} else {
				if !levels[j].Price.IsZero() {
					swap = levels[j-1].Price.IsZero() || levels[j].Price.LessThan(levels[j-1].Price)
				}
			}
			if !swap {
				break
			}
			levels[j], levels[j-1] = levels[j-1], levels[j]
		}
	}
}

func removeAt(levels *[model.BookDepth]model.Level, posNo int, price float64) {
	if posNo > 0 && posNo <= model.BookDepth {
		levels[posNo-1] = model.Level{}
		return
	}
	target := decimal.NewFromFloat(price)
	for i := 0; i < model.BookDepth; i++ {
		if levels[i].Price.Equal(target) {
			copy(levels[i:model.BookDepth-1], levels[i+1:])
			levels[model.BookDepth-1] = model.Level{}
			return
		}
	}
}

func recompute(book *model.CanonicalBook) {
	_ = book.Mid()
	_ = book.Pressure()
}

// ToTick projects book's top-of-book into a CanonicalTick for the pipeline
// (C8), which consumes ticks rather than full books on its hot path.
func ToTick(book *model.CanonicalBook) model.CanonicalTick {
	return model.CanonicalTick{
		Symbol:           book.Symbol,
		Bid:              book.Bids[0].Price,
		Ask:              book.Asks[0].Price,
		BidSize:          book.Bids[0].Size,
		AskSize:          book.Asks[0].Size,
		TsExchangeMillis: book.TsExchangeMillis,
		TsLocalMicros:    book.TsLocalMicros,
	}
}

// exchangeTimestampMillis returns tsExchange from the MDEntryTime field if
// present, otherwise 0, per spec §4.6 "Derivation".
func exchangeTimestampMillis(msg *fixcodec.Message) int64 {
	s, ok := msg.String(int(constants.TagMdEntryTime))
	if !ok {
		return 0
	}
	t, err := time.Parse(constants.FixTimeFormat, s)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}

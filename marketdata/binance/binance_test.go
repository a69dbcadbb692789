package binance

import (
	"testing"

	"github.com/valyala/fastjson"

	"github.com/nyx-systems/fixcore/model"
)

func TestHandleValueDepthUpdatesBook(t *testing.T) {
	var got struct {
		symbol string
		bid    string
	}
	f := NewFeed("wss://example", func(symbol string, book *model.CanonicalBook, tick *model.CanonicalTick) {
		got.symbol = symbol
		got.bid = book.Bids[0].Price.String()
	}, nil)

	var p fastjson.Parser
	v, err := p.Parse(`{"data":{"s":"BTCUSDT","bids":[["50000.5","1.2"]],"asks":[["50001.0","0.8"]]}}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f.handleValue(v)

	if got.symbol != "BTCUSDT" {
		t.Fatalf("symbol = %q", got.symbol)
	}
	if got.bid != "50000.5" {
		t.Fatalf("bid = %q", got.bid)
	}
}

func TestHandleValueTradeAccumulatesVolume(t *testing.T) {
	var lastTick model.CanonicalTick
	f := NewFeed("wss://example", func(symbol string, book *model.CanonicalBook, tick *model.CanonicalTick) {
		lastTick = *tick
	}, nil)

	var p fastjson.Parser
	depth, _ := p.Parse(`{"s":"BTCUSDT","bids":[["100","1"]],"asks":[["101","1"]]}`)
	f.handleValue(depth)

	var p2 fastjson.Parser
	trade, _ := p2.Parse(`{"s":"BTCUSDT","p":"100.5","q":"2.0","m":true}`)
	f.handleValue(trade)

	if lastTick.SellVolume.String() != "2" {
		t.Fatalf("SellVolume = %s, want 2 (buyer-is-maker trade counts as sell flow)", lastTick.SellVolume.String())
	}
	if !lastTick.BuyVolume.IsZero() {
		t.Fatalf("BuyVolume = %s, want 0", lastTick.BuyVolume.String())
	}
}

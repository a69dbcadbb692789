package marketdata

import (
	"testing"

	"github.com/nyx-systems/fixcore/fixcodec"
)

func decodeOrFail(t *testing.T, raw string) *fixcodec.Message {
	t.Helper()
	m, err := fixcodec.Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return m
}

func TestApplySnapshotPlacesBidAndAsk(t *testing.T) {
	n := NewFixNormalizer()
	n.BeginSnapshot("BTC-USD")

	bid := decodeOrFail(t, "35=W\x0155=BTC-USD\x01269=0\x01270=50000\x01271=2\x01")
	n.Apply(bid)
	ask := decodeOrFail(t, "35=W\x0155=BTC-USD\x01269=1\x01270=50010\x01271=3\x01")
	book := n.Apply(ask)

	if book.Bids[0].Price.String() != "50000" {
		t.Fatalf("bid price = %s", book.Bids[0].Price.String())
	}
	if book.Asks[0].Price.String() != "50010" {
		t.Fatalf("ask price = %s", book.Asks[0].Price.String())
	}
	if book.Crossed() {
		t.Fatal("book should not be crossed")
	}
}

func TestApplyIncrementalDeleteZeroesLevel(t *testing.T) {
	n := NewFixNormalizer()
	n.BeginSnapshot("BTC-USD")
	n.Apply(decodeOrFail(t, "35=W\x0155=BTC-USD\x01269=0\x01270=50000\x01271=2\x01290=1\x01"))

	book := n.Apply(decodeOrFail(t, "35=X\x0155=BTC-USD\x01269=0\x01279=2\x01290=1\x01"))

	if !book.Bids[0].Size.IsZero() {
		t.Fatalf("expected bid level 1 to be zeroed, got size %s", book.Bids[0].Size.String())
	}
}

func TestApplyIncrementalMergesSamePriceLevel(t *testing.T) {
	n := NewFixNormalizer()
	n.BeginSnapshot("BTC-USD")
	n.Apply(decodeOrFail(t, "35=W\x0155=BTC-USD\x01269=0\x01270=100\x01271=5\x01269=0\x01270=99\x01271=3\x01"))

	book := n.Apply(decodeOrFail(t, "35=X\x0155=BTC-USD\x01269=0\x01270=100\x01271=7\x01279=1\x01"))

	if book.Bids[0].Price.String() != "100" || book.Bids[0].Size.String() != "7" {
		t.Fatalf("bid[0] = %s/%s, want 100/7", book.Bids[0].Price, book.Bids[0].Size)
	}
	if book.Bids[1].Price.String() != "99" || book.Bids[1].Size.String() != "3" {
		t.Fatalf("bid[1] = %s/%s, want 99/3", book.Bids[1].Price, book.Bids[1].Size)
	}
}

func TestApplySnapshotDecodesMultiEntryGroupInOneMessage(t *testing.T) {
	n := NewFixNormalizer()
	n.BeginSnapshot("BTC-USD")

	book := n.Apply(decodeOrFail(t,
		"35=W\x0155=BTC-USD\x01268=4\x01"+
			"269=0\x01270=100\x01271=5\x01290=1\x01"+
			"269=0\x01270=99\x01271=3\x01290=2\x01"+
			"269=1\x01270=101\x01271=2\x01290=1\x01"+
			"269=1\x01270=102\x01271=4\x01290=2\x01"))

	if book.Bids[0].Price.String() != "100" || book.Bids[1].Price.String() != "99" {
		t.Fatalf("bids = %+v", book.Bids)
	}
	if book.Asks[0].Price.String() != "101" || book.Asks[1].Price.String() != "102" {
		t.Fatalf("asks = %+v", book.Asks)
	}
}

func TestToTickProjectsTopOfBook(t *testing.T) {
	n := NewFixNormalizer()
	n.BeginSnapshot("BTC-USD")
	n.Apply(decodeOrFail(t, "35=W\x0155=BTC-USD\x01269=0\x01270=100\x01271=1\x01"))
	book := n.Apply(decodeOrFail(t, "35=W\x0155=BTC-USD\x01269=1\x01270=101\x01271=1\x01"))

	tick := ToTick(book)
	if tick.Bid.String() != "100" || tick.Ask.String() != "101" {
		t.Fatalf("tick = %+v", tick)
	}
}

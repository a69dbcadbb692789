package session

import (
	"testing"

	"github.com/nyx-systems/fixcore/fixcodec"
	"github.com/nyx-systems/fixcore/resend"
)

func newTestSession() *Session {
	return New(Config{
		SenderCompID: "SELF",
		TargetCompID: "PEER",
		HeartBtInt:   30,
	}, resend.New(), Handlers{})
}

func TestCheckSequenceInOrderAdvances(t *testing.T) {
	s := newTestSession()
	if ok := s.checkSequence(1, true, nil); !ok {
		t.Fatal("expected in-order sequence to be accepted")
	}
	if s.Snapshot().InboundSeq != 2 {
		t.Fatalf("InboundSeq = %d, want 2", s.Snapshot().InboundSeq)
	}
}

func TestCheckSequenceGapReportsError(t *testing.T) {
	var gotErr error
	s := New(Config{SenderCompID: "SELF", TargetCompID: "PEER", HeartBtInt: 30}, resend.New(), Handlers{
		OnError: func(err error) { gotErr = err },
	})
	if ok := s.checkSequence(5, true, nil); ok {
		t.Fatal("expected out-of-order sequence to be rejected for processing")
	}
	if gotErr != ErrSeqGap {
		t.Fatalf("err = %v, want ErrSeqGap", gotErr)
	}
	// expected_in_seq must not have advanced past the gap.
	if s.Snapshot().InboundSeq != 1 {
		t.Fatalf("InboundSeq = %d, want 1 (unchanged)", s.Snapshot().InboundSeq)
	}
}

func TestCheckSequenceLowWithPossDupAcceptsSilently(t *testing.T) {
	s := newTestSession()
	s.checkSequence(1, true, nil) // advance expected to 2

	raw := fixcodec.NewBuilder("FIX.4.4").
		Set(35, "D").
		SetInt(34, 1).
		Set(43, "Y").
		Build()
	msg, err := fixcodec.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if ok := s.checkSequence(1, true, msg); !ok {
		t.Fatal("expected PossDup low-seq message to be accepted silently")
	}
	if s.Snapshot().InboundSeq != 2 {
		t.Fatalf("InboundSeq = %d, want 2 (unchanged by silent accept)", s.Snapshot().InboundSeq)
	}
}

func TestCheckSequenceLowWithoutPossDupIsFatal(t *testing.T) {
	var gotErr error
	s := New(Config{SenderCompID: "SELF", TargetCompID: "PEER", HeartBtInt: 30}, resend.New(), Handlers{
		OnError: func(err error) { gotErr = err },
	})
	s.checkSequence(1, true, nil) // advance expected to 2

	raw := fixcodec.NewBuilder("FIX.4.4").Set(35, "D").SetInt(34, 1).Build()
	msg, _ := fixcodec.Decode(raw)

	if ok := s.checkSequence(1, true, msg); ok {
		t.Fatal("expected low sequence without PossDup to be fatal")
	}
	if gotErr != ErrSeqGap {
		t.Fatalf("err = %v, want ErrSeqGap", gotErr)
	}
}

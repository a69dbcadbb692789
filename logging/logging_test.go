package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLogFlushesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")
	l, err := Init(path, 32)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	l.Info("worker started", zap.String("symbol", "BTC-USD"))

	if err := l.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log file to contain the flushed record")
	}
}

func TestLogNeverBlocksOnFullRing(t *testing.T) {
	l, err := Init("", 32)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer l.Shutdown()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10_000; i++ {
			l.Info("tick")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Log calls blocked under a saturated ring")
	}
}

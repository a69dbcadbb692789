package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

const sample = `
; engine settings
[server]
http_port = 9090
ws_port = 9091

[engine]
mode = live
symbol = BTC-USD
log_path = /var/log/engine.log

# risk limits
[risk]
cooldown_ms = 500
max_ops_per_sec = 5
max_position_size = 10
max_global_notional = 1000000
max_notional_per_symbol = 500000
max_drawdown_pct = 0.2
max_daily_loss = 25000
min_confidence = 0.1
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.ini")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadParsesSections(t *testing.T) {
	cfg, err := Load(writeSample(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerHTTPPort != 9090 || cfg.ServerWSPort != 9091 {
		t.Fatalf("server ports = %d/%d, want 9090/9091", cfg.ServerHTTPPort, cfg.ServerWSPort)
	}
	if cfg.EngineMode != ModeLive || cfg.EngineSymbol != "BTC-USD" {
		t.Fatalf("engine mode/symbol = %v/%s, want live/BTC-USD", cfg.EngineMode, cfg.EngineSymbol)
	}
	if cfg.Risk.CooldownMs != 500 {
		t.Fatalf("risk.cooldown_ms = %d, want 500", cfg.Risk.CooldownMs)
	}
	if !cfg.Risk.MaxPositionSize.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("risk.max_position_size = %s, want 10", cfg.Risk.MaxPositionSize)
	}
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ini")
	if err := os.WriteFile(path, []byte("[engine]\nmode = paper\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unrecognized engine.mode")
	}
}

func TestLoadAppliesCooldownDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.ini")
	if err := os.WriteFile(path, []byte("[engine]\nmode = sim\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Risk.CooldownMs != 250 {
		t.Fatalf("default risk.cooldown_ms = %d, want 250", cfg.Risk.CooldownMs)
	}
}


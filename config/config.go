/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads the engine's key=value, [section]-headed config file
// (spec §6) into a typed Config. Parsing itself is explicitly out of scope
// per spec §1 ("config-file parsing... appear in §6 only as the boundaries
// the core speaks to") — this wraps github.com/spf13/viper's ini codec
// rather than hand-rolling a scanner, the collaborator this package exists
// to hand off to.
package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Mode is engine.mode's recognized value set.
type Mode string

const (
	ModeSim  Mode = "sim"
	ModeLive Mode = "live"
)

// SessionConfig carries the FIX counterparty details spec §6 doesn't
// enumerate (it only names the risk/engine/server keys explicitly) but
// which `live` mode needs to dial a venue at all — a natural `[session]`
// section extension, not a Non-goal.
type SessionConfig struct {
	SenderCompID string
	TargetCompID string
	Username     string
	Password     string
	PrimaryAddr  string
	BackupAddr   string
	HeartBtInt   int
}

// RiskLimits mirrors the fields risk.Config needs, parsed from the
// `risk.*` section.
type RiskLimits struct {
	CooldownMs           int64
	MaxOpsPerSec         float64
	MaxPositionSize      decimal.Decimal
	MaxGlobalNotional    decimal.Decimal
	MaxNotionalPerSymbol decimal.Decimal
	MaxDrawdownPct       float64
	MaxDailyLoss         decimal.Decimal
	MinConfidence        float64
}

// Config is the engine's full recognized key set, spec §6.
type Config struct {
	ServerHTTPPort int
	ServerWSPort   int

	EngineMode    Mode
	EngineSymbol  string
	EngineLogPath string

	Session SessionConfig
	Risk    RiskLimits

	// ArchiveDBPath is the optional SQLite sink path; empty disables
	// archival entirely.
	ArchiveDBPath string
}

// defaults mirrors the risk gate defaults spec §4.8 names explicitly
// (cooldown 250ms); everything else defaults to permissive/zero and is
// expected to be set explicitly per deployment.
func defaults() *viper.Viper {
	v := viper.New()
	v.SetConfigType("ini")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.ws_port", 8081)
	v.SetDefault("engine.mode", string(ModeSim))
	v.SetDefault("engine.log_path", "engine.log")
	v.SetDefault("risk.cooldown_ms", 250)
	v.SetDefault("risk.max_ops_per_sec", 10)
	v.SetDefault("risk.min_confidence", 0.0)
	return v
}

// Load reads path (key=value, [section] headers, '#'/';' comments — viper's
// ini codec accepts all three) and returns the typed Config, applying
// spec's documented defaults for any key the file omits.
func Load(path string) (*Config, error) {
	v := defaults()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Config{
		ServerHTTPPort: v.GetInt("server.http_port"),
		ServerWSPort:   v.GetInt("server.ws_port"),
		EngineMode:     Mode(v.GetString("engine.mode")),
		EngineSymbol:   v.GetString("engine.symbol"),
		EngineLogPath:  v.GetString("engine.log_path"),
		ArchiveDBPath:  v.GetString("archive.db_path"),
		Session: SessionConfig{
			SenderCompID: v.GetString("session.sender_comp_id"),
			TargetCompID: v.GetString("session.target_comp_id"),
			Username:     v.GetString("session.username"),
			Password:     v.GetString("session.password"),
			PrimaryAddr:  v.GetString("session.primary_addr"),
			BackupAddr:   v.GetString("session.backup_addr"),
			HeartBtInt:   v.GetInt("session.heartbeat_interval_sec"),
		},
		Risk: RiskLimits{
			CooldownMs:           v.GetInt64("risk.cooldown_ms"),
			MaxOpsPerSec:         v.GetFloat64("risk.max_ops_per_sec"),
			MaxPositionSize:      decimalOrZero(v.GetString("risk.max_position_size")),
			MaxGlobalNotional:    decimalOrZero(v.GetString("risk.max_global_notional")),
			MaxNotionalPerSymbol: decimalOrZero(v.GetString("risk.max_notional_per_symbol")),
			MaxDrawdownPct:       v.GetFloat64("risk.max_drawdown_pct"),
			MaxDailyLoss:         decimalOrZero(v.GetString("risk.max_daily_loss")),
			MinConfidence:        v.GetFloat64("risk.min_confidence"),
		},
	}

	if cfg.EngineMode != ModeSim && cfg.EngineMode != ModeLive {
		return nil, fmt.Errorf("config: engine.mode = %q, want sim or live", cfg.EngineMode)
	}
	return cfg, nil
}

// decimalOrZero parses s as a decimal, returning decimal.Zero for an empty
// or unparsable value rather than erroring the whole load — an omitted
// risk limit means "no limit configured", not a malformed file.
func decimalOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

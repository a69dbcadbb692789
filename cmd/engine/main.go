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

// Command engine is the long-running process spec §6 names: `engine
// [config-path]`, exit 0 on a clean stop (SIGINT/SIGTERM), non-zero on a
// config-load or bind failure. It wires every component built in this
// module (config, logging, archive, risk, oms, engine, session or the
// Binance feed, depending on engine.mode) into one process.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spf13/cobra"

	"github.com/nyx-systems/fixcore/archive"
	"github.com/nyx-systems/fixcore/config"
	"github.com/nyx-systems/fixcore/constants"
	"github.com/nyx-systems/fixcore/engine"
	"github.com/nyx-systems/fixcore/fixcodec"
	"github.com/nyx-systems/fixcore/logging"
	"github.com/nyx-systems/fixcore/marketdata"
	"github.com/nyx-systems/fixcore/marketdata/binance"
	"github.com/nyx-systems/fixcore/model"
	"github.com/nyx-systems/fixcore/oms"
	"github.com/nyx-systems/fixcore/resend"
	"github.com/nyx-systems/fixcore/risk"
	"github.com/nyx-systems/fixcore/session"
)

var rootCmd = &cobra.Command{
	Use:   "engine [config-path]",
	Short: "Runs the FIX market-connectivity and decision core.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.ini"
		if len(args) == 1 {
			path = args[0]
		}
		return run(path)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	// The admin dashboard itself is out of scope (spec §1 Non-goal); a bind
	// check on its configured port is the CLI's only contract with it, per
	// spec §6's exit-code rule ("non-zero on a config-load or
	// admin-port-bind failure").
	if err := checkBindable(cfg.ServerHTTPPort); err != nil {
		return fmt.Errorf("server.http_port %d unavailable: %w", cfg.ServerHTTPPort, err)
	}

	logger, err := logging.Init(cfg.EngineLogPath, 4096)
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	defer logger.Shutdown()

	var writer *archive.Writer
	if cfg.ArchiveDBPath != "" {
		db, err := archive.Open(cfg.ArchiveDBPath, logger)
		if err != nil {
			logger.Error("archive open failed, continuing without it", zap.Error(err))
		} else {
			defer db.Close()
			writer = archive.NewWriter(db, logger, 4096, time.Second)
			writer.Start()
			defer writer.Stop()
		}
	}

	supervisor := risk.New(risk.Config{
		CooldownMs:           cfg.Risk.CooldownMs,
		MaxOpsPerSec:         cfg.Risk.MaxOpsPerSec,
		MaxPositionSize:      cfg.Risk.MaxPositionSize,
		MaxGlobalNotional:    cfg.Risk.MaxGlobalNotional,
		MaxNotionalPerSymbol: cfg.Risk.MaxNotionalPerSymbol,
		MaxDrawdownPct:       cfg.Risk.MaxDrawdownPct,
		MaxDailyLoss:         cfg.Risk.MaxDailyLoss,
		MinConfidence:        cfg.Risk.MinConfidence,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stop func()
	if cfg.EngineMode == config.ModeLive {
		stop, err = runLive(ctx, cfg, logger, supervisor, writer)
	} else {
		stop, err = runSim(ctx, cfg, logger, supervisor, writer)
	}
	if err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutdown signal received")
	stop()
	return nil
}

// checkBindable reports whether port is currently free, per spec §6's
// bind-failure exit path. It binds and immediately releases rather than
// holding the listener, since the dashboard server itself is out of scope.
func checkBindable(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	return ln.Close()
}

// runLive wires a FIX session, an oms.Router bound to it, and an engine
// worker set fed by the FIX market-data normalizer's snapshot/incremental
// ingestion. Returns a stop func the caller invokes on shutdown.
func runLive(ctx context.Context, cfg *config.Config, logger *logging.Logger, supervisor *risk.Supervisor, writer *archive.Writer) (func(), error) {
	ring := resend.New()
	norm := marketdata.NewFixNormalizer()

	// router and eng are constructed after sess (sess needs the
	// OnApplicationMessage closure below, which in turn needs router once
	// it exists); the closure captures these variables by reference, so
	// the forward reference is safe as long as both are assigned before
	// sess.Run is started.
	var router *oms.Router
	var eng *engine.Engine

	onApp := func(msg *fixcodec.Message) {
		msgType, ok := msg.String(int(constants.TagMsgType))
		if !ok {
			return
		}
		switch msgType {
		case constants.MsgTypeMarketDataSnapshot, constants.MsgTypeMarketDataIncremental:
			if msgType == constants.MsgTypeMarketDataSnapshot {
				if sym, ok := msg.String(int(constants.TagSymbol)); ok {
					norm.BeginSnapshot(sym)
				}
			}
			book := norm.Apply(msg)
			if book == nil {
				return
			}
			eng.PushBook(book.Symbol.String(), book)
			tick := marketdata.ToTick(book)
			eng.PushTick(book.Symbol.String(), tick)
		case constants.MsgTypeExecutionReport:
			if !router.Store.ApplyExecutionReport(msg) {
				logger.Warn("execution report not applied (unknown order, duplicate ExecID or unhandled transition)")
			}
			if writer != nil {
				if rec, ok := lookupExecutedOrder(router, msg); ok {
					writer.Enqueue(archive.ExecutionRecord(rec))
				}
			}
		case constants.MsgTypeOrderCancelReject:
			// Store.MarkPendingCancel keys on the original order's ClOrdID
			// (tag 41 here, not the cancel request's own freshly-minted tag
			// 11), so the revert must look up the same key.
			origClOrdID, ok := msg.String(int(constants.TagOrigClOrdID))
			if ok {
				router.Store.ApplyCancelReject(origClOrdID)
			}
		}
	}

	sess := session.New(session.Config{
		SenderCompID: cfg.Session.SenderCompID,
		TargetCompID: cfg.Session.TargetCompID,
		Username:     cfg.Session.Username,
		Password:     cfg.Session.Password,
		HeartBtInt:   cfg.Session.HeartBtInt,
		PrimaryAddr:  cfg.Session.PrimaryAddr,
		BackupAddr:   cfg.Session.BackupAddr,
	}, ring, session.Handlers{
		OnApplicationMessage: onApp,
		OnError:              func(err error) { logger.Warn("session error", zap.Error(err)) },
		OnStateChange:        func(phase model.SessionPhase) { logger.Info("session phase changed", zap.Int("phase", int(phase))) },
	})

	router = oms.NewRouter(oms.Config{
		SenderCompID:  cfg.Session.SenderCompID,
		TargetCompID:  cfg.Session.TargetCompID,
		ClOrdIDPrefix: "eng-",
	}, sess, nil)
	eng = engine.New(engine.Config{}, supervisor, router)
	eng.AddSymbol(cfg.EngineSymbol)

	eng.Start()
	go sess.Run(ctx)

	return func() {
		eng.Stop()
		sess.Stop()
	}, nil
}

// lookupExecutedOrder finds the order an ExecutionReport names, for archive
// purposes only — callers that need the live record use router.Store.Get
// directly.
func lookupExecutedOrder(router *oms.Router, msg *fixcodec.Message) (model.OrderRecord, bool) {
	clOrdID, ok := msg.String(int(constants.TagClOrdID))
	if !ok {
		return model.OrderRecord{}, false
	}
	return router.Store.Get(clOrdID)
}

// runSim wires the public Binance-style feed (no venue credentials needed)
// directly into the engine's worker set, exercising the full tick-to-order
// hot path without a live FIX counterparty — matching engine.mode=sim's
// purpose of a dry run against real market data.
func runSim(ctx context.Context, cfg *config.Config, logger *logging.Logger, supervisor *risk.Supervisor, writer *archive.Writer) (func(), error) {
	router := oms.NewRouter(oms.Config{
		SenderCompID:  "SIM",
		TargetCompID:  "SIM-VENUE",
		ClOrdIDPrefix: "sim-",
	}, noopSender{}, nil)

	eng := engine.New(engine.Config{}, supervisor, router)
	eng.AddSymbol(cfg.EngineSymbol)
	eng.Start()

	onUpdate := func(symbol string, book *model.CanonicalBook, tick *model.CanonicalTick) {
		eng.PushBook(symbol, book)
		eng.PushTick(symbol, *tick)
		if writer != nil {
			writer.Enqueue(archive.BookRecord(book))
			writer.Enqueue(archive.TickRecord(*tick))
		}
	}

	feed := binance.NewFeed("wss://stream.binance.com:9443", onUpdate, logger)
	simCtx, simCancel := context.WithCancel(ctx)
	go feed.Run(simCtx)

	logger.Info("sim mode started", zap.String("symbol", cfg.EngineSymbol))

	return func() {
		simCancel()
		eng.Stop()
	}, nil
}

// noopSender discards outbound frames in sim mode, where there is no live
// FIX counterparty to send them to — the risk/oms/engine pipeline still
// runs end to end, it simply has nowhere live to route approved orders.
type noopSender struct{}

func (noopSender) SendApp(build func(seqNum int) []byte) error {
	_ = build(0)
	return nil
}

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

// Package logging is the one global logger thread spec §5 names: every
// hot-path caller (session, engine worker, oms) hands a Record to Log,
// which never blocks — it enqueues onto a queue.Ring[Record] that a single
// background goroutine drains into zap. The teacher logs with plain
// log.Printf call sites; this keeps that volume and register (one line per
// event, occasional multi-field detail) but backs it with zap's structured
// fields instead of formatted strings, per the pack's established
// go.uber.org/zap convention.
package logging

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nyx-systems/fixcore/queue"
)

// Level mirrors the subset of zap's levels the engine emits.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Record is one log line queued for the drain goroutine. Fields is a set
// of already-built zap.Field values so the producer pays the formatting
// cost, if any, at enqueue time rather than forcing it onto the drain
// goroutine — though for the common case (strings, numbers) zap.Field
// construction itself is allocation-free.
type Record struct {
	Level   Level
	Message string
	Fields  []zap.Field
	at      time.Time
}

// Logger owns the background drain goroutine and the underlying *zap.Logger
// it flushes into. Log is the only hot-path-safe entry point; everything
// else (Init/Shutdown) is process lifecycle.
type Logger struct {
	zl   *zap.Logger
	ring *queue.Ring[Record]
	stop chan struct{}
	done chan struct{}
}

// Init opens path (use "" for stderr-only) and starts the drain goroutine.
// capacity is the backlog the ring can hold before Log starts reporting
// drops; queue.New rounds it up to a power of two (minimum 32).
func Init(path string, capacity int) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if path != "" {
		cfg.OutputPaths = []string{path, "stderr"}
	}

	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	l := &Logger{
		zl:   zl,
		ring: queue.New[Record](capacity),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.run()
	return l, nil
}

// Log enqueues rec without blocking. A full ring evicts its oldest queued
// record to make room for rec (the failed attempt is counted by the ring's
// Dropped counter) — logging backpressure must never propagate onto the
// session/engine hot path. If the ring is still full on the second attempt
// rec itself is dropped; neither drop is retried further or logged, since
// logging the failure to log would just restart the same problem.
func (l *Logger) Log(rec Record) {
	rec.at = time.Now()
	if !l.ring.Enqueue(rec) {
		l.ring.TryDequeue()
		l.ring.Enqueue(rec)
	}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.Log(Record{Level: LevelDebug, Message: msg, Fields: fields}) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.Log(Record{Level: LevelInfo, Message: msg, Fields: fields}) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.Log(Record{Level: LevelWarn, Message: msg, Fields: fields}) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.Log(Record{Level: LevelError, Message: msg, Fields: fields}) }

func (l *Logger) run() {
	defer close(l.done)
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			l.drain()
			return
		case <-ticker.C:
			l.drain()
		}
	}
}

// drain writes out everything currently in the ring. run calls it on every
// tick and once more after stop fires, so a clean Shutdown never silently
// drops the last batch of lines.
func (l *Logger) drain() {
	for {
		rec, ok := l.ring.TryDequeue()
		if !ok {
			return
		}
		l.write(rec)
	}
}

func (l *Logger) write(rec Record) {
	ce := l.zl.Check(rec.Level.zapLevel(), rec.Message)
	if ce == nil {
		return
	}
	ce.Write(rec.Fields...)
}

// Dropped returns the count of Log calls that found the ring full.
func (l *Logger) Dropped() uint64 {
	return l.ring.Dropped()
}

// Shutdown signals the drain goroutine, waits for its final flush, and
// syncs the underlying zap core.
func (l *Logger) Shutdown() error {
	close(l.stop)
	<-l.done
	err := l.zl.Sync()
	if err != nil && !isSyncIgnorable(err) {
		return err
	}
	return nil
}

// isSyncIgnorable matches the well-known zap.Sync() failure on stderr/stdout
// (ENOTTY/EINVAL on non-file fds), which every zap-using pack repo either
// ignores or special-cases rather than surfacing as a real shutdown error.
func isSyncIgnorable(err error) bool {
	return err.Error() == os.ErrInvalid.Error() ||
		err.Error() == "sync /dev/stderr: invalid argument" ||
		err.Error() == "sync /dev/stderr: inappropriate ioctl for device"
}

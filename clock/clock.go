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

// Package clock provides the two clock kinds the engine needs and must
// never mix: monotonic microseconds for latency measurement, wall-clock
// milliseconds for FIX tags 52/60. Clock injection is mandatory so session
// and pipeline tests can drive time deterministically.
package clock

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time so tests can inject a fake one.
type Clock interface {
	// NowMicros is monotonic microseconds, for latency measurement only.
	NowMicros() int64
	// NowMillisWall is wall-clock milliseconds, for protocol timestamps.
	NowMillisWall() int64
	// NowUTC is used to format FIX SendingTime/TransactTime (tag 52/60).
	NowUTC() time.Time
}

// System is the production Clock backed by the runtime clock.
type System struct{}

// processStart anchors NowMicros to the runtime's monotonic clock reading.
var processStart = time.Now()

func (System) NowMicros() int64 {
	return time.Since(processStart).Microseconds()
}

func (System) NowMillisWall() int64 {
	return time.Now().UnixMilli()
}

func (System) NowUTC() time.Time {
	return time.Now().UTC()
}

// FixTimeFormat is the wire format for FIX tags 52 (SendingTime) and 60
// (TransactTime): YYYYMMDD-HH:MM:SS.sss.
const FixTimeFormat = "20060102-15:04:05.000"

// FormatFixTime renders t in the FIX wire format.
func FormatFixTime(t time.Time) string {
	return t.UTC().Format(FixTimeFormat)
}

// IDGenerator produces monotonically increasing client-order-ids of the
// form "<prefix><monotonic-ms>_<counter>", matching spec C10's contract.
// A process-wide atomic counter disambiguates IDs minted within the same
// millisecond.
type IDGenerator struct {
	clk     Clock
	prefix  string
	counter uint64
}

// NewIDGenerator returns a generator stamping ids with prefix, using clk for
// the millisecond component.
func NewIDGenerator(prefix string, clk Clock) *IDGenerator {
	if clk == nil {
		clk = System{}
	}
	return &IDGenerator{clk: clk, prefix: prefix}
}

// NextClOrdID returns the next client-order-id. Safe for concurrent use.
func (g *IDGenerator) NextClOrdID() string {
	n := atomic.AddUint64(&g.counter, 1)
	ms := g.clk.NowMillisWall()
	return g.prefix + strconv.FormatInt(ms, 10) + "_" + strconv.FormatUint(n, 10)
}

// NextRequestID mints an opaque id for MDReqID (262) / QuoteReqID (131).
// Unlike client-order-ids these carry no ordering contract, so a UUID is
// the simpler and cheaper choice.
func NextRequestID() string {
	return uuid.NewString()
}

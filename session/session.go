// Package session implements the FIX session state machine spec component
// C5 describes: logon/heartbeat/test-request cycle, inbound sequence gap
// detection with ResendRequest/gap-fill, peer resend service backed by the
// resend ring, exponential-backoff reconnect, and primary/backup failover.
//
// Run dials the transport.Conn; beyond that the FSM is driven by frames
// handed in from that connection and emits frames back out through it,
// mirroring the teacher's separation between
// fixclient.FixApp (session-level bookkeeping) and the wire parser.
package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/nyx-systems/fixcore/builder"
	"github.com/nyx-systems/fixcore/constants"
	"github.com/nyx-systems/fixcore/fixcodec"
	"github.com/nyx-systems/fixcore/model"
	"github.com/nyx-systems/fixcore/resend"
	"github.com/nyx-systems/fixcore/transport"
)

// Errors surfaced to the supervisor, per spec §4.4 "Error surfacing".
var (
	ErrSeqGap   = errors.New("session: SessionError::SeqGap")
	ErrBadFrame = errors.New("session: SessionError::BadFrame")
)

// Config carries everything a Session needs to log on and run.
type Config struct {
	SenderCompID string
	TargetCompID string
	Username     string
	Password     string
	HeartBtInt   int // seconds

	PrimaryAddr string
	BackupAddr  string

	ResetSeqNumOnLogon bool

	ReconnectMinDelay time.Duration // default 100ms
	ReconnectMaxDelay time.Duration // default 5000ms
	ReconnectFactor   float64       // default 2.0

	// HeartbeatRTTFailoverThreshold is defaulted (40ms) but not read by any
	// code path in this package: Run switches between PrimaryAddr and
	// BackupAddr only after a failed dial, never on heartbeat round-trip time.
	HeartbeatRTTFailoverThreshold time.Duration // default 40ms
}

func (c *Config) setDefaults() {
	if c.ReconnectMinDelay == 0 {
		c.ReconnectMinDelay = 100 * time.Millisecond
	}
	if c.ReconnectMaxDelay == 0 {
		c.ReconnectMaxDelay = 5000 * time.Millisecond
	}
	if c.ReconnectFactor == 0 {
		c.ReconnectFactor = 2.0
	}
	if c.HeartbeatRTTFailoverThreshold == 0 {
		c.HeartbeatRTTFailoverThreshold = 40 * time.Millisecond
	}
	if c.HeartBtInt == 0 {
		c.HeartBtInt = 30
	}
}

// Handlers are the callbacks a Session invokes as events occur. All may be
// nil except none are required to be non-nil — a nil handler is simply
// skipped.
type Handlers struct {
	// OnApplicationMessage is invoked for every decoded non-session-admin
	// message (MsgType outside {A,0,1,2,3,4,5}), after sequence checks pass.
	OnApplicationMessage func(msg *fixcodec.Message)
	// OnStateChange is invoked whenever Phase transitions.
	OnStateChange func(phase model.SessionPhase)
	// OnError is invoked on SessionError::SeqGap / SessionError::BadFrame
	// and any other non-fatal protocol violation.
	OnError func(err error)
}

// Session owns one FIX connection's state machine. Exactly one goroutine
// (the reader, inside transport.Conn.Run) delivers frames; SendApp may be
// called concurrently by any goroutine holding a reference.
type Session struct {
	cfg      Config
	handlers Handlers
	ring     *resend.Ring

	mu    sync.Mutex
	state model.SessionState
	conn  *transport.Conn

	stopCh   chan struct{}
	stopOnce sync.Once
}

// New constructs a Session bound to ring (the outbound resend ring) and
// handlers. Call Run to connect and start driving the FSM.
func New(cfg Config, ring *resend.Ring, h Handlers) *Session {
	cfg.setDefaults()
	return &Session{
		cfg:      cfg,
		handlers: h,
		ring:     ring,
		state: model.SessionState{
			InboundSeq:        1,
			OutboundSeq:       1,
			PeerID:            cfg.TargetCompID,
			LocalID:           cfg.SenderCompID,
			HeartbeatInterval: time.Duration(cfg.HeartBtInt) * time.Second,
			Phase:             model.PhaseDisconnected,
		},
		stopCh: make(chan struct{}),
	}
}

// Snapshot returns a point-in-time copy of the session state, safe to read
// from any goroutine.
func (s *Session) Snapshot() model.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}

func (s *Session) setPhase(p model.SessionPhase) {
	s.mu.Lock()
	s.state.Phase = p
	s.mu.Unlock()
	if s.handlers.OnStateChange != nil {
		s.handlers.OnStateChange(p)
	}
}

func (s *Session) reportError(err error) {
	if s.handlers.OnError != nil {
		s.handlers.OnError(err)
	}
}

// Run drives the session until ctx is canceled or Stop is called: connect,
// log on, process frames, and on disconnect retry with exponential backoff
// until ctx ends. Run blocks; callers typically invoke it in its own
// goroutine.
func (s *Session) Run(ctx context.Context) {
	delay := s.cfg.ReconnectMinDelay
	addr := s.cfg.PrimaryAddr
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		default:
		}

		s.setPhase(model.PhaseConnecting)
		conn, err := transport.Dial(transport.Config{Addr: addr, Timeout: 5 * time.Second})
		if err != nil {
			s.reportError(err)
			if !s.sleepBackoff(ctx, &delay) {
				return
			}
			addr = s.failoverAddr(addr)
			continue
		}

		delay = s.cfg.ReconnectMinDelay // reset on successful connect, per spec §4.4
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		s.logon(conn)

		down := make(chan error, 1)
		go conn.Run(s.onFrame, func(err error) { down <- err })

		stopHeartbeat := make(chan struct{})
		go s.heartbeatLoop(conn, stopHeartbeat)

		select {
		case <-down:
			close(stopHeartbeat)
		case <-ctx.Done():
			close(stopHeartbeat)
			_ = conn.Close()
			return
		case <-s.stopCh:
			close(stopHeartbeat)
			_ = conn.Close()
			return
		}

		s.setPhase(model.PhaseDisconnected)
		if !s.sleepBackoff(ctx, &delay) {
			return
		}
	}
}

// Stop ends Run and closes the live connection, if any.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()
	if c != nil {
		_ = c.Close()
	}
}

func (s *Session) sleepBackoff(ctx context.Context, delay *time.Duration) bool {
	jittered := time.Duration(float64(*delay) * (0.8 + 0.4*rand.Float64()))
	select {
	case <-time.After(jittered):
	case <-ctx.Done():
		return false
	case <-s.stopCh:
		return false
	}
	next := time.Duration(float64(*delay) * s.cfg.ReconnectFactor)
	if next > s.cfg.ReconnectMaxDelay {
		next = s.cfg.ReconnectMaxDelay
	}
	*delay = next
	return true
}

func (s *Session) failoverAddr(current string) string {
	if s.cfg.BackupAddr == "" {
		return current
	}
	if current == s.cfg.PrimaryAddr {
		return s.cfg.BackupAddr
	}
	return s.cfg.PrimaryAddr
}

func (s *Session) nextOutSeq() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.state.OutboundSeq
	s.state.OutboundSeq++
	return seq
}

// send builds, stores in the resend ring, and writes a frame. seq must be
// the sequence number embedded in frame (the caller already consumed it via
// nextOutSeq before building).
func (s *Session) send(conn *transport.Conn, seq int, frame []byte) error {
	s.ring.Store(int64(seq), frame)
	s.mu.Lock()
	s.state.LastTxTS = time.Now()
	s.mu.Unlock()
	return conn.Send(frame)
}

// ErrNotConnected is returned by SendApp when no connection is currently
// live (session disconnected or not yet logged in).
var ErrNotConnected = errors.New("session: not connected")

// SendApp sends an application-level message (e.g. NewOrderSingle,
// OrderCancelRequest) on the current connection. build receives the
// outbound sequence number already reserved via nextOutSeq, so the caller
// never races the session's own internal sends over sequence allocation —
// oms (C10) is the only expected caller.
func (s *Session) SendApp(build func(seqNum int) []byte) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	seq := s.nextOutSeq()
	frame := build(seq)
	return s.send(conn, seq, frame)
}

func (s *Session) logon(conn *transport.Conn) {
	s.setPhase(model.PhaseLoggingIn)
	if s.cfg.ResetSeqNumOnLogon {
		s.mu.Lock()
		s.state.InboundSeq = 1
		s.state.OutboundSeq = 1
		s.mu.Unlock()
	}
	seq := s.nextOutSeq()
	frame := builder.BuildLogon(s.cfg.SenderCompID, s.cfg.TargetCompID, s.cfg.Username, s.cfg.Password, seq, s.cfg.HeartBtInt, s.cfg.ResetSeqNumOnLogon)
	_ = s.send(conn, seq, frame)
}

// onFrame is the transport.Conn.Run frame callback: it verifies the
// checksum, decodes the message, and dispatches it into the FSM.
func (s *Session) onFrame(raw []byte) {
	if err := fixcodec.Verify(raw); err != nil {
		s.reportError(ErrBadFrame)
		return
	}
	msg, err := fixcodec.Decode(raw)
	if err != nil {
		s.reportError(ErrBadFrame)
		return
	}

	s.mu.Lock()
	s.state.LastRxTS = time.Now()
	s.mu.Unlock()

	msgType, _ := msg.String(int(constants.TagMsgType))
	seq, hasSeq := msg.Int(int(constants.TagMsgSeqNum))

	switch msgType {
	case constants.MsgTypeLogon:
		s.setPhase(model.PhaseLoggedIn)
		s.acceptInbound(seq, hasSeq)
		return
	case constants.MsgTypeLogout:
		s.setPhase(model.PhaseLoggingOut)
		s.acceptInbound(seq, hasSeq)
		s.mu.Lock()
		c := s.conn
		s.mu.Unlock()
		if c != nil {
			_ = c.Close()
		}
		return
	case constants.MsgTypeHeartbeat:
		s.acceptInbound(seq, hasSeq)
		return
	case constants.MsgTypeTestRequest:
		testReqID, _ := msg.String(int(constants.TagTestReqID))
		s.acceptInbound(seq, hasSeq)
		s.mu.Lock()
		c := s.conn
		s.mu.Unlock()
		if c != nil {
			hbSeq := s.nextOutSeq()
			frame := builder.BuildHeartbeat(s.cfg.SenderCompID, s.cfg.TargetCompID, testReqID, hbSeq)
			_ = s.send(c, hbSeq, frame)
		}
		return
	case constants.MsgTypeResendRequest:
		s.acceptInbound(seq, hasSeq)
		begin, _ := msg.Int(int(constants.TagBeginSeqNo))
		end, _ := msg.Int(int(constants.TagEndSeqNo))
		s.serviceResendRequest(begin, end)
		return
	case constants.MsgTypeSequenceReset:
		newSeq, _ := msg.Int(int(constants.TagNewSeqNo))
		gapFill, _ := msg.String(int(constants.TagGapFillFlag))
		if gapFill == constants.GapFillYes {
			s.mu.Lock()
			s.state.InboundSeq = int(newSeq)
			s.mu.Unlock()
			return
		}
		s.mu.Lock()
		s.state.InboundSeq = int(newSeq)
		s.mu.Unlock()
		return
	case constants.MsgTypeReject:
		s.acceptInbound(seq, hasSeq)
		return
	}

	// Application message: still subject to the same sequence-gap contract.
	if !s.checkSequence(seq, hasSeq, msg) {
		return
	}
	if s.handlers.OnApplicationMessage != nil {
		s.handlers.OnApplicationMessage(msg)
	}
}

// acceptInbound advances expected_in_seq for session-admin messages once
// the gap check passes; session-admin messages still participate in
// sequencing (spec §4.4 applies to "every RX").
func (s *Session) acceptInbound(seq int64, hasSeq bool) {
	s.checkSequence(seq, hasSeq, nil)
}

// checkSequence implements spec §4.4's "On every RX" sequencing rule.
// Returns true if the message should be processed as in-order (including
// the accept-silently PossDup case); false if it was buffered/dropped
// pending a resend, or discarded as a fatal gap.
func (s *Session) checkSequence(seq int64, hasSeq bool, msg *fixcodec.Message) bool {
	if !hasSeq {
		return true
	}
	s.mu.Lock()
	expected := int64(s.state.InboundSeq)
	s.mu.Unlock()

	switch {
	case seq == expected:
		s.mu.Lock()
		s.state.InboundSeq++
		s.mu.Unlock()
		return true
	case seq > expected:
		s.reportError(ErrSeqGap)
		s.mu.Lock()
		c := s.conn
		s.mu.Unlock()
		if c != nil {
			rrSeq := s.nextOutSeq()
			frame := builder.BuildResendRequest(s.cfg.SenderCompID, s.cfg.TargetCompID, rrSeq, int(expected), 0)
			_ = s.send(c, rrSeq, frame)
		}
		return false
	default: // seq < expected
		possDup := false
		if msg != nil {
			if v, ok := msg.String(int(constants.TagPossDupFlag)); ok && v == constants.PossDupYes {
				possDup = true
			}
		}
		if possDup {
			return true // accept silently, per spec §4.4 (b)
		}
		s.reportError(ErrSeqGap)
		s.mu.Lock()
		c := s.conn
		s.mu.Unlock()
		if c != nil {
			loSeq := s.nextOutSeq()
			frame := builder.BuildLogout(s.cfg.SenderCompID, s.cfg.TargetCompID, "sequence number too low", loSeq)
			_ = s.send(c, loSeq, frame)
			_ = c.Close()
		}
		return false
	}
}

// serviceResendRequest answers a peer's ResendRequest by replaying stored
// frames for present sequences and gap-filling over holes, per spec §4.4/C6.
func (s *Session) serviceResendRequest(begin, end int64) {
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()
	if c == nil {
		return
	}
	if end == 0 {
		end = s.ring.Head()
	}
	present, missing := s.ring.Range(begin, end)
	missingSet := make(map[int64]bool, len(missing))
	for _, m := range missing {
		missingSet[m] = true
	}

	seq := begin
	for seq <= end {
		if missingSet[seq] {
			for seq <= end && missingSet[seq] {
				seq++
			}
			grSeq := s.nextOutSeq()
			frame := builder.BuildSequenceReset(s.cfg.SenderCompID, s.cfg.TargetCompID, grSeq, int(seq), true)
			_ = s.send(c, grSeq, frame)
			continue
		}
		if frame, ok := present[seq]; ok {
			_ = c.Send(frame) // resent byte-for-byte as stored: no PossDupFlag (43=Y) or OrigSendingTime (122) is added
		}
		seq++
	}
}

// heartbeatLoop implements spec §4.4's heartbeat/test-request/disconnect
// cycle: send Heartbeat when idle on TX, probe with TestRequest when idle on
// RX, and force a disconnect if the probe goes unanswered.
func (s *Session) heartbeatLoop(conn *transport.Conn, stop <-chan struct{}) {
	interval := time.Duration(s.cfg.HeartBtInt) * time.Second
	ticker := time.NewTicker(interval / 3)
	defer ticker.Stop()

	var probeSentAt time.Time
	probeActive := false

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			lastTx := s.state.LastTxTS
			lastRx := s.state.LastRxTS
			phase := s.state.Phase
			s.mu.Unlock()
			if phase != model.PhaseLoggedIn {
				continue
			}

			if time.Since(lastTx) >= interval {
				hbSeq := s.nextOutSeq()
				frame := builder.BuildHeartbeat(s.cfg.SenderCompID, s.cfg.TargetCompID, "", hbSeq)
				_ = s.send(conn, hbSeq, frame)
			}

			idle := time.Since(lastRx)
			switch {
			case probeActive && time.Since(probeSentAt) >= interval:
				_ = conn.Close()
				return
			case !probeActive && idle >= interval+interval/10:
				trSeq := s.nextOutSeq()
				testReqID := "TEST"
				frame := builder.BuildTestRequest(s.cfg.SenderCompID, s.cfg.TargetCompID, testReqID, trSeq)
				_ = s.send(conn, trSeq, frame)
				probeActive = true
				probeSentAt = time.Now()
			case probeActive && idle < interval/10:
				probeActive = false
			}
		}
	}
}

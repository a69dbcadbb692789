// Package transport implements the framed TCP connection spec component C3
// describes: a blocking socket with TCP_NODELAY, a dedicated reader goroutine
// that extracts complete FIX frames from an internal growable buffer, and a
// synchronous writer serialized by a single lock so frames never interleave
// at the byte level.
//
// Framing mirrors the teacher's single-pass segment scanning in
// fixclient/parser.go: rather than know a message's length up front,
// transport finds the end of a frame by searching for the checksum tag
// (SOH-prefixed "10=") followed by its terminating SOH.
package transport

import (
	"bytes"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"sync"
	"time"
)

// ErrClosed is returned from Send once the connection has been closed.
var ErrClosed = errors.New("transport: connection closed")

var checksumTagPrefix = []byte{'\x01', '1', '0', '='}

// Conn is one framed TCP connection. The zero value is not usable; construct
// via Dial.
type Conn struct {
	nc   net.Conn
	wmu  sync.Mutex
	buf  bytes.Buffer
	done chan struct{}
	once sync.Once
}

// Config carries dial options. TLSConfig is nil for a plaintext connection.
type Config struct {
	Addr      string
	Timeout   time.Duration
	TLSConfig *tls.Config
}

// Dial establishes the TCP connection (optionally wrapped in TLS) and sets
// TCP_NODELAY, per spec C3.
func Dial(cfg Config) (*Conn, error) {
	d := net.Dialer{Timeout: cfg.Timeout}
	nc, err := d.Dial("tcp", cfg.Addr)
	if err != nil {
		return nil, err
	}
	if tc, ok := nc.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	if cfg.TLSConfig != nil {
		nc = tls.Client(nc, cfg.TLSConfig)
	}
	return &Conn{nc: nc, done: make(chan struct{})}, nil
}

// Send writes a single pre-framed message atomically with respect to other
// Send calls.
func (c *Conn) Send(frame []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	_, err := c.nc.Write(frame)
	return err
}

// Close shuts down the underlying socket; safe to call more than once and
// concurrently with Run.
func (c *Conn) Close() error {
	c.once.Do(func() { close(c.done) })
	return c.nc.Close()
}

// Run is the reader loop: it blocks reading from the socket, appends to the
// internal buffer, and delivers every complete frame found to onFrame in
// arrival order. Run returns when the socket errors, hits EOF, or Close is
// called; in every case it invokes onDown exactly once with the terminating
// error (nil on a clean Close).
//
// Run owns the read side exclusively; callers must not read from the
// underlying net.Conn directly once Run is started.
func (c *Conn) Run(onFrame func(frame []byte), onDown func(err error)) {
	rbuf := make([]byte, 64*1024)
	for {
		n, err := c.nc.Read(rbuf)
		if n > 0 {
			c.buf.Write(rbuf[:n])
			c.extractFrames(onFrame)
		}
		if err != nil {
			select {
			case <-c.done:
				onDown(nil)
			default:
				onDown(err)
			}
			return
		}
	}
}

// extractFrames repeatedly finds "...\x0110=NNN\x01" inside the buffer and
// delivers each complete frame, discarding it from the buffer. A partial
// trailing frame is left in place for the next read.
func (c *Conn) extractFrames(onFrame func(frame []byte)) {
	for {
		raw := c.buf.Bytes()
		tagIdx := bytes.Index(raw, checksumTagPrefix)
		if tagIdx == -1 {
			return
		}
		valStart := tagIdx + len(checksumTagPrefix)
		end := bytes.IndexByte(raw[valStart:], '\x01')
		if end == -1 {
			return // checksum value not yet fully arrived
		}
		frameEnd := valStart + end + 1 // include the trailing SOH
		frame := make([]byte, frameEnd)
		copy(frame, raw[:frameEnd])
		onFrame(frame)
		c.buf.Next(frameEnd)
	}
}

var _ io.Closer = (*Conn)(nil)

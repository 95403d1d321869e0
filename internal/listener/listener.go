// Package listener accepts a single controller connection and streams its
// command bytes, one at a time, to a handler.
//
// Lifecycle:
// - idle -> listening -> connected -> closed
//
// - there is no transition back to listening; once the client leaves, no
// replacement is accepted.
package listener

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/danmuck/rcxctl/internal/command"
	"github.com/rs/zerolog/log"
)

var (
	ErrBind           = errors.New("listener: bind failed")
	ErrAccept         = errors.New("listener: accept failed")
	ErrLifecycleOrder = errors.New("listener: invalid lifecycle transition")
)

// State is the listener lifecycle phase.
type State string

const (
	StateIdle      State = "idle"
	StateListening State = "listening"
	StateConnected State = "connected"
	StateClosed    State = "closed"
)

// Handler consumes one command byte. It is called synchronously; the next
// byte is not read until it returns.
type Handler interface {
	Encode(code command.Code) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(code command.Code) error

func (f HandlerFunc) Encode(code command.Code) error { return f(code) }

// Status reports the current listener shape.
type Status struct {
	State     State  `json:"state"`
	Addr      string `json:"addr"`
	Remote    string `json:"remote,omitempty"`
	Processed uint64 `json:"processed"`
}

// Listener serves exactly one client for its lifetime.
type Listener struct {
	mu        sync.RWMutex
	state     State
	ln        net.Listener
	conn      net.Conn
	processed uint64
}

func New() *Listener {
	return &Listener{state: StateIdle}
}

// Start binds addr and transitions idle->listening.
func (l *Listener) Start(addr string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateIdle {
		return transitionError(l.state, StateListening)
	}
	ln, err := net.Listen("tcp", strings.TrimSpace(addr))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBind, addr, err)
	}
	l.ln = ln
	l.state = StateListening
	log.Info().Str("addr", ln.Addr().String()).Msg("listener.Listener.Start listening")
	return nil
}

// AcceptOne blocks until one client connects, then closes the listening
// socket and transitions listening->connected.
func (l *Listener) AcceptOne() error {
	l.mu.RLock()
	state := l.state
	ln := l.ln
	l.mu.RUnlock()
	if state != StateListening {
		return transitionError(state, StateConnected)
	}

	conn, err := ln.Accept()
	_ = ln.Close()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.state = StateClosed
		return fmt.Errorf("%w: %v", ErrAccept, err)
	}
	if l.state != StateListening {
		_ = conn.Close()
		return fmt.Errorf("%w: listener closed during accept", ErrAccept)
	}
	l.conn = conn
	l.state = StateConnected
	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("listener.Listener.AcceptOne client connected")
	return nil
}

// ReadLoop reads one byte at a time and hands each to h before reading the
// next. Handler errors are logged and do not stop the loop. Any read error,
// including a clean close by the client, ends the loop normally. It returns
// the number of commands processed.
func (l *Listener) ReadLoop(h Handler) uint64 {
	l.mu.RLock()
	state := l.state
	conn := l.conn
	l.mu.RUnlock()
	if state != StateConnected {
		log.Warn().Str("state", string(state)).Msg("listener.Listener.ReadLoop not connected")
		return 0
	}

	var (
		buf [1]byte
		n   uint64
	)
	for {
		if _, err := io.ReadFull(conn, buf[:]); err != nil {
			if errors.Is(err, io.EOF) {
				log.Info().Uint64("commands", n).Msg("listener.Listener.ReadLoop client disconnected")
			} else {
				log.Warn().Err(err).Uint64("commands", n).Msg("listener.Listener.ReadLoop read failed")
			}
			break
		}
		code := command.Code(buf[0])
		if err := h.Encode(code); err != nil {
			log.Error().Err(err).Stringer("code", code).Msg("listener.Listener.ReadLoop relay failed")
		}
		n++
		l.mu.Lock()
		l.processed = n
		l.mu.Unlock()
	}

	l.mu.Lock()
	l.state = StateClosed
	_ = l.conn.Close()
	l.mu.Unlock()
	return n
}

// Close tears down the listening socket or the client connection, whichever
// is open. A blocked AcceptOne or ReadLoop returns as a result.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var err error
	if l.ln != nil && l.state == StateListening {
		err = l.ln.Close()
	}
	if l.conn != nil {
		err = errors.Join(err, l.conn.Close())
	}
	if l.state != StateConnected {
		l.state = StateClosed
	}
	return err
}

func (l *Listener) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Addr returns the bound address, or "" before Start.
func (l *Listener) Addr() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.ln == nil {
		return ""
	}
	return l.ln.Addr().String()
}

func (l *Listener) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := Status{State: l.state, Processed: l.processed}
	if l.ln != nil {
		out.Addr = l.ln.Addr().String()
	}
	if l.conn != nil {
		out.Remote = l.conn.RemoteAddr().String()
	}
	return out
}

func transitionError(from, to State) error {
	return fmt.Errorf("%w: %s -> %s", ErrLifecycleOrder, from, to)
}

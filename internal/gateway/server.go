package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"

	"fenrir/internal/engine"
	"fenrir/internal/order"
	"fenrir/internal/ring"
	"fenrir/internal/workerpool"
)

const (
	defaultNWorkers    = 10
	defaultConnTimeout = 5 * time.Minute
)

var errImproperConversion = errors.New("gateway: improper task conversion")

// session is one accepted connection, tagged with a uuid so outbound
// events can be routed back to it without trusting the remote address
// (fenrir's original net.Server keyed sessions by conn.LocalAddr(),
// which is the same value — the local bind address — for every
// connection, and so could never actually distinguish clients).
type session struct {
	id   uuid.UUID
	conn net.Conn
}

// Server is the TCP front door. It owns no book state: every inbound
// frame becomes an engine.Command pushed onto commands, and every
// engine.Event popped off events is routed back to the session that
// owns its OrderID.
type Server struct {
	address  string
	port     int
	commands *ring.Ring[engine.Command]
	events   *ring.Ring[engine.Event]
	pool     *workerpool.Pool
	cancel   context.CancelFunc
	log      zerolog.Logger

	sessionsLock  sync.Mutex
	sessions      map[uuid.UUID]net.Conn
	orderSessions map[order.ID]uuid.UUID

	ready   chan struct{}
	readyOn sync.Once
	addr    net.Addr
}

// New constructs a gateway Server. commands is the inbound ring the
// engine thread drains; events is the outbound ring the engine thread
// fills via its Sink.
func New(address string, port int, commands *ring.Ring[engine.Command], events *ring.Ring[engine.Event], logger zerolog.Logger) *Server {
	return &Server{
		address:       address,
		port:          port,
		commands:      commands,
		events:        events,
		pool:          workerpool.New(defaultNWorkers),
		log:           logger,
		sessions:      make(map[uuid.UUID]net.Conn),
		orderSessions: make(map[order.ID]uuid.UUID),
		ready:         make(chan struct{}),
	}
}

// Addr blocks until Run has bound its listener, then returns its
// address. Intended for tests, which need to dial a server started on
// an ephemeral port ("host:0").
func (s *Server) Addr() net.Addr {
	<-s.ready
	return s.addr
}

func (s *Server) Shutdown() {
	s.log.Info().Msg("gateway shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// Run accepts connections until ctx is cancelled. The accept loop runs
// on the calling goroutine and hands each connection to the worker
// pool; the worker pool and a goroutine that drains the outbound event
// ring and routes each event to its owning session both run under a
// tomb derived from ctx, so cancelling ctx stops them too.
func (s *Server) Run(ctx context.Context) error {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		return fmt.Errorf("gateway: listen: %w", err)
	}
	defer listener.Close()
	go func() {
		// Unblock Accept once ctx is cancelled.
		<-ctx.Done()
		listener.Close()
	}()

	s.addr = listener.Addr()
	s.readyOn.Do(func() { close(s.ready) })

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})
	t.Go(func() error {
		s.drainEvents(t)
		return nil
	})

	s.log.Info().Str("address", listener.Addr().String()).Msg("gateway listening")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			s.log.Error().Err(err).Msg("accept failed")
			continue
		}

		sess := &session{id: uuid.New(), conn: conn}
		s.sessionsLock.Lock()
		s.sessions[sess.id] = conn
		s.sessionsLock.Unlock()

		s.log.Info().Str("session", sess.id.String()).Str("remote", conn.RemoteAddr().String()).Msg("accepted connection")
		s.pool.AddTask(sess)
	}
}

// handleConnection reads one fixed-width command frame at a time off
// the session's connection until it errs out, decoding and pushing
// each onto the inbound ring. A ring.ErrFull does not reach the
// engine at all — it is answered with a back_pressure reject written
// straight back to the client (§4.7).
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	sess, ok := task.(*session)
	if !ok {
		return errImproperConversion
	}
	defer s.closeSession(sess)

	frame := make([]byte, CommandWireSize)
	for {
		select {
		case <-t.Dying():
			return nil
		default:
		}

		sess.conn.SetReadDeadline(time.Now().Add(defaultConnTimeout))
		if _, err := io.ReadFull(sess.conn, frame); err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Error().Err(err).Str("session", sess.id.String()).Msg("read failed")
			}
			return nil
		}

		cmd, err := DecodeCommand(frame)
		if err != nil {
			s.log.Error().Err(err).Str("session", sess.id.String()).Msg("decode failed")
			return nil
		}

		if cmd.Kind == engine.New {
			s.sessionsLock.Lock()
			s.orderSessions[cmd.OrderID] = sess.id
			s.sessionsLock.Unlock()
		}

		if err := s.commands.TryPush(cmd); err != nil {
			reject := engine.Event{Kind: engine.EventReject, OrderID: cmd.OrderID, Reason: engine.ReasonBackPressure}
			sess.conn.Write(EncodeEvent(reject))
		}
	}
}

// drainEvents pops events off the outbound ring as fast as the engine
// produces them and writes each to its owning session. It busy-spins
// on an empty ring for the same latency reason the engine's RunLoop
// does (§4.6): this is the only consumer of that ring, so it must
// never block behind a channel.
func (s *Server) drainEvents(t *tomb.Tomb) {
	for {
		select {
		case <-t.Dying():
			return
		default:
		}

		ev, err := s.events.TryPop()
		if err != nil {
			continue
		}
		s.deliver(ev)
	}
}

func (s *Server) deliver(ev engine.Event) {
	s.sessionsLock.Lock()
	id, ok := s.orderSessions[ev.OrderID]
	if !ok {
		s.sessionsLock.Unlock()
		return
	}
	conn, ok := s.sessions[id]
	s.sessionsLock.Unlock()
	if !ok {
		return
	}

	if _, err := conn.Write(EncodeEvent(ev)); err != nil {
		s.log.Error().Err(err).Str("session", id.String()).Msg("event delivery failed")
	}

	switch ev.Kind {
	case engine.EventCancelAck, engine.EventCancelled, engine.EventReject:
		s.sessionsLock.Lock()
		delete(s.orderSessions, ev.OrderID)
		s.sessionsLock.Unlock()
	}
}

func (s *Server) closeSession(sess *session) {
	sess.conn.Close()
	s.sessionsLock.Lock()
	delete(s.sessions, sess.id)
	s.sessionsLock.Unlock()
	s.log.Info().Str("session", sess.id.String()).Msg("session closed")
}

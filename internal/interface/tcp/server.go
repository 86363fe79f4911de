package tcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONNECTION SERVER
// One goroutine per connection. The accept loop and the per-connection
// read loops poll with short deadlines so they notice shutdown; once the
// context is canceled the listener stops accepting and Run waits for
// every in-flight request to finish before returning.
// ══════════════════════════════════════════════════════════════════════════════

// frameReadTimeout bounds how long a client may take to deliver the rest
// of a frame once its first byte has arrived.
const frameReadTimeout = 30 * time.Second

// ServerConfig holds the listener settings.
type ServerConfig struct {
	Host         string
	Port         int
	PollInterval time.Duration
}

// DefaultServerConfig returns the standard local listener settings.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "127.0.0.1",
		Port:         65432,
		PollInterval: 500 * time.Millisecond,
	}
}

// Server accepts connections and feeds requests to the dispatcher.
type Server struct {
	config     ServerConfig
	dispatcher *Dispatcher
	logger     *slog.Logger

	mu     sync.Mutex
	active int
}

// NewServer creates a Server.
func NewServer(config ServerConfig, dispatcher *Dispatcher, logger *slog.Logger) *Server {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultServerConfig().PollInterval
	}
	return &Server{config: config, dispatcher: dispatcher, logger: logger}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))
}

// Run listens and serves until ctx is canceled, then drains open
// connections before returning.
func (s *Server) Run(ctx context.Context) error {
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Addr(), err)
	}
	defer listener.Close()

	tcpListener, ok := listener.(*net.TCPListener)
	if !ok {
		return fmt.Errorf("unexpected listener type %T", listener)
	}

	s.logger.Info("server listening", slog.String("addr", s.Addr()))

	var wg sync.WaitGroup
	for {
		if ctx.Err() != nil {
			break
		}
		if err := tcpListener.SetDeadline(time.Now().Add(s.config.PollInterval)); err != nil {
			return fmt.Errorf("set accept deadline: %w", err)
		}
		conn, err := tcpListener.Accept()
		if err != nil {
			if isTimeout(err) {
				continue
			}
			if ctx.Err() != nil {
				break
			}
			s.logger.Error("accept failed", slog.String("error", err.Error()))
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConn(ctx, conn)
		}()
	}

	s.logger.Info("server draining connections")
	wg.Wait()
	s.logger.Info("server stopped")
	return nil
}

// handleConn serves one client until it disconnects or shutdown begins.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	connID := uuid.NewString()
	logger := s.logger.With(
		slog.String("conn_id", connID),
		slog.String("remote", conn.RemoteAddr().String()))
	logger.Info("connection opened", slog.Int("active", s.trackConn(1)))

	defer func() {
		conn.Close()
		logger.Info("connection closed", slog.Int("active", s.trackConn(-1)))
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		// Short deadline only while idle, so shutdown is noticed. The
		// frame itself gets the full read timeout once its first byte
		// arrives; a client is free to deliver a frame across many
		// segments slower than the poll cadence.
		if err := conn.SetReadDeadline(time.Now().Add(s.config.PollInterval)); err != nil {
			return
		}
		var first [1]byte
		if _, err := io.ReadFull(conn, first[:]); err != nil {
			if isTimeout(err) {
				continue
			}
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Warn("read failed", slog.String("error", err.Error()))
			return
		}

		// A frame has started. Bytes are already consumed, so from here
		// a timeout closes the connection rather than looping back to
		// the idle wait with the stream desynced.
		if err := conn.SetReadDeadline(time.Now().Add(frameReadTimeout)); err != nil {
			return
		}
		payload, err := ReadFrame(io.MultiReader(bytes.NewReader(first[:]), conn))
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Warn("read failed", slog.String("error", err.Error()))
			return
		}

		var req Request
		if err := json.Unmarshal(payload, &req); err != nil {
			logger.Warn("invalid JSON request", slog.String("error", err.Error()))
			continue
		}

		logger.Info("request",
			slog.String("action", req.Action),
			slog.Int("params", len(req.Params)))

		result := s.dispatcher.Dispatch(ctx, req)

		response, err := MarshalPayload(result)
		if err != nil {
			logger.Error("marshal response failed",
				slog.String("action", req.Action),
				slog.String("error", err.Error()))
			response = []byte(fmt.Sprintf(`{"error": "Erro ao executar ação '%s': resposta não serializável"}`, req.Action))
		}
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := WriteFrame(conn, response); err != nil {
			logger.Warn("write failed", slog.String("error", err.Error()))
			return
		}
	}
}

func (s *Server) trackConn(delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active += delta
	return s.active
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

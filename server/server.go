// Package server serves a game of gomoku between a human (black) and the move selector (white)
// over a JSON API, and pushes status updates to websocket clients.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorgonia/wuziqi/encoding/gif"
	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/selector"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Server struct {
	Config
	session *Session
	hub     *Hub
	router  chi.Router
	logger  zerolog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

type movePayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type newPayload struct {
	Size int `json:"size"`
}

// New creates a server and starts its broadcast hub. It panics if conf is invalid. oracle may be nil.
func New(conf Config, oracle selector.Oracle, logger zerolog.Logger) *Server {
	if !conf.IsValid() {
		panic("Invalid server config")
	}
	sel := selector.New(conf.Selector, oracle).WithLogger(logger)
	s := &Server{
		Config:  conf,
		session: NewSession(conf.Size, sel, conf.TurnTimeout, logger),
		hub:     NewHub(),
		logger:  logger,
		done:    make(chan struct{}),
	}
	s.router = s.routes()
	go s.hub.Run(s.done)
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

// Session returns the game session being served.
func (s *Server) Session() *Session { return s.session }

// Close stops the broadcast hub.
func (s *Server) Close() { s.closeOnce.Do(func() { close(s.done) }) }

// ListenAndServe serves on Addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	defer s.Close()
	server := &http.Server{
		Addr:    s.Addr,
		Handler: s.router,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info().Str("addr", s.Addr).Msg("listening")

	select {
	case <-ctx.Done():
		s.logger.Info().Err(ctx.Err()).Msg("shutting down")
	case err, ok := <-errCh:
		if ok {
			return errors.WithStack(err)
		}
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}
	return nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.session.Status())
	})

	r.Post("/api/new", func(w http.ResponseWriter, r *http.Request) {
		var payload newPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		st, err := s.session.NewGame(payload.Size)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.hub.Broadcast(st)
		writeJSON(w, http.StatusOK, st)
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload movePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		st, err := s.session.Move(r.Context(), game.Coord{Row: payload.Row, Col: payload.Col})
		switch {
		case errors.Is(err, game.ErrGameOver):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		case errors.Is(err, game.ErrInvalidMove):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		case err != nil:
			s.logger.Error().Err(err).Msg("move")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		s.hub.Broadcast(st)
		writeJSON(w, http.StatusOK, st)
	})

	r.Post("/api/undo", func(w http.ResponseWriter, r *http.Request) {
		st, err := s.session.Undo()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.hub.Broadcast(st)
		writeJSON(w, http.StatusOK, st)
	})

	r.Get("/api/hint", func(w http.ResponseWriter, r *http.Request) {
		row, err1 := strconv.Atoi(r.URL.Query().Get("row"))
		col, err2 := strconv.Atoi(r.URL.Query().Get("col"))
		if err1 != nil || err2 != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "row and col must be integers"})
			return
		}
		h, err := s.session.Hint(game.Coord{Row: row, Col: col})
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, h)
	})

	r.Get("/api/replay.gif", func(w http.ResponseWriter, r *http.Request) {
		size, moves := s.session.Record()
		var buf bytes.Buffer
		if err := gif.Replay(&buf, size, moves, "wuziqi"); err != nil {
			s.logger.Error().Err(err).Msg("replay")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "image/gif")
		_, _ = buf.WriteTo(w)
	})

	r.Get("/ws", s.serveWS)
	return r
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: s.hub, send: make(chan []byte, 16)}
	s.hub.Register(client)
	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(s.session.Status())})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			s.logger.Debug().Err(err).Msg("websocket write")
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(s.session.Status())})
		}
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

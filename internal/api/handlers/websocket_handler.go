package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dei-tracker/web/internal/companies"
	"github.com/dei-tracker/web/internal/metrics"
	"github.com/dei-tracker/web/internal/middleware/validation"
	"github.com/dei-tracker/web/internal/models"
	"github.com/dei-tracker/web/internal/search"
	"github.com/dei-tracker/web/pkg/logger"
)

// Autocompleter is the palette lookup a live session needs.
type Autocompleter interface {
	Autocomplete(ctx context.Context, query string, limit int) ([]models.CompanySuggestion, error)
}

type jsonConn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
}

type WebSocketConfig struct {
	FetchAllPageSize int
	SearchDebounce   time.Duration
	PaletteDebounce  time.Duration
	PaletteLimit     int
	MaxQueryLength   int
}

// WebSocketHandler serves the live companies listing. Each connection owns
// one Listing; typing in the search box and the command palette is debounced.
type WebSocketHandler struct {
	fetcher companies.Fetcher
	palette Autocompleter
	cfg     WebSocketConfig
}

func NewWebSocketHandler(fetcher companies.Fetcher, palette Autocompleter, cfg WebSocketConfig) *WebSocketHandler {
	if cfg.MaxQueryLength <= 0 {
		cfg.MaxQueryLength = 200
	}
	if cfg.PaletteLimit <= 0 {
		cfg.PaletteLimit = 8
	}
	return &WebSocketHandler{
		fetcher: fetcher,
		palette: palette,
		cfg:     cfg,
	}
}

type clientMessage struct {
	Type   string           `json:"type"`
	Query  *companies.Query `json:"query,omitempty"`
	Search string           `json:"search,omitempty"`
	Page   int              `json:"page,omitempty"`
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	h.serve(c)
}

func (h *WebSocketHandler) serve(conn jsonConn) {
	s := newSession(h, conn)
	logger.Info("WebSocket connection established", zap.String("session_id", s.id))
	metrics.WebsocketSessions.Inc()

	defer func() {
		s.close()
		metrics.WebsocketSessions.Dec()
		logger.Info("WebSocket connection closed", zap.String("session_id", s.id))
	}()

	s.enqueue(func() { s.apply(companies.Query{}) })

	for {
		var msg clientMessage
		err := conn.ReadJSON(&msg)
		if err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				s.sendError("Invalid message")
				continue
			}
			logger.Debug("WebSocket read ended", zap.String("session_id", s.id), zap.Error(err))
			return
		}

		metrics.WebsocketMessages.WithLabelValues(msg.Type).Inc()
		s.handle(msg)
	}
}

type session struct {
	id      string
	h       *WebSocketHandler
	conn    jsonConn
	listing *companies.Listing

	searchDebounce  *search.Debouncer
	paletteDebounce *search.Debouncer

	ctx    context.Context
	cancel context.CancelFunc
	jobs   chan func()
	done   chan struct{}

	writeMu sync.Mutex
}

func newSession(h *WebSocketHandler, conn jsonConn) *session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:              uuid.New().String(),
		h:               h,
		conn:            conn,
		searchDebounce:  search.NewDebouncer(h.cfg.SearchDebounce),
		paletteDebounce: search.NewDebouncer(h.cfg.PaletteDebounce),
		ctx:             ctx,
		cancel:          cancel,
		jobs:            make(chan func(), 16),
		done:            make(chan struct{}),
	}
	s.listing = companies.NewListing(h.fetcher, h.cfg.FetchAllPageSize, func(state companies.State) {
		s.send(map[string]interface{}{
			"type":  "state",
			"state": state,
		})
	})

	go s.work()
	return s
}

// work runs jobs one at a time so listing transitions never interleave.
func (s *session) work() {
	defer close(s.done)
	for {
		select {
		case job := <-s.jobs:
			job()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *session) enqueue(job func()) {
	select {
	case s.jobs <- job:
	case <-s.ctx.Done():
	}
}

func (s *session) close() {
	s.searchDebounce.Stop()
	s.paletteDebounce.Stop()
	s.cancel()
	<-s.done
}

func (s *session) handle(msg clientMessage) {
	switch msg.Type {
	case "filters":
		if msg.Query == nil {
			s.sendError("Missing query")
			return
		}
		q := *msg.Query
		q.Page = 1
		s.searchDebounce.Cancel()
		s.enqueue(func() { s.apply(q) })

	case "search":
		text := validation.Sanitize(msg.Search)
		if len(text) > s.h.cfg.MaxQueryLength {
			s.sendError("Search term too long")
			return
		}
		s.searchDebounce.Trigger(func() {
			s.enqueue(func() {
				q := s.listing.State().Query
				q.Search = text
				q.Page = 1
				s.apply(q)
			})
		})

	case "page":
		page := msg.Page
		if page < 1 {
			s.sendError("Invalid page")
			return
		}
		s.enqueue(func() {
			q := s.listing.State().Query
			q.Page = page
			s.apply(q)
		})

	case "load_more":
		s.enqueue(func() {
			if _, err := s.listing.LoadMore(s.ctx); err != nil {
				logger.Warn("Load more failed", zap.String("session_id", s.id), zap.Error(err))
			}
		})

	case "palette":
		text := validation.Sanitize(msg.Search)
		if len(text) > s.h.cfg.MaxQueryLength {
			s.sendError("Search term too long")
			return
		}
		s.paletteDebounce.Trigger(func() {
			s.enqueue(func() { s.lookup(text) })
		})

	default:
		s.sendError("Unknown message type")
	}
}

func (s *session) apply(q companies.Query) {
	_, err := s.listing.Apply(s.ctx, q)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	if errors.Is(err, companies.ErrInvalidQuery) {
		s.sendError(err.Error())
		return
	}
	logger.Warn("Live listing load failed", zap.String("session_id", s.id), zap.Error(err))
}

func (s *session) lookup(text string) {
	results := []models.CompanySuggestion{}
	if text != "" {
		found, err := s.h.palette.Autocomplete(s.ctx, text, s.h.cfg.PaletteLimit)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Warn("Palette lookup failed", zap.String("session_id", s.id), zap.Error(err))
				s.sendError(err.Error())
			}
			return
		}
		results = found
	}
	s.send(map[string]interface{}{
		"type":    "palette_results",
		"query":   text,
		"results": results,
	})
}

func (s *session) sendError(msg string) {
	s.send(map[string]interface{}{
		"type":  "error",
		"error": msg,
	})
}

func (s *session) send(msg interface{}) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		logger.Debug("WebSocket write failed", zap.String("session_id", s.id), zap.Error(err))
	}
}

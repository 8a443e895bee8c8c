package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"techtrack/internal/scanner"
	"techtrack/internal/sector"
	"techtrack/pkg/model"
)

// ErrRunning is returned when a refresh is requested while one is active
var ErrRunning = errors.New("refresh already running")

// Runner executes one batch
type Runner interface {
	Run(ctx context.Context, stocks []model.Stock, asOf time.Time) *scanner.Result
}

// Options configures a Server
type Options struct {
	Runner   Runner
	Stocks   []model.Stock
	Taxonomy sector.Taxonomy
	AsOf     func() time.Time // default as-of date for refreshes
	Timeout  time.Duration    // per refresh, 0 for none
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
}

// runState is the latest batch and its status
type runState struct {
	Status     string    `json:"status"` // idle, running, done, error
	Message    string    `json:"message,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`

	result  *scanner.Result
	summary sector.Summary
}

// Server represents the web server
type Server struct {
	opts Options
	srv  *http.Server

	// cancelled by Shutdown; parents refreshes started over HTTP
	baseCtx    context.Context
	cancelBase context.CancelFunc

	mu    sync.RWMutex
	state runState
}

// NewServer creates a new web server
func NewServer(opts Options) *Server {
	if opts.AsOf == nil {
		opts.AsOf = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = &log.DefaultLogger
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	baseCtx, cancelBase := context.WithCancel(context.Background())
	return &Server{
		opts:       opts,
		baseCtx:    baseCtx,
		cancelBase: cancelBase,
		state:      runState{Status: "idle"},
	}
}

// Handler returns the API routes wrapped in the CORS middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/records", s.handleRecords)
	mux.HandleFunc("/api/records/", s.handleRecord)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/errors", s.handleErrors)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	mux.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))

	return corsMiddleware(mux)
}

// Start starts the web server on the specified port
func (s *Server) Start(port int) error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.opts.Logger.Info().Int("port", port).Msgf("serving techtrack API at http://localhost:%d", port)

	return s.srv.ListenAndServe()
}

// Shutdown cancels refreshes started over HTTP and gracefully shuts
// down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancelBase()
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

// Refresh runs a batch as of asOf (zero means the configured default)
// and publishes it. It fails fast with ErrRunning if a batch is active.
func (s *Server) Refresh(ctx context.Context, asOf time.Time) error {
	if asOf.IsZero() {
		asOf = s.opts.AsOf()
	}

	s.mu.Lock()
	if s.state.Status == "running" {
		s.mu.Unlock()
		return ErrRunning
	}
	s.state.Status = "running"
	s.state.Message = fmt.Sprintf("Analysing %d tickers as of %s", len(s.opts.Stocks), asOf.Format("2006-01-02"))
	s.state.StartedAt = time.Now()
	s.mu.Unlock()

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	result := s.opts.Runner.Run(ctx, s.opts.Stocks, asOf)
	summary := sector.Summarize(result.Records, s.opts.Taxonomy)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.FinishedAt = time.Now()
	if err := ctx.Err(); err != nil {
		s.state.Status = "error"
		s.state.Message = fmt.Sprintf("refresh interrupted: %v", err)
		s.opts.Logger.Warn().Str("run_id", result.RunID).Err(err).Msg("refresh interrupted")
		return err
	}
	s.state.Status = "done"
	s.state.Message = fmt.Sprintf("Complete: %d records, %d errors in %s",
		len(result.Records), len(result.Errors), result.Duration.Round(time.Second))
	s.state.result = result
	s.state.summary = summary
	return nil
}

// snapshot returns the published result and summary
func (s *Server) snapshot() (runState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.state.result != nil
}

// corsMiddleware adds CORS headers for local development
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Package web serves the comparison table, the dataset and the calendar feed over HTTP,
// and optionally refreshes the dataset on a cron schedule.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"

	"github.com/pfrederiksen/regional-events/internal/event"
	"github.com/pfrederiksen/regional-events/internal/logger"
	"github.com/pfrederiksen/regional-events/internal/notifier"
	"github.com/pfrederiksen/regional-events/internal/render"
	"github.com/pfrederiksen/regional-events/internal/scraper"
	"github.com/pfrederiksen/regional-events/internal/storage"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Options configures a Server
type Options struct {
	Listen string

	// Base and Target are used when the query omits them.
	Base   event.Region
	Target event.Region

	// RefreshCron schedules Refresh with a standard five-field spec. Empty disables it.
	RefreshCron string
	Updaters    []scraper.Updater

	// Notifier receives the changes of each refresh, defaults to the log.
	Notifier notifier.Notifier
}

// Server renders the dataset on every request
type Server struct {
	store    *storage.Storage
	opts     Options
	html     *render.HTMLRenderer
	router   *chi.Mux
	http     *http.Server
	schedule cron.Schedule

	// mu serializes dataset rewrites against reads
	mu sync.RWMutex
}

// New creates a new Server
func New(store *storage.Storage, opts Options) (*Server, error) {
	if opts.Base == "" {
		opts.Base = event.Japan
	}
	if opts.Target == "" {
		opts.Target = event.Korea
	}
	if opts.Notifier == nil {
		opts.Notifier = notifier.NewLogNotifier()
	}
	if !opts.Base.Valid() {
		return nil, &event.UnknownRegionError{Value: string(opts.Base)}
	}
	if !opts.Target.Valid() {
		return nil, &event.UnknownRegionError{Value: string(opts.Target)}
	}

	s := &Server{
		store: store,
		opts:  opts,
		html:  render.NewHTMLRenderer(),
	}

	if opts.RefreshCron != "" {
		schedule, err := cron.ParseStandard(opts.RefreshCron)
		if err != nil {
			return nil, fmt.Errorf("parsing refresh schedule %q: %w", opts.RefreshCron, err)
		}
		s.schedule = schedule
	}

	s.router = s.routes()
	s.http = &http.Server{
		Addr:              opts.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(chimw.CleanPath)

	r.Get("/", s.handleTable)
	r.Get("/table.json", s.handleTableJSON)
	r.Get("/calendar.ics", s.handleCalendar)
	r.Get("/data.json", s.handleData)
	r.Get("/health", s.handleHealth)
	return r
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
// The refresh job, when scheduled, runs alongside the server.
func (s *Server) Run(ctx context.Context) error {
	if s.schedule != nil {
		c := cron.New()
		c.Schedule(s.schedule, cron.FuncJob(func() {
			if _, err := s.Refresh(ctx); err != nil {
				logger.Error("Scheduled refresh failed", nil, err)
			}
		}))
		c.Start()
		defer func() {
			<-c.Stop().Done()
		}()
		logger.Info("Scheduled dataset refresh", logger.Fields{"cron": s.opts.RefreshCron})
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", logger.Fields{"addr": s.http.Addr, "data_file": s.store.Path()})
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Server shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// Refresh runs every updater in order against the stored dataset and saves it
// when anything changed. A failing updater aborts the refresh without saving.
// The notifier hears about changes only once they are saved.
func (s *Server) Refresh(ctx context.Context) ([]*event.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		logger.RecordTiming("web.refresh", time.Since(start))
	}()

	records, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}

	var changes []*event.Change
	bySource := make([][]*event.Change, len(s.opts.Updaters))
	for i, u := range s.opts.Updaters {
		result, err := scraper.Run(ctx, u, records)
		if err != nil {
			return nil, fmt.Errorf("updating %s: %w", u.Name(), err)
		}
		records = result.Records
		bySource[i] = result.Changes
		changes = append(changes, result.Changes...)
	}

	if len(changes) == 0 {
		logger.Info("Dataset is up to date", nil)
		return nil, nil
	}

	if err := s.store.Save(records); err != nil {
		return nil, fmt.Errorf("saving dataset: %w", err)
	}
	logger.Info("Saved refreshed dataset", logger.Fields{"changes": len(changes), "path": s.store.Path()})

	// only saved changes are reported
	for i, u := range s.opts.Updaters {
		if len(bySource[i]) == 0 {
			continue
		}
		if err := s.opts.Notifier.Notify(u.Name(), bySource[i]); err != nil {
			logger.Warn("Reporting changes failed", logger.Fields{"source": u.Name(), "error": err.Error()})
		}
	}
	return changes, nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		logger.IncrCounter("web.requests")
		logger.RecordTiming("web.request", time.Since(start))
		logger.Debug("Handled request", logger.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"request_id": chimw.GetReqID(r.Context()),
			"duration":   time.Since(start).String(),
		})
	})
}

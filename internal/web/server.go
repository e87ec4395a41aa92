package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"wipertech/storefront/internal/config"
	"wipertech/storefront/internal/domain"
	"wipertech/storefront/internal/selector"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	defaultSettleTimeout = 10 * time.Second
	shutdownTimeout      = 10 * time.Second
)

// Storefront is the catalog data the pages and the selector API read.
// Failures are reported as empty listings or nil entities.
type Storefront interface {
	selector.Catalog
	ListMakes(ctx context.Context, pageParam int) domain.Listing[domain.Make]
	VehicleDetail(ctx context.Context, id string) *domain.VehicleDetail
}

type Server struct {
	store    Storefront
	pages    map[string]*template.Template
	sessions *sessionStore
	router   *mux.Router
	http     *http.Server

	// settleTimeout bounds how long a request waits for selector fetches.
	settleTimeout time.Duration
}

func NewServer(cfg config.ServerConfig, store Storefront) (*Server, error) {
	pages, err := loadPages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:         store,
		pages:         pages,
		sessions:      newSessionStore(time.Duration(cfg.SessionTTL) * time.Second),
		settleTimeout: defaultSettleTimeout,
	}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}

	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverer, requestLogger)

	r.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	r.HandleFunc("/vehicle/{id}", s.handleVehicle).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.PathPrefix("/static/").Handler(http.FileServer(http.FS(staticFS))).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/makes", s.handleMakes).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", s.handleVehicleJSON).Methods(http.MethodGet)
	api.HandleFunc("/selector", s.handleCreateSelector).Methods(http.MethodPost)
	api.HandleFunc("/selector/{sid}", s.handleGetSelector).Methods(http.MethodGet)
	api.HandleFunc("/selector/{sid}", s.handleDeleteSelector).Methods(http.MethodDelete)
	api.HandleFunc("/selector/{sid}/{level:make|model|series|body}", s.handleSelect).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)

	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("🚀 Storefront listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("🛑 Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// RunSessionJanitor expires idle selector sessions until ctx is cancelled,
// then closes the remaining ones.
func (s *Server) RunSessionJanitor(ctx context.Context) error {
	return s.sessions.run(ctx, janitorInterval(s.sessions.ttl))
}

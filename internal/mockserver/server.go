package mockserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"specprobe/internal/mockdata"
	"specprobe/internal/openapi"
	"specprobe/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// DefaultAddr is where Run listens when no address is given.
	DefaultAddr = "127.0.0.1:8080"
	// DefaultTTL is how long created resources are remembered.
	DefaultTTL = 30 * time.Minute

	shutdownTimeout = 5 * time.Second
	routeKey        = "specprobe.route"
)

// Options configures a Server.
type Options struct {
	// AuthHeader carries the credentials; "Authorization" when empty
	AuthHeader string
	// AuthScheme prefixes the token; "Bearer" when empty
	AuthScheme string
	// TTL bounds how long created resources live
	TTL time.Duration
	// Registry receives the request counter; a private registry when nil
	Registry *prometheus.Registry
}

// Server answers the endpoints of one document.
type Server struct {
	spec     *openapi.Spec
	opts     Options
	engine   *gin.Engine
	store    *cache.Cache
	samples  *mockdata.Generator
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

// New builds the router for spec. It fails when two endpoints cannot be
// registered side by side.
func New(spec *openapi.Spec, opts Options) (*Server, error) {
	if opts.AuthHeader == "" {
		opts.AuthHeader = "Authorization"
	}
	if opts.AuthScheme == "" {
		opts.AuthScheme = "Bearer"
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		spec:     spec,
		opts:     opts,
		store:    cache.New(opts.TTL, opts.TTL/2),
		samples:  mockdata.NewGenerator(spec),
		registry: opts.Registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "specprobe_mock_requests_total",
			Help: "Requests answered by the mock server",
		}, []string{"method", "route", "status"}),
	}
	if err := s.registry.Register(s.requests); err != nil {
		return nil, fmt.Errorf("failed to register mock server metrics: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.RedirectTrailingSlash = false
	s.engine.Use(gin.Recovery(), s.observe)

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.Set(routeKey, "/healthz")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not documented"})
	})

	for _, ep := range spec.Endpoints() {
		if err := s.register(ep); err != nil {
			return nil, err
		}
	}
	logging.Info("MockServer", "Registered %d endpoints", len(spec.Endpoints()))
	return s, nil
}

func (s *Server) register(ep openapi.Endpoint) (err error) {
	r := translatePath(ep.Path)
	defer func() {
		// gin panics on routes it cannot place in its tree
		if p := recover(); p != nil {
			err = fmt.Errorf("cannot register %s: %v", ep.Key(), p)
		}
	}()
	s.engine.Handle(ep.Method, r.ginPath, s.handler(ep, r))
	return nil
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("MockServer", "Listening on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mock server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("MockServer", "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down mock server: %w", err)
	}
	return nil
}

// observe counts every request by method, documented route and status.
func (s *Server) observe(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.GetString(routeKey)
	if route == "" {
		route = c.FullPath()
	}
	if route == "" {
		route = "unmatched"
	}
	status := c.Writer.Status()
	s.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
	logging.Debug("MockServer", "%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
}

// authorize applies the token rules to a secured operation and writes the
// rejection when the request is not allowed.
func (s *Server) authorize(c *gin.Context) bool {
	value := strings.TrimSpace(c.GetHeader(s.opts.AuthHeader))
	if value == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization header"})
		return false
	}
	token, ok := strings.CutPrefix(value, s.opts.AuthScheme+" ")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization scheme"})
		return false
	}
	switch strings.TrimSpace(token) {
	case "expired-token":
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
		return false
	case "invalid-token", "":
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return false
	case "readonly-token":
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return false
	}
	return true
}

package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tartampluch/go-agenda/internal/config"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// CalendarServer serves one calendar's iCalendar feed over HTTP.
type CalendarServer struct {
	// cache is swapped by the watcher goroutine and read by every request.
	cache atomic.Pointer[cacheItem]

	Name string
	Port string
	// Token, when set, must be presented as ?token= or a Bearer credential.
	Token string

	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

// NewCalendarServer creates a server for the named calendar.
func NewCalendarServer(name, port string) *CalendarServer {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: config.MetricFeedRequests,
		Help: config.MetricFeedRequestsHelp,
	}, []string{config.MetricLabelCode})

	registry := prometheus.NewRegistry()
	registry.MustRegister(requests)

	return &CalendarServer{
		Name:     name,
		Port:     port,
		registry: registry,
		requests: requests,
	}
}

// Handler returns the routed handler: the feed at "/" and "/{name}.ics", and
// Prometheus metrics at "/metrics".
func (s *CalendarServer) Handler() http.Handler {
	feed := promhttp.InstrumentHandlerCounter(s.requests, http.HandlerFunc(s.handleCalendarRequest))

	r := mux.NewRouter()
	r.Handle(config.RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Handle(config.RouteCalendar, feed)
	r.Handle(config.RouteRoot, feed)
	return r
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyCalendar, s.Name,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served content.
func (s *CalendarServer) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	s.cache.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *CalendarServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	if name, ok := mux.Vars(r)[config.RouteVarName]; ok && name != s.Name {
		http.NotFound(w, r)
		return
	}

	if !s.authorized(r) {
		slog.Warn(config.MsgUnauthorized,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyCalendar, s.Name,
		)
		http.Error(w, config.HTTPMsgUnauthorized, http.StatusUnauthorized)
		return
	}

	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderServer, config.UserAgent)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// authorized accepts any request when no token is configured.
func (s *CalendarServer) authorized(r *http.Request) bool {
	if s.Token == "" {
		return true
	}
	presented := r.URL.Query().Get(config.QueryToken)
	if auth := r.Header.Get(config.HeaderAuthorization); strings.HasPrefix(auth, config.BearerPrefix) {
		presented = strings.TrimPrefix(auth, config.BearerPrefix)
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(s.Token)) == 1
}

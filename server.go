package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/kennygrant/codash/fetch"
	"github.com/kennygrant/codash/metrics"
	"github.com/kennygrant/codash/overview"
	"github.com/kennygrant/codash/series"
	"github.com/kennygrant/codash/table"
)

// maxActionBytes limits the size of posted actions
const maxActionBytes = 1 << 20

// Loader fetches data and dispatches it to a store, usually a *fetch.Fetcher
type Loader interface {
	Load(ctx context.Context, store fetch.Dispatcher) error
}

// LoaderFunc adapts a function to Loader
type LoaderFunc func(ctx context.Context, store fetch.Dispatcher) error

// Load calls f
func (f LoaderFunc) Load(ctx context.Context, store fetch.Dispatcher) error {
	return f(ctx, store)
}

// Server serves the overview state, table rows and rankings as json
type Server struct {
	store  *overview.Store
	loader Loader
	scale  float64
	public string
	log    *zap.Logger

	// ctx is cancelled when the server stops, background reloads use it
	ctx context.Context

	// Mutex so that the selection limit check and dispatch happen together
	mu sync.Mutex
}

// NewServer returns a server for store, loader is used by /reload
func NewServer(ctx context.Context, store *overview.Store, loader Loader, scale float64, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		store:  store,
		loader: loader,
		scale:  scale,
		public: "./public",
		log:    log,
		ctx:    ctx,
	}
}

// Handler returns the routes for the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/overview", s.instrument("/api/overview", s.handleOverview))
	mux.Handle("/api/table", s.instrument("/api/table", s.handleTable))
	mux.Handle("/api/rankings", s.instrument("/api/rankings", s.handleRankings))
	mux.Handle("/api/series", s.instrument("/api/series", s.handleSeries))
	mux.Handle("/api/actions", s.instrument("/api/actions", s.handleActions))
	mux.Handle("/reload", s.instrument("/reload", s.handleReload))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/", s.handleFile)
	return mux
}

// dateFilterResponse is the date filter with dates in the app format
type dateFilterResponse struct {
	StartDate string                  `json:"startDate,omitempty"`
	EndDate   string                  `json:"endDate,omitempty"`
	Mode      overview.DateFilterMode `json:"mode"`
}

// overviewResponse is the overview state as sent to the view
type overviewResponse struct {
	LoadingStatus       overview.AsyncStatus  `json:"loadingStatus"`
	Notification        overview.Notification `json:"notification"`
	DateFilter          dateFilterResponse    `json:"dateFilter"`
	SelectedGeoIDs      map[string]bool       `json:"selectedGeoIds"`
	MaxSelectionReached bool                  `json:"maxSelectionReached"`
	ViewMode            overview.ViewMode     `json:"viewMode"`
	TableVisible        bool                  `json:"tableVisible"`
	GraphsVisible       bool                  `json:"graphsVisible"`
	RankingsVisible     bool                  `json:"rankingsVisible"`
	ParseOptions        series.ParseOptions   `json:"parseOptions"`
	GeoIDs              []string              `json:"geoIds"`
	StartDate           string                `json:"startDate,omitempty"`
	EndDate             string                `json:"endDate,omitempty"`

	DateFilterOptions []overview.Option `json:"dateFilterOptions"`
	ViewModeOptions   []overview.Option `json:"viewModeOptions"`
	GeoIDOptions      []overview.Option `json:"geoIdOptions"`
	MetricOptions     []overview.Option `json:"metricOptions"`
}

func newOverviewResponse(state overview.State) overviewResponse {
	response := overviewResponse{
		LoadingStatus: state.LoadingStatus,
		Notification:  state.Notification,
		DateFilter: dateFilterResponse{
			StartDate: formatDate(state.DateFilter.StartDate),
			EndDate:   formatDate(state.DateFilter.EndDate),
			Mode:      state.DateFilter.Mode,
		},
		SelectedGeoIDs:      state.SelectedGeoIDs,
		MaxSelectionReached: state.MaxSelectionReached(),
		ViewMode:            state.ViewMode,
		TableVisible:        state.TableVisible,
		GraphsVisible:       state.GraphsVisible,
		RankingsVisible:     state.RankingsVisible,
		ParseOptions:        state.ParseOptions,
		GeoIDs:              []string{},
		DateFilterOptions:   overview.DateFilterOptions(),
		ViewModeOptions:     overview.ViewModeOptions(),
		GeoIDOptions:        state.GeoIDOptions(),
		MetricOptions:       table.MetricOptions(),
	}
	if state.Data != nil {
		response.GeoIDs = state.Data.GeoIDs
		response.StartDate = formatDate(state.Data.StartDate)
		response.EndDate = formatDate(state.Data.EndDate)
	}
	return response
}

// handleOverview shows the current state
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, newOverviewResponse(s.store.State()))
}

// handleTable shows the rows for the current filter, only selected rows if selected=1
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rows := table.ProjectState(s.store.State(), s.scale)
	if paramBool(r, "selected") {
		rows = table.SelectedRows(rows)
	}
	if rows == nil {
		rows = []table.Row{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}

// handleRankings shows rows ranked by one metric, or by every metric if none given
func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rows := table.ProjectState(s.store.State(), s.scale)

	metric := table.Metric(param(r, "metric"))
	if metric == "" {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{"rankings": table.Rankings(rows)})
		return
	}
	if !metric.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown metric:%s", metric))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"metric": metric, "rows": table.Rank(rows, metric)})
}

// dayResponse is one day of a region series
type dayResponse struct {
	Date              string `json:"date"`
	Label             string `json:"label"`
	Cases             int    `json:"cases"`
	Deaths            int    `json:"deaths"`
	CasesAccumulated  int    `json:"casesAccumulated"`
	DeathsAccumulated int    `json:"deathsAccumulated"`
}

// seriesResponse is the daily data for one region over the date filter
type seriesResponse struct {
	GeoID string        `json:"geoId"`
	Name  string        `json:"name"`
	Key   string        `json:"key"`
	Days  []dayResponse `json:"days"`
}

// handleSeries shows daily data over the date filter for the regions given
// as geoId=US,JP or for the selected regions if none are given
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	state := s.store.State()
	if state.Data == nil || !state.DateFilter.Set() {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{"series": []seriesResponse{}})
		return
	}

	var geoIDs []string
	if p := param(r, "geoId"); p != "" {
		geoIDs = strings.Split(p, ",")
	} else {
		for _, geoID := range state.Data.GeoIDs {
			if state.SelectedGeoIDs[geoID] {
				geoIDs = append(geoIDs, geoID)
			}
		}
	}

	list := []seriesResponse{}
	for _, geoID := range geoIDs {
		region, err := state.Data.Regions.FetchRegion(strings.TrimSpace(geoID))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}

		response := seriesResponse{GeoID: region.GeoID, Name: region.Name, Key: region.Key(), Days: []dayResponse{}}
		for _, d := range region.Period(state.DateFilter.StartDate, state.DateFilter.EndDate) {
			response.Days = append(response.Days, dayResponse{
				Date:              d.DateMachine(),
				Label:             d.DateDisplay(),
				Cases:             d.Cases,
				Deaths:            d.Deaths,
				CasesAccumulated:  d.CasesAccumulated,
				DeathsAccumulated: d.DeathsAccumulated,
			})
		}
		list = append(list, response)
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"series": list})
}

// handleActions dispatches a user action and shows the resulting state
func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxActionBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "action too large")
		return
	}

	action, err := overview.DecodeAction(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Data actions come from the fetcher only
	switch action.(type) {
	case overview.GetDataStart, overview.GetDataSuccess, overview.GetDataFail, overview.SetNotification:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("action not allowed:%s", action.Type()))
		return
	}

	s.mu.Lock()
	if a, ok := action.(overview.ChangeGeoIDSelection); ok && a.Selected {
		state := s.store.State()
		if state.MaxSelectionReached() && !state.SelectedGeoIDs[a.GeoID] {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, fmt.Sprintf("at most %d regions may be selected", overview.MaxSelectedGeoIDs))
			return
		}
	}
	state := s.store.Dispatch(action)
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, newOverviewResponse(state))
}

// handleReload fetches new data in the background
// FIXME - require authentication to avoid DOS
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.log.Info("reload: fetching data", zap.String("remote", r.RemoteAddr))

	go func() {
		err := s.loader.Load(s.ctx, s.store)
		if err != nil {
			s.log.Error("reload: failed", zap.Error(err))
		}
	}()

	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "reloading"})
}

// handleFile shows a file (if it exists)
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	// Serve the local path
	localPath := filepath.Join(s.public, filepath.Clean("/"+r.URL.Path))

	// Check it exists
	info, err := os.Stat(localPath)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, localPath)
}

// instrument counts requests and their duration by path
func (s *Server) instrument(path string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h(sw, r)
		metrics.RequestsTotal.WithLabelValues(path, strconv.Itoa(sw.status)).Inc()
		metrics.RequestDurationMs.WithLabelValues(path).Observe(float64(time.Since(started).Milliseconds()))
		s.log.Debug("request", zap.String("method", r.Method), zap.String("url", r.URL.String()), zap.Int("status", sw.status))
	})
}

// statusWriter records the status written
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		s.log.Error("render: json error", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// param returns one param string value
func param(r *http.Request, key string) string {
	queryParams := r.URL.Query()
	if len(queryParams[key]) > 0 {
		return queryParams[key][0]
	}

	return ""
}

// paramBool returns true for 1 or true
func paramBool(r *http.Request, key string) bool {
	b, err := strconv.ParseBool(param(r, key))
	return err == nil && b
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(series.DateFormat)
}

// newHTTPServer returns a server with timeouts set
// the default server from net/http has no timeouts
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       10 * time.Second,
	}
}

// ListenAndServe serves plain http on addr until ctx is done
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	server := newHTTPServer(addr, handler)
	return serveUntilDone(ctx, server, func() error { return server.ListenAndServe() })
}

// StartTLSServer starts a TLS server using lets encrypt until ctx is done
func StartTLSServer(ctx context.Context, handler http.Handler, domains []string, certDir string, log *zap.Logger) error {
	certManager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...), // Domains to request certs for
		Cache:      autocert.DirCache(certDir),         // Cache certs in secrets folder
	}

	server := newHTTPServer(":443", handler)
	server.TLSConfig = &tls.Config{
		GetCertificate: certManager.GetCertificate,
		MinVersion:     tls.VersionTLS12,
		// Only use curves which have assembly implementations
		CurvePreferences: []tls.CurveID{
			tls.CurveP256,
			tls.X25519,
		},
	}

	// Handle all :80 traffic using autocert to allow http-01 challenge responses
	challenge := newHTTPServer(":80", certManager.HTTPHandler(nil))
	go func() {
		err := challenge.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server: challenge listener failed", zap.Error(err))
		}
	}()
	defer challenge.Close()

	return serveUntilDone(ctx, server, func() error { return server.ListenAndServeTLS("", "") })
}

// serveUntilDone runs serve and shuts the server down when ctx is done
func serveUntilDone(ctx context.Context, server *http.Server, serve func() error) error {
	errs := make(chan error, 1)
	go func() {
		errs <- serve()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdown); err != nil {
		return fmt.Errorf("server: shutdown:%w", err)
	}
	return nil
}

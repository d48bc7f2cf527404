// Package server serves the setup page, the board pages and the
// websocket each board page uses to drive its session.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"foxie/internal/logging"
	"foxie/internal/report"
	"foxie/internal/skills"
	"foxie/internal/timeline"
	"foxie/internal/viewer"
)

const (
	maxUploadBytes = 512 << 20
	timeLinkStep   = 30 * 1000
	exampleURL     = "https://dps.report/Sosx-20180802-193036_cairn"
)

// ReportFetcher loads a report by its dps.report slug.
type ReportFetcher interface {
	FetchBySlug(ctx context.Context, slug string) (*report.Log, error)
}

// Server is the HTTP front end of the viewer.
type Server struct {
	cfg      viewer.Config
	reports  ReportFetcher
	loader   skills.Loader
	sessions *viewer.Registry
	logger   *slog.Logger
	setupTpl *template.Template
	boardTpl *template.Template
	upgrader websocket.Upgrader
	pages    *pageSet
}

//go:embed templates/setup.html templates/session.html
var content embed.FS

// SetupView is the data of the setup page.
type SetupView struct {
	Message string
	URL     string
	Example string
	Options timeline.Options
}

// TimeLink is a jump target listed above the board.
type TimeLink struct {
	Label string
	Start float64
}

// SessionView is the data of a board page.
type SessionView struct {
	ID        string
	Encounter string
	Board     template.HTML
	Legend    template.HTML
	Options   timeline.Options
	Video     template.URL
	TimeLinks []TimeLink
}

// NewServer wires a server to its report source, skill loader and session registry.
func NewServer(cfg viewer.Config, reports ReportFetcher, loader skills.Loader, sessions *viewer.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if sessions == nil {
		sessions = viewer.NewRegistry(viewer.DefaultRegistryLimit)
	}
	setupTpl := template.Must(template.New("setup.html").ParseFS(content, "templates/setup.html"))
	boardTpl := template.Must(template.New("session.html").ParseFS(content, "templates/session.html"))
	return &Server{
		cfg:      cfg,
		reports:  reports,
		loader:   loader,
		sessions: sessions,
		logger:   logger,
		setupTpl: setupTpl,
		boardTpl: boardTpl,
		// a nil CheckOrigin rejects pages served from other hosts
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		pages: newPageSet(),
	}
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /reports/upload", s.handleUpload)
	mux.HandleFunc("POST /reports/fetch", s.handleFetch)
	mux.HandleFunc("GET /sessions/{id}", s.handleSession)
	mux.HandleFunc("GET /sessions/{id}/board.svg", s.handleBoardSVG)
	mux.HandleFunc("GET /sessions/{id}/legend.svg", s.handleLegendSVG)
	mux.HandleFunc("POST /sessions/{id}/video", s.handleVideo)
	mux.HandleFunc("GET /sessions/{id}/ws", s.handleWS)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Start serves on addr until ctx is cancelled, then closes every session.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	s.logger.Info("listening", "addr", addr)
	err := srv.ListenAndServe()
	s.sessions.CloseAll()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) renderSetup(w http.ResponseWriter, status int, view SetupView) {
	view.Example = exampleURL
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.setupTpl.Execute(w, view); err != nil {
		s.logger.Error("render setup page", "err", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderSetup(w, http.StatusOK, SetupView{Options: s.cfg.Options})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.fail(w, r, fmt.Errorf("read upload: %w", err))
		return
	}
	file, _, err := r.FormFile("log")
	if err != nil {
		s.fail(w, r, errors.New("choose an Elite Insights JSON file or paste a report link"))
		return
	}
	defer file.Close()
	l, err := report.ParseJSON(file)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.openSession(w, r, l)
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	slug, err := report.ParseReportURL(r.FormValue("url"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ctx := logging.NewContext(r.Context(), s.logger)
	l, err := s.reports.FetchBySlug(ctx, slug)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.openSession(w, r, l)
}

// openSession creates the session for l using the options posted with the
// form and redirects to its board page.
func (s *Server) openSession(w http.ResponseWriter, r *http.Request, l *report.Log) {
	cfg := s.cfg
	if r.FormValue("options") != "" {
		cfg.Options.ShowDps = r.FormValue(timeline.OptionShowDps) != ""
		cfg.Options.SortByProfession = r.FormValue(timeline.OptionSortByProfession) != ""
		cfg.Options.ShowIcons = r.FormValue(timeline.OptionShowIcons) != ""
	}
	ctx := logging.NewContext(r.Context(), s.logger)
	sess, err := viewer.NewSession(ctx, l, s.loader, cfg)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if r.MultipartForm != nil {
		if fhs := r.MultipartForm.File["video"]; len(fhs) > 0 && fhs[0].Size > 0 {
			if err := s.attachVideo(sess, fhs[0]); err != nil {
				s.logger.Warn("video not attached", "session", sess.ID, "err", err)
			}
		}
	}
	for _, old := range s.sessions.Add(sess) {
		s.logger.Info("session evicted", "session", old.ID)
	}
	http.Redirect(w, r, "/sessions/"+sess.ID, http.StatusSeeOther)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	s.logger.Warn("report not loaded", "status", status, "err", err)
	s.renderSetup(w, status, SetupView{
		Message: err.Error(),
		URL:     r.FormValue("url"),
		Options: s.cfg.Options,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, report.ErrBadReportURL), errors.Is(err, report.ErrInvalidJSON):
		return http.StatusBadRequest
	case errors.Is(err, report.ErrEmptyReport):
		return http.StatusUnprocessableEntity
	case errors.Is(err, report.ErrFetch), errors.Is(err, skills.ErrLoad):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadRequest
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*viewer.Session, bool) {
	sess, ok := s.sessions.Get(r.PathValue("id"))
	if !ok || sess.Closed() {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	view := SessionView{
		ID:        sess.ID,
		Encounter: sess.Log.Encounter,
		Board:     template.HTML(sess.BoardSVG()),
		Legend:    template.HTML(sess.LegendSVG()),
		Options:   sess.Options(),
		TimeLinks: timeLinks(sess.Log),
	}
	if v := sess.Video(); v != nil {
		view.Video = template.URL(v.DataURL)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.boardTpl.Execute(w, view); err != nil {
		s.logger.Error("render board page", "session", sess.ID, "err", err)
	}
}

// timeLinks lists a jump target every 30 seconds after the log start.
func timeLinks(l *report.Log) []TimeLink {
	var links []TimeLink
	for t := l.Start + timeLinkStep; t < l.End; t += timeLinkStep {
		sec := int((t - l.Start) / 1000)
		links = append(links, TimeLink{
			Label: fmt.Sprintf("%d:%02d", sec/60, sec%60),
			Start: t,
		})
	}
	return links
}

func (s *Server) handleBoardSVG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	fmt.Fprint(w, sess.BoardSVG())
}

func (s *Server) handleLegendSVG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	fmt.Fprint(w, sess.LegendSVG())
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fhs := r.MultipartForm.File["video"]
	if len(fhs) == 0 {
		http.Error(w, "missing video", http.StatusBadRequest)
		return
	}
	if err := s.attachVideo(sess, fhs[0]); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v := sess.Video()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"name": v.Name, "size": v.Size})
}

func (s *Server) attachVideo(sess *viewer.Session, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	log := s.logger.With("session", sess.ID, "video", fh.Filename)
	v, err := viewer.ReadDataURL(f, fh.Filename, fh.Header.Get("Content-Type"), fh.Size, func(pct int) {
		log.Debug("video upload", "percent", pct)
		s.pages.broadcast(sess.ID, progressOf(pct))
	})
	if err != nil {
		return err
	}
	sess.AttachVideo(v)
	log.Info("video attached", "bytes", v.Size)
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"status": "ok", "sessions": s.sessions.Len()})
}

// Package web serves the browser UI and JSON API of taskboard.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/felixgeelhaar/taskboard/internal/infrastructure/sse"
	"github.com/felixgeelhaar/taskboard/pkg/application"
	"github.com/felixgeelhaar/taskboard/pkg/domain/events"
	"github.com/felixgeelhaar/taskboard/pkg/domain/reorder"
	"github.com/felixgeelhaar/taskboard/pkg/domain/todo"
)

//go:embed templates/*
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Options configures a Server.
type Options struct {
	// Publisher feeds the /api/events stream. Without one the stream is not mounted.
	Publisher   events.Publisher
	CORSOrigins []string
	DragFamily  reorder.Family
	Logger      *slog.Logger
	Title       string
}

// Server is the taskboard HTTP server.
type Server struct {
	addr     string
	svc      *application.ListService
	opts     Options
	logger   *slog.Logger
	tmpl     *template.Template
	events   http.Handler
	upgrader websocket.Upgrader
	server   *http.Server
}

// NewServer creates a new server bound to addr.
func NewServer(addr string, svc *application.ListService, opts Options) (*Server, error) {
	funcMap := template.FuncMap{
		"taskHTML": taskHTML,
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Title == "" {
		opts.Title = "Tasks"
	}
	if opts.DragFamily == "" {
		opts.DragFamily = reorder.FamilyPointer
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &Server{
		addr:   addr,
		svc:    svc,
		opts:   opts,
		logger: logger,
		tmpl:   tmpl,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	if opts.Publisher != nil {
		s.events = sse.NewHandler(opts.Publisher)
	}
	return s, nil
}

// Handler returns the full HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /sw.js", s.handleServiceWorker)
	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleAddTask)
	mux.HandleFunc("DELETE /api/tasks", s.handleDeleteAll)
	mux.HandleFunc("PATCH /api/tasks/{key}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{key}", s.handleRemoveTask)
	mux.HandleFunc("PUT /api/order", s.handleReorder)
	mux.HandleFunc("GET /api/amount", s.handleGetAmount)
	mux.HandleFunc("PUT /api/amount", s.handleSetAmount)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	mux.HandleFunc("GET /api/drag", s.handleDrag)
	if s.events != nil {
		mux.Handle("GET /api/events", s.events)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type"},
	})

	return accessLog(s.logger, c.Handler(mux))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server starting", "addr", ln.Addr().String())
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// PageData holds data for template rendering.
type PageData struct {
	Title      string
	Rows       []todo.Row
	Amount     int
	DragFamily reorder.Family
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := PageData{
		Title:      s.opts.Title,
		Rows:       s.svc.Load(r.Context()),
		Amount:     s.svc.Amount(),
		DragFamily: s.opts.DragFamily,
	}
	s.render(w, "index.html", data)
}

func (s *Server) handleServiceWorker(w http.ResponseWriter, r *http.Request) {
	data, err := staticFS.ReadFile("static/sw.js")
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Service-Worker-Allowed", "/")
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template error", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.opts.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// Package server provides the development HTTP server: static output
// serving with clean-URL resolution, a filesystem watcher that
// triggers rebuilds, and WebSocket-based live reload.
package server

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Options configures the development server.
type Options struct {
	Bind       string
	Port       int
	OutputDir  string
	LiveReload bool
}

// Server serves a built site directory during development.
type Server struct {
	opts    Options
	hub     *Hub
	watcher *Watcher
	http    *http.Server
}

// New creates a Server for the given options.
func New(opts Options) *Server {
	if opts.Bind == "" {
		opts.Bind = "localhost"
	}
	if opts.Port == 0 {
		opts.Port = 8080
	}
	return &Server{opts: opts, hub: NewHub()}
}

// SetWatcher attaches a filesystem watcher started alongside the
// server.
func (s *Server) SetWatcher(w *Watcher) { s.watcher = w }

// NotifyReload tells every connected browser to reload.
func (s *Server) NotifyReload() { s.hub.Broadcast([]byte("reload")) }

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run()
	if s.watcher != nil {
		go s.watcher.Start()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/__janos/ws", s.hub.HandleWS)
	mux.HandleFunc("/", s.handle)

	addr := fmt.Sprintf("%s:%d", s.opts.Bind, s.opts.Port)
	s.http = &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.http.Shutdown(shutdownCtx)
	}()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Stop shuts the server, watcher, and hub down.
func (s *Server) Stop() error {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.hub.Stop()
	if s.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	file := ResolvePath(s.opts.OutputDir, r.URL.Path)
	if file == "" {
		s.notFound(w)
		return
	}
	data, err := os.ReadFile(file)
	if err != nil {
		s.notFound(w)
		return
	}

	ext := filepath.Ext(file)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if s.opts.LiveReload && (ext == ".html" || ext == ".htm") {
		data = InjectLiveReload(data, s.opts.Port)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = w.Write(data)
}

func (s *Server) notFound(w http.ResponseWriter) {
	data, err := os.ReadFile(filepath.Join(s.opts.OutputDir, "404.html"))
	if err == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write(data)
		return
	}
	http.Error(w, "404 page not found", http.StatusNotFound)
}

// ResolvePath maps a URL path to a file in the output directory,
// resolving clean URLs to directory index files and extensionless
// paths to .html files. Empty means not found.
func ResolvePath(outputDir, urlPath string) string {
	cleaned := filepath.Clean(urlPath)
	if strings.Contains(cleaned, "..") {
		return ""
	}
	full := filepath.Join(outputDir, filepath.FromSlash(cleaned))

	if info, err := os.Stat(full); err == nil {
		if !info.IsDir() {
			return full
		}
		index := filepath.Join(full, "index.html")
		if _, err := os.Stat(index); err == nil {
			return index
		}
		return ""
	}
	if _, err := os.Stat(full + ".html"); err == nil {
		return full + ".html"
	}
	index := filepath.Join(full, "index.html")
	if _, err := os.Stat(index); err == nil {
		return index
	}
	return ""
}

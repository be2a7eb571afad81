// Package server exposes documents over HTTP: page layout, search results
// with highlight geometry, and rendered pages and tiles as PNG.
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/tsawler/pdfview"
	"github.com/tsawler/pdfview/extract"
	"github.com/tsawler/pdfview/internal/config"
	"github.com/tsawler/pdfview/search"
)

// Common errors
var (
	ErrNotFound        = errors.New("document not found")
	ErrOutsideRoot     = errors.New("path is outside the document root")
	ErrUnsupportedType = errors.New("unsupported document type")
)

type document struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Pages    int       `json:"pages"`
	OpenedAt time.Time `json:"openedAt"`

	viewer *pdfview.Viewer
	// uploaded files are removed when the document is closed
	tempDir string
}

func (d *document) close() error {
	err := d.viewer.Close()
	if d.tempDir != "" {
		os.RemoveAll(d.tempDir)
	}
	return err
}

// Server is the HTTP API server for pdfview.
type Server struct {
	router chi.Router
	cfg    config.Config
	log    *slog.Logger

	mu   sync.RWMutex
	docs map[string]*document
}

// New creates and configures the HTTP server.
func New(cfg config.Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		cfg:  cfg,
		log:  log,
		docs: make(map[string]*document),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if s.cfg.LogRequests {
		r.Use(RequestLogger(s.log))
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api/documents", func(r chi.Router) {
		r.Get("/", s.handleListDocuments)
		r.Post("/", s.handleOpenDocument)

		r.Route("/{docID}", func(r chi.Router) {
			r.Get("/", s.handleGetDocument)
			r.Delete("/", s.handleDeleteDocument)
			r.Get("/layout", s.handleLayout)
			r.Get("/search", s.handleSearch)
			r.Get("/pages/{page}.png", s.handlePage)
			r.Get("/tiles/{level}/{col}/{row}.png", s.handleTile)
		})
	})

	s.router = r
}

func (s *Server) viewerOptions() pdfview.Options {
	opts := pdfview.DefaultOptions()
	opts.ViewWidth = s.cfg.ViewWidth
	opts.TileSize = s.cfg.TileSize
	opts.ExtractTimeout = s.cfg.ExtractTimeout
	opts.Match = search.MatchOptions{
		ContextBefore: s.cfg.ContextBefore,
		ContextAfter:  s.cfg.ContextAfter,
	}
	opts.OCRLanguage = s.cfg.OCRLanguage
	opts.Logger = s.log
	return opts
}

// Open opens the document at path and registers it, returning its id.
// Relative paths are resolved against the document root.
func (s *Server) Open(path string) (string, error) {
	resolved, err := s.resolvePath(path)
	if err != nil {
		return "", err
	}
	doc, err := s.open(resolved, filepath.Base(resolved), "")
	if err != nil {
		return "", err
	}
	return doc.ID, nil
}

func (s *Server) open(path, name, tempDir string) (*document, error) {
	if !supported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(path))
	}
	v, err := pdfview.NewViewer(path, s.viewerOptions())
	if err != nil {
		return nil, err
	}

	doc := &document{
		ID:       uuid.NewString(),
		Name:     name,
		Pages:    v.NumPages(),
		OpenedAt: time.Now().UTC(),
		viewer:   v,
		tempDir:  tempDir,
	}

	s.mu.Lock()
	s.docs[doc.ID] = doc
	s.mu.Unlock()

	s.log.Info("document registered", "id", doc.ID, "name", name, "pages", doc.Pages)
	return doc, nil
}

func supported(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf") || extract.IsImage(path)
}

// resolvePath keeps paths inside the document root when one is configured
func (s *Server) resolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}
	root := s.cfg.DocumentRoot
	if root == "" {
		return filepath.Clean(path), nil
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(rootAbs, full)
	}
	full = filepath.Clean(full)

	rel, err := filepath.Rel(rootAbs, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return full, nil
}

func (s *Server) lookup(id string) (*document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok
}

func (s *Server) list() []*document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]*document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].OpenedAt.Equal(docs[j].OpenedAt) {
			return docs[i].OpenedAt.Before(docs[j].OpenedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs
}

// Remove closes and unregisters a document
func (s *Server) Remove(id string) error {
	s.mu.Lock()
	doc, ok := s.docs[id]
	delete(s.docs, id)
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	return doc.close()
}

// Close closes every open document
func (s *Server) Close() error {
	s.mu.Lock()
	docs := s.docs
	s.docs = make(map[string]*document)
	s.mu.Unlock()

	var errs []error
	for _, d := range docs {
		if err := d.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

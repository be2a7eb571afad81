package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tsawler/pdfview/geometry"
	"github.com/tsawler/pdfview/pdfdoc"
	"github.com/tsawler/pdfview/render"
	"github.com/tsawler/pdfview/search"
)

const maxZoom = 16

type openRequest struct {
	Path string `json:"path"`
}

type frameJSON struct {
	Page     int     `json:"page"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Degraded bool    `json:"degraded,omitempty"`
}

type layoutJSON struct {
	ViewWidth     float64     `json:"viewWidth"`
	ContentWidth  float64     `json:"contentWidth"`
	ContentHeight float64     `json:"contentHeight"`
	Frames        []frameJSON `json:"frames"`
	Warnings      []string    `json:"warnings,omitempty"`
}

func newLayoutJSON(l geometry.Layout) layoutJSON {
	w, h := l.ContentSize()
	out := layoutJSON{
		ViewWidth:     l.ViewWidth,
		ContentWidth:  w,
		ContentHeight: h,
		Frames:        make([]frameJSON, len(l.Frames)),
	}
	for i, f := range l.Frames {
		out.Frames[i] = frameJSON{
			Page:     f.Page,
			X:        f.Rect.X,
			Y:        f.Rect.Y,
			Width:    f.Rect.Width,
			Height:   f.Rect.Height,
			Degraded: f.Degraded,
		}
	}
	for _, warn := range l.Warnings {
		out.Warnings = append(out.Warnings, warn.String())
	}
	return out
}

type searchResultJSON struct {
	search.Result
	Snippet string `json:"snippet"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"documents": s.list()})
}

// handleOpenDocument opens a document by path (JSON body) or from a
// multipart upload in the "file" field.
func (s *Server) handleOpenDocument(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		s.handleUpload(w, r)
		return
	}

	var req openRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		jsonError(w, "path is required", http.StatusBadRequest)
		return
	}

	id, err := s.Open(req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc, _ := s.lookup(id)
	writeJSON(w, http.StatusCreated, map[string]any{"document": doc})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1<<20)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !supported(name) {
		s.writeError(w, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(name)))
		return
	}

	dir, err := os.MkdirTemp("", "pdfview-upload-")
	if err != nil {
		s.writeError(w, err)
		return
	}
	path := filepath.Join(dir, "document"+filepath.Ext(name))

	if err := saveUpload(path, file, s.cfg.MaxUploadBytes); err != nil {
		os.RemoveAll(dir)
		if errors.Is(err, errTooLarge) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		s.writeError(w, err)
		return
	}

	doc, err := s.open(path, name, dir)
	if err != nil {
		os.RemoveAll(dir)
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"document": doc})
}

var errTooLarge = errors.New("upload too large")

func saveUpload(path string, src io.Reader, limit int64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, io.LimitReader(src, limit+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if n > limit {
		return errTooLarge
	}
	return nil
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document": doc,
		"layout":   newLayoutJSON(doc.viewer.Layout()),
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.Remove(chi.URLParam(r, "docID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLayout returns the page frames. A width parameter lays the pages
// out for that width without changing the document's tiles.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}

	layout := doc.viewer.Layout()
	if v := r.URL.Query().Get("width"); v != "" {
		width, err := strconv.ParseFloat(v, 64)
		if err != nil || width <= 0 {
			jsonError(w, "width must be a positive number", http.StatusBadRequest)
			return
		}
		layout = geometry.ComputePageFrames(doc.viewer.Renderer().PageBoxes(), width)
	}
	writeJSON(w, http.StatusOK, newLayoutJSON(layout))
}

// handleSearch searches the document text. Requests do not cancel each
// other; with highlight=true the results become the highlighted set drawn
// on tiles.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	query := r.URL.Query().Get("q")

	// Engine.Find rather than Search: a request must not cancel another
	// client's search on the same document.
	results, err := doc.viewer.Engine().Find(r.Context(), query)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if r.URL.Query().Get("highlight") == "true" {
		doc.viewer.Renderer().SetHighlights(results)
	}

	out := make([]searchResultJSON, len(results))
	for i, res := range results {
		out[i] = searchResultJSON{Result: res, Snippet: res.HTMLSnippet()}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"summary": search.Summary(results),
		"results": out,
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		jsonError(w, "page must be an integer", http.StatusBadRequest)
		return
	}
	zoom := 1.0
	if v := r.URL.Query().Get("zoom"); v != "" {
		zoom, err = strconv.ParseFloat(v, 64)
		if err != nil || zoom <= 0 || zoom > maxZoom {
			jsonError(w, fmt.Sprintf("zoom must be in (0, %d]", maxZoom), http.StatusBadRequest)
			return
		}
	}

	img, err := doc.viewer.RenderPage(page, zoom)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writePNG(w, img)
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}

	var key render.TileKey
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"level", &key.Level},
		{"col", &key.Col},
		{"row", &key.Row},
	} {
		n, err := strconv.Atoi(chi.URLParam(r, p.name))
		if err != nil || n < 0 {
			jsonError(w, p.name+" must be a non-negative integer", http.StatusBadRequest)
			return
		}
		*p.dst = n
	}
	if key.Level >= render.LevelsOfDetail {
		jsonError(w, fmt.Sprintf("level must be below %d", render.LevelsOfDetail), http.StatusBadRequest)
		return
	}

	img, err := doc.viewer.RenderTile(key)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writePNG(w, img)
}

func (s *Server) document(w http.ResponseWriter, r *http.Request) (*document, bool) {
	doc, ok := s.lookup(chi.URLParam(r, "docID"))
	if !ok {
		jsonError(w, ErrNotFound.Error(), http.StatusNotFound)
	}
	return doc, ok
}

func (s *Server) writePNG(w http.ResponseWriter, img image.Image) {
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		s.log.Warn("png encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, os.ErrNotExist),
		errors.Is(err, geometry.ErrPageOutOfRange):
		code = http.StatusNotFound
	case errors.Is(err, ErrOutsideRoot):
		code = http.StatusForbidden
	case errors.Is(err, ErrUnsupportedType),
		errors.Is(err, pdfdoc.ErrBadLocator):
		code = http.StatusUnsupportedMediaType
	case errors.Is(err, render.ErrInvalidZoom),
		errors.Is(err, geometry.ErrDegenerateCropBox):
		code = http.StatusBadRequest
	case errors.Is(err, search.ErrExtractionFailed):
		code = http.StatusUnprocessableEntity
	}
	if code == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	jsonError(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

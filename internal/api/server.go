// Package api exposes the bridge's HTTP surface to the capture extension:
// a liveness ping, the capture endpoint that kicks off a posting run and a
// read-only view of past runs.
package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/dealerbridge/lotposter/internal/admission"
	"github.com/dealerbridge/lotposter/internal/form"
	"github.com/dealerbridge/lotposter/internal/listing"
	"github.com/dealerbridge/lotposter/internal/vehicle"
	"github.com/dealerbridge/lotposter/pkg/httpx"
)

// Poster drives the browser for one vehicle. *listing.BrowserPoster is the
// production implementation.
type Poster interface {
	Post(ctx context.Context, rec vehicle.Record, imagePaths []string) (form.Report, error)
}

// ImageFetcher pulls listing photos to local files. *images.Downloader is
// the production implementation.
type ImageFetcher interface {
	DownloadAll(ctx context.Context, urls []string) []string
}

// Confirmer gates a capture on operator approval.
type Confirmer interface {
	Confirm(message string) bool
}

type Server struct {
	guard     admission.Guard
	runs      listing.Service
	images    ImageFetcher
	poster    Poster
	confirmer Confirmer
	dataDir   string
	logger    *log.Logger
}

func NewServer(guard admission.Guard, runs listing.Service, images ImageFetcher, poster Poster, confirmer Confirmer, dataDir string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{guard: guard, runs: runs, images: images, poster: poster, confirmer: confirmer, dataDir: dataDir, logger: logger}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ping", s.handlePing)
	mux.HandleFunc("/capture", s.handleCapture)
	mux.HandleFunc("/runs", s.handleRuns)
	mux.HandleFunc("/runs/", s.handleRunByID)

	return allowBrowserExtension(mux)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	httpx.WriteAck(w, httpx.Ack{OK: true})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httpx.WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	items, err := s.runs.ListRecent(r.Context(), limit)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (s *Server) handleRunByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/runs/"))
	if id == "" || strings.Contains(id, "/") {
		httpx.WriteError(w, http.StatusBadRequest, "run id is required")
		return
	}

	found, err := s.runs.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, found)
}

// allowBrowserExtension mirrors the permissive CORS the capture extension
// relies on; the bridge only listens on loopback.
func allowBrowserExtension(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

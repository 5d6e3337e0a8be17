package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dealerbridge/lotposter/internal/vehicle"
	"github.com/dealerbridge/lotposter/pkg/httpx"
)

const maxCaptureBody = 2 << 20

// handleCapture runs one vehicle end to end: admission, normalization, a
// persisted snapshot, image downloads, the operator confirmation gate and
// the browser flow. The extension only reads the ack body, so every outcome
// is HTTP 200 with ok/skipped/error set accordingly.
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCaptureBody)).Decode(&payload); err != nil {
		httpx.WriteAck(w, httpx.Ack{OK: false, Error: "request body must be valid JSON"})
		return
	}

	release, ok, err := s.guard.Acquire(r.Context())
	if err != nil {
		httpx.WriteAck(w, httpx.Ack{OK: false, Error: err.Error()})
		return
	}
	if !ok {
		httpx.WriteAck(w, httpx.Ack{OK: false, Error: "busy"})
		return
	}
	defer release()

	httpx.WriteAck(w, s.runCapture(r.Context(), payload))
}

func (s *Server) runCapture(ctx context.Context, payload map[string]any) (ack httpx.Ack) {
	rec := vehicle.Record(vehicle.NormalizeAliases(payload))

	run, err := s.runs.Create(ctx, rec)
	if err != nil {
		return httpx.Ack{OK: false, Error: err.Error()}
	}

	// A flow crash must not take the bridge down; the browser session
	// survives for the next capture.
	defer func() {
		if recovered := recover(); recovered != nil {
			message := fmt.Sprintf("capture panic: %v", recovered)
			s.logger.Printf("%s", message)
			if _, markErr := s.runs.MarkFailed(context.WithoutCancel(ctx), run.ID, nil, run.Report, message); markErr != nil {
				s.logger.Printf("mark run failed: %v", markErr)
			}
			ack = httpx.Ack{OK: false, Error: message}
		}
	}()

	if err := s.snapshotPayload(rec); err != nil {
		s.logger.Printf("snapshot payload: %v", err)
	}

	imagePaths := s.images.DownloadAll(ctx, rec.ImageURLs())
	s.logSummary(rec, len(imagePaths))

	if s.confirmer != nil && !s.confirmer.Confirm("Open Facebook and autofill?") {
		if _, err := s.runs.MarkSkipped(ctx, run.ID); err != nil {
			s.logger.Printf("mark run skipped: %v", err)
		}
		return httpx.Ack{OK: true, Skipped: true}
	}

	report, err := s.poster.Post(ctx, rec, imagePaths)
	if err != nil {
		if _, markErr := s.runs.MarkFailed(context.WithoutCancel(ctx), run.ID, imagePaths, report, err.Error()); markErr != nil {
			s.logger.Printf("mark run failed: %v", markErr)
		}
		return httpx.Ack{OK: false, Error: err.Error()}
	}

	if _, err := s.runs.MarkCompleted(ctx, run.ID, imagePaths, report); err != nil {
		s.logger.Printf("mark run completed: %v", err)
	}
	return httpx.Ack{OK: true}
}

// snapshotPayload keeps the last captured vehicle on disk for debugging and
// manual replay.
func (s *Server) snapshotPayload(rec vehicle.Record) error {
	if s.dataDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dataDir, "vehicle.json"), encoded, 0o644)
}

func (s *Server) logSummary(rec vehicle.Record, imageCount int) {
	s.logger.Printf("vehicle: %s %s %s %s | price %s | mileage %s | vin %s | %s over %s | %d image(s)",
		rec.Year(), rec.Make(), rec.Model(), rec.Trim(),
		rec.Price(), rec.Mileage(), rec.VIN(),
		rec.ExteriorColor(), rec.InteriorColor(), imageCount)
}

package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"churnscope/domain/core"
	"churnscope/domain/tabular"
	"churnscope/internal/explain"
	"churnscope/internal/predict"
	"churnscope/internal/report"
	"churnscope/internal/train"
)

const maxUploadBytes = 100 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload accepts a multipart dataset file and stores it under a
// collision-free name the other endpoints reference as file_id.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".csv", ".xlsx", ".xlsm":
	default:
		writeError(w, http.StatusBadRequest, "unsupported file type "+ext)
		return
	}

	ref, err := s.container.Files.Store(r.Context(), file, header.Filename)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Parse the stored copy once so the caller learns the schema up front.
	frame, err := s.container.Loader.Load(r.Context(), ref)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtypes := make(map[string]string, frame.NumCols())
	for name, typ := range tabular.Classify(frame) {
		dtypes[name] = string(typ)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"file_id": string(ref),
		"columns": frame.Names(),
		"dtypes":  dtypes,
	})
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req train.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := s.container.Trainer.Train(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predict.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := s.container.Predictor.Predict(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req explain.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := s.container.Explainer.Explain(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req explain.SimulateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	score, err := s.container.Explainer.Simulate(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"score": score})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req report.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := s.container.Reports.Generate(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	ids, err := s.container.Models.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"models": ids})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.container.Registry == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"runs": []struct{}{}})
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	runs, err := s.container.Registry.ListRecent(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// handleDownload streams a stored artifact back to the client.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	ref, err := core.ParseFileRef(filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f, err := s.container.Files.Open(r.Context(), ref)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", "attachment; filename=\""+string(ref)+"\"")
	w.Header().Set("Content-Type", contentType(string(ref)))
	if _, err := io.Copy(w, f); err != nil {
		log.Printf("[Server] Download of %s aborted: %v", ref, err)
	}
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "text/csv"
	case ".png":
		return "image/png"
	case ".html":
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case core.IsNotFoundError(err):
		writeError(w, http.StatusNotFound, err.Error())
	case core.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[Server] Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

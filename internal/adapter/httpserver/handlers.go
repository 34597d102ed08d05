package httpserver

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/adapter/observability"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/config"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
)

// PipelineRunner is the gate+score+rerank pipeline as seen by the handlers.
type PipelineRunner interface {
	Run(ctx context.Context, role string, docs []domain.CandidateDocument) (domain.RankingResult, error)
}

// Server wires HTTP requests into the ranking pipeline.
type Server struct {
	Cfg      config.Config
	Pipeline PipelineRunner
	Fetcher  domain.DocumentFetcher
	Renderer domain.ReportRenderer

	validate *validator.Validate
}

func NewServer(cfg config.Config, p PipelineRunner, f domain.DocumentFetcher, r domain.ReportRenderer) *Server {
	return &Server{
		Cfg:      cfg,
		Pipeline: p,
		Fetcher:  f,
		Renderer: r,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// rankResponse is the JSON envelope for a completed run.
type rankResponse struct {
	RunID     string                    `json:"run_id"`
	Ranked    []domain.RankedRecord     `json:"ranked"`
	Skipped   []domain.SkippedCandidate `json:"skipped"`
	Evaluated []domain.EvaluationRecord `json:"evaluated,omitempty"`
	Denied    int                       `json:"denied"`
	Truncated int                       `json:"truncated"`
}

// HandleRank accepts a multipart form with a job_description field and one
// or more resumes files, runs the pipeline, and returns the ranking.
func (s *Server) HandleRank(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, r, fmt.Errorf("%w: parse multipart form: %v", domain.ErrInvalidArgument, err), nil)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	role := strings.TrimSpace(r.FormValue("job_description"))
	if role == "" {
		writeError(w, r, fmt.Errorf("%w: job_description field is required", domain.ErrInvalidArgument), nil)
		return
	}

	files := r.MultipartForm.File["resumes"]
	if len(files) == 0 {
		writeError(w, r, fmt.Errorf("%w: at least one resumes file is required", domain.ErrInvalidArgument), nil)
		return
	}

	docs := make([]domain.CandidateDocument, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			writeError(w, r, err, map[string]string{"filename": fh.Filename})
			return
		}
		if err := checkUploadType(fh.Filename, data); err != nil {
			writeError(w, r, err, map[string]string{"filename": fh.Filename})
			return
		}
		docs = append(docs, domain.CandidateDocument{Filename: fh.Filename, Bytes: data})
	}

	s.runAndRespond(w, r, role, docs)
}

// manifestDocument is one (name, url) pair in a manifest submission.
type manifestDocument struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required,url"`
}

type manifestRequest struct {
	JobDescription string             `json:"job_description" validate:"required"`
	Documents      []manifestDocument `json:"documents" validate:"required,min=1,dive"`
}

// HandleRankManifest accepts either a JSON manifest body or a multipart form
// with a job_description field and a CSV manifest file (name,url rows),
// fetches each document, and runs the pipeline. A fetch failure for one
// document becomes a skipped entry; it never aborts the batch.
func (s *Server) HandleRankManifest(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeManifest(r)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
		return
	}

	var docs []domain.CandidateDocument
	var fetchSkipped []domain.SkippedCandidate
	for _, md := range req.Documents {
		data, err := s.Fetcher.Fetch(r.Context(), md.Name, md.URL)
		if err != nil {
			slog.Warn("manifest fetch failed",
				slog.String("name", md.Name),
				slog.String("url", md.URL),
				slog.Any("error", err))
			fetchSkipped = append(fetchSkipped, domain.SkippedCandidate{
				Filename: md.Name,
				Reason:   fmt.Sprintf("document fetch failed: %v", err),
			})
			continue
		}
		docs = append(docs, domain.CandidateDocument{Filename: md.Name, Bytes: data, SourceURL: md.URL})
	}
	if len(docs) == 0 {
		writeError(w, r, fmt.Errorf("%w: no manifest document could be fetched", domain.ErrInvalidArgument),
			fetchSkipped)
		return
	}

	s.runAndRespond(w, r, req.JobDescription, docs, fetchSkipped...)
}

func (s *Server) decodeManifest(r *http.Request) (manifestRequest, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		return s.decodeManifestCSV(r)
	}
	var req manifestRequest
	dec := newStrictJSONDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		return manifestRequest{}, fmt.Errorf("%w: decode manifest: %v", domain.ErrInvalidArgument, err)
	}
	return req, nil
}

func (s *Server) decodeManifestCSV(r *http.Request) (manifestRequest, error) {
	maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return manifestRequest{}, fmt.Errorf("%w: parse multipart form: %v", domain.ErrInvalidArgument, err)
	}
	req := manifestRequest{JobDescription: strings.TrimSpace(r.FormValue("job_description"))}

	fhs := r.MultipartForm.File["manifest"]
	if len(fhs) == 0 {
		return manifestRequest{}, fmt.Errorf("%w: manifest file is required", domain.ErrInvalidArgument)
	}
	f, err := fhs[0].Open()
	if err != nil {
		return manifestRequest{}, fmt.Errorf("%w: open manifest: %v", domain.ErrInvalidArgument, err)
	}
	defer func() { _ = f.Close() }()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return manifestRequest{}, fmt.Errorf("%w: read manifest csv: %v", domain.ErrInvalidArgument, err)
		}
		// Tolerate an optional header row.
		if strings.EqualFold(row[0], "name") && strings.EqualFold(row[1], "url") {
			continue
		}
		req.Documents = append(req.Documents, manifestDocument{Name: row[0], URL: row[1]})
	}
	return req, nil
}

func (s *Server) runAndRespond(w http.ResponseWriter, r *http.Request, role string, docs []domain.CandidateDocument, preSkipped ...domain.SkippedCandidate) {
	runID := uuid.NewString()
	start := time.Now()
	log := slog.With(
		slog.String("run_id", runID),
		slog.String("request_id", RequestIDFromContext(r.Context())))
	log.Info("ranking run started", slog.Int("candidates", len(docs)))

	observability.RankingCandidates.Observe(float64(len(docs)))

	res, err := s.Pipeline.Run(r.Context(), role, docs)
	if err != nil {
		observability.RankingRunsTotal.WithLabelValues("error").Inc()
		log.Error("ranking run failed", slog.Any("error", err))
		writeError(w, r, err, nil)
		return
	}
	res.Skipped = append(res.Skipped, preSkipped...)

	observability.RankingRunsTotal.WithLabelValues("ok").Inc()
	observability.GateDeniedTotal.Add(float64(res.Denied))
	for _, rec := range res.Ranked {
		observability.FinalScoreHistogram.Observe(float64(rec.FinalScore))
	}
	log.Info("ranking run completed",
		slog.Int("ranked", len(res.Ranked)),
		slog.Int("skipped", len(res.Skipped)),
		slog.Int("denied", res.Denied),
		slog.Int("truncated", res.Truncated),
		slog.Duration("duration", time.Since(start)))

	if r.URL.Query().Get("format") == "markdown" {
		body, err := s.Renderer.Render(role, res)
		if err != nil {
			writeError(w, r, fmt.Errorf("op=render report: %w", err), nil)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	resp := rankResponse{
		RunID:     runID,
		Ranked:    res.Ranked,
		Skipped:   res.Skipped,
		Denied:    res.Denied,
		Truncated: res.Truncated,
	}
	if r.URL.Query().Get("include_evaluated") == "true" {
		resp.Evaluated = res.Evaluated
	}
	writeJSON(w, http.StatusOK, resp)
}

// allowedUploadTypes is what the extractor accepts. PDF is sniffed; anything
// plain-text passes through as-is.
var allowedExtensions = map[string]bool{".pdf": true, ".txt": true, ".md": true, ".text": true}

func checkUploadType(filename string, data []byte) error {
	ext := strings.ToLower(filenameExt(filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: unsupported file extension %q", domain.ErrInvalidArgument, ext)
	}
	mt := mimetype.Detect(data)
	if ext == ".pdf" && !mt.Is("application/pdf") {
		return fmt.Errorf("%w: file %q is not a valid PDF (%s)", domain.ErrInvalidArgument, filename, mt.String())
	}
	if ext != ".pdf" && !strings.HasPrefix(mt.String(), "text/") && mt.String() != "application/octet-stream" {
		return fmt.Errorf("%w: file %q is not plain text (%s)", domain.ErrInvalidArgument, filename, mt.String())
	}
	return nil
}

func filenameExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open upload %q: %v", domain.ErrInvalidArgument, fh.Filename, err)
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload %q: %v", domain.ErrInvalidArgument, fh.Filename, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: upload %q is empty", domain.ErrInvalidArgument, fh.Filename)
	}
	return data, nil
}

// Healthz reports process liveness.
func (s *Server) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports readiness to serve ranking requests.
func (s *Server) Readyz(w http.ResponseWriter, _ *http.Request) {
	if s.Pipeline == nil {
		writeError(w, nil, errors.New("pipeline not initialized"), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

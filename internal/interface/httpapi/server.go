package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jinford/pii-redactor/internal/module/job/application"
	"github.com/jinford/pii-redactor/internal/module/job/domain"
)

// Submitting はHTTPトリガーから呼ぶ投入操作です
type Submitting interface {
	Submit(ctx context.Context, req application.SubmitRequest) (application.SubmitResult, error)
}

// Reconciling はHTTPトリガーから呼ぶ照合操作です
type Reconciling interface {
	Run(ctx context.Context) (application.Counts, error)
}

// Server はジョブ投入と照合のHTTPトリガーです
type Server struct {
	submitter  Submitting
	reconciler Reconciling
	store      domain.Store
	logger     *slog.Logger
}

type Option func(*Server)

// WithLogger はロガーを差し替えます
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer はServerを作成します
func NewServer(submitter Submitting, reconciler Reconciling, store domain.Store, opts ...Option) *Server {
	s := &Server{
		submitter:  submitter,
		reconciler: reconciler,
		store:      store,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router は全エンドポイントを登録したルーターを返します
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/v1/events", s.handleEvent).Methods(http.MethodPost)
	r.HandleFunc("/v1/reconcile", s.handleReconcile).Methods(http.MethodPost)
	r.HandleFunc("/v1/jobs/{jobID}", s.handleGetJob).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return r
}

type eventRequest struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

type eventResponse struct {
	JobID      string `json:"jobId"`
	Method     string `json:"method"`
	JobArn     string `json:"jobArn,omitempty"`
	OutputFile string `json:"outputFile,omitempty"`
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation", errors.New("invalid JSON body"))
		return
	}

	result, err := s.submitter.Submit(r.Context(), application.SubmitRequest{
		Bucket: req.Bucket,
		Key:    req.Key,
	})
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			s.writeError(w, http.StatusBadRequest, "validation", err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, "processing", err)
		return
	}

	resp := eventResponse{JobID: result.JobID}
	switch result.Outcome {
	case application.OutcomeSubmitted:
		resp.Method = string(domain.MethodAsyncModel)
		resp.JobArn = result.BackendJobID
	case application.OutcomeFallback:
		resp.Method = string(domain.MethodDirectProcessing)
		resp.OutputFile = result.Output.URI()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type reconcileResponse struct {
	JobsChecked int `json:"jobsChecked"`
	JobsUpdated int `json:"jobsUpdated"`
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	counts, err := s.reconciler.Run(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "reconcile", err)
		return
	}
	s.writeJSON(w, http.StatusOK, reconcileResponse{
		JobsChecked: counts.JobsChecked,
		JobsUpdated: counts.JobsUpdated,
	})
}

type jobResponse struct {
	JobID         string `json:"jobId"`
	JobArn        string `json:"jobArn,omitempty"`
	Status        string `json:"status"`
	Method        string `json:"method"`
	InputFile     string `json:"inputFile"`
	OutputFile    string `json:"outputFile,omitempty"`
	CreatedAt     string `json:"createdAt"`
	CompletedAt   string `json:"completedAt,omitempty"`
	FailureReason string `json:"failureReason,omitempty"`
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobID"]

	record, err := s.store.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			s.writeError(w, http.StatusNotFound, "lookup", err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, "lookup", err)
		return
	}

	resp := jobResponse{
		JobID:         record.JobID,
		JobArn:        record.BackendJobID,
		Status:        string(record.Status),
		Method:        string(record.Method),
		InputFile:     record.Input.URI(),
		CreatedAt:     record.CreatedAt.Format(timeFormat),
		FailureReason: record.FailureReason,
	}
	if !record.Output.IsZero() {
		resp.OutputFile = record.Output.URI()
	}
	if !record.CompletedAt.IsZero() {
		resp.CompletedAt = record.CompletedAt.Format(timeFormat)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

type errorResponse struct {
	Stage string `json:"stage"`
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, code int, stage string, err error) {
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("stage", stage), slog.String("error", err.Error()))
	}
	s.writeJSON(w, code, errorResponse{Stage: stage, Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

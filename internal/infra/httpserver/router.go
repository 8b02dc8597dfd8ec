package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appanalysis "github.com/bryanwahyu/componentlens/internal/application/analysis"
	domai "github.com/bryanwahyu/componentlens/internal/domain/ai"
	domain "github.com/bryanwahyu/componentlens/internal/domain/analysis"
	"github.com/bryanwahyu/componentlens/internal/middleware"
)

const defaultMaxUpload = 10 << 20

// AnalysisIDHeader carries the id of an analysis that failed part way.
const AnalysisIDHeader = "X-Analysis-ID"

// Options configures the public routes around the API.
type Options struct {
	// Checkers back GET /healthz.
	Checkers map[string]middleware.HealthChecker
	// MaxUploadBytes caps the detect-component body; 0 means 10 MiB.
	MaxUploadBytes int64
}

type Router struct {
	svc       *appanalysis.Service
	maxUpload int64
}

func NewRouter(svc *appanalysis.Service, opts Options) http.Handler {
	r := &Router{svc: svc, maxUpload: opts.MaxUploadBytes}
	if r.maxUpload <= 0 {
		r.maxUpload = defaultMaxUpload
	}
	mux := chi.NewRouter()

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler)
	mux.Get("/healthz", middleware.HealthHandler(opts.Checkers))
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Get("/v1/model-info", r.wrap(r.handleModelInfo))

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Use(middleware.RequireValidTenant)
		rt.Post("/classify", r.wrap(r.handleClassify))
		rt.Post("/detect-component", r.wrap(r.handleDetect))
		rt.Get("/analyses", r.wrap(r.handleList))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Get("/analyses/{id}/failures", r.wrap(r.handleFailures))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks client input errors.
type badRequest struct{ err error }

func (b badRequest) Error() string { return b.err.Error() }
func (b badRequest) Unwrap() error { return b.err }

func invalid(format string, args ...any) error {
	return badRequest{err: fmt.Errorf(format, args...)}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		// failed analyses keep their id so /failures can be looked up
		id, hasID := appanalysis.FailedAnalysisID(err)
		if hasID {
			w.Header().Set(AnalysisIDHeader, string(id))
		}
		withID := func(body map[string]string) map[string]string {
			if hasID {
				body["id"] = string(id)
			}
			return body
		}

		var br badRequest
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, domai.ErrQuotaExceeded):
			middleware.IncrementQuotaExceeded()
			writeJSON(w, http.StatusTooManyRequests, withID(map[string]string{
				"error":       "API Quota Exceeded",
				"message":     "Daily API limit reached. Please try again later.",
				"details":     err.Error(),
				"retry_after": "Please try again in a few hours or tomorrow.",
			}))
		case errors.Is(err, domain.ErrInvalidImage), errors.As(err, &br):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("request failed: method=%s path=%s analysis_id=%s err=%v", req.Method, req.URL.Path, id, err)
			writeJSON(w, http.StatusInternalServerError, withID(map[string]string{
				"error": "internal server error",
			}))
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// GET /v1/model-info
func (r *Router) handleModelInfo(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, r.svc.ModelInfo())
}

// POST /v1/{tenant}/classify
// Body: {"text": "<model output>"}
func (r *Router) handleClassify(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text *string `json:"text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return invalid("invalid JSON body: %v", err)
	}
	if body.Text == nil {
		return invalid("text is required")
	}
	res := r.svc.Classify(*body.Text)
	middleware.IncrementClassifications()
	return writeJSON(w, http.StatusOK, res)
}

// POST /v1/{tenant}/detect-component (multipart, field "image")
func (r *Router) handleDetect(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")

	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		return invalid("invalid multipart upload: %v", err)
	}
	file, header, err := req.FormFile("image")
	if err != nil {
		return invalid("image field is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return invalid("read image: %v", err)
	}
	res, err := r.svc.Analyze(req.Context(), appanalysis.AnalyzeCommand{
		TenantID: tenant,
		Filename: middleware.SanitizeString(header.Filename),
		Image:    data,
	})
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	middleware.IncrementAnalyses()
	return writeJSON(w, http.StatusOK, res)
}

// GET /v1/{tenant}/analyses?page=&page_size=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))
	page = middleware.ValidatePage(page)
	size = middleware.ValidatePageSize(size)

	res, err := r.svc.List(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /v1/{tenant}/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id, err := analysisID(req)
	if err != nil {
		return err
	}

	a, err := r.svc.Get(req.Context(), tenant, id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// GET /v1/{tenant}/analyses/{id}/failures
func (r *Router) handleFailures(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id, err := analysisID(req)
	if err != nil {
		return err
	}

	list, err := r.svc.ListFailures(req.Context(), tenant, id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

func analysisID(req *http.Request) (domain.ID, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return "", invalid("%v", err)
	}
	return domain.ID(id), nil
}

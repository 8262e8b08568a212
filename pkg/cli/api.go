package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/mchmarny/houseval/pkg/data"
	"github.com/mchmarny/houseval/pkg/housing"
	"github.com/mchmarny/houseval/pkg/logging"
	"github.com/mchmarny/houseval/pkg/metrics"
	"github.com/mchmarny/houseval/pkg/score"
	"github.com/rs/xid"
)

const (
	maxRequestBytes     = 1 << 20
	headerNameRequestID = "X-Request-Id"

	contentTypeJSON = "application/json"
	contentTypeYAML = "application/yaml"
)

var errUnsupportedMediaType = errors.New("unsupported media type")

type apiServer struct {
	app     *appConfig
	store   *data.Store
	metrics *metrics.Recorder
	logger  *slog.Logger
}

func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("POST /api/predict", s.predictHandler)
	mux.HandleFunc("GET /api/coefficients", s.coefficientsHandler)
	mux.HandleFunc("GET /api/history", s.historyListHandler)
	mux.HandleFunc("GET /api/history/{id}", s.historyGetHandler)

	return s.withRequestLog(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *apiServer) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerNameRequestID)
		if id == "" {
			id = xid.New().String()
		}
		w.Header().Set(headerNameRequestID, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

// writeJSON encodes v before writing the status so an encoding failure
// still reaches the client as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
		status = http.StatusInternalServerError
		b = []byte(`{"error":"error encoding response"}`)
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write(append(b, '\n')); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// errorStatus maps an error to its HTTP status and a metrics label.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, "unsupported_media_type"
	case errors.Is(err, housing.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, score.ErrUnknownCategory):
		return http.StatusBadRequest, "unknown_category"
	case errors.Is(err, score.ErrMissingFeature):
		return http.StatusUnprocessableEntity, "missing_feature"
	case errors.Is(err, data.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, score.ErrConfiguration):
		return http.StatusInternalServerError, "configuration"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryParamBool(r *http.Request, key string, def bool) bool {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func queryParamInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func (s *apiServer) predictHandler(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.metrics.ObserveError("too_large")
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "error reading request body")
		return
	}

	res, err := s.predict(r, b)
	if err != nil {
		status, kind := errorStatus(err)
		s.metrics.ObserveError(kind)
		if status >= http.StatusInternalServerError {
			s.logger.Error("prediction failed", logging.Err(err))
			writeError(w, status, "prediction failed")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	s.metrics.Observe(res.Prediction.Input.OceanProximity, res.Prediction.Value)
	writeJSON(w, http.StatusOK, res)
}

func (s *apiServer) predict(r *http.Request, body []byte) (*predictResult, error) {
	in, err := decodeRequestInput(r, body)
	if err != nil {
		return nil, err
	}

	res, err := s.app.estimate(in, queryParamBool(r, "explain", false))
	if err != nil {
		return nil, err
	}

	if queryParamBool(r, "save", true) {
		if err := s.store.SavePrediction(r.Context(), res.Prediction); err != nil {
			return nil, fmt.Errorf("saving prediction: %w", err)
		}
	}
	return res, nil
}

// decodeRequestInput accepts JSON bodies (the default when no content type
// is sent) and YAML bodies sent as application/yaml.
func decodeRequestInput(r *http.Request, body []byte) (housing.Input, error) {
	mt := contentTypeJSON
	if ct := r.Header.Get("Content-Type"); ct != "" {
		parsed, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return housing.Input{}, fmt.Errorf("%w: %s", errUnsupportedMediaType, ct)
		}
		mt = parsed
	}

	switch mt {
	case contentTypeJSON:
		if !json.Valid(body) {
			return housing.Input{}, fmt.Errorf("%w: malformed JSON body", housing.ErrInvalidInput)
		}
	case contentTypeYAML, "application/x-yaml", "text/yaml":
	default:
		return housing.Input{}, fmt.Errorf("%w: %s (expected %s or %s)",
			errUnsupportedMediaType, mt, contentTypeJSON, contentTypeYAML)
	}
	return housing.DecodeInput(body)
}

func (s *apiServer) coefficientsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := listCoefficients(s.app.Encoder.Table(), s.app.Encoder.Baseline(), r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *apiServer) historyListHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryParamInt(r, "limit", data.PredictionListLimitDefault)
	list, err := s.store.ListPredictions(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list predictions", logging.Err(err))
		writeError(w, http.StatusInternalServerError, "error listing predictions")
		return
	}

	out := make([]*predictResult, len(list))
	for i, p := range list {
		out[i] = newPredictResult(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *apiServer) historyGetHandler(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPrediction(r.Context(), r.PathValue("id"))
	if err != nil {
		status, _ := errorStatus(err)
		if status == http.StatusNotFound {
			writeError(w, status, "prediction not found")
			return
		}
		s.logger.Error("failed to get prediction", logging.Err(err))
		writeError(w, status, "error getting prediction")
		return
	}
	writeJSON(w, http.StatusOK, newPredictResult(p))
}

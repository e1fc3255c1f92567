// Package api exposes the logging pipeline over HTTP for the dashboard and
// voice surfaces.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vladimiradmaev/fluid-helper/internal/daykey"
	"github.com/vladimiradmaev/fluid-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/fluid-helper/internal/errors"
	"github.com/vladimiradmaev/fluid-helper/internal/interfaces"
	"github.com/vladimiradmaev/fluid-helper/internal/logger"
	"github.com/vladimiradmaev/fluid-helper/internal/services"
	muxprom "gitlab.com/msvechla/mux-prometheus/pkg/middleware"
)

const maxBodyBytes = 64 << 10

// Pinger reports whether the store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// API holds the services behind the HTTP routes
type API struct {
	logging  interfaces.LoggingServiceInterface
	summary  interfaces.SummaryServiceInterface
	reports  interfaces.ReportServiceInterface
	settings interfaces.SettingsServiceInterface
	days     interfaces.DayResolverInterface
	store    Pinger
	log      *slog.Logger
}

// InitAPI creates the HTTP API
func InitAPI(logging interfaces.LoggingServiceInterface, summary interfaces.SummaryServiceInterface, reports interfaces.ReportServiceInterface,
	settings interfaces.SettingsServiceInterface, days interfaces.DayResolverInterface, store Pinger) *API {
	return &API{
		logging:  logging,
		summary:  summary,
		reports:  reports,
		settings: settings,
		days:     days,
		store:    store,
		log:      logger.Component("api"),
	}
}

// SetHandlers registers the routes on rtr
func (a *API) SetHandlers(prefix string, rtr *mux.Router) {
	rtr.HandleFunc("/status", a.getStatus).Methods(http.MethodGet)

	rtr.HandleFunc(prefix+"/api/log", a.postLog).Methods(http.MethodPost)
	rtr.HandleFunc(prefix+"/api/summary", a.getSummary).Methods(http.MethodGet)
	rtr.HandleFunc(prefix+"/api/report", a.getReport).Methods(http.MethodGet)
	rtr.HandleFunc(prefix+"/api/entries/{kind}/{id}", a.deleteEntry).Methods(http.MethodDelete)
	rtr.HandleFunc(prefix+"/api/settings", a.getSettings).Methods(http.MethodGet)
	rtr.HandleFunc(prefix+"/api/settings", a.putSettings).Methods(http.MethodPut)
}

// NewRouter builds the instrumented handler served by main
func NewRouter(a *API, reg prometheus.Registerer, gatherer prometheus.Gatherer) http.Handler {
	instrumentation := muxprom.NewCustomInstrumentation(true, "fluidhelper", "api", prometheus.DefBuckets, nil, reg)

	rtr := mux.NewRouter()
	rtr.Use(instrumentation.Middleware)
	rtr.Path("/metrics").Handler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	a.SetHandlers("", rtr)

	// reports and summaries of a busy day are long, compress them when the client accepts it
	return handlers.RecoveryHandler()(handlers.CompressHandler(rtr))
}

type statusResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

func (a *API) getStatus(res http.ResponseWriter, req *http.Request) {
	s := statusResponse{Status: "OK", Store: "OK"}
	code := http.StatusOK
	if err := a.store.Ping(req.Context()); err != nil {
		a.log.Error("Status check failed", "error", err)
		s = statusResponse{Status: "DEGRADED", Store: "unreachable"}
		code = http.StatusServiceUnavailable
	}
	writeJSON(res, code, s)
}

type logRequest struct {
	Text    string                `json:"text"`
	Actions []domain.ParsedAction `json:"actions"`
	Date    string                `json:"date"`
}

type logTextResponse struct {
	*services.ApplyResult
	Parsed  *domain.ParseResult `json:"parsed"`
	Warning *errorResponse      `json:"warning,omitempty"`
}

type applyResponse struct {
	*services.ApplyResult
	Warning *errorResponse `json:"warning,omitempty"`
}

func (a *API) postLog(res http.ResponseWriter, req *http.Request) {
	start := time.Now()
	var body logRequest
	if err := json.NewDecoder(http.MaxBytesReader(res, req.Body, maxBodyBytes)).Decode(&body); err != nil {
		a.jsonError(res, apperrors.NewValidationError(apperrors.CodeInvalidAction, "Request body must be JSON with text or actions."), start)
		return
	}

	switch {
	case strings.TrimSpace(body.Text) != "":
		result, parsed, err := a.logging.LogText(req.Context(), body.Text, domain.SourceAPI)
		if err != nil && result == nil {
			a.jsonError(res, err, start)
			return
		}
		writeJSON(res, http.StatusCreated, logTextResponse{ApplyResult: result, Parsed: parsed, Warning: a.warning(err, start)})
	case len(body.Actions) > 0:
		result, err := a.logging.Apply(req.Context(), body.Actions, body.Date, domain.SourceAPI)
		if err != nil && result == nil {
			a.jsonError(res, err, start)
			return
		}
		writeJSON(res, http.StatusCreated, applyResponse{ApplyResult: result, Warning: a.warning(err, start)})
	default:
		a.jsonError(res, apperrors.NewValidationError(apperrors.CodeInvalidAction, "Either text or actions is required."), start)
	}
}

type summaryResponse struct {
	Summary *domain.DaySummary `json:"summary"`
	Limit   domain.LimitStatus `json:"limit"`
}

func (a *API) getSummary(res http.ResponseWriter, req *http.Request) {
	start := time.Now()
	key, err := a.dayParam(req)
	if err != nil {
		a.jsonError(res, err, start)
		return
	}
	summary, err := a.summary.Summarize(req.Context(), key)
	if err != nil {
		a.jsonError(res, err, start)
		return
	}
	limit, err := a.summary.Limit(req.Context(), summary)
	if err != nil {
		a.jsonError(res, err, start)
		return
	}
	writeJSON(res, http.StatusOK, summaryResponse{Summary: summary, Limit: limit})
}

func (a *API) getReport(res http.ResponseWriter, req *http.Request) {
	start := time.Now()
	key, err := a.dayParam(req)
	if err != nil {
		a.jsonError(res, err, start)
		return
	}
	report, err := a.reports.BuildReport(req.Context(), key)
	if err != nil {
		a.jsonError(res, err, start)
		return
	}
	res.Header().Set("Content-Type", "text/plain; charset=utf-8")
	res.WriteHeader(http.StatusOK)
	res.Write([]byte(report))
}

func (a *API) deleteEntry(res http.ResponseWriter, req *http.Request) {
	start := time.Now()
	vars := mux.Vars(req)
	id, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil || id == 0 {
		a.jsonError(res, apperrors.NewValidationError(apperrors.CodeInvalidAction, "Entry id must be a positive integer."), start)
		return
	}
	if err := a.logging.DeleteEntry(req.Context(), domain.RecordKind(vars["kind"]), uint(id)); err != nil {
		a.jsonError(res, err, start)
		return
	}
	res.WriteHeader(http.StatusNoContent)
}

func (a *API) getSettings(res http.ResponseWriter, req *http.Request) {
	start := time.Now()
	all, err := a.settings.All(req.Context())
	if err != nil {
		a.jsonError(res, err, start)
		return
	}
	writeJSON(res, http.StatusOK, all)
}

// putSettings applies the body as one update; a rejected key leaves every
// setting unchanged
func (a *API) putSettings(res http.ResponseWriter, req *http.Request) {
	start := time.Now()
	var body map[string]string
	if err := json.NewDecoder(http.MaxBytesReader(res, req.Body, maxBodyBytes)).Decode(&body); err != nil || len(body) == 0 {
		a.jsonError(res, apperrors.NewValidationError(apperrors.CodeInvalidSetting, "Request body must be a JSON object of setting values."), start)
		return
	}
	if err := a.settings.SetMany(req.Context(), body); err != nil {
		a.jsonError(res, err, start)
		return
	}
	a.getSettings(res, req)
}

// dayParam reads ?date=, defaulting to the current fluid day
func (a *API) dayParam(req *http.Request) (string, error) {
	key := req.URL.Query().Get("date")
	if key == "" {
		return a.days.Today(req.Context())
	}
	if !daykey.Valid(key) {
		return "", apperrors.NewValidationError(apperrors.CodeInvalidDate, "Date must be formatted as YYYY-MM-DD.")
	}
	return key, nil
}

type errorResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// jsonError logs the error detail and writes the caregiver message as application/json
func (a *API) jsonError(res http.ResponseWriter, err error, startedAt time.Time) {
	writeJSON(res, StatusFor(err), a.errorBody(err, startedAt))
}

// warning describes an error that did not stop the request, nil when err is nil
func (a *API) warning(err error, startedAt time.Time) *errorResponse {
	if err == nil {
		return nil
	}
	body := a.errorBody(err, startedAt)
	return &body
}

func (a *API) errorBody(err error, startedAt time.Time) errorResponse {
	body := errorResponse{ID: uuid.New().String(), Code: apperrors.CodeInternal, Message: apperrors.UserMessage(err)}
	if appErr, ok := apperrors.As(err); ok {
		body.Code = appErr.Code
		body.Retryable = appErr.Retryable()
		a.log.Error("Request failed", append([]any{"request_id", body.ID, "elapsed", time.Since(startedAt)}, appErr.LogFields()...)...)
	} else {
		a.log.Error("Request failed", "request_id", body.ID, "elapsed", time.Since(startedAt), "error", err)
	}
	return body
}

// StatusFor maps an error to its HTTP status code
func StatusFor(err error) int {
	appErr, ok := apperrors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeUnparseable:
		return http.StatusUnprocessableEntity
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeExternal:
		return http.StatusBadGateway
	case apperrors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrorTypeDatabase:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(res http.ResponseWriter, code int, v any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(code)
	if err := json.NewEncoder(res).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

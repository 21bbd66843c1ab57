package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hazyhaar/notice-registry/pkg/datenorm"
	"github.com/hazyhaar/notice-registry/pkg/kit"
	"github.com/hazyhaar/notice-registry/pkg/pipeline"
	"github.com/hazyhaar/notice-registry/pkg/session"
	"github.com/hazyhaar/notice-registry/pkg/sheet"
)

const (
	maxJSONBody     = 1 << 20  // 1 MiB
	maxWorkbookBody = 10 << 20 // 10 MiB

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	noticeFilename  = "notice_inha.xlsx"
	datesFilename   = "dates_converties.xlsx"
)

// Deps are the collaborators behind the router. Sessions may be nil, which
// disables the /v1/sessions routes.
type Deps struct {
	Pipeline *pipeline.Pipeline
	Dates    *datenorm.Normalizer
	Sessions *session.Store
	Logger   *slog.Logger

	// RatePerSecond and Burst bound requests per client address. Zero disables limiting.
	RatePerSecond float64
	Burst         int
	// Limiter, when set, is used instead of one built from RatePerSecond and Burst.
	Limiter       *ClientLimiter
}

// NewRouter returns an http.Handler with all notice API routes.
func NewRouter(d Deps) http.Handler {
	if d.Pipeline == nil {
		d.Pipeline = pipeline.New(true)
	}
	if d.Dates == nil {
		d.Dates = datenorm.New()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Pipeline.Logger == nil {
		d.Pipeline.Logger = d.Logger
	}

	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.RequestID(), kit.Logging(d.Logger, name))(ep)
	}

	h := &handler{
		extract:        wrap("extract", extractEndpoint(d.Pipeline)),
		normalizeDates: wrap("normalize_dates", normalizeDatesEndpoint(d.Dates)),
		deps:           d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/extract", h.handleExtract)
	mux.HandleFunc("POST /v1/extract.xlsx", h.handleExtractXLSX)
	mux.HandleFunc("POST /v1/dates/normalize", h.handleNormalizeDates)
	mux.HandleFunc("POST /v1/dates/convert", h.handleConvertDates)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	if d.Sessions != nil {
		h.createSession = wrap("session_create", createSessionEndpoint(d.Sessions))
		h.addNotice = wrap("session_add", addNoticeEndpoint(d.Sessions))
		h.sessionRecords = wrap("session_records", sessionRecordsEndpoint(d.Sessions, d.Pipeline))
		h.deleteSession = wrap("session_delete", deleteSessionEndpoint(d.Sessions))

		mux.HandleFunc("POST /v1/sessions", h.handleCreateSession)
		mux.HandleFunc("GET /v1/sessions", h.handleListSessions)
		mux.HandleFunc("POST /v1/sessions/{id}/notices", h.handleAddNotice)
		mux.HandleFunc("GET /v1/sessions/{id}/records", h.handleSessionRecords)
		mux.HandleFunc("GET /v1/sessions/{id}/export.xlsx", h.handleSessionExport)
		mux.HandleFunc("DELETE /v1/sessions/{id}", h.handleDeleteSession)
	}

	var root http.Handler = mux
	if d.Limiter == nil && d.RatePerSecond > 0 {
		d.Limiter = NewClientLimiter(d.RatePerSecond, d.Burst, 0)
	}
	if d.Limiter != nil {
		root = d.Limiter.Middleware(root)
	}
	return cors(requestID(root))
}

type handler struct {
	extract        kit.Endpoint
	normalizeDates kit.Endpoint
	createSession  kit.Endpoint
	addNotice      kit.Endpoint
	sessionRecords kit.Endpoint
	deleteSession  kit.Endpoint
	deps           Deps
}

// --- extraction ---

func (h *handler) decodeExtract(w http.ResponseWriter, r *http.Request) (*extractReq, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	var req extractReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	return &req, true
}

func (h *handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeExtract(w, r)
	if !ok {
		return
	}
	resp, err := h.extract(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleExtractXLSX(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeExtract(w, r)
	if !ok {
		return
	}
	resp, err := h.extract(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	h.writeRecordsXLSX(w, resp.(extractResponse))
}

func (h *handler) writeRecordsXLSX(w http.ResponseWriter, resp extractResponse) {
	var buf bytes.Buffer
	if err := sheet.WriteRecords(&buf, resp.Records); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeXLSX(w, noticeFilename, buf.Bytes())
}

// --- dates ---

func (h *handler) handleNormalizeDates(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	var req normalizeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	resp, err := h.normalizeDates(r.Context(), &req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleConvertDates(w http.ResponseWriter, r *http.Request) {
	columns := splitList(r.URL.Query().Get("columns"))
	if len(columns) == 0 {
		writeError(w, http.StatusBadRequest, "missing columns")
		return
	}
	n := h.deps.Dates
	if r.URL.Query().Get("partial") == "first_day" {
		n = datenorm.New(datenorm.WithPartialDates(datenorm.PartialFirstDay))
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWorkbookBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "workbook too large")
		return
	}

	var out bytes.Buffer
	st, err := sheet.ConvertDateColumns(bytes.NewReader(body), &out, columns, n)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	h.deps.Logger.Info("dates.convert",
		"request_id", kit.GetRequestID(r.Context()),
		"sheet", st.Sheet,
		"rows", st.Rows,
		"converted", st.Converted,
		"invalid", st.Invalid,
	)
	w.Header().Set("X-Dates-Converted", strconv.Itoa(st.Converted))
	w.Header().Set("X-Dates-Invalid", strconv.Itoa(st.Invalid))
	w.Header().Set("X-Dates-Blank", strconv.Itoa(st.Blank))
	writeXLSX(w, datesFilename, out.Bytes())
}

// --- sessions ---

type httpSessionRequest struct {
	Label string `json:"label,omitempty"`
	Text  string `json:"text,omitempty"`
}

func decodeSession(w http.ResponseWriter, r *http.Request, allowEmpty bool) (httpSessionRequest, bool) {
	var req httpSessionRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return req, true
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	return req, true
}

func (h *handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSession(w, r, true)
	if !ok {
		return
	}
	resp, err := h.createSession(r.Context(), &sessionReq{Label: req.Label})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Sessions.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []session.Session{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": list})
}

func (h *handler) handleAddNotice(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSession(w, r, false)
	if !ok {
		return
	}
	id := r.PathValue("id")
	ctx := kit.WithSessionID(r.Context(), id)
	resp, err := h.addNotice(ctx, &sessionReq{ID: id, Text: req.Text})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleSessionRecords(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	resp, err := h.sessionRecords(kit.WithSessionID(r.Context(), id), &sessionReq{ID: id})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleSessionExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	resp, err := h.sessionRecords(kit.WithSessionID(r.Context(), id), &sessionReq{ID: id})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	h.writeRecordsXLSX(w, resp.(extractResponse))
}

func (h *handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	resp, err := h.deleteSession(kit.WithSessionID(r.Context(), id), &sessionReq{ID: id})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status         string `json:"status"`
	Labels         int    `json:"labels"`
	NormalizeDates bool   `json:"normalize_dates"`
	Sessions       bool   `json:"sessions"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	labels := 0
	if ex := h.deps.Pipeline.Extractor; ex != nil {
		labels = len(ex.Vocabulary().Labels)
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         "ok",
		Labels:         labels,
		NormalizeDates: h.deps.Pipeline.NormalizeDates,
		Sessions:       h.deps.Sessions != nil,
	})
}

// --- helpers ---

func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalid), errors.Is(err, sheet.ErrUnknownColumn):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeXLSX(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// requestID carries X-Request-ID, or a fresh uuid, into the context and
// echoes it back.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := kit.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(kit.WithTransport(ctx, "http")))
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Dates-Converted, X-Dates-Invalid, X-Dates-Blank")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

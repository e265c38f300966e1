package entry

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/de-tools/sales-atlas/pkg/adapters"
	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/entry"
	"github.com/de-tools/sales-atlas/pkg/services/gate"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	actionConfirmWeek = "confirm_week"
	actionCancelWeek  = "cancel_week"
	actionAddBudgets  = "add_budgets"
	actionSaveAnyway  = "save_anyway"
)

type Sessions interface {
	Create() (string, *entry.Orchestrator)
	Get(id string) (*entry.Orchestrator, bool)
	Remove(id string) bool
}

type Handler struct {
	sessions Sessions
}

func NewHandler(sessions Sessions) *Handler {
	return &Handler{sessions: sessions}
}

func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	week, err := domain.ParseWeekSelection(req.WeekStart)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid 'week_start' date format. Expected format: YYYY-MM-DD")
		return
	}
	// the store adds the configured channels once Open resolves providers
	existing, err := adapters.MapDayPayloadsApiToDomain(req.Days, domain.BaseProviders())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id, session := h.sessions.Create()
	if err := session.Open(ctx, week, existing); err != nil {
		h.sessions.Remove(id)
		logger.Error().Err(err).Str("week_start", req.WeekStart).Msg("failed to open entry session")
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	writeJSON(w, r, http.StatusCreated, sessionView(id, session))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, sessionView(id, session))
}

func (h *Handler) SetField(w http.ResponseWriter, r *http.Request) {
	id, session, ok := h.session(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid day index")
		return
	}
	var req api.SetFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	value, err := decodeFieldValue(req.Value)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid field value")
		return
	}

	if err := session.SetField(index, req.Field, value); err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, sessionView(id, session))
}

// GateAction answers the visible prompt. Labor choices use the names of
// gate.LaborChoice; override_rate reads the rate from the body.
func (h *Handler) GateAction(w http.ResponseWriter, r *http.Request) {
	id, session, ok := h.session(w, r)
	if !ok {
		return
	}

	action := chi.URLParam(r, "action")
	var accepted bool
	switch action {
	case actionConfirmWeek:
		accepted = session.ConfirmWeek()
	case actionCancelWeek:
		accepted = session.CancelWeek()
	case actionAddBudgets:
		focus, added := session.AddBudgets()
		if !added {
			writeError(w, r, http.StatusConflict, "budget prompt is not visible")
			return
		}
		writeJSON(w, r, http.StatusOK, api.SubmitResponse{Status: actionAddBudgets, FocusDay: &focus})
		return
	case actionSaveAnyway:
		result, err := session.SaveAnyway(r.Context())
		writeSubmitResult(w, r, result, err)
		return
	default:
		choice, known := gate.ParseLaborChoice(action)
		if !known {
			writeError(w, r, http.StatusNotFound, "unknown gate action")
			return
		}
		override := decimal.Zero
		if choice == gate.OverrideRate {
			var req api.LaborRateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Rate == nil {
				writeError(w, r, http.StatusBadRequest, "override_rate requires a rate")
				return
			}
			override = req.Rate.Decimal()
		}
		accepted = session.ChooseLaborRate(choice, override)
	}

	if !accepted {
		writeError(w, r, http.StatusConflict, "gate action not available in state "+session.State().String())
		return
	}
	writeJSON(w, r, http.StatusOK, sessionView(id, session))
}

func (h *Handler) SetDateRange(w http.ResponseWriter, r *http.Request) {
	_, session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req api.DateRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	start, err := time.Parse(domain.DateLayout, req.Start)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid 'start' date format. Expected format: YYYY-MM-DD")
		return
	}
	end, err := time.Parse(domain.DateLayout, req.End)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid 'end' date format. Expected format: YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		writeError(w, r, http.StatusBadRequest, "'end' must not be before 'start'")
		return
	}

	session.SetDateRange(start, end)
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	_, session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapCategoriesDomainToApi(session.Categories()))
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	_, session, ok := h.session(w, r)
	if !ok {
		return
	}
	result, err := session.Submit(r.Context())
	writeSubmitResult(w, r, result, err)
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Remove(chi.URLParam(r, "id")) {
		writeError(w, r, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (string, *entry.Orchestrator, bool) {
	id := chi.URLParam(r, "id")
	session, ok := h.sessions.Get(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "session not found")
		return "", nil, false
	}
	return id, session, true
}

func writeSubmitResult(w http.ResponseWriter, r *http.Request, result entry.Result, err error) {
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("weekly submission failed")
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	status := http.StatusOK
	if result.Status == entry.StatusGatePending {
		status = http.StatusConflict
	}
	writeJSON(w, r, status, api.SubmitResponse{
		Status:        string(result.Status),
		OffendingDays: result.OffendingDays,
	})
}

func statusFor(err error) int {
	var validation *domain.ValidationError
	var submission *domain.SubmissionError
	switch {
	case errors.As(err, &validation),
		errors.Is(err, domain.ErrInvalidValue),
		errors.Is(err, domain.ErrDayOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEditRejected),
		errors.Is(err, domain.ErrSessionClosed),
		errors.Is(err, domain.ErrSubmitInFlight):
		return http.StatusConflict
	case errors.As(err, &submission):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeFieldValue keeps numbers as their literal text so amounts are parsed
// without float rounding
func decodeFieldValue(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if n, ok := value.(json.Number); ok {
		return n.String(), nil
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, api.ErrorResponse{Error: message})
}

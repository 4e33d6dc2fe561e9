// Package api exposes the settlement engine over JSON HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/fleetworks/fleetledger/internal/auth"
	"github.com/fleetworks/fleetledger/internal/export"
	"github.com/fleetworks/fleetledger/internal/metrics"
	"github.com/fleetworks/fleetledger/internal/middleware"
	"github.com/fleetworks/fleetledger/internal/models"
	"github.com/fleetworks/fleetledger/internal/service"
	"github.com/fleetworks/fleetledger/internal/storage"
)

// Handler bundles the engine services behind HTTP endpoints.
type Handler struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	fleet         *service.FleetService
	settlements   *service.SettlementService
	summaries     *service.SummaryService
	validate      *validator.Validate
	logger        *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(
	authenticator auth.Authenticator,
	jwtManager *auth.JWTManager,
	fleet *service.FleetService,
	settlements *service.SettlementService,
	summaries *service.SummaryService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		fleet:         fleet,
		settlements:   settlements,
		summaries:     summaries,
		validate:      validator.New(),
		logger:        logger,
	}
}

// Router builds the route table. Login, register and health are open; every
// other route requires a bearer token.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logging)

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.HandleFunc("/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/register", h.register).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(middleware.RequireAuth(h.jwtManager))
	authed.HandleFunc("/vehicles", h.createVehicle).Methods(http.MethodPost)
	authed.HandleFunc("/vehicles", h.listVehicles).Methods(http.MethodGet)
	authed.HandleFunc("/vehicles/{id}/earnings", h.ingestEarnings).Methods(http.MethodPost)
	authed.HandleFunc("/vehicles/{id}/expenses", h.ingestExpenses).Methods(http.MethodPost)
	authed.HandleFunc("/vehicles/{id}/obligations", h.obligations).Methods(http.MethodGet)
	authed.HandleFunc("/vehicles/{id}/summary", h.periodSummary).Methods(http.MethodGet)
	authed.HandleFunc("/vehicles/{id}/statement.xlsx", h.statementXLSX).Methods(http.MethodGet)
	authed.HandleFunc("/settlements", h.executeBatch).Methods(http.MethodPost)
	authed.HandleFunc("/settlements/{batch}/receipt.pdf", h.receiptPDF).Methods(http.MethodGet)
	authed.HandleFunc("/balances", h.balances).Methods(http.MethodGet)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	op, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}
	token, err := h.jwtManager.Generate(op)
	if err != nil {
		h.logger.Error("Failed to generate token", "operator_id", op.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Operator: toOperatorResponse(op), Token: token})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	op, err := h.authenticator.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Registration failed", "email", req.Email, "error", err)
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}
	token, err := h.jwtManager.Generate(op)
	if err != nil {
		h.logger.Error("Failed to generate token", "operator_id", op.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Operator: toOperatorResponse(op), Token: token})
}

func (h *Handler) createVehicle(w http.ResponseWriter, r *http.Request) {
	var req createVehicleRequest
	if !h.decode(w, r, &req) {
		return
	}

	vehicle, err := req.toModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.fleet.RegisterVehicle(r.Context(), vehicle); err != nil {
		h.logger.Error("RegisterVehicle failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to register vehicle")
		return
	}

	writeJSON(w, http.StatusCreated, toVehicleResponse(vehicle))
}

func (h *Handler) listVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.fleet.ListVehicles(r.Context())
	if err != nil {
		h.logger.Error("ListVehicles failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list vehicles")
		return
	}
	resp := make([]vehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		resp = append(resp, toVehicleResponse(v))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ingestEarnings(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["id"]
	var reqs []earningRequest
	if !h.decodeSlice(w, r, &reqs) {
		return
	}

	recs := make([]models.EarningRecord, 0, len(reqs))
	for _, e := range reqs {
		amount, err := parseAmount("amount_paid", e.AmountPaid)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		recs = append(recs, models.EarningRecord{
			AmountPaid: amount,
			EarnedAt:   e.EarnedAt,
			Status:     e.Status,
		})
	}
	if err := h.fleet.IngestEarnings(r.Context(), vehicleID, recs); err != nil {
		h.logger.Error("IngestEarnings failed", "vehicle_id", vehicleID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to ingest earnings")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"ingested": len(recs)})
}

func (h *Handler) ingestExpenses(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["id"]
	var reqs []expenseRequest
	if !h.decodeSlice(w, r, &reqs) {
		return
	}

	recs := make([]models.ExpenseRecord, 0, len(reqs))
	for _, e := range reqs {
		amount, err := parseAmount("amount", e.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		recs = append(recs, models.ExpenseRecord{
			Amount:     amount,
			IncurredAt: e.IncurredAt,
			Status:     e.Status,
		})
	}
	if err := h.fleet.IngestExpenses(r.Context(), vehicleID, recs); err != nil {
		h.logger.Error("IngestExpenses failed", "vehicle_id", vehicleID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to ingest expenses")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"ingested": len(recs)})
}

func (h *Handler) obligations(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["id"]
	summary, err := h.summaries.Obligations(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		h.logger.Error("Obligations failed", "vehicle_id", vehicleID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load obligations")
		return
	}

	resp := obligationSummaryResponse{
		VehicleID: summary.VehicleID,
		EMIs:      make([]obligationResponse, 0, len(summary.EMIs)),
		Rents:     make([]obligationResponse, 0, len(summary.Rents)),
	}
	for _, v := range summary.EMIs {
		resp.EMIs = append(resp.EMIs, toObligationResponse(v))
	}
	for _, v := range summary.Rents {
		resp.Rents = append(resp.Rents, toObligationResponse(v))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) periodSummary(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["id"]
	period, err := periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.summaries.PeriodSummary(r.Context(), vehicleID, period)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		h.logger.Error("PeriodSummary failed", "vehicle_id", vehicleID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	writeJSON(w, http.StatusOK, toPeriodSummaryResponse(summary))
}

func (h *Handler) statementXLSX(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	vehicleID := mux.Vars(r)["id"]
	period, err := periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	vehicle, err := h.fleet.GetVehicle(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		h.logger.Error("GetVehicle failed", "vehicle_id", vehicleID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load vehicle")
		return
	}
	summary, err := h.summaries.PeriodSummary(r.Context(), vehicleID, period)
	if err != nil {
		h.logger.Error("PeriodSummary failed", "vehicle_id", vehicleID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	data, err := export.BuildStatementXLSX(summary, vehicle.Registration)
	if err != nil {
		metrics.ObserveExport("xlsx", metrics.ResultError, time.Since(start))
		h.logger.Error("BuildStatementXLSX failed", "vehicle_id", vehicleID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render statement")
		return
	}
	metrics.ObserveExport("xlsx", metrics.ResultSuccess, time.Since(start))

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=statement-%s-%s.xlsx", vehicle.Registration, period.Key()))
	w.Write(data)
}

func (h *Handler) executeBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req batchRequest
	if !h.decode(w, r, &req) {
		return
	}

	instructions := make([]service.SettlementInstruction, 0, len(req.Instructions))
	for _, in := range req.Instructions {
		m, err := in.toModel()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		instructions = append(instructions, m)
	}
	h.logger.Info("Settlement batch requested",
		"operator", middleware.GetEmail(r.Context()), "instructions", len(instructions))

	result, err := h.settlements.ExecuteBatch(r.Context(), instructions)
	if err != nil {
		metrics.ObserveBatch(metrics.ResultError, time.Since(start))
		h.logger.Error("ExecuteBatch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "batch execution interrupted")
		return
	}
	metrics.ObserveBatch(metrics.ResultSuccess, time.Since(start))

	writeJSON(w, http.StatusOK, toBatchResponse(result))
}

func (h *Handler) receiptPDF(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	batchID := mux.Vars(r)["batch"]

	txns, err := h.settlements.BatchTransactions(r.Context(), batchID)
	if err != nil {
		h.logger.Error("BatchTransactions failed", "batch_id", batchID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load batch")
		return
	}
	if len(txns) == 0 {
		writeError(w, http.StatusNotFound, "batch not found")
		return
	}

	data, err := export.BuildReceiptPDF(batchID, txns)
	if err != nil {
		metrics.ObserveExport("pdf", metrics.ResultError, time.Since(start))
		h.logger.Error("BuildReceiptPDF failed", "batch_id", batchID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render receipt")
		return
	}
	metrics.ObserveExport("pdf", metrics.ResultSuccess, time.Since(start))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", batchID))
	w.Write(data)
}

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.fleet.Balances(r.Context())
	if err != nil {
		h.logger.Error("Balances failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list balances")
		return
	}
	resp := make([]balanceResponse, 0, len(balances))
	for _, b := range balances {
		resp = append(resp, balanceResponse{
			EntityID:  b.EntityID,
			Amount:    b.Amount.String(),
			UpdatedAt: b.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// periodFromQuery parses ?type=&year=&month=&quarter= into a period. A
// missing type defaults to monthly.
func periodFromQuery(r *http.Request) (models.Period, error) {
	q := r.URL.Query()
	req := periodRequest{Type: q.Get("type")}
	if req.Type == "" {
		req.Type = string(models.PeriodMonthly)
	}

	var err error
	if req.Year, err = strconv.Atoi(q.Get("year")); err != nil {
		return models.Period{}, fmt.Errorf("invalid year %q", q.Get("year"))
	}
	if raw := q.Get("month"); raw != "" {
		if req.Month, err = strconv.Atoi(raw); err != nil {
			return models.Period{}, fmt.Errorf("invalid month %q", raw)
		}
	}
	if raw := q.Get("quarter"); raw != "" {
		if req.Quarter, err = strconv.Atoi(raw); err != nil {
			return models.Period{}, fmt.Errorf("invalid quarter %q", raw)
		}
	}
	return req.toModel()
}

// decode parses and validates a JSON request body.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// decodeSlice parses a JSON array body, validating each element.
func (h *Handler) decodeSlice(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Var(dst, "required,min=1,dive"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func toOperatorResponse(op *models.Operator) operatorResponse {
	return operatorResponse{
		ID:          op.ID,
		Email:       op.Email,
		DisplayName: op.DisplayName,
		CreatedAt:   op.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

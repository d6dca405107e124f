package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rl1809/seckill/internal/core/domain"
	"github.com/rl1809/seckill/internal/core/service"
	"github.com/rl1809/seckill/internal/logger"
)

type HTTPHandler struct {
	exposureService *service.ExposureService
	purchaseService *service.PurchaseService
	log             logger.Logger
	now             func() time.Time
}

type PurchaseHTTPRequest struct {
	CustomerID string `json:"customer_id" validate:"required,max=64"`
	// Token is checked only by the purchase service so that a missing or
	// malformed token is reported as an invalid request.
	Token string `json:"token"`
}

// Result is the envelope for every API response.
type Result struct {
	Success bool   `json:"success"`
	State   string `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ItemResponse struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	RemainingQuantity int64  `json:"remaining_quantity"`
	StartTime         int64  `json:"start_time"`
	EndTime           int64  `json:"end_time"`
	CreatedAt         int64  `json:"created_at"`
}

type ExposureResponse struct {
	ItemID    int64  `json:"item_id"`
	Open      bool   `json:"open"`
	Token     string `json:"token,omitempty"`
	Now       int64  `json:"now,omitempty"`
	StartTime int64  `json:"start_time,omitempty"`
	EndTime   int64  `json:"end_time,omitempty"`
}

type PurchaseResponse struct {
	ItemID     int64  `json:"item_id"`
	CustomerID string `json:"customer_id"`
	StateCode  int    `json:"state_code"`
	CreatedAt  int64  `json:"created_at,omitempty"`
}

func NewHTTPHandler(exposureService *service.ExposureService, purchaseService *service.PurchaseService, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		exposureService: exposureService,
		purchaseService: purchaseService,
		log:             log,
		now:             time.Now,
	}
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Result{Message: "invalid offset"})
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Result{Message: "invalid limit"})
		return
	}

	items, err := h.exposureService.ListItems(r.Context(), offset, limit)
	if err != nil {
		h.internalError(w, r, "list items failed", err)
		return
	}

	data := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		data = append(data, toItemResponse(it))
	}
	writeJSON(w, http.StatusOK, Result{Success: true, Data: data})
}

func (h *HTTPHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := parseItemID(w, r)
	if !ok {
		return
	}

	item, err := h.exposureService.GetItem(r.Context(), itemID)
	if errors.Is(err, service.ErrItemNotFound) {
		writeJSON(w, http.StatusNotFound, Result{Message: "item not found"})
		return
	}
	if err != nil {
		h.internalError(w, r, "get item failed", err)
		return
	}

	writeJSON(w, http.StatusOK, Result{Success: true, Data: toItemResponse(*item)})
}

func (h *HTTPHandler) Expose(w http.ResponseWriter, r *http.Request) {
	itemID, ok := parseItemID(w, r)
	if !ok {
		return
	}

	exp, err := h.exposureService.Expose(r.Context(), itemID, h.now())
	if err != nil {
		h.internalError(w, r, "expose item failed", err)
		return
	}

	status := http.StatusOK
	if exp.State == domain.ExposureNotFound {
		status = http.StatusNotFound
	}

	writeJSON(w, status, Result{
		Success: exp.State != domain.ExposureNotFound,
		State:   string(exp.State),
		Data:    toExposureResponse(exp),
	})
}

func (h *HTTPHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	itemID, ok := parseItemID(w, r)
	if !ok {
		return
	}

	req, ok := decodeAndValidate[PurchaseHTTPRequest](w, r)
	if !ok {
		return
	}

	res, err := h.purchaseService.Execute(r.Context(), itemID, req.CustomerID, req.Token, h.now())
	state := service.StateOf(err)
	if err != nil {
		writeJSON(w, purchaseStatus(state), Result{
			State:   state.String(),
			Message: state.Info(),
			Data: PurchaseResponse{
				ItemID:     itemID,
				CustomerID: req.CustomerID,
				StateCode:  int(state),
			},
		})
		return
	}

	writeJSON(w, http.StatusOK, Result{
		Success: true,
		State:   state.String(),
		Message: state.Info(),
		Data: PurchaseResponse{
			ItemID:     res.ItemID,
			CustomerID: res.Record.CustomerID,
			StateCode:  int(res.State),
			CreatedAt:  res.Record.CreatedAt.UnixMilli(),
		},
	})
}

func (h *HTTPHandler) Now(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Result{Success: true, Data: h.now().UnixMilli()})
}

// HealthChecker is any dependency with a Ping.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheck reports 503 when any checker fails.
func HealthCheck(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := map[string]string{"status": "ok"}
		status := http.StatusOK
		for name, c := range checks {
			if err := c.Ping(ctx); err != nil {
				resp[name] = "unreachable"
				resp["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp[name] = "ok"
		}
		writeJSON(w, status, resp)
	}
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.log.ErrorContext(r.Context(), msg, "error", err)
	writeJSON(w, http.StatusInternalServerError, Result{Message: "internal error"})
}

func purchaseStatus(state domain.PurchaseState) int {
	switch state {
	case domain.PurchaseInvalidRequest:
		return http.StatusForbidden
	case domain.PurchaseRepeated:
		return http.StatusConflict
	case domain.PurchaseSoldOut:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func parseItemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Result{Message: "invalid item id"})
		return 0, false
	}
	return itemID, true
}

// queryInt returns 0 when the parameter is absent. The service applies the
// paging defaults and bounds.
func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func toItemResponse(it domain.Item) ItemResponse {
	return ItemResponse{
		ID:                it.ID,
		Name:              it.Name,
		RemainingQuantity: it.RemainingQuantity,
		StartTime:         it.StartTime.UnixMilli(),
		EndTime:           it.EndTime.UnixMilli(),
		CreatedAt:         it.CreatedAt.UnixMilli(),
	}
}

func toExposureResponse(exp domain.Exposure) ExposureResponse {
	resp := ExposureResponse{
		ItemID: exp.ItemID,
		Open:   exp.Open(),
		Token:  exp.Token,
	}
	if exp.State == domain.ExposureNotYetOpen || exp.State == domain.ExposureClosed {
		resp.Now = exp.Now.UnixMilli()
		resp.StartTime = exp.StartTime.UnixMilli()
		resp.EndTime = exp.EndTime.UnixMilli()
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

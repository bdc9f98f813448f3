package warehouse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"warehousenow/mail"
	"warehousenow/warehouse/application"
	"warehousenow/warehouse/domain"

	"github.com/charmbracelet/log"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	Warehouses *application.WarehouseService
	Nearby     application.NearbyService
	Orders     application.OrderService
	Mail       mail.Service
	Logger     *log.Logger
}

type nearbyRequest struct {
	ZipCode     string   `json:"zip_code"`
	RadiusMiles *float64 `json:"radius_miles"`
}

type envelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// Register monta as rotas no mux (padrões do Go 1.22+).
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /warehouses", h.listWarehouses)
	mux.HandleFunc("POST /nearby_warehouses", h.nearbyWarehouses)
	mux.HandleFunc("GET /requests/{id}", h.requestOrders)
	mux.HandleFunc("GET /cache/status", h.cacheStatus)
	mux.HandleFunc("POST /cache/invalidate", h.invalidateCache)
	mux.HandleFunc("POST /send_email", h.sendEmail)
}

func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	records, err := h.Warehouses.List(r.Context(), force)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: records})
}

func (h *Handler) nearbyWarehouses(w http.ResponseWriter, r *http.Request) {
	var req nearbyRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	radius := application.DefaultRadiusMiles
	if req.RadiusMiles != nil {
		radius = *req.RadiusMiles
	}
	res, err := h.Nearby.Find(r.Context(), req.ZipCode, radius)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: res})
}

func (h *Handler) requestOrders(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, fmt.Errorf("request id %q is not an integer: %w", r.PathValue("id"), domain.ErrInvalidInput))
		return
	}
	orders, err := h.Orders.ByRequestID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: orders})
}

func (h *Handler) cacheStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.Warehouses.CacheStatus(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: st})
}

func (h *Handler) invalidateCache(w http.ResponseWriter, r *http.Request) {
	n, err := h.Warehouses.Invalidate(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: map[string]any{
		"message":         "Cache invalidated",
		"removed_entries": n,
	}})
}

func (h *Handler) sendEmail(w http.ResponseWriter, r *http.Request) {
	bulk, err := decodeBulk(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if len(bulk.EmailsData) == 0 {
		h.fail(w, r, fmt.Errorf("emails_data is empty: %w", domain.ErrInvalidInput))
		return
	}
	results, err := h.Mail.SendBulk(r.Context(), bulk)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: results})
}

// decodeBulk aceita {"email_body":..., "emails_data":[...]} ou só a lista.
func decodeBulk(r *http.Request) (mail.Bulk, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return mail.Bulk{}, fmt.Errorf("read body: %w", domain.ErrInvalidInput)
	}
	raw = bytes.TrimSpace(raw)
	var bulk mail.Bulk
	if len(raw) > 0 && raw[0] == '[' {
		err = json.Unmarshal(raw, &bulk.EmailsData)
	} else {
		err = json.Unmarshal(raw, &bulk)
	}
	if err != nil {
		return mail.Bulk{}, fmt.Errorf("invalid email payload: %v: %w", err, domain.ErrInvalidInput)
	}
	return bulk, nil
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %v: %w", err, domain.ErrInvalidInput)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotConfigured), errors.Is(err, mail.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	detail := err.Error()
	if code == http.StatusInternalServerError {
		if h.Logger != nil {
			h.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		}
		detail = http.StatusText(code)
	} else if h.Logger != nil {
		h.Logger.Debug("request rejected", "path", r.URL.Path, "status", code, "err", err)
	}
	writeJSON(w, code, map[string]string{"detail": strings.TrimSpace(detail)})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

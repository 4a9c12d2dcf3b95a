package movement

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/chromatex/dyehouse/internal/costing"
	"github.com/chromatex/dyehouse/internal/platform/httpx"
	"github.com/chromatex/dyehouse/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	auditor  *shared.AuditLogger
}

func NewHandler(logger *slog.Logger, service *Service, auditor *shared.AuditLogger) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), auditor: auditor}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.createHeader)
	r.Get("/{id}", h.getHeader)
	r.Get("/{id}/lines", h.listLines)
	r.Post("/lines", h.createLine)
	r.Put("/lines/{id}", h.updateLine)
	r.Delete("/lines/{id}", h.deleteLine)
}

type headerForm struct {
	Code        string `json:"code" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Description string `json:"description"`
}

type lineForm struct {
	StockMovementID int64   `json:"stock_movement_id" validate:"required"`
	ProductID       int64   `json:"product_id" validate:"required"`
	Quantity        float64 `json:"quantity" validate:"required,gt=0"`
}

func (h *Handler) createHeader(w http.ResponseWriter, r *http.Request) {
	var form headerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}
	header, err := h.service.CreateHeader(r.Context(), CreateHeaderInput{
		Code: form.Code, Date: date, Description: form.Description,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.recordAudit(r, "create", "stock_movement", header.Code)
	httpx.JSON(w, http.StatusCreated, header)
}

func (h *Handler) getHeader(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	header, err := h.service.GetHeader(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, header)
}

func (h *Handler) listLines(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	lines, err := h.service.ListLines(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": lines})
}

func (h *Handler) createLine(w http.ResponseWriter, r *http.Request) {
	var form lineForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	line, err := h.service.CreateLine(r.Context(), CreateLineInput{
		StockMovementID: form.StockMovementID,
		ProductID:       form.ProductID,
		Quantity:        form.Quantity,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.recordAudit(r, "create", "stock_movement_line", strconv.FormatInt(line.ID, 10))
	httpx.JSON(w, http.StatusCreated, line)
}

func (h *Handler) updateLine(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var form struct {
		Quantity float64 `json:"quantity"`
	}
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	line, err := h.service.UpdateLine(r.Context(), id, UpdateLineInput{Quantity: form.Quantity})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.recordAudit(r, "update", "stock_movement_line", strconv.FormatInt(line.ID, 10))
	httpx.JSON(w, http.StatusOK, line)
}

func (h *Handler) deleteLine(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.DeleteLine(r.Context(), id); err != nil {
		h.respondErr(w, err)
		return
	}
	h.recordAudit(r, "delete", "stock_movement_line", strconv.FormatInt(id, 10))
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, costing.ErrNoCostHistory):
		httpx.Problem(w, http.StatusUnprocessableEntity, "No Cost History", err.Error())
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrCodeRequired):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("movement request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) recordAudit(r *http.Request, action, entity, entityID string) {
	if h.auditor == nil {
		return
	}
	err := h.auditor.Record(r.Context(), shared.AuditLog{Action: action, Entity: entity, EntityID: entityID})
	if err != nil {
		h.logger.Warn("record audit", slog.String("entity", entity), slog.Any("error", err))
	}
}

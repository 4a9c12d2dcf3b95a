package opname

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

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
	r.Get("/{id}/details", h.listDetails)
	r.Post("/details", h.createDetail)
	r.Delete("/details/{id}", h.deleteDetail)
}

type headerForm struct {
	Code string `json:"code" validate:"required"`
	Date string `json:"date" validate:"required"`
}

type detailForm struct {
	OpnameID         int64   `json:"opname_id" validate:"required"`
	ProductID        int64   `json:"product_id" validate:"required"`
	PhysicalQuantity float64 `json:"physical_quantity" validate:"gte=0"`
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
	header, err := h.service.CreateHeader(r.Context(), CreateHeaderInput{Code: form.Code, Date: date})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.recordAudit(r, "create", "stock_opname", header.Code)
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

func (h *Handler) listDetails(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	details, err := h.service.ListDetails(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": details})
}

func (h *Handler) createDetail(w http.ResponseWriter, r *http.Request) {
	var form detailForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	detail, err := h.service.CreateDetail(r.Context(), CreateDetailInput{
		OpnameID:         form.OpnameID,
		ProductID:        form.ProductID,
		PhysicalQuantity: form.PhysicalQuantity,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.recordAudit(r, "create", "stock_opname_detail", strconv.FormatInt(detail.ID, 10))
	httpx.JSON(w, http.StatusCreated, detail)
}

func (h *Handler) deleteDetail(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.DeleteDetail(r.Context(), id); err != nil {
		h.respondErr(w, err)
		return
	}
	h.recordAudit(r, "delete", "stock_opname_detail", strconv.FormatInt(id, 10))
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrCodeRequired):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("opname request failed", slog.Any("error", err))
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

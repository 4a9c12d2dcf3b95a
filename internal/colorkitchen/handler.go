package colorkitchen

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
	r.Post("/batches", h.createBatch)
	r.Get("/batches/{id}", h.getBatch)
	r.Get("/batches/{id}/details", h.listBatchDetails)
	r.Post("/batches/details", h.createBatchDetail)
	r.Put("/batches/details/{id}", h.updateBatchDetail)
	r.Delete("/batches/details/{id}", h.deleteBatchDetail)

	r.Post("/entries", h.createEntry)
	r.Get("/entries/{id}", h.getEntry)
	r.Get("/entries/{id}/details", h.listEntryDetails)
	r.Post("/entries/details", h.createEntryDetail)
	r.Put("/entries/details/{id}", h.updateEntryDetail)
	r.Delete("/entries/details/{id}", h.deleteEntryDetail)
}

type batchForm struct {
	Code string `json:"code" validate:"required"`
	Date string `json:"date" validate:"required"`
}

type entryForm struct {
	Code          string  `json:"code" validate:"required"`
	Date          string  `json:"date" validate:"required"`
	Rolls         int     `json:"rolls"`
	PasteQuantity float64 `json:"paste_quantity"`
	DesignID      int64   `json:"design_id" validate:"required"`
	BatchID       int64   `json:"batch_id" validate:"required"`
}

type detailForm struct {
	OwnerID   int64   `json:"owner_id" validate:"required"`
	ProductID int64   `json:"product_id" validate:"required"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func (h *Handler) createBatch(w http.ResponseWriter, r *http.Request) {
	var form batchForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, err := parseDate(form.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}
	batch, err := h.service.CreateBatch(r.Context(), CreateBatchInput{Code: form.Code, Date: date})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.recordAudit(r, "create", "color_kitchen_batch", batch.Code)
	httpx.JSON(w, http.StatusCreated, batch)
}

func (h *Handler) getBatch(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	batch, err := h.service.GetBatch(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, batch)
}

func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	var form entryForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, err := parseDate(form.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}
	entry, err := h.service.CreateEntry(r.Context(), CreateEntryInput{
		Code:          form.Code,
		Date:          date,
		Rolls:         form.Rolls,
		PasteQuantity: form.PasteQuantity,
		DesignID:      form.DesignID,
		BatchID:       form.BatchID,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.recordAudit(r, "create", "color_kitchen_entry", entry.Code)
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	entry, err := h.service.GetEntry(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) listBatchDetails(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	details, err := h.service.ListBatchDetails(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": details})
}

func (h *Handler) listEntryDetails(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	details, err := h.service.ListEntryDetails(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": details})
}

func (h *Handler) createBatchDetail(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeDetail(w, r)
	if !ok {
		return
	}
	detail, err := h.service.CreateBatchDetail(r.Context(), CreateDetailInput{
		OwnerID: form.OwnerID, ProductID: form.ProductID, Quantity: form.Quantity,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.recordAudit(r, "create", "color_kitchen_batch_detail", strconv.FormatInt(detail.ID, 10))
	httpx.JSON(w, http.StatusCreated, detail)
}

func (h *Handler) updateBatchDetail(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var form struct {
		Quantity float64 `json:"quantity"`
	}
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	detail, err := h.service.UpdateBatchDetail(r.Context(), id, UpdateDetailInput{Quantity: form.Quantity})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.recordAudit(r, "update", "color_kitchen_batch_detail", strconv.FormatInt(id, 10))
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) deleteBatchDetail(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.DeleteBatchDetail(r.Context(), id); err != nil {
		h.respondErr(w, err)
		return
	}
	h.recordAudit(r, "delete", "color_kitchen_batch_detail", strconv.FormatInt(id, 10))
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *Handler) createEntryDetail(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeDetail(w, r)
	if !ok {
		return
	}
	detail, err := h.service.CreateEntryDetail(r.Context(), CreateDetailInput{
		OwnerID: form.OwnerID, ProductID: form.ProductID, Quantity: form.Quantity,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.recordAudit(r, "create", "color_kitchen_entry_detail", strconv.FormatInt(detail.ID, 10))
	httpx.JSON(w, http.StatusCreated, detail)
}

func (h *Handler) updateEntryDetail(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var form struct {
		Quantity float64 `json:"quantity"`
	}
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	detail, err := h.service.UpdateEntryDetail(r.Context(), id, UpdateDetailInput{Quantity: form.Quantity})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.recordAudit(r, "update", "color_kitchen_entry_detail", strconv.FormatInt(id, 10))
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) deleteEntryDetail(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.DeleteEntryDetail(r.Context(), id); err != nil {
		h.respondErr(w, err)
		return
	}
	h.recordAudit(r, "delete", "color_kitchen_entry_detail", strconv.FormatInt(id, 10))
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *Handler) decodeDetail(w http.ResponseWriter, r *http.Request) (detailForm, bool) {
	var form detailForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return form, false
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return form, false
	}
	return form, true
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
		h.logger.Error("color kitchen request failed", slog.Any("error", err))
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

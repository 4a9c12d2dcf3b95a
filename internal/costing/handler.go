package costing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chromatex/dyehouse/internal/platform/httpx"
)

// Handler serves average-cost lookups through the Redis read path.
type Handler struct {
	logger *slog.Logger
	reader *Reader
}

func NewHandler(logger *slog.Logger, reader *Reader) *Handler {
	return &Handler{logger: logger, reader: reader}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products/{id}/avg-cost", h.avgCost)
}

func (h *Handler) avgCost(w http.ResponseWriter, r *http.Request) {
	productID, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	entry, err := h.reader.AvgCost(r.Context(), productID)
	if err != nil {
		if errors.Is(err, ErrNoCostHistory) {
			httpx.Problem(w, http.StatusNotFound, "No Cost History", err.Error())
			return
		}
		h.logger.Error("avg cost lookup", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

package importer

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chromatex/dyehouse/internal/platform/httpx"
	"github.com/chromatex/dyehouse/internal/shared"
)

// Handler accepts pre-validated row batches as JSON. Spreadsheet parsing
// happens upstream; this surface takes the parsed rows.
type Handler struct {
	logger       *slog.Logger
	purchasing   *PurchasingImporter
	movement     *MovementImporter
	colorKitchen *ColorKitchenImporter
	opname       *OpnameImporter
	audit        *shared.AuditLogger
}

func NewHandler(logger *slog.Logger, p *PurchasingImporter, m *MovementImporter, ck *ColorKitchenImporter, o *OpnameImporter, audit *shared.AuditLogger) *Handler {
	return &Handler{logger: logger, purchasing: p, movement: m, colorKitchen: ck, opname: o, audit: audit}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/purchasing", h.importPurchasing)
	r.Post("/movements", h.importMovements)
	r.Post("/color-kitchen", h.importColorKitchen)
	r.Post("/opname", h.importOpname)
}

type purchasingRowForm struct {
	HeaderCode    string  `json:"header_code"`
	Date          string  `json:"date"`
	PurchaseOrder string  `json:"purchase_order"`
	SupplierCode  string  `json:"supplier_code"`
	ProductName   string  `json:"product_name"`
	Quantity      float64 `json:"quantity"`
	Price         float64 `json:"price"`
	Discount      float64 `json:"discount"`
	PPN           float64 `json:"ppn"`
	PPH           float64 `json:"pph"`
	DPP           float64 `json:"dpp"`
	TaxNo         string  `json:"tax_no"`
	ExchangeRate  float64 `json:"exchange_rate"`
}

func (h *Handler) importPurchasing(w http.ResponseWriter, r *http.Request) {
	var forms []purchasingRowForm
	if err := httpx.DecodeJSON(r, &forms); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	rows := make([]PurchasingRow, 0, len(forms))
	for _, f := range forms {
		date, err := time.Parse("2006-01-02", f.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
			return
		}
		rows = append(rows, PurchasingRow{
			HeaderCode:    f.HeaderCode,
			Date:          date,
			PurchaseOrder: f.PurchaseOrder,
			SupplierCode:  f.SupplierCode,
			ProductName:   f.ProductName,
			Quantity:      f.Quantity,
			Price:         f.Price,
			Discount:      f.Discount,
			PPN:           f.PPN,
			PPH:           f.PPH,
			DPP:           f.DPP,
			TaxNo:         f.TaxNo,
			ExchangeRate:  f.ExchangeRate,
		})
	}
	summary, err := h.purchasing.Import(r.Context(), rows)
	h.respond(w, r, "purchasing_import", summary, err)
}

type movementRowForm struct {
	HeaderCode  string  `json:"header_code"`
	Date        string  `json:"date"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
}

func (h *Handler) importMovements(w http.ResponseWriter, r *http.Request) {
	var forms []movementRowForm
	if err := httpx.DecodeJSON(r, &forms); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	rows := make([]MovementRow, 0, len(forms))
	for _, f := range forms {
		date, err := time.Parse("2006-01-02", f.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
			return
		}
		rows = append(rows, MovementRow{
			HeaderCode:  f.HeaderCode,
			Date:        date,
			ProductName: f.ProductName,
			Quantity:    f.Quantity,
		})
	}
	summary, err := h.movement.Import(r.Context(), rows)
	h.respond(w, r, "movement_import", summary, err)
}

type colorKitchenRowForm struct {
	BatchCode     string  `json:"batch_code"`
	EntryCode     string  `json:"entry_code"`
	Date          string  `json:"date"`
	DesignCode    string  `json:"design_code"`
	Rolls         int     `json:"rolls"`
	PasteQuantity float64 `json:"paste_quantity"`
	ProductName   string  `json:"product_name"`
	Quantity      float64 `json:"quantity"`
}

func (h *Handler) importColorKitchen(w http.ResponseWriter, r *http.Request) {
	var forms []colorKitchenRowForm
	if err := httpx.DecodeJSON(r, &forms); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	rows := make([]ColorKitchenRow, 0, len(forms))
	for _, f := range forms {
		date, err := time.Parse("2006-01-02", f.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
			return
		}
		rows = append(rows, ColorKitchenRow{
			BatchCode:     f.BatchCode,
			EntryCode:     f.EntryCode,
			Date:          date,
			DesignCode:    f.DesignCode,
			Rolls:         f.Rolls,
			PasteQuantity: f.PasteQuantity,
			ProductName:   f.ProductName,
			Quantity:      f.Quantity,
		})
	}
	summary, err := h.colorKitchen.Import(r.Context(), rows)
	h.respond(w, r, "color_kitchen_import", summary, err)
}

type opnameRowForm struct {
	HeaderCode       string  `json:"header_code"`
	Date             string  `json:"date"`
	ProductName      string  `json:"product_name"`
	PhysicalQuantity float64 `json:"physical_quantity"`
}

func (h *Handler) importOpname(w http.ResponseWriter, r *http.Request) {
	var forms []opnameRowForm
	if err := httpx.DecodeJSON(r, &forms); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	rows := make([]OpnameRow, 0, len(forms))
	for _, f := range forms {
		date, err := time.Parse("2006-01-02", f.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
			return
		}
		rows = append(rows, OpnameRow{
			HeaderCode:       f.HeaderCode,
			Date:             date,
			ProductName:      f.ProductName,
			PhysicalQuantity: f.PhysicalQuantity,
		})
	}
	summary, err := h.opname.Import(r.Context(), rows)
	h.respond(w, r, "opname_import", summary, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, entity string, summary Summary, err error) {
	switch {
	case err == nil:
		h.recordAudit(r, entity, summary)
		httpx.JSON(w, http.StatusOK, summary)
	case errors.Is(err, ErrNoRows):
		httpx.Problem(w, http.StatusBadRequest, "Empty Batch", err.Error())
	case errors.Is(err, ErrBatchRejected):
		httpx.JSON(w, http.StatusUnprocessableEntity, summary)
	default:
		h.logger.Error("import failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) recordAudit(r *http.Request, entity string, summary Summary) {
	if h.audit == nil {
		return
	}
	err := h.audit.Record(r.Context(), shared.AuditLog{
		Action:   "import",
		Entity:   entity,
		EntityID: summary.BatchID,
		Meta: map[string]any{
			"inserted": summary.Inserted,
			"skipped":  summary.Skipped,
		},
	})
	if err != nil {
		h.logger.Warn("record import audit", slog.String("entity", entity), slog.Any("error", err))
	}
}

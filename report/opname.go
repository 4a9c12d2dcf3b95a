package report

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chromatex/dyehouse/internal/opname"
)

var opnameTmpl = template.Must(template.New("opname").Parse(`<html>
<head><title>Stock Opname {{.Header.Code}}</title></head>
<body>
<h1>Stock Opname {{.Header.Code}}</h1>
<p>Counted on {{.Header.Date.Format "2006-01-02"}}</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Product</th><th>System</th><th>Physical</th><th>Difference</th></tr>
{{range .Details}}<tr>
<td>{{.ProductID}}</td>
<td>{{printf "%.2f" .SystemQuantity}}</td>
<td>{{printf "%.2f" .PhysicalQuantity}}</td>
<td>{{printf "%.2f" .Difference}}</td>
</tr>
{{end}}</table>
</body></html>`))

type opnameSheetData struct {
	Header  opname.StockOpname
	Details []opname.Detail
}

// Handler renders PDF documents for reconciliation paperwork.
type Handler struct {
	client  *Client
	logger  *slog.Logger
	opnames *opname.Service
}

// NewHandler creates a report handler.
func NewHandler(client *Client, logger *slog.Logger, opnames *opname.Service) *Handler {
	return &Handler{client: client, logger: logger, opnames: opnames}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/opname/{code}", h.opnameSheet)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) opnameSheet(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	header, err := h.opnames.GetHeaderByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, opname.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("load opname for report", slog.String("code", code), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	details, err := h.opnames.ListDetails(r.Context(), header.ID)
	if err != nil {
		h.logger.Error("load opname details for report", slog.String("code", code), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := opnameTmpl.Execute(&buf, opnameSheetData{Header: header, Details: details}); err != nil {
		h.logger.Error("render opname sheet", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	pdf, err := h.client.RenderHTML(r.Context(), buf.String())
	if err != nil {
		h.logger.Error("convert opname sheet", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=opname-"+header.Code+".pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

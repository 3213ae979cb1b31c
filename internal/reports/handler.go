package reports

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bodyworks/bodyworks/internal/authz"
	"github.com/bodyworks/bodyworks/internal/platform/httpx"
)

// Handler exposes reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	mw      authz.Middleware
	printer *message.Printer
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		mw:      mw,
		printer: message.NewPrinter(language.English),
	}
}

// MountRoutes registers reporting routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireSession)
		r.Get("/dashboard", h.dashboard)
		r.Get("/revenue.csv", h.revenueCSV)
		r.Get("/low-stock.csv", h.lowStockCSV)
	})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	dashboard, err := h.service.Dashboard(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("build dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}

func (h *Handler) revenueCSV(w http.ResponseWriter, r *http.Request) {
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	dashboard, err := h.service.Dashboard(r.Context(), tenantID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="revenue.csv"`)
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"month", "invoiced", "collected"})
	for _, m := range dashboard.Revenue {
		_ = cw.Write([]string{
			m.Month,
			h.printer.Sprintf("%.2f", m.Invoiced),
			h.printer.Sprintf("%.2f", m.Collected),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Warn("write revenue csv", slog.Any("error", err))
	}
}

func (h *Handler) lowStockCSV(w http.ResponseWriter, r *http.Request) {
	_, tenantID, _ := h.mw.CurrentPrincipal(r)
	dashboard, err := h.service.Dashboard(r.Context(), tenantID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="low-stock.csv"`)
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"sku", "name", "on_hand", "reorder_level"})
	for _, item := range dashboard.LowStock {
		_ = cw.Write([]string{
			item.SKU,
			item.Name,
			fmt.Sprintf("%g", item.OnHand),
			fmt.Sprintf("%g", item.ReorderLevel),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Warn("write low stock csv", slog.Any("error", err))
	}
}

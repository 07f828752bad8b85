package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/infopercept/rix/internal/core/domain"
	"github.com/infopercept/rix/internal/core/services/match"
)

// ProductHandler serves the loaded corpus: product listings and totals
type ProductHandler struct {
	Handle *match.Handle
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(handle *match.Handle) *ProductHandler {
	return &ProductHandler{
		Handle: handle,
	}
}

// HandleList returns every product entry, optionally filtered by
// ?category= and ?vendor_id=
func (h *ProductHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	category := domain.Category(r.URL.Query().Get("category"))
	if category != "" && !category.IsValid() {
		http.Error(w, "Unknown category: "+string(category), http.StatusBadRequest)
		return
	}
	vendorID := r.URL.Query().Get("vendor_id")

	entries := h.Handle.Get().Corpus().Filter(category, vendorID)
	if entries == nil {
		entries = []*domain.ProductEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"products": entries,
		"count":    len(entries),
	})
}

// HandleGet returns a single product entry by vendor and product ID
func (h *ProductHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	vars := mux.Vars(r)
	entry := h.Handle.Get().Corpus().Get(vars["vendor_id"], vars["product_id"])
	if entry == nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

// HandleStats returns corpus totals and the engine's compiled rule count
func (h *ProductHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	engine := h.Handle.Get()
	stats := engine.Corpus().Stats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"products":       stats.Products,
		"rules":          stats.Rules,
		"vendors":        stats.Vendors,
		"categories":     stats.Categories,
		"compiled_rules": engine.RuleCount(),
		"compile_issues": len(engine.CompileIssues()),
	})
}

// HandleVendors returns the sorted vendor ID list
func (h *ProductHandler) HandleVendors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	vendors := h.Handle.Get().Corpus().Vendors()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"vendors": vendors,
		"count":   len(vendors),
	})
}

package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/infopercept/rix/internal/core/domain"
	"github.com/infopercept/rix/internal/core/services/match"
)

// MatchHandler evaluates request text against the active engine
type MatchHandler struct {
	Handle *match.Handle
}

// NewMatchHandler creates a new MatchHandler
func NewMatchHandler(handle *match.Handle) *MatchHandler {
	return &MatchHandler{
		Handle: handle,
	}
}

// MatchRequest is the JSON body of a detection request. When VendorID and
// ProductID are set only that product's rules are evaluated.
type MatchRequest struct {
	Text           string `json:"text"`
	VendorID       string `json:"vendor_id,omitempty"`
	ProductID      string `json:"product_id,omitempty"`
	BestPerProduct bool   `json:"best_per_product,omitempty"`
}

// MatchResponse wraps the ranked results
type MatchResponse struct {
	Matches []domain.MatchResult `json:"matches"`
	Count   int                  `json:"count"`
}

// HandleMatch runs a detection over the submitted text
func (h *MatchHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "Field 'text' is required", http.StatusBadRequest)
		return
	}
	if (req.VendorID == "") != (req.ProductID == "") {
		http.Error(w, "Fields 'vendor_id' and 'product_id' must be set together", http.StatusBadRequest)
		return
	}

	engine := h.Handle.Get()

	var results []domain.MatchResult
	if req.VendorID != "" {
		results = engine.MatchProduct(r.Context(), req.Text, req.VendorID, req.ProductID)
	} else {
		results = engine.Match(r.Context(), req.Text)
	}

	if req.BestPerProduct {
		results = match.BestPerProduct(results)
	}
	if results == nil {
		results = []domain.MatchResult{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(MatchResponse{Matches: results, Count: len(results)}); err != nil {
		log.Printf("Failed to encode match response: %v", err)
	}
}

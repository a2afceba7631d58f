package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bidlevel/internal/engine"
)

// GetVendorsHandler returns the vendor ranking snapshot, best rank first.
func (h *Handler) GetVendorsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Engine.ListVendors())
}

// CreateVendorHandler handles POST /api/vendors/new. Every existing line
// item receives a bid stub for the new vendor.
func (h *Handler) CreateVendorHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var spec engine.VendorSpec
	if err := json.Unmarshal(body, &spec); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	vendor, err := h.Engine.AddVendor(spec)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, vendor)
}

// RemoveVendorHandler handles DELETE /api/vendors/{vendorId}.
func (h *Handler) RemoveVendorHandler(w http.ResponseWriter, r *http.Request) {
	vendorID := chi.URLParam(r, "vendorId")
	if vendorID == "" {
		http.Error(w, "Missing vendorId", http.StatusBadRequest)
		return
	}

	if err := h.Engine.RemoveVendor(vendorID); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]string{"removed": vendorID})
}

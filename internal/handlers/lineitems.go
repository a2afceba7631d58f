package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bidlevel/internal/engine"
	"bidlevel/models"
)

// GetLineItemsHandler returns the full leveling sheet snapshot.
func (h *Handler) GetLineItemsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Engine.ListLineItems())
}

// CreateLineItemHandler handles POST /api/lineitems/new.
func (h *Handler) CreateLineItemHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var spec engine.LineItemSpec
	if err := json.Unmarshal(body, &spec); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	item, err := h.Engine.AddLineItem(spec)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, item)
}

// DuplicateLineItemHandler handles POST /api/lineitems/{lineItemId}/duplicate.
func (h *Handler) DuplicateLineItemHandler(w http.ResponseWriter, r *http.Request) {
	lineItemID := chi.URLParam(r, "lineItemId")
	if lineItemID == "" {
		http.Error(w, "Missing lineItemId", http.StatusBadRequest)
		return
	}

	item, err := h.Engine.DuplicateLineItem(lineItemID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, item)
}

// RemoveLineItemHandler handles DELETE /api/lineitems/{lineItemId}.
func (h *Handler) RemoveLineItemHandler(w http.ResponseWriter, r *http.Request) {
	lineItemID := chi.URLParam(r, "lineItemId")
	if lineItemID == "" {
		http.Error(w, "Missing lineItemId", http.StatusBadRequest)
		return
	}

	if err := h.Engine.RemoveLineItem(lineItemID); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]string{"removed": lineItemID})
}

// ToggleLockHandler handles PUT /api/lineitems/{lineItemId}/lock.
func (h *Handler) ToggleLockHandler(w http.ResponseWriter, r *http.Request) {
	lineItemID := chi.URLParam(r, "lineItemId")
	if lineItemID == "" {
		http.Error(w, "Missing lineItemId", http.StatusBadRequest)
		return
	}

	locked, err := h.Engine.ToggleLock(lineItemID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"isLocked": locked})
}

// EditBidCellHandler handles PATCH /api/lineitems/{lineItemId}/bids/{vendorId}.
// The body selects the field: a priced field carries "value", notes carries
// "notes".
func (h *Handler) EditBidCellHandler(w http.ResponseWriter, r *http.Request) {
	lineItemID := chi.URLParam(r, "lineItemId")
	vendorID := chi.URLParam(r, "vendorId")
	if lineItemID == "" || vendorID == "" {
		http.Error(w, "Missing lineItemId or vendorId", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Cannot read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input struct {
		Field models.BidField `json:"field"`
		Value *float64        `json:"value"`
		Notes *string         `json:"notes"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if input.Field == models.FieldNotes {
		if input.Notes == nil {
			http.Error(w, "Missing notes", http.StatusBadRequest)
			return
		}
		prev, applied, err := h.Engine.EditNotes(lineItemID, vendorID, *input.Notes)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, map[string]any{"applied": applied, "previous": prev})
		return
	}

	if input.Value == nil {
		http.Error(w, "Missing value", http.StatusBadRequest)
		return
	}
	prev, applied, err := h.Engine.EditCell(lineItemID, vendorID, input.Field, *input.Value)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"applied": applied, "previous": prev})
}

package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"bidlevel/internal/engine"
	"bidlevel/models"
)

// BulkEditHandler handles POST /api/bids/bulk.
func (h *Handler) BulkEditHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req engine.BulkEditRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	summary, err := h.Engine.ApplyBulkEdit(req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, summary)
}

// SaveHandler handles POST /api/leveling/save. On persistence failure the
// ledger stays dirty, so the caller can simply retry.
func (h *Handler) SaveHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.Save(r.Context()); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "saved"})
}

// UndoHandler handles POST /api/leveling/undo.
func (h *Handler) UndoHandler(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Engine.UndoLast()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, entry)
}

// ResetHandler handles POST /api/leveling/reset.
func (h *Handler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	h.Engine.ResetAll()
	writeJSON(w, map[string]string{"status": "reset"})
}

type historyEntry struct {
	models.ChangeEntry
	Description string `json:"description"`
}

// HistoryHandler handles GET /api/leveling/history?limit=N, most recent
// first.
func (h *Handler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit := parseLimitParam(r, 10, 500)

	names := make(map[string]string)
	for _, v := range h.Engine.ListVendors() {
		names[v.ID] = v.Name
	}

	entries := []historyEntry{}
	for e := range h.Engine.History(limit) {
		entries = append(entries, historyEntry{
			ChangeEntry: e,
			Description: engine.DescribeChange(e, names[e.VendorID]),
		})
	}
	writeJSON(w, entries)
}

// AutoCalculateHandler handles PUT /api/leveling/autocalc.
func (h *Handler) AutoCalculateHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Cannot read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var input struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.Unmarshal(body, &input); err != nil || input.Enabled == nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	h.Engine.SetAutoCalculate(*input.Enabled)
	writeJSON(w, map[string]bool{"autoCalculate": h.Engine.AutoCalculate()})
}

// ExportHandler handles GET /api/leveling/export, returning the leveling
// sheet as CSV.
func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	data, err := engine.ExportCSV(h.Engine.ListLineItems(), h.Engine.ListVendors())
	if err != nil {
		http.Error(w, "Failed to export", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="bid_leveling_sheet.csv"`)
	w.Write(data)
}

// ImportHandler handles POST /api/leveling/import with a list of parsed
// vendor submissions. Parsing uploaded documents is the upload
// collaborator's job; only structured records arrive here.
func (h *Handler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10485760)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var records []models.ImportedBid
	if err := json.Unmarshal(body, &records); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if len(records) == 0 {
		http.Error(w, "No bids to import", http.StatusBadRequest)
		return
	}

	summary, err := h.Engine.IngestBids(records)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, summary)
}

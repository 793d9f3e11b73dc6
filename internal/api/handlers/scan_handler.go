package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/scanvault/scanvault-be/internal/capture"
	"github.com/scanvault/scanvault-be/internal/decode"
	"github.com/scanvault/scanvault-be/internal/services"
)

// maxImageUploadBytes caps gallery image uploads.
const maxImageUploadBytes = 10 << 20

// ScanHandler handles HTTP requests for the scan history.
type ScanHandler struct {
	service   services.ScanServiceProvider
	processor *capture.Processor
	decoder   *decode.Client
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(service services.ScanServiceProvider, processor *capture.Processor, decoder *decode.Client) *ScanHandler {
	return &ScanHandler{service: service, processor: processor, decoder: decoder}
}

// CapturePayload defines the structure for camera scan events. Type is
// the raw kind reported by the scanner; Allowed is the session's type
// filter ("" or "ALL" accepts everything).
type CapturePayload struct {
	Data    string `json:"data"`
	Type    string `json:"type"`
	Allowed string `json:"allowed"`
}

// CaptureResult reports what happened to a delivered payload.
type CaptureResult struct {
	Saved bool   `json:"saved"`
	Data  string `json:"data,omitempty"`
}

// GetAll handles listing the scan history, newest first.
func (h *ScanHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListAll()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list scanned items")
		http.Error(w, "Failed to load scanned items", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// Capture handles a decoded payload delivered by the device camera layer.
func (h *ScanHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var payload CapturePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	saved, err := h.processor.Process(payload.Type, payload.Data, payload.Allowed)
	if err != nil {
		if errors.Is(err, capture.ErrScanRejected) {
			http.Error(w, "Only "+payload.Allowed+" scans are allowed.", http.StatusUnprocessableEntity)
			return
		}
		log.Error().Err(err).Msg("Failed to save scan")
		http.Error(w, "Failed to save scan. Please try again.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(CaptureResult{Saved: saved, Data: payload.Data})
}

// CaptureImage handles the gallery path: an uploaded image is sent to the
// remote decode service and the decoded payload goes through the same
// capture guard as camera scans.
func (h *ScanHandler) CaptureImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := h.decoder.DecodeImage(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, decode.ErrNoCodeFound) {
			log.Info().Str("filename", header.Filename).Msg("No QR code found in uploaded image")
			http.Error(w, "No QR code found in image.", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to decode QR code from image")
		http.Error(w, "Failed to decode QR code from image.", http.StatusBadGateway)
		return
	}

	saved, err := h.processor.Process(capture.LabelQRCode, data, r.FormValue("allowed"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to save decoded scan")
		http.Error(w, "Failed to save scan. Please try again.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(CaptureResult{Saved: saved, Data: data})
}

// Delete handles removing one scanned item from the history.
func (h *ScanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteByID(id); err != nil {
		log.Error().Err(err).Str("item_id", id).Msg("Failed to delete scanned item")
		http.Error(w, "Failed to delete item", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

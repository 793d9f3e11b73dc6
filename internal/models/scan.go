package models

import "time"

// ScannedItem represents one decoded scan stored in the history.
type ScannedItem struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // "QR Code" or "Barcode"
	Data      string    `json:"data"` // Decoded payload content
	CreatedAt time.Time `json:"createdAt"`
}

package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scanvault/scanvault-be/internal/models"
)

// ScanServiceProvider defines the interface for scan history services.
type ScanServiceProvider interface {
	ListAll() ([]models.ScannedItem, error)
	Save(scanType, data string) (bool, error)
	DeleteByID(id string) error
}

// ScanService provides durable, deduplicated storage of scan events.
type ScanService struct {
	db           *sql.DB
	eventService EventServiceProvider
}

// NewScanService creates a new ScanService.
func NewScanService(db *sql.DB, eventService EventServiceProvider) *ScanService {
	return &ScanService{
		db:           db,
		eventService: eventService,
	}
}

// ListAll retrieves every scanned item, most recent first.
func (s *ScanService) ListAll() ([]models.ScannedItem, error) {
	rows, err := s.db.Query("SELECT id, type, data, created_at FROM scanned_items ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ScannedItem
	for rows.Next() {
		var item models.ScannedItem
		var createdAt int64
		if err := rows.Scan(&item.ID, &item.Type, &item.Data, &createdAt); err != nil {
			return nil, err
		}
		item.CreatedAt = time.Unix(0, createdAt).UTC()
		items = append(items, item)
	}
	return items, rows.Err()
}

// Save stores a decoded scan unless an item with identical data already
// exists. Deduplication ignores the type label, so a QR code and a
// barcode encoding the same string collapse into one record. It returns
// false without writing when either argument is empty, and true for both
// a fresh insert and a suppressed duplicate, making it idempotent under
// retry for the same payload.
func (s *ScanService) Save(scanType, data string) (bool, error) {
	if scanType == "" || data == "" {
		return false, nil
	}

	var existingID string
	row := s.db.QueryRow("SELECT id FROM scanned_items WHERE data = ?", data)
	if err := row.Scan(&existingID); err == nil {
		s.eventService.CreateEvent("scan.duplicate", "info", "Duplicate scan ignored.")
		return true, nil
	} else if err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to check for duplicate scan: %w", err)
	}

	item := models.ScannedItem{
		ID:        uuid.New().String(),
		Type:      scanType,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}

	stmt, err := s.db.Prepare("INSERT INTO scanned_items (id, type, data, created_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return false, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(item.ID, item.Type, item.Data, item.CreatedAt.UnixNano())
	if err != nil {
		return false, err
	}

	s.eventService.CreateEvent("scan.save", "info", fmt.Sprintf("%s saved.", item.Type))
	return true, nil
}

// DeleteByID removes a scanned item. A missing id is a silent no-op.
func (s *ScanService) DeleteByID(id string) error {
	res, err := s.db.Exec("DELETE FROM scanned_items WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		s.eventService.CreateEvent("scan.delete", "info", "Scanned item deleted.")
	}
	return nil
}

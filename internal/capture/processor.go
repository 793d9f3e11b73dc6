package capture

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Labels assigned to stored scans based on the raw kind reported by the
// scanner hardware.
const (
	LabelQRCode  = "QR Code"
	LabelBarcode = "Barcode"
)

// TypeAll accepts every scan kind when used as the allowed filter.
const TypeAll = "ALL"

// ErrScanRejected reports a scan whose kind does not match the session's
// allowed type filter. Nothing is persisted.
var ErrScanRejected = errors.New("scan type not allowed")

// recentCapacity bounds the cache of recently persisted payloads. A small
// window is enough to absorb navigation-parameter echo while still
// handling rapid alternating scans.
const recentCapacity = 16

// Saver is the slice of the scan service the processor needs.
type Saver interface {
	Save(scanType, data string) (bool, error)
}

// Classify maps a raw scanner kind to its stored label. Anything that
// mentions QR is a QR code, the rest are barcodes.
func Classify(kind string) string {
	if strings.Contains(kind, "QR") {
		return LabelQRCode
	}
	return LabelBarcode
}

// Processor bridges decoded-payload events into at most one Save call per
// unique payload. Event sources redeliver the same payload (navigation
// echo, scanner reactivation), so the processor keeps an in-flight flag
// and a bounded cache of recently persisted payloads keyed by the payload
// string. The flag guards a single UI surface, not multi-actor races.
type Processor struct {
	saver Saver

	mu       sync.Mutex
	inFlight bool
	recent   []string // oldest first
}

// NewProcessor creates a new Processor on top of the given saver.
func NewProcessor(saver Saver) *Processor {
	return &Processor{saver: saver}
}

// Process handles one decoded-payload event. kind is the raw type
// reported by the scanner, data the decoded content, allowed the
// session's type filter ("" and "ALL" accept everything). It returns
// whether the payload is now persisted; ignored events (empty fields, a
// save already in flight, a recently processed payload) return false with
// no error. A failed save is not cached, so repeating the user action
// retries it.
func (p *Processor) Process(kind, data, allowed string) (bool, error) {
	if kind == "" || data == "" {
		return false, nil
	}

	if allowed != "" && allowed != TypeAll && !strings.Contains(kind, allowed) {
		return false, fmt.Errorf("%w: only %s scans are allowed", ErrScanRejected, allowed)
	}

	p.mu.Lock()
	if p.inFlight || p.seen(data) {
		p.mu.Unlock()
		return false, nil
	}
	p.inFlight = true
	p.mu.Unlock()

	saved, err := p.saver.Save(Classify(kind), data)

	p.mu.Lock()
	p.inFlight = false
	if err == nil && saved {
		p.remember(data)
	}
	p.mu.Unlock()

	if err != nil {
		return false, err
	}
	return saved, nil
}

// seen reports whether data is in the recent cache. Callers hold p.mu.
func (p *Processor) seen(data string) bool {
	for _, v := range p.recent {
		if v == data {
			return true
		}
	}
	return false
}

// remember adds data to the recent cache, evicting the oldest entry once
// the cache is full. Callers hold p.mu.
func (p *Processor) remember(data string) {
	if len(p.recent) >= recentCapacity {
		p.recent = p.recent[1:]
	}
	p.recent = append(p.recent, data)
}

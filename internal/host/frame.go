package host

import (
	"errors"
	"strings"
	"sync"
)

// ErrFrameUnknown means the frame position could not be determined.
var ErrFrameUnknown = errors.New("host: frame position unknown")

// FrameDetector reports whether the plugin page is loaded inside another
// page's frame.
type FrameDetector interface {
	IsNested() (bool, error)
}

// FrameDetectorFunc adapts a function to FrameDetector.
type FrameDetectorFunc func() (bool, error)

func (f FrameDetectorFunc) IsNested() (bool, error) { return f() }

// detectNested runs d and treats any failure, including a panic, as
// "nested". Callers then keep assuming the plugin is embedded.
func detectNested(d FrameDetector) (nested bool) {
	if d == nil {
		return true
	}
	defer func() {
		if recover() != nil {
			nested = true
		}
	}()
	n, err := d.IsNested()
	if err != nil {
		return true
	}
	return n
}

// FrameHint derives the frame position from the Sec-Fetch-Dest header of
// the most recent plugin page request.
type FrameHint struct {
	mu   sync.RWMutex
	dest string
}

// Record stores the Sec-Fetch-Dest value of a plugin page request.
func (h *FrameHint) Record(secFetchDest string) {
	h.mu.Lock()
	h.dest = strings.ToLower(strings.TrimSpace(secFetchDest))
	h.mu.Unlock()
}

func (h *FrameHint) IsNested() (bool, error) {
	h.mu.RLock()
	dest := h.dest
	h.mu.RUnlock()
	return NestedFromFetchDest(dest)
}

// NestedFromFetchDest maps a Sec-Fetch-Dest value to a frame position.
func NestedFromFetchDest(dest string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(dest)) {
	case "iframe", "frame", "embed", "object":
		return true, nil
	case "document":
		return false, nil
	default:
		return false, ErrFrameUnknown
	}
}

package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// AlertService appends alert submissions to one log file per alert type.
type AlertService struct {
	dir   string
	types map[string]bool
	now   func() time.Time

	mu sync.Mutex
}

func NewAlertService(dir string, types map[string]bool) *AlertService {
	return &AlertService{dir: dir, types: types, now: time.Now}
}

// Known reports whether alertType is configured.
func (s *AlertService) Known(alertType string) bool {
	return s.types[alertType]
}

// Append writes "<timestamp> <value>" as one line to <dir>/<alertType>.log.
// Line breaks in value are replaced by spaces so every submission stays on
// its own line.
func (s *AlertService) Append(alertType, value string) error {
	if !s.Known(alertType) {
		return fmt.Errorf("append alert: unknown alert type %q", alertType)
	}

	line := s.now().UTC().Format(time.RFC3339) + " " +
		strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(value) + "\n"

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(s.dir, alertType+".log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open alert log: %w", err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("write alert log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close alert log: %w", err)
	}
	return nil
}

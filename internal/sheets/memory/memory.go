// Package memory is an in-process sheets.Exporter, used where no
// spreadsheet is available.
package memory

import (
	"context"
	"sync"

	"budgeter/internal/sheets"
)

type Sheet struct {
	mu   sync.Mutex
	rows []sheets.Row
	// replaced counts ReplaceRows calls.
	replaced int
}

var _ sheets.Exporter = (*Sheet)(nil)

func New() *Sheet {
	return &Sheet{}
}

func (s *Sheet) AppendRows(_ context.Context, rows []sheets.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *Sheet) ReplaceRows(_ context.Context, rows []sheets.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append([]sheets.Row(nil), rows...)
	s.replaced++
	return nil
}

// Rows returns a copy of the current contents, header excluded.
func (s *Sheet) Rows() []sheets.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.Row(nil), s.rows...)
}

func (s *Sheet) Replaced() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaced
}

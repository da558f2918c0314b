package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// MockValues is an in-memory Values for testing. Ranges are addressed as
// 'Title'!A:Z for reads and clears and 'Title'!A<row> for writes.
type MockValues struct {
	Sheets      map[string][][]any
	GetErr      error
	ClearErr    error
	UpdateErr   error
	FormatErr   error
	UpdateCalls []string
	FormatCalls int
	mu          sync.Mutex
}

// NewMockValues creates an empty mock spreadsheet.
func NewMockValues() *MockValues {
	return &MockValues{Sheets: make(map[string][][]any)}
}

// SetSheet replaces the content of title.
func (m *MockValues) SetSheet(title string, rows [][]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sheets[title] = rows
}

// Sheet returns a copy of title's rows.
func (m *MockValues) Sheet(title string) [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([][]any, len(m.Sheets[title]))
	copy(rows, m.Sheets[title])
	return rows
}

// Get implements Values.
func (m *MockValues) Get(_ context.Context, _, readRange string) ([][]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	title, _, err := splitRange(readRange)
	if err != nil {
		return nil, err
	}
	rows, ok := m.Sheets[title]
	if !ok {
		return nil, fmt.Errorf("unable to parse range: %s", readRange)
	}
	return rows, nil
}

// Clear implements Values.
func (m *MockValues) Clear(_ context.Context, _, clearRange string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ClearErr != nil {
		return m.ClearErr
	}
	title, _, err := splitRange(clearRange)
	if err != nil {
		return err
	}
	m.Sheets[title] = nil
	return nil
}

// Update implements Values.
func (m *MockValues) Update(_ context.Context, _, writeRange string, rows [][]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, writeRange)
	if m.UpdateErr != nil {
		return m.UpdateErr
	}

	title, cell, err := splitRange(writeRange)
	if err != nil {
		return err
	}
	start, err := strconv.Atoi(strings.TrimPrefix(cell, "A"))
	if err != nil || start < 1 {
		return fmt.Errorf("unsupported range: %s", writeRange)
	}

	sheet := m.Sheets[title]
	for len(sheet) < start-1+len(rows) {
		sheet = append(sheet, nil)
	}
	copy(sheet[start-1:], rows)
	m.Sheets[title] = sheet
	return nil
}

// FormatHeader implements Values.
func (m *MockValues) FormatHeader(_ context.Context, _, _ string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FormatCalls++
	return m.FormatErr
}

func splitRange(r string) (title, cell string, err error) {
	i := strings.LastIndex(r, "!")
	if i < 0 {
		return "", "", fmt.Errorf("range %q has no sheet", r)
	}
	title = r[:i]
	if len(title) >= 2 && strings.HasPrefix(title, "'") && strings.HasSuffix(title, "'") {
		title = strings.ReplaceAll(title[1:len(title)-1], "''", "'")
	}
	return title, r[i+1:], nil
}

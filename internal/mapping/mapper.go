// Package mapping pairs CSV header columns with canonical target columns.
//
// A [Mapper] holds one row per CSV header. Each canonical column can be
// claimed by at most one row at a time; a row may re-select the target it
// already holds. Confirming emits only the mapped rows, in header order.
package mapping

import (
	"errors"
	"fmt"
)

// Sentinel errors for mapping edits.
var (
	ErrTargetClaimed = errors.New("target column already mapped by another row")
	ErrUnknownTarget = errors.New("unknown target column")
	ErrRowOutOfRange = errors.New("row out of range")
	ErrNothingMapped = errors.New("no column mapped")
)

// ColumnMapping pairs one CSV column with one canonical column.
type ColumnMapping struct {
	CSVColumn      string `yaml:"csv_column" json:"csvColumn"`
	StandardColumn string `yaml:"standard_column" json:"standardColumn"`
}

// Option is a canonical target as offered to one row.
type Option struct {
	Name string `json:"name"`

	// Disabled is set when a different row already holds the target.
	Disabled bool `json:"disabled"`
}

// Mapper is the editable mapping table. It is not safe for concurrent use.
type Mapper struct {
	headers  []string
	standard []string
	known    map[string]bool
	targets  []string

	onComplete func([]ColumnMapping)
	onCancel   func()
}

// New seeds one unmapped row per header. The standard list is
// de-duplicated keeping the first occurrence of each name.
func New(headers, standard []string) *Mapper {
	m := &Mapper{
		headers:    append([]string(nil), headers...),
		standard:   Dedupe(standard),
		targets:    make([]string, len(headers)),
		onComplete: func([]ColumnMapping) {},
		onCancel:   func() {},
	}
	m.known = make(map[string]bool, len(m.standard))
	for _, s := range m.standard {
		m.known[s] = true
	}
	return m
}

// OnComplete sets the handler receiving the confirmed mapping.
func (m *Mapper) OnComplete(fn func([]ColumnMapping)) {
	if fn != nil {
		m.onComplete = fn
	}
}

// OnCancel sets the handler called when the user backs out.
func (m *Mapper) OnCancel(fn func()) {
	if fn != nil {
		m.onCancel = fn
	}
}

// Headers returns the CSV headers in order.
func (m *Mapper) Headers() []string {
	return append([]string(nil), m.headers...)
}

// Standard returns the canonical columns.
func (m *Mapper) Standard() []string {
	return append([]string(nil), m.standard...)
}

// Rows returns the current pairing of every header, mapped or not.
func (m *Mapper) Rows() []ColumnMapping {
	rows := make([]ColumnMapping, len(m.headers))
	for i, h := range m.headers {
		rows[i] = ColumnMapping{CSVColumn: h, StandardColumn: m.targets[i]}
	}
	return rows
}

// Target returns the canonical column held by row, or "".
func (m *Mapper) Target(row int) string {
	if row < 0 || row >= len(m.targets) {
		return ""
	}
	return m.targets[row]
}

// Set assigns target to row. An empty target unmaps the row.
func (m *Mapper) Set(row int, target string) error {
	if row < 0 || row >= len(m.targets) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	if target == "" {
		m.targets[row] = ""
		return nil
	}
	if !m.known[target] {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}
	if holder := m.holder(target); holder >= 0 && holder != row {
		return fmt.Errorf("%w: %s (row %s)", ErrTargetClaimed, target, m.headers[holder])
	}
	m.targets[row] = target
	return nil
}

// SetByHeader assigns target to the first row whose header is csvColumn.
func (m *Mapper) SetByHeader(csvColumn, target string) error {
	for i, h := range m.headers {
		if h == csvColumn {
			return m.Set(i, target)
		}
	}
	return fmt.Errorf("%w: no column %q", ErrRowOutOfRange, csvColumn)
}

// Options lists every canonical column for row, marking those held by other
// rows as disabled.
func (m *Mapper) Options(row int) []Option {
	opts := make([]Option, len(m.standard))
	for i, s := range m.standard {
		holder := m.holder(s)
		opts[i] = Option{Name: s, Disabled: holder >= 0 && holder != row}
	}
	return opts
}

// Used returns the set of claimed canonical columns.
func (m *Mapper) Used() map[string]bool {
	used := make(map[string]bool)
	for _, t := range m.targets {
		if t != "" {
			used[t] = true
		}
	}
	return used
}

// MappedCount returns how many rows hold a target.
func (m *Mapper) MappedCount() int {
	return len(m.Used())
}

// CanConfirm reports whether at least one row is mapped.
func (m *Mapper) CanConfirm() bool {
	return m.MappedCount() > 0
}

// Mapped returns only the mapped rows in header order.
func (m *Mapper) Mapped() []ColumnMapping {
	var out []ColumnMapping
	for i, t := range m.targets {
		if t != "" {
			out = append(out, ColumnMapping{CSVColumn: m.headers[i], StandardColumn: t})
		}
	}
	return out
}

// Confirm emits the mapped rows to the completion handler.
func (m *Mapper) Confirm() ([]ColumnMapping, error) {
	if !m.CanConfirm() {
		return nil, ErrNothingMapped
	}
	mapped := m.Mapped()
	m.onComplete(mapped)
	return mapped, nil
}

// Cancel notifies the cancel handler. The table is left untouched.
func (m *Mapper) Cancel() {
	m.onCancel()
}

func (m *Mapper) holder(target string) int {
	for i, t := range m.targets {
		if t == target {
			return i
		}
	}
	return -1
}

// Dedupe drops repeated and empty names, keeping first occurrences.
func Dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

package parsers

import (
	"regexp"
	"strings"
)

var headerSpaceRe = regexp.MustCompile(`\s+`)

// NormalizeHeader reduces a raw header to its case- and
// whitespace-insensitive key form: lowercased, trimmed, interior whitespace
// collapsed to single spaces.
func NormalizeHeader(h string) string {
	return headerSpaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), " ")
}

// ColumnMap resolves normalized header names to column indexes. Every parser
// uses it so that "Posting Date", " posting  date " and "POSTING DATE" all
// address the same column.
type ColumnMap struct {
	headers []string
	index   map[string]int
}

// NewColumnMap builds a ColumnMap from a raw header row. When duplicate
// headers occur the first occurrence wins.
func NewColumnMap(headers []string) *ColumnMap {
	m := &ColumnMap{
		headers: headers,
		index:   make(map[string]int, len(headers)),
	}
	for i, h := range headers {
		key := NormalizeHeader(h)
		if _, exists := m.index[key]; !exists {
			m.index[key] = i
		}
	}
	return m
}

// Index returns the column index of the first matching header name.
func (m *ColumnMap) Index(names ...string) (int, bool) {
	for _, name := range names {
		if i, ok := m.index[NormalizeHeader(name)]; ok {
			return i, true
		}
	}
	return -1, false
}

// Has reports whether all the given headers are present.
func (m *ColumnMap) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := m.index[NormalizeHeader(name)]; !ok {
			return false
		}
	}
	return true
}

// Get returns the trimmed cell value under the first matching header.
func (m *ColumnMap) Get(row []string, names ...string) string {
	i, ok := m.Index(names...)
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func trimCell(s string) string {
	return strings.TrimSpace(s)
}

// Headers returns the original header row.
func (m *ColumnMap) Headers() []string {
	return m.headers
}

// RawData captures a row as a header-keyed map for the canonical
// transaction's RawData field.
func (m *ColumnMap) RawData(row []string) map[string]string {
	raw := make(map[string]string, len(m.headers))
	for i, h := range m.headers {
		if i < len(row) {
			raw[strings.TrimSpace(h)] = strings.TrimSpace(row[i])
		}
	}
	return raw
}

package csv

import (
	"errors"
	"strings"
)

var ErrEmpty = errors.New("csv is empty")

// Row is a data row keyed by its lower-cased header name.
type Row map[string]string

// Get returns the first non-empty value among the given header aliases.
func (r Row) Get(aliases ...string) string {
	for _, alias := range aliases {
		if v := r[alias]; v != "" {
			return v
		}
	}
	return ""
}

// ParseLine splits one line on commas outside of double quotes. Every quote
// toggles the quoted state and is dropped; doubled quotes are not unescaped.
func ParseLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	return append(fields, current.String())
}

// Parse turns CSV text into header-mapped rows. Blank lines are ignored,
// the first remaining line is the header, and rows that hold nothing but
// empty values or comments ("#...") are dropped.
func Parse(text string) ([]Row, error) {
	var records [][]string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, ParseLine(line))
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}
	return FromRecords(records), nil
}

// FromRecords maps already split records (from a spreadsheet, say) onto
// the header in records[0], with the same filtering rules as Parse.
func FromRecords(records [][]string) []Row {
	if len(records) == 0 {
		return nil
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for i, key := range header {
			if i < len(record) {
				row[key] = strings.TrimSpace(record[i])
			} else {
				row[key] = ""
			}
		}
		if hasData(row) {
			rows = append(rows, row)
		}
	}
	return rows
}

func hasData(row Row) bool {
	for _, v := range row {
		if v != "" && !strings.HasPrefix(v, "#") {
			return true
		}
	}
	return false
}

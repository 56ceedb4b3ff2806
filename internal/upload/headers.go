package upload

import (
	"fmt"
	"os"
	"strings"
)

// utf8BOM is the byte order mark spreadsheet exports put before the first
// header.
const utf8BOM = "\ufeff"

// ExtractHeaders returns the header row of CSV text: the first line split on
// commas, each field trimmed with double quotes removed. A leading UTF-8 byte
// order mark is dropped.
//
// Quoted fields containing commas and multi-line headers are not supported;
// `"a,b"` yields two headers.
func ExtractHeaders(text string) []string {
	first, _, _ := strings.Cut(strings.TrimPrefix(text, utf8BOM), "\n")
	if first == "" {
		return []string{}
	}

	fields := strings.Split(first, ",")
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(f), `"`, ""))
	}
	return headers
}

// ReadHeaders reads the file at path and extracts its header row.
func ReadHeaders(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ExtractHeaders(string(content)), nil
}

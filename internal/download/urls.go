// Package download extracts URLs from spreadsheet files and fetches them
// into a local directory. CSV and XLSX sources are supported; cells are
// scanned for plain-text links and XLSX hyperlink targets are collected as
// well.
package download

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var (
	// urlPattern matches http and https links embedded in cell text.
	urlPattern = regexp.MustCompile(`http[s]?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\\(),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)
)

// Item pairs a URL with an optional filename hint taken from the source row.
type Item struct {
	URL      string
	NameHint string
}

// ExtractURLs returns all URLs found in text, in order.
func ExtractURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// ReadItems extracts the download items from a spreadsheet file. The format
// is chosen by extension. When nameColumn is zero or positive, the cell in
// that column of each row supplies a custom filename for the row's URLs.
// Duplicate URLs are dropped, keeping first-seen order.
func ReadItems(path string, nameColumn int) ([]Item, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return readCSV(path, nameColumn)
	case ".xlsx":
		return readXLSX(path, nameColumn)
	case ".xls":
		return nil, fmt.Errorf("unsupported file format %s: convert legacy XLS to .xlsx or .csv", ext)
	default:
		return nil, fmt.Errorf("unsupported file format %q (supported: .csv, .xlsx)", ext)
	}
}

// readCSV scans every cell of a CSV file. Files that are not valid UTF-8
// are retried as Windows-1251, which legacy spreadsheet exports commonly
// use.
func readCSV(path string, nameColumn int) ([]Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if !utf8.Valid(raw) {
		decoded, err := charmap.Windows1251.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		raw = decoded
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var items []Item
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}

		hint := rowHint(row, nameColumn)
		for _, cell := range row {
			for _, u := range ExtractURLs(cell) {
				items = append(items, Item{URL: u, NameHint: hint})
			}
		}
	}

	return dedupe(items), nil
}

// readXLSX scans every sheet of an XLSX workbook. Explicit hyperlinks are
// collected before the cell text so a link label never shadows its target.
func readXLSX(path string, nameColumn int) ([]Item, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var items []Item
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}

		for ri, row := range rows {
			hint := rowHint(row, nameColumn)
			for ci, cell := range row {
				if cell == "" {
					continue
				}
				if cellName, err := excelize.CoordinatesToCellName(ci+1, ri+1); err == nil {
					if ok, target, err := f.GetCellHyperLink(sheet, cellName); err == nil && ok && target != "" {
						items = append(items, Item{URL: target, NameHint: hint})
					}
				}
				for _, u := range ExtractURLs(cell) {
					items = append(items, Item{URL: u, NameHint: hint})
				}
			}
		}
	}

	return dedupe(items), nil
}

func rowHint(row []string, nameColumn int) string {
	if nameColumn < 0 || nameColumn >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[nameColumn])
}

// dedupe drops repeated URLs, keeping the first occurrence and its hint.
func dedupe(items []Item) []Item {
	seen := make(map[string]bool, len(items))
	unique := make([]Item, 0, len(items))
	for _, item := range items {
		if seen[item.URL] {
			continue
		}
		seen[item.URL] = true
		unique = append(unique, item)
	}
	return unique
}

package download

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func TestExtractURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single",
			text: "Report at https://example.com/files/report.pdf for review",
			want: []string{"https://example.com/files/report.pdf"},
		},
		{
			name: "multiple",
			text: "http://a.example.com/1.jpg http://b.example.com/2.jpg",
			want: []string{"http://a.example.com/1.jpg", "http://b.example.com/2.jpg"},
		},
		{
			name: "percentEncoded",
			text: "see https://example.com/my%20file.pdf",
			want: []string{"https://example.com/my%20file.pdf"},
		},
		{
			name: "queryString",
			text: "https://example.com/dl?id=42&fmt=zip",
			want: []string{"https://example.com/dl?id=42&fmt=zip"},
		},
		{name: "none", text: "no links here", want: nil},
		{name: "schemeOnly", text: "ftp://example.com/file", want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractURLs(tc.text)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ExtractURLs(%q) mismatch (-want +got):\n%s", tc.text, diff)
			}
		})
	}
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadItemsCSV(t *testing.T) {
	t.Parallel()

	csvData := "title,link\n" +
		"First,https://example.com/a.pdf\n" +
		"Second,https://example.com/b.pdf\n" +
		"NoLink,plain text\n"
	path := writeFile(t, "links.csv", []byte(csvData))

	got, err := ReadItems(path, -1)
	if err != nil {
		t.Fatalf("ReadItems() unexpected error: %v", err)
	}

	want := []Item{
		{URL: "https://example.com/a.pdf"},
		{URL: "https://example.com/b.pdf"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadItems() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadItemsCSVNameColumn(t *testing.T) {
	t.Parallel()

	csvData := "invoice march,https://example.com/a.pdf\n" +
		",https://example.com/b.pdf\n"
	path := writeFile(t, "links.csv", []byte(csvData))

	got, err := ReadItems(path, 0)
	if err != nil {
		t.Fatalf("ReadItems() unexpected error: %v", err)
	}

	want := []Item{
		{URL: "https://example.com/a.pdf", NameHint: "invoice march"},
		{URL: "https://example.com/b.pdf"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadItems() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadItemsCSVWindows1251(t *testing.T) {
	t.Parallel()

	utf8Data := "Отчёт за март,https://example.com/march.pdf\n"
	encoded, err := charmap.Windows1251.NewEncoder().Bytes([]byte(utf8Data))
	if err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "legacy.csv", encoded)

	got, err := ReadItems(path, 0)
	if err != nil {
		t.Fatalf("ReadItems() unexpected error: %v", err)
	}

	want := []Item{{URL: "https://example.com/march.pdf", NameHint: "Отчёт за март"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadItems() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadItemsDeduplicates(t *testing.T) {
	t.Parallel()

	csvData := "https://example.com/a.pdf\n" +
		"https://example.com/b.pdf\n" +
		"https://example.com/a.pdf\n"
	path := writeFile(t, "dupes.csv", []byte(csvData))

	got, err := ReadItems(path, -1)
	if err != nil {
		t.Fatalf("ReadItems() unexpected error: %v", err)
	}

	want := []Item{
		{URL: "https://example.com/a.pdf"},
		{URL: "https://example.com/b.pdf"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadItems() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadItemsXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "links.xlsx")
	f := excelize.NewFile()
	if err := f.SetCellValue("Sheet1", "A1", "spring catalog"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("Sheet1", "B1", "https://example.com/catalog.pdf"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("Sheet1", "B2", "download"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellHyperLink("Sheet1", "B2", "https://example.com/hidden.zip", "External"); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := ReadItems(path, 0)
	if err != nil {
		t.Fatalf("ReadItems() unexpected error: %v", err)
	}

	want := []Item{
		{URL: "https://example.com/catalog.pdf", NameHint: "spring catalog"},
		{URL: "https://example.com/hidden.zip"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadItems() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadItemsRejectsXLS(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "legacy.xls", []byte("not really xls"))
	if _, err := ReadItems(path, -1); err == nil {
		t.Error("ReadItems() on .xls expected error, got nil")
	}
}

func TestReadItemsUnknownFormat(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "links.txt", []byte("https://example.com/a.pdf"))
	if _, err := ReadItems(path, -1); err == nil {
		t.Error("ReadItems() on .txt expected error, got nil")
	}
}

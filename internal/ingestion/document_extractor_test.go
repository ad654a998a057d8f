package ingestion

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeMinimalDocx creates a minimal but valid DOCX file with one paragraph
// per given string.
func writeMinimalDocx(t *testing.T, path string, paragraphs ...string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating docx file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)

	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	files := map[string]string{
		"word/document.xml": body.String(),
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}

	for name, content := range files {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("writing zip entry %s: %v", name, err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("closing docx zip: %v", err)
	}
}

// TestExtractTextDOCX tests plain text extraction from a DOCX document.
func TestExtractTextDOCX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.docx")
	writeMinimalDocx(t, path, "Ada Lovelace", "Backend engineer with 6 years of experience")

	text, err := ExtractText(path)
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}

	if !strings.Contains(text, "Ada Lovelace") {
		t.Errorf("extracted text missing first paragraph: %q", text)
	}
	if !strings.Contains(text, "Backend engineer with 6 years of experience") {
		t.Errorf("extracted text missing second paragraph: %q", text)
	}

	// Paragraphs map to separate lines with no whitespace left over from
	// the stripped tags.
	lines := strings.Split(text, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), text)
	}
	if lines[0] != "Ada Lovelace" {
		t.Errorf("first line = %q, want %q", lines[0], "Ada Lovelace")
	}
	if lines[1] != "Backend engineer with 6 years of experience" {
		t.Errorf("second line = %q, want %q", lines[1], "Backend engineer with 6 years of experience")
	}
}

// TestExtractTextUnsupported tests that unsupported extensions yield empty
// text without an error.
func TestExtractTextUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("plain text"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	text, err := ExtractText(path)
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if text != "" {
		t.Errorf("ExtractText() = %q, want empty for unsupported extension", text)
	}
}

// TestExtractTextMissingPDF tests that an unreadable PDF path surfaces an
// error.
func TestExtractTextMissingPDF(t *testing.T) {
	_, err := ExtractText(filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil {
		t.Error("ExtractText() expected error for missing PDF")
	}
}

// TestIsSupportedDocument tests extension matching.
func TestIsSupportedDocument(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		expected bool
	}{
		{name: "PDF", fileName: "resume.pdf", expected: true},
		{name: "Uppercase PDF", fileName: "RESUME.PDF", expected: true},
		{name: "DOCX", fileName: "resume.docx", expected: true},
		{name: "Legacy DOC", fileName: "resume.doc", expected: false},
		{name: "Text", fileName: "resume.txt", expected: false},
		{name: "No extension", fileName: "resume", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSupportedDocument(tt.fileName); got != tt.expected {
				t.Errorf("IsSupportedDocument(%q) = %v, want %v", tt.fileName, got, tt.expected)
			}
		})
	}
}

// TestNormalizeWhitespace tests whitespace collapsing.
func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Space runs", input: "a   b\t\tc", expected: "a b c"},
		{name: "Newline runs", input: "a\n\n\nb", expected: "a\nb"},
		{name: "Trailing spaces before newline", input: "Ada Lovelace \nEngineer", expected: "Ada Lovelace\nEngineer"},
		{name: "Indented continuation line", input: "a\n   b", expected: "a\nb"},
		{name: "Spaces around blank line", input: "a \n \n b", expected: "a\nb"},
		{name: "Non-breaking spaces", input: "a  b", expected: "a b"},
		{name: "Leading and trailing", input: "  a b  \n", expected: "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeWhitespace(tt.input); got != tt.expected {
				t.Errorf("normalizeWhitespace(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

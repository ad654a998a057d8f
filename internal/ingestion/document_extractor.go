package ingestion

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var (
	xmlTags    = regexp.MustCompile(`<[^>]+>`)
	spaceRuns  = regexp.MustCompile(`[ \t\r\f\v]+`)
	lineEdges  = regexp.MustCompile(`[ \t]*\n[ \t]*`)
	newlineRun = regexp.MustCompile(`\n+`)
)

// ExtractText extracts plain text from a PDF or DOCX file. Unsupported
// extensions return an empty string with no error; callers treat empty text
// as "unreadable" and decide whether to skip or abort.
func ExtractText(filePath string) (string, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return extractPDF(filePath)
	case ".docx":
		return extractDOCX(filePath)
	default:
		return "", nil
	}
}

// extractPDF extracts text from all pages of a PDF.
func extractPDF(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF %s: %w", filePath, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text from %s: %w", filePath, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return "", fmt.Errorf("failed to copy PDF text from %s: %w", filePath, err)
	}

	return normalizeWhitespace(buf.String()), nil
}

// extractDOCX extracts paragraph text from a DOCX document. The library
// returns the raw document XML, so paragraph boundaries are turned into
// newlines and remaining tags stripped.
func extractDOCX(filePath string) (string, error) {
	doc, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX %s: %w", filePath, err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = strings.ReplaceAll(content, "<w:tab/>", "\t")
	content = xmlTags.ReplaceAllString(content, " ")

	return normalizeWhitespace(content), nil
}

// IsSupportedDocument reports whether the file extension is one the
// extractor understands.
func IsSupportedDocument(fileName string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	return ext == ".pdf" || ext == ".docx"
}

// normalizeWhitespace collapses whitespace runs while preserving line
// structure. Tag stripping leaves spaces around line breaks, so every line
// is trimmed at both edges.
func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = spaceRuns.ReplaceAllString(s, " ")
	s = lineEdges.ReplaceAllString(s, "\n")
	s = newlineRun.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

package agent

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Cyriloo7/Interviewer/internal/ingestion"
	"github.com/Cyriloo7/Interviewer/internal/models"
)

// fakeExtractor returns a fixed record derived from the resume text, or a
// scripted error.
type fakeExtractor struct {
	err   error
	calls int
}

func (f *fakeExtractor) ExtractResume(_ context.Context, resumeText string) (models.ResumeRecord, error) {
	f.calls++
	if f.err != nil {
		return models.ResumeRecord{}, f.err
	}

	name := strings.SplitN(strings.TrimSpace(resumeText), "\n", 2)[0]
	return models.ResumeRecord{
		Name:            name,
		Summary:         "summary",
		ExperienceYears: 3,
		Skills:          []string{"Go"},
	}, nil
}

// docxBytes builds a minimal valid DOCX with one paragraph per string.
func docxBytes(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

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
			t.Fatalf("creating docx entry %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("writing docx entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing docx: %v", err)
	}

	return buf.Bytes()
}

// TestIngestUploadSingleDocument tests the single-document path end to end
// with a fake model.
func TestIngestUploadSingleDocument(t *testing.T) {
	files := ingestion.NewFileHandler(t.TempDir())
	extractor := &fakeExtractor{}
	a := New(files, extractor, nil)

	doc := docxBytes(t, "Ada Lovelace", "Backend engineer")
	if err := a.IngestUpload(context.Background(), "ada.docx", bytes.NewReader(doc)); err != nil {
		t.Fatalf("IngestUpload() error = %v", err)
	}

	results := a.Results()
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].FileName != "ada.docx" {
		t.Errorf("FileName = %q, want %q", results[0].FileName, "ada.docx")
	}
	if results[0].Name != "Ada Lovelace" {
		t.Errorf("Name = %q, want %q", results[0].Name, "Ada Lovelace")
	}
	if results[0].Skills != "Go" {
		t.Errorf("Skills = %q, want %q", results[0].Skills, "Go")
	}
}

// TestIngestUploadZipArchive tests that a ZIP of documents is unpacked and
// every readable document becomes a row.
func TestIngestUploadZipArchive(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, name := range []string{"ada.docx", "bob.docx"} {
		entry, err := w.Create("batch/" + name)
		if err != nil {
			t.Fatalf("creating zip entry: %v", err)
		}
		if _, err := entry.Write(docxBytes(t, strings.TrimSuffix(name, ".docx"))); err != nil {
			t.Fatalf("writing zip entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}

	files := ingestion.NewFileHandler(t.TempDir())
	a := New(files, &fakeExtractor{}, nil)

	var progressCalls int
	a.SetProgressCallback(func(_, _ int, _ string) { progressCalls++ })

	if err := a.IngestUpload(context.Background(), "batch.zip", &buf); err != nil {
		t.Fatalf("IngestUpload() error = %v", err)
	}

	if got := len(a.Results()); got != 2 {
		t.Errorf("got %d results, want 2", got)
	}
	if progressCalls == 0 {
		t.Error("progress callback was never invoked")
	}
}

// TestIngestUploadUnsupportedType tests that a non-document upload is
// rejected up front.
func TestIngestUploadUnsupportedType(t *testing.T) {
	a := New(ingestion.NewFileHandler(t.TempDir()), &fakeExtractor{}, nil)

	err := a.IngestUpload(context.Background(), "resume.txt", strings.NewReader("text"))
	if err == nil {
		t.Fatal("IngestUpload() expected error for unsupported type")
	}
	if !strings.Contains(err.Error(), "unsupported file type") {
		t.Errorf("error = %v, want unsupported file type", err)
	}
}

// TestProcessStagedSkipsUnreadable tests that corrupt documents are skipped
// with the run still succeeding.
func TestProcessStagedSkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	files := ingestion.NewFileHandler(dir)
	a := New(files, &fakeExtractor{}, nil)

	if err := os.WriteFile(filepath.Join(dir, "ada.docx"), docxBytes(t, "Ada Lovelace"), 0644); err != nil {
		t.Fatalf("writing document: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a pdf"), 0644); err != nil {
		t.Fatalf("writing broken document: %v", err)
	}

	if err := a.ProcessStaged(context.Background()); err != nil {
		t.Fatalf("ProcessStaged() error = %v", err)
	}

	report, err := a.Report()
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if report.Processed != 1 {
		t.Errorf("Processed = %d, want 1", report.Processed)
	}
	if len(report.Skipped) != 1 || report.Skipped[0] != "broken.pdf" {
		t.Errorf("Skipped = %v, want [broken.pdf]", report.Skipped)
	}
}

// TestProcessStagedAllUnreadable tests that a run with zero rows is an
// error.
func TestProcessStagedAllUnreadable(t *testing.T) {
	dir := t.TempDir()
	a := New(ingestion.NewFileHandler(dir), &fakeExtractor{}, nil)

	if err := os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a pdf"), 0644); err != nil {
		t.Fatalf("writing broken document: %v", err)
	}

	err := a.ProcessStaged(context.Background())
	if err == nil {
		t.Fatal("ProcessStaged() expected error when nothing is readable")
	}
	if !strings.Contains(err.Error(), "no resumes were processed") {
		t.Errorf("error = %v, want no resumes were processed", err)
	}
}

// TestProcessStagedModelErrorAborts tests that a model failure stops the
// run instead of silently dropping a candidate.
func TestProcessStagedModelErrorAborts(t *testing.T) {
	dir := t.TempDir()
	extractor := &fakeExtractor{err: errors.New("quota exceeded")}
	a := New(ingestion.NewFileHandler(dir), extractor, nil)

	if err := os.WriteFile(filepath.Join(dir, "ada.docx"), docxBytes(t, "Ada Lovelace"), 0644); err != nil {
		t.Fatalf("writing document: %v", err)
	}

	if err := a.ProcessStaged(context.Background()); err == nil {
		t.Fatal("ProcessStaged() expected error from the extractor")
	}
}

// TestReportBeforeRun tests that asking for a report before any run is an
// error.
func TestReportBeforeRun(t *testing.T) {
	a := New(ingestion.NewFileHandler(t.TempDir()), &fakeExtractor{}, nil)

	if _, err := a.Report(); err == nil {
		t.Fatal("Report() expected error before any extraction")
	}
}

// TestProcessStagedCancellation tests that a canceled context stops the
// loop.
func TestProcessStagedCancellation(t *testing.T) {
	dir := t.TempDir()
	a := New(ingestion.NewFileHandler(dir), &fakeExtractor{}, nil)

	if err := os.WriteFile(filepath.Join(dir, "ada.docx"), docxBytes(t, "Ada Lovelace"), 0644); err != nil {
		t.Fatalf("writing document: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.ProcessStaged(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ProcessStaged() error = %v, want context.Canceled", err)
	}
}

package agent

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Cyriloo7/Interviewer/internal/ingestion"
	"github.com/Cyriloo7/Interviewer/internal/models"
)

// ProgressCallback is called to report progress during processing.
type ProgressCallback func(current, total int, message string)

// ResumeExtractor turns raw resume text into a structured record.
type ResumeExtractor interface {
	ExtractResume(ctx context.Context, resumeText string) (models.ResumeRecord, error)
}

// Agent orchestrates a batch extraction run: stage documents, extract text
// from each, send the text to the model, and collect the table rows.
// Documents are processed strictly one at a time.
type Agent struct {
	files     *ingestion.FileHandler
	extractor ResumeExtractor
	logger    *zap.Logger

	mu         sync.RWMutex
	rows       []models.ExtractionRow
	skipped    []string
	progressCb ProgressCallback
}

// New creates a batch extraction agent.
func New(files *ingestion.FileHandler, extractor ResumeExtractor, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Agent{
		files:     files,
		extractor: extractor,
		logger:    logger,
	}
}

// Files exposes the staging directory handler.
func (a *Agent) Files() *ingestion.FileHandler {
	return a.files
}

// SetProgressCallback sets the progress callback function.
func (a *Agent) SetProgressCallback(cb ProgressCallback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.progressCb = cb
}

// reportProgress calls the progress callback if set.
func (a *Agent) reportProgress(current, total int, message string) {
	a.mu.RLock()
	cb := a.progressCb
	a.mu.RUnlock()

	if cb != nil {
		cb(current, total, message)
	}
}

// IngestUpload resets the staging directory, stages a single document or
// unpacks a ZIP of documents, and processes everything staged.
func (a *Agent) IngestUpload(ctx context.Context, filename string, content io.Reader) error {
	a.reportProgress(0, 100, "Preparing extraction directory...")

	if err := a.files.Reset(); err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(filename), ".zip") {
		archive, err := stageArchive(filename, content)
		if err != nil {
			return err
		}
		defer os.Remove(archive)

		if err := a.files.UnpackZip(archive); err != nil {
			return err
		}
	} else {
		if !ingestion.IsSupportedDocument(filename) {
			return fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
		}
		if _, err := a.files.SaveUpload(filename, content); err != nil {
			return err
		}
	}

	return a.ProcessStaged(ctx)
}

// IngestGmail resets the staging directory, fetches matching attachments
// from Gmail, and processes everything staged.
func (a *Agent) IngestGmail(ctx context.Context, gmail *ingestion.GmailHandler, subject string) error {
	a.reportProgress(0, 100, "Fetching attachments from Gmail...")

	if err := a.files.Reset(); err != nil {
		return err
	}

	if err := gmail.FetchAttachments(ctx, subject); err != nil {
		return fmt.Errorf("failed to fetch Gmail attachments: %w", err)
	}

	return a.ProcessStaged(ctx)
}

// ProcessStaged runs extraction over every staged document. Unreadable
// files are skipped with a warning; a run that yields no rows at all is an
// error.
func (a *Agent) ProcessStaged(ctx context.Context) error {
	documents, err := a.files.ListDocuments()
	if err != nil {
		return err
	}

	if len(documents) == 0 {
		return fmt.Errorf("no documents found in %s", a.files.Dir())
	}

	a.logger.Info("processing documents", zap.Int("count", len(documents)))

	rows := make([]models.ExtractionRow, 0, len(documents))
	var skipped []string

	for i, path := range documents {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		name := filepath.Base(path)
		a.reportProgress(i, len(documents), fmt.Sprintf("Processing %s (%d/%d)", name, i+1, len(documents)))

		text, err := ingestion.ExtractText(path)
		if err != nil {
			a.logger.Warn("skipping document", zap.String("file", name), zap.Error(err))
			skipped = append(skipped, name)
			continue
		}

		if strings.TrimSpace(text) == "" {
			a.logger.Warn("skipping document with no readable text", zap.String("file", name))
			skipped = append(skipped, name)
			continue
		}

		resume, err := a.extractor.ExtractResume(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to extract %s: %w", name, err)
		}

		rows = append(rows, models.NewExtractionRow(name, resume))
	}

	if len(rows) == 0 {
		return fmt.Errorf("no resumes were processed; make sure the upload contains readable PDF or DOCX files")
	}

	a.mu.Lock()
	a.rows = rows
	a.skipped = skipped
	a.mu.Unlock()

	a.reportProgress(len(documents), len(documents), "Extraction complete")

	return nil
}

// Results returns a copy of the current rows.
func (a *Agent) Results() []models.ExtractionRow {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rows := make([]models.ExtractionRow, len(a.rows))
	copy(rows, a.rows)
	return rows
}

// Report returns the batch report for the latest run.
func (a *Agent) Report() (models.BatchReport, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.rows) == 0 {
		return models.BatchReport{}, fmt.Errorf("no results available, run an extraction first")
	}

	rows := make([]models.ExtractionRow, len(a.rows))
	copy(rows, a.rows)

	skipped := make([]string, len(a.skipped))
	copy(skipped, a.skipped)

	return models.BatchReport{
		Rows:      rows,
		Processed: len(rows),
		Skipped:   skipped,
		Timestamp: time.Now().Format(time.RFC3339),
	}, nil
}

// stageArchive spools an uploaded ZIP to a temporary file so it can be
// opened by the zip reader.
func stageArchive(filename string, content io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(filename))
	if err != nil {
		return "", fmt.Errorf("failed to create temp archive: %w", err)
	}

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to spool archive: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temp archive: %w", err)
	}

	return tmp.Name(), nil
}

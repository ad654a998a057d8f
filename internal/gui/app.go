package gui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/Cyriloo7/Interviewer/internal/agent"
	"github.com/Cyriloo7/Interviewer/internal/config"
	"github.com/Cyriloo7/Interviewer/internal/export"
	"github.com/Cyriloo7/Interviewer/internal/ingestion"
	"github.com/Cyriloo7/Interviewer/internal/llm"
	"github.com/Cyriloo7/Interviewer/internal/models"
)

// App represents the desktop extractor application.
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	config     *config.Config
	logger     *zap.Logger
	ctx        context.Context
	cancelFunc context.CancelFunc

	// UI components
	fileLabel     *widget.Label
	selectBtn     *widget.Button
	subjectEntry  *widget.Entry
	gmailBtn      *widget.Button
	processBtn    *widget.Button
	cancelBtn     *widget.Button
	progressBar   *widget.ProgressBar
	progressLabel *widget.Label
	resultsTable  *widget.Table
	exportCSVBtn  *widget.Button
	exportXLSBtn  *widget.Button

	selectedPath string
	results      []models.ExtractionRow
	report       models.BatchReport
}

// NewApp creates the GUI application.
func NewApp(logger *zap.Logger) *App {
	a := app.New()
	w := a.NewWindow("Resume Intelligence Extractor")
	w.Resize(fyne.NewSize(1000, 700))

	guiApp := &App{
		fyneApp:    a,
		mainWindow: w,
		logger:     logger,
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load configuration, using defaults", zap.Error(err))
		cfg = config.DefaultConfig()
	}
	guiApp.config = cfg

	guiApp.setupUI()

	return guiApp
}

// Run starts the GUI application.
func (a *App) Run() {
	a.mainWindow.ShowAndRun()
}

// setupUI initializes all UI components.
func (a *App) setupUI() {
	tabs := container.NewAppTabs(
		container.NewTabItem("Extract Resumes", a.createProcessTab()),
		container.NewTabItem("Settings", a.createSettingsTab()),
	)

	a.mainWindow.SetContent(tabs)
}

// createProcessTab creates the main processing tab.
func (a *App) createProcessTab() fyne.CanvasObject {
	// Upload section
	a.fileLabel = widget.NewLabel("No file selected")
	a.selectBtn = widget.NewButton("Select PDF/DOCX/ZIP...", a.handleSelectFile)

	uploadSection := container.NewVBox(
		widget.NewLabel("Upload"),
		container.NewHBox(a.selectBtn, a.fileLabel),
	)

	// Gmail section
	a.subjectEntry = widget.NewEntry()
	a.subjectEntry.SetPlaceHolder("e.g., Job Application")
	a.gmailBtn = widget.NewButton("Fetch from Gmail", a.handleGmailFetch)

	gmailSection := container.NewVBox(
		widget.NewLabel("Or fetch attachments by email subject"),
		container.NewBorder(nil, nil, nil, a.gmailBtn, a.subjectEntry),
	)

	// Progress section
	a.progressBar = widget.NewProgressBar()
	a.progressLabel = widget.NewLabel("Ready")
	a.processBtn = widget.NewButton("Process Resumes", a.handleProcess)
	a.cancelBtn = widget.NewButton("Cancel", a.handleCancel)
	a.cancelBtn.Disable()

	progressSection := container.NewVBox(
		a.progressLabel,
		a.progressBar,
		container.NewHBox(a.processBtn, a.cancelBtn),
	)

	// Results section
	a.resultsTable = widget.NewTable(
		func() (int, int) {
			return len(a.results) + 1, 5 // +1 for header
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Template")
		},
		func(id widget.TableCellID, cell fyne.CanvasObject) {
			label := cell.(*widget.Label)
			if id.Row == 0 {
				headers := []string{"File", "Name", "Experience (Yrs)", "Skills", "Links"}
				if id.Col < len(headers) {
					label.SetText(headers[id.Col])
					label.TextStyle = fyne.TextStyle{Bold: true}
				}
			} else if id.Row-1 < len(a.results) {
				row := a.results[id.Row-1]
				switch id.Col {
				case 0:
					label.SetText(row.FileName)
				case 1:
					label.SetText(row.Name)
				case 2:
					label.SetText(strconv.Itoa(row.Experience))
				case 3:
					label.SetText(row.Skills)
				case 4:
					label.SetText(row.Links)
				}
			}
		},
	)
	a.resultsTable.SetColumnWidth(0, 180)
	a.resultsTable.SetColumnWidth(1, 160)
	a.resultsTable.SetColumnWidth(2, 120)
	a.resultsTable.SetColumnWidth(3, 260)
	a.resultsTable.SetColumnWidth(4, 220)

	a.exportCSVBtn = widget.NewButton("Export CSV", a.handleExportCSV)
	a.exportCSVBtn.Disable()
	a.exportXLSBtn = widget.NewButton("Export Excel", a.handleExportExcel)
	a.exportXLSBtn.Disable()

	resultsSection := container.NewVBox(
		widget.NewLabel("Results"),
		container.NewScroll(a.resultsTable),
		container.NewHBox(a.exportCSVBtn, a.exportXLSBtn),
	)

	return container.NewVScroll(
		container.NewVBox(
			uploadSection,
			widget.NewSeparator(),
			gmailSection,
			widget.NewSeparator(),
			progressSection,
			widget.NewSeparator(),
			resultsSection,
		),
	)
}

// createSettingsTab creates the settings tab.
func (a *App) createSettingsTab() fyne.CanvasObject {
	modelEntry := widget.NewEntry()
	modelEntry.SetText(a.config.Model)

	extractDirEntry := widget.NewEntry()
	extractDirEntry.SetText(a.config.ExtractDir)

	keyFileEntry := widget.NewEntry()
	keyFileEntry.SetText(a.config.APIKeyFile)

	gmailCredsEntry := widget.NewEntry()
	gmailCredsEntry.SetText(a.config.GmailCredentialsPath)

	keyFileBtn := widget.NewButton("Browse...", func() {
		dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err == nil && uc != nil {
				keyFileEntry.SetText(uc.URI().Path())
				uc.Close()
			}
		}, a.mainWindow)
	})

	gmailCredsBtn := widget.NewButton("Browse...", func() {
		dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err == nil && uc != nil {
				gmailCredsEntry.SetText(uc.URI().Path())
				uc.Close()
			}
		}, a.mainWindow)
	})

	form := widget.NewForm(
		widget.NewFormItem("Gemini Model", modelEntry),
		widget.NewFormItem("Extraction Directory", extractDirEntry),
		widget.NewFormItem("API Key File", container.NewBorder(nil, nil, nil, keyFileBtn, keyFileEntry)),
		widget.NewFormItem("Gmail Credentials", container.NewBorder(nil, nil, nil, gmailCredsBtn, gmailCredsEntry)),
	)

	saveBtn := widget.NewButton("Save Settings", func() {
		a.config.Model = modelEntry.Text
		a.config.ExtractDir = extractDirEntry.Text
		a.config.APIKeyFile = keyFileEntry.Text
		a.config.GmailCredentialsPath = gmailCredsEntry.Text

		if err := a.config.Save(); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}

		dialog.ShowInformation("Success", "Settings saved successfully", a.mainWindow)
	})

	testBtn := widget.NewButton("Validate", func() {
		if err := a.config.Validate(); err != nil {
			dialog.ShowError(fmt.Errorf("validation failed: %w", err), a.mainWindow)
			return
		}
		if _, err := a.config.ResolveAPIKey(); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Configuration is valid", a.mainWindow)
	})

	return container.NewVBox(
		form,
		container.NewHBox(saveBtn, testBtn),
	)
}

// handleSelectFile lets the user pick a document or archive to process.
func (a *App) handleSelectFile() {
	dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
		if err != nil || uc == nil {
			return
		}
		defer uc.Close()

		a.selectedPath = uc.URI().Path()
		a.fileLabel.SetText(a.selectedPath)
	}, a.mainWindow)
}

// newAgent builds the extraction pipeline for one run.
func (a *App) newAgent(ctx context.Context) (*agent.Agent, *llm.GeminiClient, error) {
	apiKey, err := a.config.ResolveAPIKey()
	if err != nil {
		return nil, nil, err
	}

	client, err := llm.NewGeminiClient(ctx, apiKey, a.config.Model, a.config.Temperature)
	if err != nil {
		return nil, nil, err
	}

	files := ingestion.NewFileHandler(a.config.ExtractDir)
	batch := agent.New(files, client, a.logger)

	batch.SetProgressCallback(func(current, total int, message string) {
		fyne.Do(func() {
			if total > 0 {
				a.progressBar.SetValue(float64(current) / float64(total))
			}
			a.progressLabel.SetText(message)
		})
	})

	return batch, client, nil
}

// handleProcess processes the selected document or archive.
func (a *App) handleProcess() {
	if a.selectedPath == "" {
		dialog.ShowError(fmt.Errorf("please select a PDF, DOCX, or ZIP file first"), a.mainWindow)
		return
	}

	a.runBatch(func(ctx context.Context, batch *agent.Agent) error {
		file, err := os.Open(a.selectedPath)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", a.selectedPath, err)
		}
		defer file.Close()

		return batch.IngestUpload(ctx, a.selectedPath, file)
	})
}

// handleGmailFetch fetches attachments matching the subject filter and
// processes them.
func (a *App) handleGmailFetch() {
	subject := a.subjectEntry.Text
	if subject == "" {
		dialog.ShowError(fmt.Errorf("please enter an email subject filter"), a.mainWindow)
		return
	}

	a.runBatch(func(ctx context.Context, batch *agent.Agent) error {
		gmail, err := ingestion.NewGmailHandler(a.config.GmailCredentialsPath, batch.Files(), a.logger)
		if err != nil {
			return err
		}
		return batch.IngestGmail(ctx, gmail, subject)
	})
}

// runBatch executes one extraction run in the background and refreshes the
// UI when it finishes.
func (a *App) runBatch(ingest func(context.Context, *agent.Agent) error) {
	a.processBtn.Disable()
	a.gmailBtn.Disable()
	a.cancelBtn.Enable()
	a.exportCSVBtn.Disable()
	a.exportXLSBtn.Disable()

	a.ctx, a.cancelFunc = context.WithCancel(context.Background())

	go func() {
		batch, client, err := a.newAgent(a.ctx)
		if err == nil {
			defer client.Close()
			err = ingest(a.ctx, batch)
		}

		var report models.BatchReport
		if err == nil {
			report, err = batch.Report()
		}

		// All UI updates must happen on the main thread.
		fyne.Do(func() {
			a.processBtn.Enable()
			a.gmailBtn.Enable()
			a.cancelBtn.Disable()

			if err != nil {
				if err == context.Canceled {
					a.progressLabel.SetText("Processing canceled")
				} else {
					a.progressLabel.SetText("Error: " + err.Error())
					dialog.ShowError(err, a.mainWindow)
				}
				return
			}

			a.report = report
			a.results = report.Rows
			a.resultsTable.Refresh()
			a.exportCSVBtn.Enable()
			a.exportXLSBtn.Enable()

			a.progressLabel.SetText(fmt.Sprintf("Complete! Extracted %d resumes", len(a.results)))

			fyne.CurrentApp().SendNotification(&fyne.Notification{
				Title:   "Extraction Complete",
				Content: fmt.Sprintf("Successfully extracted %d resumes", len(a.results)),
			})
		})
	}()
}

// handleCancel handles cancellation of processing.
func (a *App) handleCancel() {
	if a.cancelFunc != nil {
		a.cancelFunc()
		a.progressLabel.SetText("Canceling...")
	}
}

// handleExportCSV saves the results as CSV.
func (a *App) handleExportCSV() {
	a.saveExport("csv", func(uc fyne.URIWriteCloser) error {
		return export.WriteCSV(uc, a.results)
	})
}

// handleExportExcel saves the results as an Excel workbook.
func (a *App) handleExportExcel() {
	a.saveExport("xlsx", func(uc fyne.URIWriteCloser) error {
		return export.WriteExcel(uc, a.report)
	})
}

// saveExport shows a save dialog and writes the chosen export format.
func (a *App) saveExport(ext string, write func(fyne.URIWriteCloser) error) {
	if len(a.results) == 0 {
		dialog.ShowError(fmt.Errorf("no results to export"), a.mainWindow)
		return
	}

	timestamp := time.Now().Format("2006-01-02_150405")
	defaultName := fmt.Sprintf("extracted_resumes_%s.%s", timestamp, ext)

	saveDialog := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		defer uc.Close()

		if err := write(uc); err != nil {
			dialog.ShowError(fmt.Errorf("failed to export: %w", err), a.mainWindow)
			return
		}

		dialog.ShowInformation("Success", "Results exported successfully", a.mainWindow)
	}, a.mainWindow)
	saveDialog.SetFileName(defaultName)
	saveDialog.Show()
}

package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Cyriloo7/Interviewer/internal/agent"
	"github.com/Cyriloo7/Interviewer/internal/api"
	"github.com/Cyriloo7/Interviewer/internal/ingestion"
	"github.com/Cyriloo7/Interviewer/internal/llm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP resume extraction service",
	Long: "Serves an HTTP API that accepts resume uploads (PDF, DOCX, or ZIP), " +
		"extracts structured data from each document, and exports the results as CSV or Excel.",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "", "port to listen on (default from config)")
	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

// serve starts the extraction HTTP server.
func serve(_ *cobra.Command) {
	ctx := context.Background()
	logger := newLogger()
	defer logger.Sync()

	cfg, err := getConfig()
	if err != nil {
		logger.Fatal("loading config", zap.Error(err))
	}

	if port := viper.GetString("port"); port != "" {
		cfg.Port = port
	}

	apiKey, err := cfg.ResolveAPIKey()
	if err != nil {
		logger.Fatal("resolving API key", zap.Error(err))
	}

	client, err := llm.NewGeminiClient(ctx, apiKey, cfg.Model, cfg.Temperature)
	if err != nil {
		logger.Fatal("creating Gemini client", zap.Error(err))
	}
	defer client.Close()

	files := ingestion.NewFileHandler(cfg.ExtractDir)
	batch := agent.New(files, client, logger)
	server := api.NewServer(batch, logger)

	addr := ":" + cfg.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting the extraction server",
		zap.String("addr", addr),
		zap.String("model", client.Model()),
		zap.String("version", version),
	)

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

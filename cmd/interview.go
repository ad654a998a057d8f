package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Cyriloo7/Interviewer/internal/ingestion"
	"github.com/Cyriloo7/Interviewer/internal/interview"
	"github.com/Cyriloo7/Interviewer/internal/llm"
)

var interviewCmd = &cobra.Command{
	Use:   "interview [resume-file]",
	Short: "Run an interactive technical interview based on a resume",
	Long: "Extracts structured data from a PDF or DOCX resume, generates technical " +
		"questions from it, and conducts a question-and-answer interview in the terminal.",
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runInterview(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().IntP("questions", "q", 0, "number of interview questions to generate (default from config)")
}

// runInterview is the interactive interview command.
func runInterview(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	logger := newLogger()
	defer logger.Sync()

	cfg, err := getConfig()
	if err != nil {
		logger.Fatal("loading config", zap.Error(err))
	}

	resumePath, err := resolveResumePath(args)
	if err != nil {
		logger.Fatal("resolving resume path", zap.Error(err))
	}

	if _, err := os.Stat(resumePath); err != nil {
		logger.Fatal("resume file not found", zap.String("path", resumePath), zap.Error(err))
	}

	text, err := ingestion.ExtractText(resumePath)
	if err != nil {
		logger.Fatal("reading resume", zap.String("path", resumePath), zap.Error(err))
	}
	if strings.TrimSpace(text) == "" {
		logger.Fatal("no readable text found in the resume", zap.String("path", resumePath))
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

	fmt.Println("Analyzing resume...")

	resume, err := client.ExtractResume(ctx, text)
	if err != nil {
		logger.Fatal("extracting resume", zap.Error(err))
	}

	opts := interview.DefaultOptions()
	opts.MaxFollowUps = cfg.MaxFollowUps
	if n, _ := cmd.Flags().GetInt("questions"); n > 0 {
		opts.QuestionCount = n
	}
	if cfg.MaxQuestions > 0 && opts.QuestionCount > cfg.MaxQuestions {
		opts.QuestionCount = cfg.MaxQuestions
	}

	session := interview.NewSession(client, resume, logger, opts)

	first, err := session.Start(ctx)
	if err != nil {
		logger.Fatal("starting interview", zap.Error(err))
	}

	fmt.Printf("\nInterviewing: %s\n\n", resume.Name)
	fmt.Println(first)

	answerPrompt := promptui.Prompt{Label: "Your answer"}

	for session.State() != interview.StateComplete {
		answer, err := answerPrompt.Run()
		if err != nil {
			logger.Fatal("reading answer", zap.Error(err))
		}

		turn, err := session.Submit(ctx, answer)
		if err != nil {
			logger.Fatal("evaluating answer", zap.Error(err))
		}

		fmt.Println()
		fmt.Println(turn.Message)
	}

	printAnalysis(session)
}

// resolveResumePath takes the path from the positional argument or asks for it.
func resolveResumePath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	prompt := promptui.Prompt{Label: "Path to resume (PDF or DOCX)"}
	return prompt.Run()
}

// printAnalysis prints the deduplicated strengths and weaknesses gathered
// during the interview.
func printAnalysis(session *interview.Session) {
	fmt.Println("\n=== FINAL ANALYSIS ===")

	fmt.Println("Strengths:")
	for _, s := range dedupe(session.Strengths()) {
		fmt.Printf("- %s\n", s)
	}

	fmt.Println("Weaknesses:")
	for _, w := range dedupe(session.Weaknesses()) {
		fmt.Printf("- %s\n", w)
	}
}

// dedupe removes duplicates while keeping first-seen order.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

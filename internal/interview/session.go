package interview

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Cyriloo7/Interviewer/internal/llm"
	"github.com/Cyriloo7/Interviewer/internal/logger"
	"github.com/Cyriloo7/Interviewer/internal/models"
)

// CompleteMessage is the terminal message emitted when the question list is
// exhausted.
const CompleteMessage = "Interview complete."

// debugLogLimit caps prompt/response previews in debug logs.
const debugLogLimit = 200

// State is the lifecycle phase of a session.
type State int

const (
	// StateAwaitingFirstQuestion is the initial state, before Start.
	StateAwaitingFirstQuestion State = iota
	// StateAwaitingAnswer means a question is outstanding.
	StateAwaitingAnswer
	// StateComplete is terminal.
	StateComplete
)

// TurnKind classifies the message a Submit call produced.
type TurnKind int

const (
	// TurnQuestion advances to the next main question.
	TurnQuestion TurnKind = iota
	// TurnFollowUp injects a probing question without consuming a slot in
	// the main question sequence.
	TurnFollowUp
	// TurnComplete ends the interview.
	TurnComplete
)

// Turn is the outcome of evaluating one candidate answer.
type Turn struct {
	Kind     TurnKind
	Message  string
	Strength string
	Weakness string
}

// Options tunes a session.
type Options struct {
	// QuestionCount is how many main questions to request from the model.
	QuestionCount int
	// MaxFollowUps caps consecutive follow-ups on a single main question,
	// so a weak answer cannot trap the candidate on question one forever.
	MaxFollowUps int
}

// DefaultOptions returns the standard interview shape.
func DefaultOptions() Options {
	return Options{QuestionCount: 2, MaxFollowUps: 2}
}

// Session drives one scripted interview for one candidate. It is owned by a
// single goroutine; all state is mutated in place and discarded at process
// exit.
type Session struct {
	generator llm.Generator
	logger    *zap.Logger
	opts      Options

	resume     models.ResumeRecord
	questions  []string
	index      int
	answers    []string
	strengths  []string
	weaknesses []string
	transcript []models.Message

	followUps int
	state     State
}

// NewSession creates a session over an already extracted resume record.
func NewSession(generator llm.Generator, resume models.ResumeRecord, log *zap.Logger, opts Options) *Session {
	if opts.QuestionCount <= 0 {
		opts.QuestionCount = DefaultOptions().QuestionCount
	}
	if opts.MaxFollowUps < 0 {
		opts.MaxFollowUps = 0
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Session{
		generator: generator,
		logger:    log,
		opts:      opts,
		resume:    resume,
	}
}

// Start generates the question list from the resume and returns the first
// question. A model response with zero parsable questions is an error, not a
// panic downstream.
func (s *Session) Start(ctx context.Context) (string, error) {
	if s.state != StateAwaitingFirstQuestion {
		return "", fmt.Errorf("interview already started")
	}

	prompt := s.buildQuestionPrompt()
	s.logger.Debug("question generation request",
		zap.String("prompt_preview", logger.TruncateForLog(prompt, debugLogLimit)))

	response, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate questions: %w", err)
	}

	questions := parseQuestions(response)
	if len(questions) == 0 {
		return "", fmt.Errorf("model returned no parsable questions")
	}

	s.questions = questions
	s.index = 0
	s.answers = nil
	s.strengths = nil
	s.weaknesses = nil
	s.transcript = nil
	s.followUps = 0
	s.state = StateAwaitingAnswer

	first := s.questions[0]
	s.transcript = append(s.transcript, models.Message{Role: models.RoleInterviewer, Content: first})

	s.logger.Info("interview started",
		zap.String("candidate", s.resume.Name),
		zap.Int("questions", len(s.questions)),
	)

	return first, nil
}

// Submit records the candidate's answer to the outstanding question,
// evaluates it, and returns the next turn. The question index never
// decreases; a follow-up turn leaves it untouched.
func (s *Session) Submit(ctx context.Context, answer string) (Turn, error) {
	if s.state != StateAwaitingAnswer {
		return Turn{}, fmt.Errorf("no question is awaiting an answer")
	}

	s.answers = append(s.answers, answer)
	s.transcript = append(s.transcript, models.Message{Role: models.RoleCandidate, Content: answer})

	prompt := s.buildEvaluationPrompt(answer)
	response, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return Turn{}, fmt.Errorf("failed to evaluate answer: %w", err)
	}

	s.logger.Debug("evaluation response",
		zap.Int("question_index", s.index),
		zap.String("response_preview", logger.TruncateForLog(response, debugLogLimit)),
	)

	eval := parseEvaluation(response)

	// Duplicates are kept here; display layers de-duplicate.
	if eval.Strength != "" {
		s.strengths = append(s.strengths, eval.Strength)
	}
	if eval.Weakness != "" {
		s.weaknesses = append(s.weaknesses, eval.Weakness)
	}

	turn := Turn{Strength: eval.Strength, Weakness: eval.Weakness}

	if eval.FollowUp && s.followUps < s.opts.MaxFollowUps {
		question, err := s.generateFollowUp(ctx, answer)
		if err != nil {
			return Turn{}, err
		}

		s.followUps++
		turn.Kind = TurnFollowUp
		turn.Message = question
		s.transcript = append(s.transcript, models.Message{Role: models.RoleInterviewer, Content: question})
		return turn, nil
	}

	s.index++
	s.followUps = 0

	if s.index >= len(s.questions) {
		s.state = StateComplete
		turn.Kind = TurnComplete
		turn.Message = CompleteMessage
		s.transcript = append(s.transcript, models.Message{Role: models.RoleInterviewer, Content: CompleteMessage})
		return turn, nil
	}

	turn.Kind = TurnQuestion
	turn.Message = s.questions[s.index]
	s.transcript = append(s.transcript, models.Message{Role: models.RoleInterviewer, Content: turn.Message})
	return turn, nil
}

// generateFollowUp asks the model for exactly one probing question about the
// candidate's last answer.
func (s *Session) generateFollowUp(ctx context.Context, lastAnswer string) (string, error) {
	prompt := s.buildFollowUpPrompt(lastAnswer)

	response, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate follow-up: %w", err)
	}

	question := strings.TrimSpace(response)
	if question == "" {
		return "", fmt.Errorf("model returned empty follow-up question")
	}

	return question, nil
}

// buildQuestionPrompt embeds the resume fields into the question generation
// prompt.
func (s *Session) buildQuestionPrompt() string {
	var sb strings.Builder

	sb.WriteString("Based on this resume:\n\n")
	sb.WriteString(fmt.Sprintf("Name: %s\n", s.resume.Name))
	sb.WriteString(fmt.Sprintf("Experience: %d years\n", s.resume.ExperienceYears))
	sb.WriteString(fmt.Sprintf("Skills: %s\n", strings.Join(s.resume.Skills, ", ")))
	sb.WriteString(fmt.Sprintf("Projects: %s\n", strings.Join(s.resume.Projects, ", ")))
	sb.WriteString(fmt.Sprintf("Summary: %s\n\n", s.resume.Summary))
	sb.WriteString(fmt.Sprintf("Generate %d deep technical interview questions.\n", s.opts.QuestionCount))
	sb.WriteString("Make them personalized and implementation-focused.\n")
	sb.WriteString("Return only numbered questions.\n")

	return sb.String()
}

// buildEvaluationPrompt asks for a structured verdict on the latest answer.
// The JSON contract replaces the older labeled-line format, which the parser
// still accepts as a fallback.
func (s *Session) buildEvaluationPrompt(answer string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Interview Question: %s\n", s.questions[s.index]))
	sb.WriteString(fmt.Sprintf("Candidate Answer: %s\n\n", answer))
	sb.WriteString("1. Does the answer show strong technical clarity? (yes/no)\n")
	sb.WriteString("2. Is there any conceptual mistake or weak explanation?\n")
	sb.WriteString("3. Should we ask a follow-up? (yes/no)\n\n")
	sb.WriteString("Also extract:\n")
	sb.WriteString("- One strength if present\n")
	sb.WriteString("- One weakness if present\n\n")
	sb.WriteString("Respond with ONLY a JSON object in this format:\n")
	sb.WriteString("{\n")
	sb.WriteString(`  "clarity": <true|false>,` + "\n")
	sb.WriteString(`  "mistake": "<conceptual mistake or empty>",` + "\n")
	sb.WriteString(`  "followup": <true|false>,` + "\n")
	sb.WriteString(`  "strength": "<one strength or empty>",` + "\n")
	sb.WriteString(`  "weakness": "<one weakness or empty>"` + "\n")
	sb.WriteString("}\n")

	return sb.String()
}

// buildFollowUpPrompt quotes the candidate's last answer and requests one
// probing question.
func (s *Session) buildFollowUpPrompt(lastAnswer string) string {
	var sb strings.Builder

	sb.WriteString("The candidate answered:\n")
	sb.WriteString(fmt.Sprintf("%q\n\n", lastAnswer))
	sb.WriteString("There was a weakness or unclear explanation.\n")
	sb.WriteString("Ask ONE probing follow-up question to test their understanding deeper.\n")
	sb.WriteString("Return only the question text.\n")

	return sb.String()
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	return s.state
}

// Questions returns the generated main questions.
func (s *Session) Questions() []string {
	return append([]string(nil), s.questions...)
}

// CurrentIndex returns the index of the outstanding main question.
func (s *Session) CurrentIndex() int {
	return s.index
}

// Strengths returns the extracted strengths in append order, duplicates
// included.
func (s *Session) Strengths() []string {
	return append([]string(nil), s.strengths...)
}

// Weaknesses returns the extracted weaknesses in append order, duplicates
// included.
func (s *Session) Weaknesses() []string {
	return append([]string(nil), s.weaknesses...)
}

// Transcript returns the dialogue so far.
func (s *Session) Transcript() []models.Message {
	return append([]models.Message(nil), s.transcript...)
}

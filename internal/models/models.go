package models

import "strings"

// ResumeRecord is the structured view of one resume, produced once by the
// LLM structured extractor and read-only afterwards.
type ResumeRecord struct {
	Name            string   `json:"name"`
	Summary         string   `json:"summary"`
	ExperienceYears int      `json:"experience_years"`
	Skills          []string `json:"skills"`
	Links           []string `json:"links"`
	Projects        []string `json:"projects"`
}

// ExtractionRow is one row of the batch extraction table, matching the
// columns of the CSV export.
type ExtractionRow struct {
	FileName   string `json:"file_name"`
	Name       string `json:"name"`
	Summary    string `json:"summary"`
	Experience int    `json:"experience_years"`
	Skills     string `json:"skills"`
	Links      string `json:"links"`
}

// NewExtractionRow flattens a resume record into a table row. Skills and
// links are joined with ", " the way they appear in the export.
func NewExtractionRow(fileName string, resume ResumeRecord) ExtractionRow {
	return ExtractionRow{
		FileName:   fileName,
		Name:       resume.Name,
		Summary:    resume.Summary,
		Experience: resume.ExperienceYears,
		Skills:     strings.Join(resume.Skills, ", "),
		Links:      strings.Join(resume.Links, ", "),
	}
}

// BatchReport is the response returned after a batch extraction run.
type BatchReport struct {
	Rows      []ExtractionRow `json:"rows"`
	Processed int             `json:"processed"`
	Skipped   []string        `json:"skipped,omitempty"`
	Timestamp string          `json:"timestamp"`
}

// Role identifies the author of a transcript message.
type Role string

const (
	RoleInterviewer Role = "interviewer"
	RoleCandidate   Role = "candidate"
)

// Message is one entry in the interview transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

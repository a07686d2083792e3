package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Reminder closes every user message.
const Reminder = "Please respond in valid JSON format according to the given template."

const DefaultSystemPrompt = `You are tasked with extracting and organizing personal, academic, and employment information from candidate resumes. Your goal is to identify relevant details and categorize them into sections such as personal information, educational background, skills, and employment history.
Give all dates in dd/MM/yyyy format, especially the StartDate and EndDate fields of Academics and WorkExperience.
In dates, if just year is mentioned then consider it to be the last day of the year in EndDate and first day of the year in StartDate.
In dates, if year and month is mentioned then consider it to be the last day of that month in EndDate and first day of that month in StartDate.
Stick to the given json template only.
Provide the output as valid JSON. Do not include any markdown formatting, such as triple backticks or other extra characters. Respond with only the JSON content.`

const DefaultUserPrompt = "User is requesting to extract the following details from the resume text:"

// DefaultSkeleton is the resume template. Key order is kept as written.
const DefaultSkeleton = `{
  "City": "",
  "PersonalDetails": {
    "Name": {"FirstName": "", "LastName": "", "MiddleName": "", "FullName": "", "TitleName": ""},
    "DateOfBirth": "",
    "Mobile": [],
    "Email": [],
    "Nationality": ""
  },
  "Academics": [
    {"Degree": "", "Branch": "", "StartDate": "", "EndDate": "", "Institute": "", "Score": ""}
  ],
  "CurrentEmployer": "",
  "CurrentSalary": "",
  "ExpectedSalary": "",
  "WorkedPeriod": {"TotalExperienceInMonths": "", "TotalExperienceInYear": "", "TotalExperienceRange": ""},
  "Skills": [],
  "WorkExperience": [
    {"Organization": "", "StartDate": "", "EndDate": "", "Designation": ""}
  ]
}`

// DefaultPrompt returns the built-in resume prompt.
func DefaultPrompt() Prompt {
	return Prompt{
		System:   DefaultSystemPrompt,
		User:     DefaultUserPrompt,
		Skeleton: []byte(DefaultSkeleton),
	}
}

// LoadPrompt builds a Prompt from optional override files; empty paths keep the defaults.
func LoadPrompt(systemPath, skeletonPath string) (Prompt, error) {
	p := DefaultPrompt()
	if systemPath != "" {
		b, err := os.ReadFile(systemPath)
		if err != nil {
			return Prompt{}, fmt.Errorf("read system prompt: %w", err)
		}
		p.System = strings.TrimSpace(string(b))
	}
	if skeletonPath != "" {
		b, err := os.ReadFile(skeletonPath)
		if err != nil {
			return Prompt{}, fmt.Errorf("read skeleton: %w", err)
		}
		if !json.Valid(b) {
			return Prompt{}, fmt.Errorf("skeleton %s is not valid JSON", skeletonPath)
		}
		p.Skeleton = b
	}
	return p, nil
}

// CompactSkeleton returns the skeleton on one line with key order preserved.
func (p Prompt) CompactSkeleton() string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, p.Skeleton); err != nil {
		return string(p.Skeleton)
	}
	return buf.String()
}

// BuildUserMessage lays out the text part of the user message:
// user prompt, skeleton, document text (if any), reminder.
func BuildUserMessage(p Prompt, text string) string {
	var b strings.Builder
	b.WriteString(p.User)
	b.WriteString("\n")
	b.WriteString(p.CompactSkeleton())
	b.WriteString("\n")
	if text != "" {
		b.WriteString(text)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(Reminder)
	return b.String()
}

package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/pavelanni/selftest/internal/model"
)

//go:embed templates/*.txt
var templateFS embed.FS

var (
	studentAnswerRegex      = regexp.MustCompile(`(?i)</?\s*student-answer\b[^>]*>`)
	systemInstructionsRegex = regexp.MustCompile(`(?i)</?\s*system-instructions\b[^>]*>`)
)

const maxAnswerRunes = 2000

// PromptVariant selects the style of a drafted explanation.
type PromptVariant string

const (
	// PromptConcise asks for one or two sentences.
	PromptConcise PromptVariant = "concise"
	// PromptStandard is the default explanation style.
	PromptStandard PromptVariant = "standard"
	// PromptDetailed walks through every choice.
	PromptDetailed PromptVariant = "detailed"
)

var variants = []PromptVariant{PromptConcise, PromptStandard, PromptDetailed}

var (
	mu        sync.RWMutex
	templates map[PromptVariant]*template.Template
)

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	for _, known := range variants {
		if PromptVariant(v) == known {
			return true
		}
	}
	return false
}

// ChoiceLine is one choice as shown to the model.
type ChoiceLine struct {
	Label   string
	Text    string
	Correct bool
}

// ExplainData holds template data for explanation prompts.
type ExplainData struct {
	ExamTitle    string
	QuestionText string
	Type         model.QuestionType
	Choices      []ChoiceLine
	Answer       string
	Current      string
}

// LoadDefault loads the built-in templates.
func LoadDefault() error {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return err
	}
	return Load(sub)
}

// Load parses explain_<variant>.txt for every variant from fsys. It may be
// called again to replace the templates.
func Load(fsys fs.FS) error {
	loaded := make(map[PromptVariant]*template.Template, len(variants))
	for _, v := range variants {
		name := "explain_" + string(v) + ".txt"
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read prompt file %s: %w", name, err)
		}
		tmpl, err := template.New(name).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse prompt template %s: %w", name, err)
		}
		loaded[v] = tmpl
	}
	mu.Lock()
	templates = loaded
	mu.Unlock()
	return nil
}

// BuildExplainPrompt builds the prompt asking for an explanation of
// question q of exam. answer describes what the user submitted.
func BuildExplainPrompt(variant PromptVariant, exam model.Exam, q int, answer string) (string, error) {
	mu.RLock()
	tmpl, ok := templates[variant]
	loaded := templates != nil
	mu.RUnlock()
	if !loaded {
		return "", errors.New("templates not initialized: call Load first")
	}
	if !ok {
		return "", errors.New("invalid prompt variant: " + string(variant))
	}
	if q < 0 || q >= len(exam.Test) {
		return "", fmt.Errorf("exam %s has no question %d", exam.Filename, q)
	}
	question := exam.Test[q]

	data := ExplainData{
		ExamTitle:    exam.Title,
		QuestionText: question.Text,
		Type:         question.Type,
		Answer:       sanitizeAnswer(answer),
		Current:      question.Explanation,
	}
	for i, c := range question.Choices {
		label := c.Label
		if label == "" {
			label = string(rune('A' + i%26))
		}
		data.Choices = append(data.Choices, ChoiceLine{Label: label, Text: c.Text, Correct: c.Correct})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sanitizeAnswer(answer string) string {
	answer = studentAnswerRegex.ReplaceAllString(answer, "")
	answer = systemInstructionsRegex.ReplaceAllString(answer, "")
	answer = strings.TrimSpace(answer)

	if answer == "" {
		return "[No answer provided]"
	}

	if utf8.RuneCountInString(answer) > maxAnswerRunes {
		runes := []rune(answer)
		answer = string(runes[:maxAnswerRunes]) + "\n\n[Answer truncated due to length]"
	}
	return answer
}

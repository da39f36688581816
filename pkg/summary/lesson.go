package summary

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/akeil/coursedoc"
)

// A Lesson is the structured summary of a source text.
type Lesson struct {
	Title        string    `json:"title"`
	Introduction string    `json:"introduction"`
	MainConcepts []Concept `json:"mainConcepts"`
	Conclusion   string    `json:"conclusion"`
}

// A Concept is one part of a lesson.
type Concept struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	KeyPoints []string `json:"keyPoints"`
}

// Validate checks that all fields are present.
func (l *Lesson) Validate() error {
	if strings.TrimSpace(l.Title) == "" {
		return coursedoc.NewValidationError("title is missing")
	}
	if strings.TrimSpace(l.Introduction) == "" {
		return coursedoc.NewValidationError("introduction is missing")
	}
	if len(l.MainConcepts) == 0 {
		return coursedoc.NewValidationError("main concepts are missing")
	}
	for i, c := range l.MainConcepts {
		err := c.Validate()
		if err != nil {
			return coursedoc.Wrap(err, "concept %d", i+1)
		}
	}
	if strings.TrimSpace(l.Conclusion) == "" {
		return coursedoc.NewValidationError("conclusion is missing")
	}
	return nil
}

// Validate checks that all fields are present.
func (c *Concept) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return coursedoc.NewValidationError("title is missing")
	}
	if strings.TrimSpace(c.Content) == "" {
		return coursedoc.NewValidationError("content is missing")
	}
	if len(c.KeyPoints) == 0 {
		return coursedoc.NewValidationError("key points are missing")
	}
	return nil
}

// Section turns the concept into a text section.
// Key points are appended to the content as a bullet list.
func (c *Concept) Section() coursedoc.Section {
	var sb strings.Builder
	sb.WriteString(c.Content)
	if len(c.KeyPoints) > 0 {
		sb.WriteString("\n")
	}
	for _, p := range c.KeyPoints {
		sb.WriteString("\n• ")
		sb.WriteString(p)
	}
	return coursedoc.NewText(c.Title, sb.String())
}

// Sections maps the lesson to text sections: introduction, one section
// per concept and the conclusion.
func (l *Lesson) Sections() []coursedoc.Section {
	sections := make([]coursedoc.Section, 0, len(l.MainConcepts)+2)
	sections = append(sections, coursedoc.NewText("Introduction", l.Introduction))
	for _, c := range l.MainConcepts {
		sections = append(sections, c.Section())
	}
	sections = append(sections, coursedoc.NewText("Conclusion", l.Conclusion))
	return sections
}

// ParseLesson decodes and validates a lesson from a model response.
//
// Anything that does not match the expected structure is rejected with a
// ValidationError.
func ParseLesson(content string) (*Lesson, error) {
	var l Lesson
	err := decodeStrict(content, &l)
	if err != nil {
		return nil, err
	}
	err = l.Validate()
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ParseConcept decodes and validates a single concept.
func ParseConcept(content string) (*Concept, error) {
	var c Concept
	err := decodeStrict(content, &c)
	if err != nil {
		return nil, err
	}
	err = c.Validate()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func decodeStrict(content string, dst interface{}) error {
	content = trimFence(content)
	if content == "" {
		return coursedoc.NewValidationError("empty response")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	err := dec.Decode(dst)
	if err != nil {
		return coursedoc.NewValidationError("invalid response format: %v", err)
	}
	if dec.More() {
		return coursedoc.NewValidationError("invalid response format: trailing data")
	}
	return nil
}

// trimFence removes a markdown code fence around a JSON response.
func trimFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

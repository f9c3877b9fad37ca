package domain

import (
	"encoding/json"
	"fmt"
)

// ModuleType discriminates the module content variants.
type ModuleType string

const (
	ModuleVideo ModuleType = "video"
	ModuleText  ModuleType = "text"
	ModuleQuiz  ModuleType = "quiz"
)

// ModuleContent is implemented by VideoContent, TextContent and QuizContent.
type ModuleContent interface {
	ModuleType() ModuleType
	validate() error
}

// Module is an atomic unit of course content. On the wire it is
// {"id", "type", "title", "content"} with content shaped by type.
type Module struct {
	ID      string        `json:"id" validate:"required"`
	Type    ModuleType    `json:"type" validate:"required,oneof=video text quiz"`
	Title   string        `json:"title" validate:"required"`
	Content ModuleContent `json:"-" validate:"-"`
}

// VideoContent points at an externally hosted video.
type VideoContent struct {
	URL      string `json:"url" validate:"required,url"`
	Duration string `json:"duration,omitempty"`
}

func (VideoContent) ModuleType() ModuleType { return ModuleVideo }
func (c VideoContent) validate() error      { return ValidateStruct(c) }

// TextContent is an inline reading.
type TextContent struct {
	Body string `json:"body" validate:"required"`
}

func (TextContent) ModuleType() ModuleType { return ModuleText }
func (c TextContent) validate() error      { return ValidateStruct(c) }

// QuizContent holds the question bank of a quiz module.
type QuizContent struct {
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
}

func (QuizContent) ModuleType() ModuleType { return ModuleQuiz }

func (c QuizContent) validate() error {
	verr := &ValidationError{}
	if err := ValidateStruct(c); err != nil {
		ve, ok := err.(*ValidationError)
		if !ok {
			return err
		}
		for k, v := range ve.Fields {
			verr.Add(k, v)
		}
	}
	seen := make(map[string]struct{}, len(c.Questions))
	for i, q := range c.Questions {
		if _, dup := seen[q.ID]; dup && q.ID != "" {
			verr.Add(fmt.Sprintf("questions[%d].id", i), "must be unique within the quiz")
		}
		seen[q.ID] = struct{}{}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			verr.Add(fmt.Sprintf("questions[%d].correctAnswer", i), "must index an option")
		}
	}
	return verr.OrNil()
}

// Question is a single-answer multiple-choice question. CorrectAnswer
// indexes Options.
type Question struct {
	ID            string   `json:"id" validate:"required"`
	Prompt        string   `json:"question" validate:"required"`
	Type          string   `json:"type,omitempty"`
	Options       []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectAnswer int      `json:"correctAnswer"`
}

type moduleWire struct {
	ID      string          `json:"id"`
	Type    ModuleType      `json:"type"`
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON writes the module with its content under "content".
func (m Module) MarshalJSON() ([]byte, error) {
	var content json.RawMessage = []byte("{}")
	if m.Content != nil {
		raw, err := json.Marshal(m.Content)
		if err != nil {
			return nil, err
		}
		content = raw
	}
	return json.Marshal(moduleWire{ID: m.ID, Type: m.Type, Title: m.Title, Content: content})
}

// UnmarshalJSON decodes content into the variant selected by "type".
// Unknown types keep a nil Content and are rejected by Course.Validate.
func (m *Module) UnmarshalJSON(data []byte) error {
	var wire moduleWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	m.ID, m.Type, m.Title, m.Content = wire.ID, wire.Type, wire.Title, nil
	if len(wire.Content) == 0 || string(wire.Content) == "null" {
		return nil
	}
	var (
		content ModuleContent
		err     error
	)
	switch wire.Type {
	case ModuleVideo:
		var c VideoContent
		err = json.Unmarshal(wire.Content, &c)
		content = c
	case ModuleText:
		var c TextContent
		err = json.Unmarshal(wire.Content, &c)
		content = c
	case ModuleQuiz:
		var c QuizContent
		err = json.Unmarshal(wire.Content, &c)
		content = c
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode %s module %q: %w", wire.Type, wire.ID, err)
	}
	m.Content = content
	return nil
}

// Questions returns the question bank of a quiz module, or nil for other types.
func (m Module) Questions() []Question {
	if q, ok := m.Content.(QuizContent); ok {
		return q.Questions
	}
	return nil
}

package slides

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Deck is a fully assembled slide presentation.
type Deck struct {
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
}

// Slide is one rendered slide.
type Slide struct {
	Title        string   `json:"title"`
	Bullets      []string `json:"bullets"`
	SpeakerNotes string   `json:"speaker_notes,omitempty"`
	ImagePrompt  string   `json:"image_prompt,omitempty"`
}

// Outline is the planner's output: the deck title plus one entry per slide.
type Outline struct {
	Title  string         `json:"title"`
	Slides []PlannedSlide `json:"slides"`
}

// PlannedSlide names a slide and states what it should convey. The writer
// expands it into full content.
type PlannedSlide struct {
	Title string `json:"title"`
	Goal  string `json:"goal"`
}

// parseOutline decodes a model-produced outline, tolerating a markdown code
// fence around the JSON.
func parseOutline(raw string) (Outline, error) {
	var outline Outline
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &outline); err != nil {
		return Outline{}, fmt.Errorf("parse outline: %w", err)
	}
	if len(outline.Slides) == 0 {
		return Outline{}, fmt.Errorf("outline contains no slides")
	}
	return outline, nil
}

// parseSlide decodes a model-produced slide draft, tolerating a code fence.
func parseSlide(raw string) (Slide, error) {
	var slide Slide
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &slide); err != nil {
		return Slide{}, fmt.Errorf("parse slide: %w", err)
	}
	if slide.Title == "" {
		return Slide{}, fmt.Errorf("slide draft missing title")
	}
	return slide, nil
}

// stripCodeFence removes a surrounding markdown code fence (``` or ```json)
// when present. Models frequently wrap JSON output despite instructions.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:] // drop the language tag line
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

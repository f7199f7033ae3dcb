// Package ai declares the language-model capabilities the engine consumes.
package ai

import "context"

// TextGenerator produces free text for a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// ExplainRequest carries what an explanation of a match score needs.
type ExplainRequest struct {
	ResumeText string
	JDText     string
	Score      float64
	Matched    []string
	Missing    []string
	Summary    string
}

// Explainer turns a score into a short natural-language explanation.
type Explainer interface {
	Explain(ctx context.Context, req ExplainRequest) (string, error)
}

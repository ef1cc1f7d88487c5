// Package domain holds the judge input and the completion port
package domain

import (
	"context"
	"time"

	"trawler/internal/core/discovery"
)

// Completer sends one system+user exchange to a language model
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, system, user string) (string, error)
}

// Input is what the judge sees about one item
type Input struct {
	Title      string
	Text       string
	URL        string
	Author     string
	Category   discovery.Category
	Engagement int
	Comments   int
	PostedAt   time.Time
	// Context is resolved link text (readme, page body or a snippet)
	Context string
	Install []string
}

// FromCandidate builds judge input from a candidate plus optional context
func FromCandidate(c discovery.Candidate, linked string) Input {
	return Input{
		Title:      c.Title,
		Text:       c.Description(),
		URL:        c.Source.URL,
		Author:     c.Source.Author,
		Category:   c.Category,
		Engagement: c.Signals.Engagement,
		Comments:   c.Signals.Comments,
		PostedAt:   c.Source.PublishedAt,
		Context:    linked,
		Install:    c.Install.Steps,
	}
}

// Judge is the port other services consume
type Judge interface {
	Enabled() bool
	Judge(ctx context.Context, in Input) *discovery.JudgeVerdict
	JudgeBatch(ctx context.Context, inputs []Input, concurrency int) []*discovery.JudgeVerdict
}

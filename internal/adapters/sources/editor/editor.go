// Package editor reads the manually curated picks file
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"trawler/internal/core/discovery"
	perr "trawler/internal/platform/errors"
	"trawler/internal/platform/net/http/bind"
)

// Pick is the on disk shape of one editor pick
type Pick struct {
	ID            string   `json:"id"`
	Category      string   `json:"category" validate:"required"`
	Title         string   `json:"title" validate:"required,max=200"`
	OneLiner      string   `json:"oneLiner" validate:"required"`
	What          string   `json:"what"`
	Why           string   `json:"why"`
	Impact        string   `json:"impact"`
	Install       []string `json:"install"`
	Prerequisites []string `json:"prerequisites"`
	TimeEstimate  string   `json:"timeEstimate"`
	URL           string   `json:"url" validate:"required,url"`
	Author        string   `json:"author"`
}

// File is an editor source backed by a JSON array on disk
type File struct{ path string }

// New returns a source reading path; an empty path yields no picks
func New(path string) *File { return &File{path: path} }

// Name implements sources.Source
func (f *File) Name() string { return "editor" }

// Fetch reads and validates the picks file. A missing file is not an error
func (f *File) Fetch(ctx context.Context) ([]discovery.Candidate, error) {
	if f.path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "editor: read %s", f.path)
	}
	var picks []Pick
	if err := json.Unmarshal(b, &picks); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "editor: decode %s", f.path)
	}

	out := make([]discovery.Candidate, 0, len(picks))
	for i, p := range picks {
		c, err := p.candidate(i)
		if err != nil {
			return nil, perr.WithOp(err, fmt.Sprintf("editor pick %d", i))
		}
		out = append(out, c)
	}
	return out, nil
}

func (p Pick) candidate(i int) (discovery.Candidate, error) {
	if err := bind.Struct(p); err != nil {
		return discovery.Candidate{}, err
	}
	cat, err := discovery.ParseCategory(p.Category)
	if err != nil {
		return discovery.Candidate{}, perr.WithField(perr.Wrap(err, perr.ErrorCodeValidation, err.Error()), "category")
	}
	id := strings.TrimSpace(p.ID)
	if id == "" {
		id = fmt.Sprintf("editor:%d", i)
	}
	return discovery.Candidate{
		ID:       id,
		Category: cat,
		Title:    strings.TrimSpace(p.Title),
		OneLiner: strings.TrimSpace(p.OneLiner),
		What:     p.What,
		Why:      p.Why,
		Impact:   p.Impact,
		Install: discovery.Install{
			Steps:         p.Install,
			Prerequisites: p.Prerequisites,
			TimeEstimate:  p.TimeEstimate,
		},
		Source: discovery.Source{URL: p.URL, Type: "editor", Author: p.Author},
		Origin: discovery.OriginEditor,
	}, nil
}

// Package render turns PlantUML text into images, either with a local
// PlantUML installation or through a PlantUML server.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Format is an image format understood by PlantUML.
type Format string

const (
	SVG Format = "svg"
	PDF Format = "pdf"
	PNG Format = "png"
)

// ParseFormat parses a format name, ignoring case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case SVG, PDF, PNG:
		return f, nil
	}
	return "", fmt.Errorf("unknown image format %q (want svg, pdf or png)", s)
}

// Renderer renders diagram text into an image.
type Renderer interface {
	Render(ctx context.Context, text string, format Format) ([]byte, error)
}

// ErrRender matches every *Error via errors.Is.
var ErrRender = errors.New("image generation failed")

// Error reports a failed render. Renders are never retried.
type Error struct {
	Format Format
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrRender, e.Format, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is ErrRender.
func (e *Error) Is(target error) bool { return target == ErrRender }

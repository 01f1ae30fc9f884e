package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultCommand is the PlantUML executable used when none is configured.
const DefaultCommand = "plantuml"

// Command renders by piping the text through a local PlantUML process,
// invoked as "<Path> <Args...> -pipe -t<format>".
type Command struct {
	Path string
	Args []string
}

// Render implements Renderer.
func (c *Command) Render(ctx context.Context, text string, format Format) ([]byte, error) {
	path := c.Path
	if path == "" {
		path = DefaultCommand
	}
	args := make([]string, 0, len(c.Args)+2)
	args = append(args, c.Args...)
	args = append(args, "-pipe", "-t"+string(format))

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return nil, &Error{Format: format, Err: err}
	}
	if stdout.Len() == 0 {
		return nil, &Error{Format: format, Err: errors.New("renderer produced no output")}
	}
	return stdout.Bytes(), nil
}

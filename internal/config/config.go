// Package config loads umlgen settings from a YAML file, a dotenv file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/umlgen/internal/plantuml"
	"github.com/phobologic/umlgen/internal/render"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "umlgen.yaml"

// DefaultEnvFile is the dotenv file consulted for unset variables.
const DefaultEnvFile = ".env"

// Output formats besides the image formats.
const (
	FormatText = "text"
	FormatTOON = "toon"
)

// Config holds every setting that can come from a file.
type Config struct {
	Exclude      []string       `yaml:"exclude"`
	ExcludePaths []string       `yaml:"exclude_paths"`
	Theme        string         `yaml:"theme"`
	Skinparams   []string       `yaml:"skinparams"`
	Output       string         `yaml:"output"`
	Format       string         `yaml:"format"`
	Renderer     RendererConfig `yaml:"renderer"`
}

// RendererConfig selects how images are produced. Server wins over
// Command when both are set.
type RendererConfig struct {
	Command string        `yaml:"command"`
	Server  string        `yaml:"server"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Theme:  "plain",
		Format: FormatText,
		Renderer: RendererConfig{
			Command: render.DefaultCommand,
			Timeout: render.DefaultTimeout,
		},
	}
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. An empty path means DefaultFile, which may be
// missing; an explicit path must exist. Variables missing from the
// process environment are looked up in envFile, which may also be
// missing.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	dotenv, err := readEnvFile(envFile)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(func(key string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(dotenv[key])
	})

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Normalize lower-cases the format and theme names, which are matched
// case-insensitively wherever they come from.
func (c *Config) Normalize() {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
}

func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return env, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("UMLGEN_EXCLUDE"); v != "" {
		c.Exclude = SplitList(v)
	}
	if v := getenv("UMLGEN_THEME"); v != "" {
		c.Theme = v
	}
	if v := getenv("UMLGEN_PLANTUML"); v != "" {
		c.Renderer.Command = v
	}
	if v := getenv("UMLGEN_PLANTUML_SERVER"); v != "" {
		c.Renderer.Server = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := plantuml.Theme(c.Theme); err != nil {
		return err
	}
	if !c.IsImage() {
		switch c.Format {
		case FormatText, FormatTOON:
		default:
			return fmt.Errorf("unknown format %q (want text, toon, svg, pdf or png)", c.Format)
		}
	}
	if c.Renderer.Timeout < 0 {
		return fmt.Errorf("renderer timeout must not be negative")
	}
	return nil
}

// IsImage reports whether the configured format is an image format.
func (c *Config) IsImage() bool {
	_, err := render.ParseFormat(c.Format)
	return err == nil
}

// ExcludeSet returns the excluded type names as a set.
func (c *Config) ExcludeSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Exclude))
	for _, name := range c.Exclude {
		set[name] = struct{}{}
	}
	return set
}

// Style returns the theme preset followed by the extra skinparams.
func (c *Config) Style() (plantuml.Style, error) {
	s, err := plantuml.Theme(c.Theme)
	if err != nil {
		return plantuml.Style{}, err
	}
	return s.With(c.Skinparams...), nil
}

// NewRenderer builds the configured renderer. The command may carry
// arguments, e.g. "java -jar plantuml.jar".
func (c *Config) NewRenderer() render.Renderer {
	if c.Renderer.Server != "" {
		timeout := c.Renderer.Timeout
		if timeout == 0 {
			timeout = render.DefaultTimeout
		}
		return &render.Server{BaseURL: c.Renderer.Server, Client: &http.Client{Timeout: timeout}}
	}
	fields := strings.Fields(c.Renderer.Command)
	if len(fields) == 0 {
		return &render.Command{}
	}
	return &render.Command{Path: fields[0], Args: fields[1:]}
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

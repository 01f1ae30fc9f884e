package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/phobologic/umlgen/internal/config"
)

// runInit implements the `umlgen init` subcommand, which writes a starter
// configuration file.
func runInit(args []string, stdout, stderr io.Writer) error {
	fset := flag.NewFlagSet("umlgen init", flag.ContinueOnError)
	fset.SetOutput(stderr)

	var dryRun, force bool
	fset.BoolVar(&dryRun, "dry-run", false, "print the file instead of writing it")
	fset.BoolVar(&force, "force", false, "overwrite an existing file")

	fset.Usage = func() {
		fmt.Fprintf(stderr, `Usage: umlgen init [flags] [path]

Write a starter umlgen configuration. Every setting is commented with its
default so the file can be trimmed to what the project needs. An existing
file is left alone unless -force is given.

path defaults to ./%s.

Flags:
`, config.DefaultFile)
		fset.PrintDefaults()
	}

	if err := fset.Parse(args); err != nil {
		return err
	}

	content := starterConfig()

	if dryRun {
		_, _ = fmt.Fprint(stdout, content)
		return nil
	}

	path := config.DefaultFile
	if fset.NArg() > 0 {
		path = fset.Arg(0)
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use -force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", path, err)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote %s\n", path)
	return nil
}

// starterConfig returns the commented YAML written by init.
func starterConfig() string {
	return `# umlgen configuration. Command-line flags override these settings,
# and UMLGEN_* environment variables (or a .env file) override the file.

# Type names left out of the diagram. UMLGEN_EXCLUDE takes a comma list.
exclude: []

# Extra gitignore-style patterns for files that should not be read.
exclude_paths: []

# Style preset: plain, dark or vector. UMLGEN_THEME overrides it.
theme: plain

# Extra PlantUML directives appended after the preset.
skinparams: []

# Output file. Empty means stdout for text, diagram.<format> for images.
output: ""

# text, toon, svg, pdf or png.
format: text

renderer:
  # Local PlantUML command, may include arguments. UMLGEN_PLANTUML overrides it.
  command: plantuml
  # PlantUML server base URL; used instead of the command when set.
  # UMLGEN_PLANTUML_SERVER overrides it.
  server: ""
  timeout: 30s
`
}

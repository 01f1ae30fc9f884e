// umlgen infers a PlantUML class diagram from a tree of Java sources.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/umlgen/internal/config"
	"github.com/phobologic/umlgen/internal/discover"
	"github.com/phobologic/umlgen/internal/graph"
	"github.com/phobologic/umlgen/internal/lang"
	"github.com/phobologic/umlgen/internal/model"
	"github.com/phobologic/umlgen/internal/parse"
	"github.com/phobologic/umlgen/internal/plantuml"
	"github.com/phobologic/umlgen/internal/ranking"
	"github.com/phobologic/umlgen/internal/render"
	"github.com/phobologic/umlgen/internal/toon"
)

var version = "dev"

const defaultMaxFileSize = 1_000_000 // 1 MB

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "init" {
		return runInit(args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("umlgen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		output       string
		format       string
		exclude      string
		theme        string
		maxTypes     int
		typeFilter   string
		pkgFilter    string
		configPath   string
		cachePath    string
		maxFileSize  int
		includeTests bool
		showVersion  bool
	)

	fs.StringVar(&output, "o", "", "output file (default stdout, or diagram.<format> for images)")
	fs.StringVar(&output, "output", "", "output file (default stdout, or diagram.<format> for images)")
	fs.StringVar(&format, "f", "", "output format: text, toon, svg, pdf or png")
	fs.StringVar(&format, "format", "", "output format: text, toon, svg, pdf or png")
	fs.StringVar(&exclude, "x", "", "comma-separated type names to leave out")
	fs.StringVar(&exclude, "exclude", "", "comma-separated type names to leave out")
	fs.StringVar(&theme, "theme", "", "style preset: "+strings.Join(plantuml.ThemeNames(), ", "))
	fs.IntVar(&maxTypes, "n", 0, "maximum number of types to include")
	fs.IntVar(&maxTypes, "max-types", 0, "maximum number of types to include")
	fs.StringVar(&typeFilter, "t", "", "only types whose name contains this (case-insensitive), plus neighbours")
	fs.StringVar(&typeFilter, "type", "", "only types whose name contains this (case-insensitive), plus neighbours")
	fs.StringVar(&pkgFilter, "p", "", "only packages whose name contains this (case-insensitive)")
	fs.StringVar(&pkgFilter, "package", "", "only packages whose name contains this (case-insensitive)")
	fs.StringVar(&configPath, "config", "", "config file (default ./"+config.DefaultFile+" if present)")
	fs.StringVar(&cachePath, "cache", "", "cache file path")
	fs.IntVar(&maxFileSize, "max-file-size", defaultMaxFileSize, "skip files larger than this many bytes")
	fs.BoolVar(&includeTests, "tests", false, "include test sources")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "umlgen %s\n", version)
		return nil
	}

	cfg, err := config.Load(configPath, config.DefaultEnvFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["o"] || set["output"] {
		cfg.Output = output
	}
	if set["f"] || set["format"] {
		cfg.Format = format
	}
	if set["x"] || set["exclude"] {
		cfg.Exclude = config.SplitList(exclude)
	}
	if set["theme"] {
		cfg.Theme = theme
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	root, err = filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	files, err := discover.Files(root, discover.Options{
		Languages:    []string{"java"},
		Ignore:       cfg.ExcludePaths,
		IncludeTests: includeTests,
	})
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no Java files found")
	}

	// Focused diagrams are cheap to rebuild and must not overwrite the
	// full cached diagram.
	useCache := cachePath != "" && maxTypes == 0 && typeFilter == "" && pkgFilter == ""

	var text, key string
	if useCache {
		key, err = cacheKey(cfg, files, maxFileSize)
		if err != nil {
			return err
		}
		if cacheIsFresh(cachePath, root, files) {
			text, _ = readCache(cachePath, key)
		}
	}

	if text == "" {
		files = filterBySize(root, files, maxFileSize, stderr)
		if len(files) == 0 {
			return fmt.Errorf("no Java files found (all exceeded size limit)")
		}

		decls, err := parseFilesConcurrent(context.Background(), root, files, stderr)
		if err != nil {
			return err
		}

		d, err := graph.Build(decls, cfg.ExcludeSet())
		if err != nil {
			return err
		}

		if typeFilter != "" {
			d = ranking.FilterByType(d, typeFilter)
		}
		if pkgFilter != "" {
			d = ranking.FilterByPackage(d, pkgFilter)
		}
		if maxTypes > 0 {
			d = ranking.SelectTypes(d, maxTypes)
		}

		text, err = encode(cfg, d)
		if err != nil {
			return err
		}

		if useCache {
			_ = writeCache(cachePath, key, text)
		}
	}

	if !cfg.IsImage() {
		if cfg.Output == "" {
			_, _ = io.WriteString(stdout, text)
			return nil
		}
		if err := os.WriteFile(cfg.Output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", cfg.Output, err)
		}
		_, _ = fmt.Fprintf(stderr, "wrote %s\n", cfg.Output)
		return nil
	}

	return writeImage(cfg, text, stderr)
}

func encode(cfg *config.Config, d *model.Diagram) (string, error) {
	if cfg.Format == config.FormatTOON {
		return toon.Encode(d) + "\n", nil
	}
	style, err := cfg.Style()
	if err != nil {
		return "", err
	}
	return plantuml.Encode(d, style), nil
}

// writeImage writes the diagram text next to the image, then renders.
// The text file stays behind when rendering fails.
func writeImage(cfg *config.Config, text string, stderr io.Writer) error {
	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	out := cfg.Output
	if out == "" {
		out = "diagram." + string(format)
	}

	textPath := strings.TrimSuffix(out, filepath.Ext(out)) + ".puml"
	if err := os.WriteFile(textPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", textPath, err)
	}

	ctx := context.Background()
	if cfg.Renderer.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Renderer.Timeout)
		defer cancel()
	}

	img, err := cfg.NewRenderer().Render(ctx, text, format)
	if err != nil {
		return fmt.Errorf("%w (diagram text kept in %s)", err, textPath)
	}
	if err := os.WriteFile(out, img, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	_, _ = fmt.Fprintf(stderr, "wrote %s\n", out)
	return nil
}

func cacheIsFresh(cachePath, root string, files []discover.FileEntry) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}

const cacheHeader = "umlgen-cache "

// cacheKey fingerprints every setting that shapes the encoded text, so a
// cache written under other settings is never reused.
func cacheKey(cfg *config.Config, files []discover.FileEntry, maxFileSize int) (string, error) {
	style, err := cfg.Style()
	if err != nil {
		return "", err
	}
	encoding := "plantuml"
	if cfg.Format == config.FormatTOON {
		encoding = config.FormatTOON
	}
	exclude := make([]string, 0, len(cfg.Exclude))
	for name := range cfg.ExcludeSet() {
		exclude = append(exclude, name)
	}
	sort.Strings(exclude)

	h := sha256.New()
	field := func(s string) {
		_, _ = io.WriteString(h, s)
		_, _ = h.Write([]byte{0})
	}
	field(version)
	field(encoding)
	field(strconv.Itoa(maxFileSize))
	field(strings.Join(style.Directives, "\n"))
	field(strings.Join(exclude, ","))
	for _, f := range files {
		field(f.Path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// readCache returns the cached text when its header matches key.
func readCache(path, key string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	header, text, ok := strings.Cut(string(data), "\n")
	if !ok || header != cacheHeader+key {
		return "", false
	}
	return text, text != ""
}

func writeCache(path, key, text string) error {
	return os.WriteFile(path, []byte(cacheHeader+key+"\n"+text), 0o644)
}

func filterBySize(root string, files []discover.FileEntry, maxSize int, stderr io.Writer) []discover.FileEntry {
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			kept = append(kept, f) // keep if can't stat
			continue
		}
		if fi.Size() > int64(maxSize) {
			_, _ = fmt.Fprintf(stderr, "Warning: %s: skipped (>%d bytes)\n", f.Path, maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// parseFilesConcurrent reads every file on a pool of workers, each with
// its own parsers, and returns the declarations in file order. Unreadable
// files are skipped with a warning; a malformed file fails the run.
func parseFilesConcurrent(ctx context.Context, root string, files []discover.FileEntry, stderr io.Writer) ([]model.TypeDeclaration, error) {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	perFile := make([][]model.TypeDeclaration, len(files))
	work := make(chan int)
	var stderrMu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(work)
		for i := range files {
			select {
			case work <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for range numWorkers {
		g.Go(func() error {
			parsers := make(map[string]*sitter.Parser)
			defer func() {
				for _, p := range parsers {
					p.Close()
				}
			}()

			for idx := range work {
				f := files[idx]
				p, ok := parsers[f.Language]
				if !ok {
					p = lang.Languages[f.Language].NewParser()
					parsers[f.Language] = p
				}

				source, err := os.ReadFile(filepath.Join(root, f.Path))
				if err != nil {
					stderrMu.Lock()
					_, _ = fmt.Fprintf(stderr, "Warning: failed to read %s: %v\n", f.Path, err)
					stderrMu.Unlock()
					continue
				}

				decls, err := parse.Declarations(p, source, f.Path)
				if err != nil {
					return err
				}
				perFile[idx] = decls
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var decls []model.TypeDeclaration
	for _, d := range perFile {
		decls = append(decls, d...)
	}
	return decls, nil
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-o": true, "--o": true,
	"-output": true, "--output": true,
	"-f": true, "--f": true,
	"-format": true, "--format": true,
	"-x": true, "--x": true,
	"-exclude": true, "--exclude": true,
	"-theme": true, "--theme": true,
	"-n": true, "--n": true,
	"-max-types": true, "--max-types": true,
	"-t": true, "--t": true,
	"-type": true, "--type": true,
	"-p": true, "--p": true,
	"-package": true, "--package": true,
	"-config": true, "--config": true,
	"-cache": true, "--cache": true,
	"-max-file-size": true, "--max-file-size": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}

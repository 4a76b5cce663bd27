package discover

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/DeusData/codebase-graph/internal/lang"
)

// ErrSourceRootNotFound is returned when a project has no source directory.
var ErrSourceRootNotFound = errors.New("src directory not found")

// IgnoreFileName holds extra exclude globs, one per line.
const IgnoreFileName = ".codegraphignore"

// IGNORE_PATTERNS are directory names to skip during discovery.
var IGNORE_PATTERNS = map[string]bool{
	".cache": true, ".git": true, ".hg": true, ".idea": true,
	".next": true, ".npm": true, ".nuxt": true, ".nyc_output": true,
	".pnpm-store": true, ".svn": true, ".turbo": true, ".vscode": true,
	".yarn": true, "bower_components": true, "build": true,
	"coverage": true, "dist": true, "node_modules": true, "out": true,
	"tmp": true, "temp": true, "vendor": true,
}

// IGNORE_SUFFIXES are file suffixes to skip.
var IGNORE_SUFFIXES = []string{".tmp", "~", ".map", ".min.js"}

// FileInfo represents a discovered source file.
type FileInfo struct {
	Path     string        // absolute path
	RelPath  string        // relative to the walk root, forward slashes
	Language lang.Language // detected language
}

// Options configures file discovery.
type Options struct {
	// Exclude holds globs matched against the slash-separated relative path.
	Exclude []string
	// GitignoreRoot is the directory whose .gitignore is honored; empty disables it.
	GitignoreRoot string
	// IgnoreFile overrides the default <root>/.codegraphignore location.
	IgnoreFile string
}

// FindSourceRoot returns projectPath/sourceDir when it exists, otherwise the
// shallowest directory named sourceDir below projectPath.
func FindSourceRoot(projectPath, sourceDir string) (string, error) {
	projectPath, err := filepath.Abs(projectPath)
	if err != nil {
		return "", err
	}
	if sourceDir == "" || sourceDir == "." {
		return projectPath, nil
	}
	direct := filepath.Join(projectPath, sourceDir)
	if info, err := os.Stat(direct); err == nil && info.IsDir() {
		return direct, nil
	}

	var candidates []string
	_ = filepath.WalkDir(projectPath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || !d.IsDir() {
			return nil
		}
		if path != projectPath && IGNORE_PATTERNS[d.Name()] {
			return filepath.SkipDir
		}
		if d.Name() == sourceDir && path != projectPath {
			candidates = append(candidates, path)
			return filepath.SkipDir
		}
		return nil
	})
	if len(candidates) == 0 {
		return "", fmt.Errorf("%s: %w", projectPath, ErrSourceRootNotFound)
	}
	sort.Slice(candidates, func(i, j int) bool {
		di := strings.Count(candidates[i], string(filepath.Separator))
		dj := strings.Count(candidates[j], string(filepath.Separator))
		if di != dj {
			return di < dj
		}
		return candidates[i] < candidates[j]
	})
	return candidates[0], nil
}

type matcher struct {
	globs     []glob.Glob
	gitignore *ignore.GitIgnore
	gitRoot   string
}

func newMatcher(root string, opts *Options) (*matcher, error) {
	m := &matcher{}
	patterns := []string{}
	ignPath := filepath.Join(root, IgnoreFileName)
	if opts != nil {
		patterns = append(patterns, opts.Exclude...)
		if opts.IgnoreFile != "" {
			ignPath = opts.IgnoreFile
		}
	}
	if extra, err := loadIgnoreFile(ignPath); err == nil {
		patterns = append(patterns, extra...)
	}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}

	if opts != nil && opts.GitignoreRoot != "" {
		gi, err := ignore.CompileIgnoreFile(filepath.Join(opts.GitignoreRoot, ".gitignore"))
		if err == nil {
			m.gitignore = gi
			m.gitRoot = opts.GitignoreRoot
		}
	}
	return m, nil
}

// excluded reports whether path (relative to the walk root) is filtered out.
func (m *matcher) excluded(abs, rel string, isDir bool) bool {
	for _, g := range m.globs {
		if g.Match(rel) || g.Match(filepath.Base(rel)) {
			return true
		}
	}
	if m.gitignore != nil {
		gitRel, err := filepath.Rel(m.gitRoot, abs)
		if err == nil && !strings.HasPrefix(gitRel, "..") {
			gitRel = filepath.ToSlash(gitRel)
			if isDir {
				gitRel += "/"
			}
			if m.gitignore.MatchesPath(gitRel) {
				return true
			}
		}
	}
	return false
}

// Discover walks root and returns all TypeScript-family source files.
func Discover(ctx context.Context, root string, opts *Options) ([]FileInfo, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := newMatcher(root, opts)
	if err != nil {
		return nil, err
	}

	var files []FileInfo

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if IGNORE_PATTERNS[d.Name()] || m.excluded(path, rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		for _, suffix := range IGNORE_SUFFIXES {
			if strings.HasSuffix(path, suffix) {
				return nil
			}
		}

		l, ok := lang.LanguageForExtension(filepath.Ext(path))
		if !ok || m.excluded(path, rel, false) {
			return nil
		}
		files = append(files, FileInfo{
			Path:     path,
			RelPath:  rel,
			Language: l,
		})
		return nil
	})

	return files, err
}

func loadIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, scanner.Err()
}

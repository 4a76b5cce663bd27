// Package project builds an immutable, summarized view of a TypeScript
// codebase: every source file parsed once, reduced to plain declarations
// and body summaries, plus the module and symbol resolution the extractors
// need.
package project

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/DeusData/codebase-graph/internal/discover"
	"github.com/DeusData/codebase-graph/internal/lang"
	"github.com/DeusData/codebase-graph/internal/parser"
	"github.com/DeusData/codebase-graph/internal/subtype"
)

// Options configures Load.
type Options struct {
	SourceDir        string // default "src"
	TSConfig         string // relative to the project root, default "tsconfig.json"
	Exclude          []string
	RespectGitignore bool
}

func (o *Options) sourceDir() string {
	if o == nil || o.SourceDir == "" {
		return "src"
	}
	return o.SourceDir
}

func (o *Options) tsconfig() string {
	if o == nil || o.TSConfig == "" {
		return "tsconfig.json"
	}
	return o.TSConfig
}

// Project is the parsed view of one codebase. It is read-only after Load
// and safe for concurrent use.
type Project struct {
	Root       string // absolute project path
	SourceRoot string // absolute source directory
	Files      []*File
	TSConfig   *TSConfig

	prefix string
	byPath map[string]*File
}

// Load discovers, parses and summarizes every source file under the
// project's source directory.
func Load(ctx context.Context, projectPath string, opts *Options) (*Project, error) {
	root, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}
	srcRoot, err := discover.FindSourceRoot(root, opts.sourceDir())
	if err != nil {
		return nil, err
	}

	dopts := &discover.Options{}
	if opts != nil {
		dopts.Exclude = opts.Exclude
		if opts.RespectGitignore {
			dopts.GitignoreRoot = root
		}
	}
	infos, err := discover.Discover(ctx, srcRoot, dopts)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}

	p := &Project{
		Root:       root,
		SourceRoot: srcRoot,
		byPath:     make(map[string]*File, len(infos)),
	}
	if srcRoot != root {
		p.prefix = filepath.Base(srcRoot)
	}

	if cfg, err := LoadTSConfig(filepath.Join(root, opts.tsconfig())); err == nil {
		p.TSConfig = cfg
	} else if !os.IsNotExist(err) {
		slog.Warn("tsconfig.err", "err", err)
	}

	results := make([]*File, len(infos))
	numWorkers := runtime.NumCPU()
	if numWorkers > len(infos) {
		numWorkers = len(infos)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(numWorkers, 1))
	for i, info := range infos {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			f, err := parseFile(info, p.relPath(info.RelPath))
			if err != nil {
				slog.Warn("parse.file.err", "path", info.RelPath, "lang", info.Language, "err", err)
				return nil
			}
			results[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, f := range results {
		if f != nil {
			p.Files = append(p.Files, f)
			p.byPath[f.RelPath] = f
		}
	}
	sort.Slice(p.Files, func(i, j int) bool { return p.Files[i].RelPath < p.Files[j].RelPath })

	for _, f := range p.Files {
		for _, imp := range f.Imports {
			imp.Target = p.ResolveModule(f, imp.Specifier)
		}
		for _, re := range f.ReExports {
			re.Target = p.ResolveModule(f, re.Specifier)
		}
	}
	return p, nil
}

func (p *Project) relPath(rel string) string {
	if p.prefix == "" {
		return rel
	}
	return p.prefix + "/" + rel
}

var bom = []byte{0xEF, 0xBB, 0xBF}

// parseFile reads and summarizes one file. The syntax tree is closed before
// returning; only plain data escapes.
func parseFile(info discover.FileInfo, relPath string) (*File, error) {
	source, err := os.ReadFile(info.Path)
	if err != nil {
		return nil, err
	}
	source = bytes.TrimPrefix(source, bom)

	tree, err := parser.Parse(info.Language, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	spec := lang.ForLanguage(info.Language)
	if spec == nil {
		return nil, fmt.Errorf("no language spec for %s", info.Language)
	}

	name := path.Base(relPath)
	f := &File{
		Path:        info.Path,
		RelPath:     relPath,
		Name:        name,
		Language:    info.Language,
		Subtype:     subtype.Detect(name),
		ContentHash: fmt.Sprintf("%016x", xxh3.Hash(source)),
	}
	summarize(f, tree.RootNode(), source, spec)
	return f, nil
}

// File returns the file with the given project-relative path.
func (p *Project) File(relPath string) *File {
	return p.byPath[relPath]
}

// jsExt maps emitted-JS extensions to the TS sources they come from.
var jsExt = map[string][]string{
	".js":  {".ts", ".tsx"},
	".jsx": {".tsx"},
	".mjs": {".mts"},
	".cjs": {".cts"},
}

var tsExt = []string{".ts", ".tsx", ".d.ts", ".mts", ".cts"}

// lookup tries the TypeScript candidate list for a path stem.
func (p *Project) lookup(stem string) string {
	if _, ok := p.byPath[stem]; ok {
		return stem
	}
	for _, ext := range tsExt {
		if _, ok := p.byPath[stem+ext]; ok {
			return stem + ext
		}
	}
	for _, idx := range []string{"/index.ts", "/index.tsx", "/index.d.ts"} {
		if _, ok := p.byPath[stem+idx]; ok {
			return stem + idx
		}
	}
	if alts, ok := jsExt[path.Ext(stem)]; ok {
		base := strings.TrimSuffix(stem, path.Ext(stem))
		for _, ext := range alts {
			if _, ok := p.byPath[base+ext]; ok {
				return base + ext
			}
		}
	}
	return ""
}

// ResolveModule maps an import specifier to the RelPath of a project file,
// or "" when the module is external or missing.
func (p *Project) ResolveModule(from *File, spec string) string {
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == ".." {
		return p.lookup(path.Join(path.Dir(from.RelPath), spec))
	}
	for _, abs := range p.TSConfig.Candidates(spec) {
		if rel, ok := p.relFromAbs(abs); ok {
			if got := p.lookup(rel); got != "" {
				return got
			}
		}
	}
	return ""
}

func (p *Project) relFromAbs(abs string) (string, bool) {
	rel, err := filepath.Rel(p.SourceRoot, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		rel = ""
	}
	if p.prefix == "" {
		return rel, true
	}
	return path.Join(p.prefix, rel), true
}

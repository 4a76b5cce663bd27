package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// maxExtendsDepth bounds tsconfig "extends" chains.
const maxExtendsDepth = 8

// TSConfig holds the module-resolution subset of a tsconfig.json.
type TSConfig struct {
	// BaseURL is absolute, "" when unset.
	BaseURL string
	// Paths maps a pattern (optionally with one "*") to absolute target patterns.
	Paths map[string][]string
}

type rawTSConfig struct {
	Extends         json.RawMessage `json:"extends"`
	CompilerOptions struct {
		BaseURL *string             `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// LoadTSConfig reads a tsconfig file. Comments and trailing commas are
// tolerated. Relative "extends" entries are followed; package references
// are ignored.
func LoadTSConfig(path string) (*TSConfig, error) {
	cfg := &TSConfig{}
	if err := loadTSConfigInto(cfg, path, 0); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadTSConfigInto(cfg *TSConfig, path string, depth int) error {
	if depth > maxExtendsDepth {
		return fmt.Errorf("tsconfig %s: extends chain too deep", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	repaired, err := jsonrepair.JSONRepair(string(data))
	if err != nil {
		return fmt.Errorf("tsconfig %s: %w", path, err)
	}
	var raw rawTSConfig
	if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
		return fmt.Errorf("tsconfig %s: %w", path, err)
	}
	dir := filepath.Dir(path)

	// Parents first so this file's options override theirs.
	for _, parent := range extendsList(raw.Extends) {
		if !strings.HasPrefix(parent, ".") && !filepath.IsAbs(parent) {
			continue
		}
		parentPath := parent
		if !filepath.IsAbs(parentPath) {
			parentPath = filepath.Join(dir, parent)
		}
		if filepath.Ext(parentPath) != ".json" {
			parentPath += ".json"
		}
		if err := loadTSConfigInto(cfg, parentPath, depth+1); err != nil {
			return err
		}
	}

	if raw.CompilerOptions.BaseURL != nil {
		cfg.BaseURL = filepath.Join(dir, *raw.CompilerOptions.BaseURL)
	}
	if raw.CompilerOptions.Paths != nil {
		base := cfg.BaseURL
		if base == "" {
			base = dir
		}
		cfg.Paths = make(map[string][]string, len(raw.CompilerOptions.Paths))
		for pattern, targets := range raw.CompilerOptions.Paths {
			abs := make([]string, 0, len(targets))
			for _, t := range targets {
				abs = append(abs, filepath.Join(base, t))
			}
			cfg.Paths[pattern] = abs
		}
	}
	return nil
}

func extendsList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return []string{one}
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return nil
}

// Candidates returns absolute path stems a non-relative specifier maps to,
// most specific pattern first, then the baseUrl fallback.
func (c *TSConfig) Candidates(spec string) []string {
	if c == nil {
		return nil
	}
	type match struct {
		pattern string
		score   int
		targets []string
	}
	var matches []match
	for pattern, targets := range c.Paths {
		star := strings.Index(pattern, "*")
		if star < 0 {
			if pattern == spec {
				matches = append(matches, match{pattern, len(pattern) + 1, targets})
			}
			continue
		}
		prefix, suffix := pattern[:star], pattern[star+1:]
		if len(spec) < len(prefix)+len(suffix) ||
			!strings.HasPrefix(spec, prefix) || !strings.HasSuffix(spec, suffix) {
			continue
		}
		wild := spec[len(prefix) : len(spec)-len(suffix)]
		subst := make([]string, 0, len(targets))
		for _, t := range targets {
			subst = append(subst, strings.Replace(t, "*", wild, 1))
		}
		matches = append(matches, match{pattern, len(prefix), subst})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].pattern < matches[j].pattern
	})

	var out []string
	for _, m := range matches {
		out = append(out, m.targets...)
	}
	if c.BaseURL != "" {
		out = append(out, filepath.Join(c.BaseURL, spec))
	}
	return out
}

// Package search ranks repository files against a task with BM25.
package search

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// BM25 parameters.
const (
	k1      = 1.2
	b       = 0.75
	epsilon = 0.25
)

// maxFileSize bounds the files that are indexed.
const maxFileSize = 512 * 1024

// defaultExtensions are indexed when no include patterns are configured.
var defaultExtensions = []string{
	".go", ".py", ".ts", ".tsx", ".js", ".jsx",
	".json", ".yaml", ".yml", ".toml", ".md",
	".sql", ".html", ".css", ".scss",
	".sh", ".bash", ".dockerfile",
}

var skipDirs = []string{
	".git", ".ralph", "vendor", "node_modules", "__pycache__",
	".venv", "venv", "dist", "build", ".next", "coverage",
}

var skipFiles = []string{
	"go.sum", "package-lock.json", "pnpm-lock.yaml", "yarn.lock",
	"*.min.js", "*.min.css", "*.map",
}

var wordPattern = regexp.MustCompile(`[A-Za-z0-9]+`)

// Options selects the files to index.
type Options struct {
	Include []string // gitignore-style patterns; empty means the default extensions
	Exclude []string
}

type document struct {
	terms  map[string]int
	path   string
	length int
}

// Index is a lazily built BM25 index over the files under root.
// It implements domain.FileSearcher.
type Index struct {
	err     error
	idf     map[string]float64
	root    string
	include []gitignore.Pattern
	exclude []gitignore.Pattern
	docs    []document
	avgLen  float64
	once    sync.Once
}

// Ensure Index implements domain.FileSearcher.
var _ domain.FileSearcher = (*Index)(nil)

// New creates an index over root. Files are read on the first query.
func New(root string, opts Options) *Index {
	return &Index{
		root:    root,
		include: parsePatterns(opts.Include),
		exclude: parsePatterns(append(slices.Clone(skipFiles), opts.Exclude...)),
	}
}

func parsePatterns(patterns []string) []gitignore.Pattern {
	out := make([]gitignore.Pattern, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, gitignore.ParsePattern(p, nil))
		}
	}
	return out
}

// Len returns the number of indexed files.
func (ix *Index) Len() (int, error) {
	ix.once.Do(ix.build)
	return len(ix.docs), ix.err
}

// SuggestRelevantFiles returns up to topK paths relative to root, best first.
// Files that share no term with the query are never returned.
func (ix *Index) SuggestRelevantFiles(ctx context.Context, taskName, taskContext string, topK int) ([]string, error) {
	ix.once.Do(ix.build)
	if ix.err != nil {
		return nil, ix.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	query := tokenize(taskName + " " + taskContext)
	if len(query) == 0 || len(ix.docs) == 0 {
		return nil, nil
	}

	type scored struct {
		path  string
		score float64
	}
	var results []scored
	for _, d := range ix.docs {
		if s := ix.score(d, query); s > 0 {
			results = append(results, scored{path: d.path, score: s})
		}
	}

	slices.SortFunc(results, func(a, b scored) int {
		if a.score != b.score {
			if a.score > b.score {
				return -1
			}
			return 1
		}
		return strings.Compare(a.path, b.path)
	})

	n := min(topK, len(results))
	paths := make([]string, n)
	for i := range n {
		paths[i] = results[i].path
	}
	return paths, nil
}

func (ix *Index) score(d document, query []string) float64 {
	var total float64
	norm := k1 * (1 - b + b*float64(d.length)/ix.avgLen)
	for _, term := range query {
		tf := float64(d.terms[term])
		if tf == 0 {
			continue
		}
		total += ix.idf[term] * tf * (k1 + 1) / (tf + norm)
	}
	return total
}

func (ix *Index) build() {
	ignore := ix.repoIgnore()
	df := make(map[string]int)

	var totalLen int
	err := filepath.WalkDir(ix.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(ix.root, path)
		if relErr != nil || rel == "." {
			return relErr
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")

		if d.IsDir() {
			if slices.Contains(skipDirs, d.Name()) || (ignore != nil && ignore.Match(parts, true)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !ix.selected(parts) || (ignore != nil && ignore.Match(parts, false)) {
			return nil
		}

		doc, ok := readDocument(path, filepath.ToSlash(rel))
		if !ok {
			return nil
		}
		for term := range doc.terms {
			df[term]++
		}
		totalLen += doc.length
		ix.docs = append(ix.docs, doc)
		return nil
	})
	if err != nil {
		ix.err = fmt.Errorf("index %s: %w", ix.root, err)
		return
	}
	if len(ix.docs) > 0 {
		ix.avgLen = float64(totalLen) / float64(len(ix.docs))
	}

	n := float64(len(ix.docs))
	ix.idf = make(map[string]float64, len(df))
	for term, f := range df {
		idf := math.Log(1 + (n-float64(f)+0.5)/(float64(f)+0.5))
		if idf < 0 {
			idf = epsilon
		}
		ix.idf[term] = idf
	}
}

// selected applies the include and exclude patterns to a file path.
func (ix *Index) selected(parts []string) bool {
	if matchAny(ix.exclude, parts) {
		return false
	}
	if len(ix.include) == 0 {
		return slices.Contains(defaultExtensions, strings.ToLower(filepath.Ext(parts[len(parts)-1])))
	}
	return matchAny(ix.include, parts)
}

func matchAny(patterns []gitignore.Pattern, parts []string) bool {
	for _, p := range patterns {
		if p.Match(parts, false) == gitignore.Exclude {
			return true
		}
	}
	return false
}

// repoIgnore loads the repository's .gitignore files, if any.
func (ix *Index) repoIgnore() gitignore.Matcher {
	patterns, err := gitignore.ReadPatterns(osfs.New(ix.root), nil)
	if err != nil || len(patterns) == 0 {
		return nil
	}
	return gitignore.NewMatcher(patterns)
}

func readDocument(path, rel string) (document, bool) {
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxFileSize {
		return document{}, false
	}
	content, err := os.ReadFile(path)
	if err != nil || isBinary(content) {
		return document{}, false
	}

	// Path terms are counted twice so file names outrank passing mentions.
	pathTokens := tokenize(rel)
	tokens := append(append(pathTokens, pathTokens...), tokenize(string(content))...)
	if len(tokens) == 0 {
		return document{}, false
	}
	terms := make(map[string]int, len(tokens)/2)
	for _, t := range tokens {
		terms[t]++
	}
	return document{path: rel, terms: terms, length: len(tokens)}, true
}

func isBinary(content []byte) bool {
	head := content[:min(len(content), 8000)]
	return bytes.IndexByte(head, 0) >= 0
}

// tokenize lowercases s and splits it into alphanumeric runs. camelCase
// identifiers also contribute their parts.
func tokenize(s string) []string {
	var out []string
	for _, word := range wordPattern.FindAllString(s, -1) {
		out = append(out, strings.ToLower(word))
		if parts := splitCamel(word); len(parts) > 1 {
			out = append(out, parts...)
		}
	}
	return out
}

func splitCamel(word string) []string {
	var parts []string
	start := 0
	for i := 1; i < len(word); i++ {
		if word[i] >= 'A' && word[i] <= 'Z' && word[i-1] >= 'a' && word[i-1] <= 'z' {
			parts = append(parts, strings.ToLower(word[start:i]))
			start = i
		}
	}
	return append(parts, strings.ToLower(word[start:]))
}

package analyzer

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/dumpscan/dumpscan/internal/model"
)

// ImportExtractor extracts imported module identifiers from script text.
// The default implementation is regex-based and best-effort; a real parser
// can be substituted behind this interface without altering the graph or
// report layers.
type ImportExtractor interface {
	// Extract returns the deduplicated, ascending-sorted set of imported
	// identifiers found in code.
	Extract(code string) []string
}

// Import statement patterns. Call-style imports with a quoted string
// literal argument, and ES-module "from" clauses. Template literals and
// computed specifiers are intentionally out of reach.
var (
	importCallPattern = regexp.MustCompile(`(?:import|require)\(['"]([^'"]+)['"]\)`)
	importFromPattern = regexp.MustCompile(`from\s+['"]([^'"]+)['"]`)
)

// RegexExtractor is the default ImportExtractor.
// It scans for import(...)/require(...) calls and from-clauses textually,
// without building an AST.
type RegexExtractor struct{}

// Extract implements ImportExtractor.
func (RegexExtractor) Extract(code string) []string {
	set := make(map[string]struct{})

	for _, m := range importCallPattern.FindAllStringSubmatch(code, -1) {
		set[m[1]] = struct{}{}
	}
	for _, m := range importFromPattern.FindAllStringSubmatch(code, -1) {
		set[m[1]] = struct{}{}
	}

	imports := make([]string, 0, len(set))
	for imp := range set {
		imports = append(imports, imp)
	}
	sort.Strings(imports)
	return imports
}

// CodeGraphAnalyzer recovers a component dependency graph from the script
// bodies held in a dump's response cache.
type CodeGraphAnalyzer struct {
	extractor ImportExtractor
	logger    *slog.Logger
}

// CodeGraphOption configures a CodeGraphAnalyzer.
type CodeGraphOption func(*CodeGraphAnalyzer)

// WithExtractor substitutes the import extractor.
func WithExtractor(e ImportExtractor) CodeGraphOption {
	return func(a *CodeGraphAnalyzer) {
		a.extractor = e
	}
}

// WithCodeGraphLogger sets the logger used for collision warnings.
func WithCodeGraphLogger(logger *slog.Logger) CodeGraphOption {
	return func(a *CodeGraphAnalyzer) {
		a.logger = logger
	}
}

// NewCodeGraphAnalyzer creates a CodeGraphAnalyzer with the regex-based
// extractor by default.
func NewCodeGraphAnalyzer(opts ...CodeGraphOption) *CodeGraphAnalyzer {
	a := &CodeGraphAnalyzer{
		extractor: RegexExtractor{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Analyze builds the dependency graph from every script entry with a
// non-empty body.
//
// When two cache entries strip to the same component name (typically two
// hashed builds of the same chunk), the later entry overwrites the earlier
// one in both the component map and the graph. That can silently discard a
// real component, so every collision is logged; the overwrite itself is
// kept because downstream consumers depend on last-entry-wins output.
func (a *CodeGraphAnalyzer) Analyze(caches model.CacheCollection) *model.CodeGraph {
	components := make(map[string]model.Component)
	graph := make(map[string][]string)

	for _, cache := range caches.Caches {
		for _, entry := range cache.Entries {
			if !isScript(entry) || entry.Response.Body == "" {
				continue
			}

			name := ComponentName(entry.URL)
			imports := a.extractor.Extract(entry.Response.Body)

			if prev, ok := components[name]; ok {
				a.logger.Warn("component name collision, keeping later entry",
					"component", name,
					"kept", entry.URL,
					"discarded", prev.URL,
				)
			}

			components[name] = model.Component{
				URL:     entry.URL,
				Size:    entry.Response.BodySize,
				Imports: imports,
			}
			graph[name] = imports
		}
	}

	totalDeps := 0
	for _, imports := range graph {
		totalDeps += len(imports)
	}

	return &model.CodeGraph{
		Components: components,
		Graph:      graph,
		Stats: model.GraphStats{
			TotalComponents:   len(components),
			TotalDependencies: totalDeps,
		},
	}
}

// isScript reports whether a cache entry holds JavaScript, by
// case-insensitive substring match on the content type.
func isScript(entry model.CacheEntry) bool {
	return strings.Contains(strings.ToLower(entry.Response.ContentType), "javascript")
}

// ComponentName derives the graph node identity from a resource URL:
// the final path segment with any query string stripped, truncated at the
// first hyphen when one is present. The truncation heuristically removes
// the content-hash suffix of built filenames ("app-3f2a1c.js" -> "app").
func ComponentName(url string) string {
	segments := strings.Split(url, "/")
	filename := segments[len(segments)-1]

	if i := strings.Index(filename, "?"); i >= 0 {
		filename = filename[:i]
	}
	if i := strings.Index(filename, "-"); i >= 0 {
		return filename[:i]
	}
	return filename
}

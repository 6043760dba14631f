package monitor

import (
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/termwatch/internal/logging"
)

// labelFilter decides which session labels are monitored. An empty include
// list admits everything; exclude always wins.
type labelFilter struct {
	include []glob.Glob
	exclude []glob.Glob
}

func compileFilter(include, exclude []string, logger *logging.Logger) labelFilter {
	return labelFilter{
		include: compileGlobs(include, "include", logger),
		exclude: compileGlobs(exclude, "exclude", logger),
	}
}

func compileGlobs(patterns []string, field string, logger *logging.Logger) []glob.Glob {
	var out []glob.Glob
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			logger.Warn("ignoring invalid label pattern", "field", field, "pattern", p, "error", err.Error())
			continue
		}
		out = append(out, g)
	}
	return out
}

func (f labelFilter) allows(label string) bool {
	matches := func(g glob.Glob) bool { return g.Match(label) }
	if slices.ContainsFunc(f.exclude, matches) {
		return false
	}
	return len(f.include) == 0 || slices.ContainsFunc(f.include, matches)
}

// filterKey identifies a pattern set so the compiled filter can be reused
// across ticks.
func filterKey(include, exclude []string) string {
	return strings.Join(include, "\x00") + "\x01" + strings.Join(exclude, "\x00")
}

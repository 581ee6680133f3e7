package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrFontNotFound is returned when no source provides the requested family
var ErrFontNotFound = errors.New("font not found")

// Matcher finds the TrueType data for a family and weight.
type Matcher interface {
	Match(family string, bold bool) ([]byte, error)
}

// ChainMatcher tries each matcher in order and returns the first hit.
type ChainMatcher []Matcher

// Match implements Matcher.
func (c ChainMatcher) Match(family string, bold bool) ([]byte, error) {
	for _, m := range c {
		ttf, err := m.Match(family, bold)
		if err == nil {
			return ttf, nil
		}
		if !errors.Is(err, ErrFontNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrFontNotFound, family)
}

// NewMatcher returns the default matcher: configured font directories first,
// then the built-in Go font families.
func NewMatcher(dirs []string) Matcher {
	if len(dirs) == 0 {
		return BuiltinMatcher{}
	}
	return ChainMatcher{DirMatcher{Dirs: dirs}, BuiltinMatcher{}}
}

// DirMatcher looks for <Family>-Regular.ttf and <Family>-Bold.ttf in a list of
// directories. Spaces in the family name are also tried removed, so "Open Sans"
// matches OpenSans-Regular.ttf.
type DirMatcher struct {
	Dirs []string
}

// Match implements Matcher.
func (m DirMatcher) Match(family string, bold bool) ([]byte, error) {
	family = strings.TrimSpace(family)
	if family == "" {
		return nil, ErrFontNotFound
	}
	suffix := "-Regular"
	if bold {
		suffix = "-Bold"
	}
	names := []string{family}
	if compact := strings.ReplaceAll(family, " ", ""); compact != family {
		names = append(names, compact)
	}

	for _, dir := range m.Dirs {
		for _, name := range names {
			for _, ext := range []string{".ttf", ".otf"} {
				path := filepath.Join(dir, name+suffix+ext)
				data, err := os.ReadFile(path)
				if err == nil {
					return data, nil
				}
				if !errors.Is(err, os.ErrNotExist) {
					return nil, fmt.Errorf("failed to read font %s: %w", path, err)
				}
			}
		}
	}
	return nil, ErrFontNotFound
}

type builtinFamily struct {
	regular []byte
	bold    []byte
}

var builtinFamilies = map[string]builtinFamily{
	"go":        {regular: goregular.TTF, bold: gobold.TTF},
	"go medium": {regular: gomedium.TTF, bold: gobold.TTF},
	"go mono":   {regular: gomono.TTF, bold: gomonobold.TTF},
}

var familyAliases = map[string]string{
	"":           "go",
	"system":     "go",
	"sans":       "go",
	"sans-serif": "go",
	"helvetica":  "go",
	"arial":      "go",
	"mono":       "go mono",
	"monospace":  "go mono",
	"courier":    "go mono",
}

// BuiltinMatcher serves the Go font families embedded in golang.org/x/image.
type BuiltinMatcher struct{}

// Match implements Matcher.
func (BuiltinMatcher) Match(family string, bold bool) ([]byte, error) {
	key := strings.ToLower(strings.TrimSpace(family))
	if alias, ok := familyAliases[key]; ok {
		key = alias
	}
	f, ok := builtinFamilies[key]
	if !ok {
		return nil, ErrFontNotFound
	}
	if bold {
		return f.bold, nil
	}
	return f.regular, nil
}

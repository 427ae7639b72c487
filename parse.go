package glslt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/glslt/glsl"
)

// IncludeNotFoundError is returned when an #include directive cannot be
// resolved against the including file's directory or the system include
// paths.
type IncludeNotFoundError struct {
	Path string
	From string
}

func (e *IncludeNotFoundError) Error() string {
	return fmt.Sprintf("unresolved include %q (included from %s)", e.Path, e.From)
}

// ParseFiles reads, stitches and parses the given GLSLT input files
// into a single translation unit, in input order.
//
// #include directives are resolved before parsing: double-quoted paths
// resolve relative to the including file first and fall back to the
// system include directories; angle-quoted paths use the system
// directories only. A file included more than once is expanded once.
func ParseFiles(inputs []string, includeDirs []string) (*glsl.TranslationUnit, error) {
	merged := &glsl.TranslationUnit{}
	seen := make(map[string]bool)

	for _, input := range inputs {
		source, err := expandIncludes(input, includeDirs, seen)
		if err != nil {
			return nil, err
		}

		tu, err := glsl.Parse(source)
		if err != nil {
			return nil, err
		}
		merged.Decls = append(merged.Decls, tu.Decls...)
	}

	return merged, nil
}

func expandIncludes(path string, includeDirs []string, seen map[string]bool) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if seen[abs] {
		return "", nil
	}
	seen[abs] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, line := range strings.SplitAfter(string(data), "\n") {
		target, quoted, ok := parseIncludeLine(line)
		if !ok {
			sb.WriteString(line)
			continue
		}

		resolved, ok := resolveInclude(target, quoted, filepath.Dir(path), includeDirs)
		if !ok {
			return "", &IncludeNotFoundError{Path: target, From: path}
		}

		expanded, err := expandIncludes(resolved, includeDirs, seen)
		if err != nil {
			return "", err
		}
		sb.WriteString(expanded)
		if expanded != "" && !strings.HasSuffix(expanded, "\n") {
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}

// parseIncludeLine recognizes `#include "path"` and `#include <path>`.
func parseIncludeLine(line string) (target string, quoted, ok bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return "", false, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
	if !strings.HasPrefix(rest, "include") {
		return "", false, false
	}
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "include"))

	switch {
	case len(rest) >= 2 && rest[0] == '"':
		if end := strings.IndexByte(rest[1:], '"'); end >= 0 {
			return rest[1 : 1+end], true, true
		}
	case len(rest) >= 2 && rest[0] == '<':
		if end := strings.IndexByte(rest[1:], '>'); end >= 0 {
			return rest[1 : 1+end], false, true
		}
	}
	return "", false, false
}

func resolveInclude(target string, quoted bool, fromDir string, includeDirs []string) (string, bool) {
	var candidates []string
	if quoted {
		candidates = append(candidates, filepath.Join(fromDir, target))
	}
	for _, dir := range includeDirs {
		candidates = append(candidates, filepath.Join(dir, target))
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}

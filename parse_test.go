package glslt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseFilesQuotedInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.glsl", "int one() { return 1; }\n")
	main := writeFile(t, dir, "main.glsl", "#include \"lib.glsl\"\nvoid main() { int r = one(); }\n")

	tu, err := ParseFiles([]string{main}, nil)
	require.NoError(t, err)

	text := NewWriter().WriteTranslationUnit(tu)
	assert.Contains(t, text, "int one() {")
	assert.Contains(t, text, "void main() {")
}

func TestParseFilesSystemInclude(t *testing.T) {
	sys := t.TempDir()
	writeFile(t, sys, "lib.glsl", "int two() { return 2; }\n")

	dir := t.TempDir()
	main := writeFile(t, dir, "main.glsl", "#include <lib.glsl>\nvoid main() { int r = two(); }\n")

	tu, err := ParseFiles([]string{main}, []string{sys})
	require.NoError(t, err)

	text := NewWriter().WriteTranslationUnit(tu)
	assert.Contains(t, text, "int two() {")
}

func TestParseFilesAngleIgnoresLocalDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.glsl", "int three() { return 3; }\n")
	main := writeFile(t, dir, "main.glsl", "#include <lib.glsl>\nvoid main() {}\n")

	// Angle-quoted includes only search the system paths.
	_, err := ParseFiles([]string{main}, nil)
	var target *IncludeNotFoundError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "lib.glsl", target.Path)
}

func TestParseFilesIncludeNotFound(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.glsl", "#include \"missing.glsl\"\n")

	_, err := ParseFiles([]string{main}, nil)
	var target *IncludeNotFoundError
	require.ErrorAs(t, err, &target)
}

func TestParseFilesIncludeOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.glsl", "int one() { return 1; }\n")
	a := writeFile(t, dir, "a.glsl", "#include \"lib.glsl\"\nint fa() { return one(); }\n")
	b := writeFile(t, dir, "b.glsl", "#include \"lib.glsl\"\nint fb() { return one(); }\n")

	tu, err := ParseFiles([]string{a, b}, nil)
	require.NoError(t, err)

	count := 0
	text := NewWriter().WriteTranslationUnit(tu)
	for i := 0; i+9 <= len(text); i++ {
		if text[i:i+9] == "int one()" {
			count++
		}
	}
	assert.Equal(t, 1, count, "a file included twice expands once:\n%s", text)
}

func TestParseFilesConcatenatesInputs(t *testing.T) {
	dir := t.TempDir()
	lib := writeFile(t, dir, "lib.glsl", "int intfn();\nint fnTemplate(in intfn cb) { return cb(); }\n")
	main := writeFile(t, dir, "main.glsl", "int one() { return 1; }\nvoid main() { int r = fnTemplate(one); }\n")

	tu, err := ParseFiles([]string{lib, main}, nil)
	require.NoError(t, err)

	out, err := Transform(tu)
	require.NoError(t, err)

	text := NewWriter().WriteTranslationUnit(out)
	assert.Regexp(t, `_glslt_fnTemplate_[0-9a-f]{6}`, text)
}

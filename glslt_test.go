package glslt

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sdfSource = `float sdf3d(vec3 p);

float sdSphere(vec3 p, float r) {
    return length(p) - r;
}

float opElongate(in sdf3d primitive, vec3 p, vec3 h) {
    vec3 q = p - clamp(p, -h, h);
    return primitive(q);
}

void mainImage(vec3 p, vec3 h) {
    float d = opElongate(sdSphere(_1, 4.), p, h);
}`

func TestTransform(t *testing.T) {
	tu, err := Parse(sdfSource)
	require.NoError(t, err)

	out, err := Transform(tu)
	require.NoError(t, err)

	text := NewWriter().WriteTranslationUnit(out)
	assert.NotContains(t, text, "sdf3d")
	assert.Regexp(t, `_glslt_opElongate_[0-9a-f]{6}`, text)
	assert.Contains(t, text, "return sdSphere(q, 4.);")
}

func TestTransformMinifying(t *testing.T) {
	tu, err := Parse(sdfSource)
	require.NoError(t, err)

	out, err := TransformWithConfig(Config{KeepFns: []string{"sdSphere"}}, tu)
	require.NoError(t, err)

	text := NewWriter().WriteTranslationUnit(out)
	assert.Contains(t, text, "float sdSphere(vec3 p, float r) {")
	assert.NotContains(t, text, "opElongate")
	assert.NotContains(t, text, "mainImage")
}

func TestTransformMultipleUnits(t *testing.T) {
	lib, err := Parse(`int intfn();

int fnReturnsOne() { return 1; }

int fnTemplate(in intfn callback) { return callback(); }`)
	require.NoError(t, err)

	user, err := Parse(`void main() {
    int r = fnTemplate(fnReturnsOne);
}`)
	require.NoError(t, err)

	out, err := Transform(lib, user)
	require.NoError(t, err)

	text := NewWriter().WriteTranslationUnit(out)
	assert.Regexp(t, `_glslt_fnTemplate_[0-9a-f]{6}`, text)
	assert.Contains(t, text, "return fnReturnsOne();")
}

func TestTransformDeterministicAcrossRuns(t *testing.T) {
	run := func() string {
		tu, err := Parse(sdfSource)
		require.NoError(t, err)
		out, err := Transform(tu)
		require.NoError(t, err)
		return NewWriter().WriteTranslationUnit(out)
	}

	first := run()
	for i := 0; i < 5; i++ {
		require.Equal(t, first, run())
	}
}

func TestTransformCustomPrefix(t *testing.T) {
	tu, err := Parse(sdfSource)
	require.NoError(t, err)

	out, err := TransformWithConfig(Config{IdentifierPrefix: "_mylib_"}, tu)
	require.NoError(t, err)

	text := NewWriter().WriteTranslationUnit(out)
	assert.NotContains(t, text, "_glslt_")
	assert.Regexp(t, regexp.MustCompile(`_mylib_opElongate_[0-9a-f]{6}`), text)
}

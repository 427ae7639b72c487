package transform

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/glslt/glsl"
)

func transformSource(t *testing.T, source string) string {
	t.Helper()
	out, err := tryTransformSource(source)
	require.NoError(t, err)
	return out
}

func tryTransformSource(source string) (string, error) {
	tu, err := glsl.Parse(source)
	if err != nil {
		return "", err
	}
	unit := NewUnit(DefaultConfig())
	if err := unit.AddUnit(tu); err != nil {
		return "", err
	}
	result, err := unit.TranslationUnit()
	if err != nil {
		return "", err
	}
	return glsl.NewWriter().WriteTranslationUnit(result), nil
}

// specNames extracts the distinct mangled specializations of template
// from the output, in order of first appearance.
func specNames(out, template string) []string {
	re := regexp.MustCompile(`_glslt_` + template + `_[0-9a-f]{6,}`)
	var names []string
	seen := make(map[string]bool)
	for _, m := range re.FindAllString(out, -1) {
		if !seen[m] {
			seen[m] = true
			names = append(names, m)
		}
	}
	return names
}

const staticSource = `int intfn();

int fnReturnsOne() { return 1; }

int fnReturnsTwo() { return 2; }

int fnTemplate(in intfn callback) { return callback(); }

void main() {
    gl_FragColor = vec4(fnTemplate(fnReturnsOne), fnTemplate(fnReturnsTwo), 0., 1.);
}`

func TestStaticSpecialization(t *testing.T) {
	out := transformSource(t, staticSource)

	// The prototype and the template are consumed.
	assert.NotContains(t, out, "intfn")
	assert.NotRegexp(t, `fnTemplate\(in`, out)

	// The two target functions are carried through.
	assert.Contains(t, out, "int fnReturnsOne() {")
	assert.Contains(t, out, "int fnReturnsTwo() {")

	// Two distinct specializations with 6-hex suffixes.
	names := specNames(out, "fnTemplate")
	require.Len(t, names, 2)
	assert.NotEqual(t, names[0], names[1])

	// Each specialization calls its bound target.
	assert.Contains(t, out, "int "+names[0]+"() {\n    return fnReturnsOne();\n}")
	assert.Contains(t, out, "int "+names[1]+"() {\n    return fnReturnsTwo();\n}")

	// main calls the specializations.
	assert.Contains(t, out, "vec4("+names[0]+"(), "+names[1]+"(), 0., 1.)")
}

func TestSpecializationPrecedesUse(t *testing.T) {
	out := transformSource(t, staticSource)

	names := specNames(out, "fnTemplate")
	require.Len(t, names, 2)
	def := strings.Index(out, "int "+names[0]+"()")
	use := strings.Index(out, "gl_FragColor")
	assert.Less(t, def, use, "specialization must be emitted before main")
}

const lambdaSource = `float sdf3d(vec3 p);

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

func TestNonCapturingLambda(t *testing.T) {
	out := transformSource(t, lambdaSource)

	// No pointer prototype survives.
	assert.NotContains(t, out, "sdf3d")

	names := specNames(out, "opElongate")
	require.Len(t, names, 1)

	// The specialization keeps the value parameters and splices the
	// lambda with the placeholder bound to the inner call argument.
	assert.Contains(t, out, "float "+names[0]+"(vec3 p, vec3 h) {")
	assert.Contains(t, out, "return sdSphere(q, 4.);")
	assert.Contains(t, out, names[0]+"(p, h)")
}

const captureSource = `float sdf3d(vec3 p);

float sdSphere(vec3 p, float r) {
    return length(p) - r;
}

float opElongate(in sdf3d primitive, vec3 p) {
    return primitive(p);
}

void mainImage(vec3 p) {
    float sz = 4.;
    float d = opElongate(sdSphere(_1, sz), p);
}`

func TestCapturingLambda(t *testing.T) {
	out := transformSource(t, captureSource)

	names := specNames(out, "opElongate")
	require.Len(t, names, 1)

	// The capture is appended as a trailing in-parameter and the call
	// site passes the captured local.
	assert.Contains(t, out, "float "+names[0]+"(vec3 p, in float _glslt_lp0) {")
	assert.Contains(t, out, "return sdSphere(p, _glslt_lp0);")
	assert.Contains(t, out, names[0]+"(p, sz)")
}

func TestCaptureDiscoveryOrder(t *testing.T) {
	source := `int intfn(int x);

int fnTemplate(in intfn callback) {
    return callback(1);
}

void main() {
    int first = 1;
    int second = 2;
    int r = fnTemplate(max(second, first + _1));
}`

	out := transformSource(t, source)

	names := specNames(out, "fnTemplate")
	require.Len(t, names, 1)

	// second is discovered before first: lexical left-to-right order.
	assert.Contains(t, out, "int "+names[0]+"(in int _glslt_lp0, in int _glslt_lp1) {")
	assert.Contains(t, out, "return max(_glslt_lp0, _glslt_lp1 + 1);")
	assert.Contains(t, out, names[0]+"(second, first)")
}

func TestDedupAcrossCallSites(t *testing.T) {
	source := `int intfn(int x);

int fnTemplate(in intfn callback) {
    return callback(1);
}

void main() {
    int a = 1;
    int r = fnTemplate(max(_1, a));
}

void other() {
    int b = 2;
    int r = fnTemplate(max(_1, b));
}`

	out := transformSource(t, source)

	// Identical lambda bodies with captures of identical type produce
	// exactly one specialization, regardless of the captured names.
	names := specNames(out, "fnTemplate")
	require.Len(t, names, 1)

	assert.Contains(t, out, names[0]+"(a)")
	assert.Contains(t, out, names[0]+"(b)")
	assert.Equal(t, 1, strings.Count(out, "int "+names[0]+"(in int _glslt_lp0) {"))
}

func TestNamedPlaceholderEquivalence(t *testing.T) {
	source := `float sdf3d(vec3 p);

float sdSphere(vec3 p, float r) {
    return length(p) - r;
}

float opA(in sdf3d primitive) { return primitive(vec3(0.)); }

void main() {
    float a = opA(sdSphere(_p, 1.0));
    float b = opA(sdSphere(_1, 1.0));
}`

	out := transformSource(t, source)

	// _p (named after the pointer type's formal parameter) and _1 are
	// the same placeholder, so both call sites share one fingerprint.
	names := specNames(out, "opA")
	require.Len(t, names, 1)
}

func TestNestedStaticPropagation(t *testing.T) {
	source := `int IntCallback();

int callbackTarget() { return 1; }

int innerTemplate(IntCallback cbi) {
    return cbi();
}

int outerTemplate(IntCallback cbo) {
    return innerTemplate(cbo);
}

void main() {
    int r = outerTemplate(callbackTarget);
}`

	out := transformSource(t, source)

	inner := specNames(out, "innerTemplate")
	outer := specNames(out, "outerTemplate")
	require.Len(t, inner, 1)
	require.Len(t, outer, 1)

	assert.Contains(t, out, "int "+inner[0]+"() {\n    return callbackTarget();\n}")
	assert.Contains(t, out, "int "+outer[0]+"() {\n    return "+inner[0]+"();\n}")
	assert.Contains(t, out, outer[0]+"()")

	// Inner specialization is defined before the outer one uses it.
	assert.Less(t, strings.Index(out, "int "+inner[0]+"()"), strings.Index(out, "int "+outer[0]+"()"))
}

func TestNestedLambdaPropagation(t *testing.T) {
	source := `vec4 ColorFunction(float phase);

vec4 filler(float phase, float width, ColorFunction inner) {
    return width * inner(phase);
}

vec4 infillSolidBorder(float phase, float width, ColorFunction cfn) {
    return filler(phase, width, cfn);
}

vec4 layerBody(vec4 prevColor) {
    return infillSolidBorder(12.5, 2.0, vec4(prevColor.xyz / _1, 1.0));
}

void main() {
    gl_FragColor = layerBody(vec4(0., 0., 0., 1.));
}`

	out := transformSource(t, source)

	fillerSpecs := specNames(out, "filler")
	infillSpecs := specNames(out, "infillSolidBorder")
	require.Len(t, fillerSpecs, 1)
	require.Len(t, infillSpecs, 1)

	// The capture propagates through both layers.
	assert.Contains(t, out, "vec4 "+fillerSpecs[0]+"(float phase, float width, in vec4 _glslt_lp0) {")
	assert.Contains(t, out, "return width * vec4(_glslt_lp0.xyz / phase, 1.0);")
	assert.Contains(t, out, "vec4 "+infillSpecs[0]+"(float phase, float width, in vec4 _glslt_lp0) {")
	assert.Contains(t, out, "return "+fillerSpecs[0]+"(phase, width, _glslt_lp0);")
	assert.Contains(t, out, infillSpecs[0]+"(12.5, 2.0, prevColor)")
}

func TestTemplateNeverEmitted(t *testing.T) {
	out := transformSource(t, lambdaSource)

	for _, line := range strings.Split(out, "\n") {
		assert.NotRegexp(t, `^float opElongate\(`, line, "template must not survive into the output")
	}
}

func TestDeterminism(t *testing.T) {
	first := transformSource(t, lambdaSource)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, transformSource(t, lambdaSource))
	}
}

// Error cases.

func TestInvalidTemplateArg(t *testing.T) {
	source := `int intfn();

int fnTemplate(in intfn callback) { return callback(); }

void main() {
    int r = fnTemplate(1);
}`

	_, err := tryTransformSource(source)
	var target *InvalidTemplateArgError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "fnTemplate", target.Template)
}

func TestTemplateArgMismatch(t *testing.T) {
	source := `int intfn();

int fnTakesArg(int x) { return x; }

int fnTemplate(in intfn callback) { return callback(); }

void main() {
    int r = fnTemplate(fnTakesArg);
}`

	_, err := tryTransformSource(source)
	var target *TemplateArgMismatchError
	require.ErrorAs(t, err, &target)
}

func TestTemplateArgUnknownFunction(t *testing.T) {
	source := `int intfn();

int fnTemplate(in intfn callback) { return callback(); }

void main() {
    int r = fnTemplate(nonexistent);
}`

	_, err := tryTransformSource(source)
	var target *TemplateArgMismatchError
	require.ErrorAs(t, err, &target)
}

func TestBadPlaceholderIndex(t *testing.T) {
	source := `int intfn(int x);

int fnTemplate(in intfn callback) { return callback(1); }

void main() {
    int r = fnTemplate(max(_3, 1));
}`

	_, err := tryTransformSource(source)
	var target *BadPlaceholderError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "_3", target.Name)
	assert.Equal(t, 1, target.Arity)
}

func TestBadPlaceholderSuffix(t *testing.T) {
	source := `int intfn(int x);

int fnTemplate(in intfn callback) { return callback(1); }

void main() {
    int r = fnTemplate(max(_1x, 1));
}`

	_, err := tryTransformSource(source)
	var target *BadPlaceholderError
	require.ErrorAs(t, err, &target)
}

func TestAmbiguousPointerType(t *testing.T) {
	source := `int intfn();
int intfn();`

	_, err := tryTransformSource(source)
	var target *AmbiguousPointerTypeError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "intfn", target.Name)
}

func TestPointerTypeConflictingDefinition(t *testing.T) {
	source := `int intfn();

int fnTemplate(in intfn callback) { return callback(); }

int intfn() { return 3; }`

	_, err := tryTransformSource(source)
	var target *AmbiguousPointerTypeError
	require.ErrorAs(t, err, &target)
}

func TestUnusedPrototypeIsForwardDecl(t *testing.T) {
	// A prototype never referenced as a parameter type is dropped; a
	// later definition of the same name is an ordinary function.
	source := `int helper();

int helper() { return 3; }

void main() {
    int r = helper();
}`

	out := transformSource(t, source)
	assert.Contains(t, out, "int helper() {")
	assert.NotContains(t, out, "int helper();")
}

func TestReservedIdentifier(t *testing.T) {
	source := `void main() {
    int _glslt_mine = 1;
}`

	_, err := tryTransformSource(source)
	var target *ReservedIdentifierError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "_glslt_mine", target.Name)
}

func TestEmptyInput(t *testing.T) {
	_, err := tryTransformSource("int intfn();")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestCustomPrefix(t *testing.T) {
	tu, err := glsl.Parse(staticSource)
	require.NoError(t, err)

	unit := NewUnit(Config{IdentifierPrefix: "_tpl_"})
	require.NoError(t, unit.AddUnit(tu))
	result, err := unit.TranslationUnit()
	require.NoError(t, err)
	out := glsl.NewWriter().WriteTranslationUnit(result)

	assert.NotContains(t, out, "_glslt_")
	assert.Regexp(t, `_tpl_fnTemplate_[0-9a-f]{6}`, out)
}

package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/glslt/glsl"
)

func TestFingerprintDeterministic(t *testing.T) {
	args := []ResolvedArg{
		{Kind: ArgStatic, Name: "fnReturnsOne"},
	}

	canonical := canonicalCall("fnTemplate", args, nil)

	store := newSpecStore(DefaultPrefix)
	first := store.fingerprint(canonical)

	// Fresh store, same input: identical digest.
	other := newSpecStore(DefaultPrefix)
	assert.Equal(t, first, other.fingerprint(canonicalCall("fnTemplate", args, nil)))

	// Memoized path returns the same digest.
	assert.Equal(t, first, store.fingerprint(canonical))
}

func TestFingerprintDiscriminates(t *testing.T) {
	one := canonicalCall("fnTemplate", []ResolvedArg{{Kind: ArgStatic, Name: "fnReturnsOne"}}, nil)
	two := canonicalCall("fnTemplate", []ResolvedArg{{Kind: ArgStatic, Name: "fnReturnsTwo"}}, nil)
	assert.NotEqual(t, one, two)

	store := newSpecStore(DefaultPrefix)
	assert.NotEqual(t, store.fingerprint(one), store.fingerprint(two))
}

func TestStaticAndLambdaTagsDiffer(t *testing.T) {
	static := canonicalCall("tpl", []ResolvedArg{{Kind: ArgStatic, Name: "f"}}, nil)
	lambda := canonicalCall("tpl", []ResolvedArg{{
		Kind:   ArgLambda,
		Lambda: &glsl.CallExpr{Callee: "f"},
	}}, nil)
	assert.NotEqual(t, static, lambda)
}

func TestCanonicalCaptureByTypeNotName(t *testing.T) {
	mk := func(symbol string) []byte {
		cp := &Capture{
			Symbol:  symbol,
			GenName: "_glslt_lp0",
			Type:    &glsl.TypeSpec{Name: "float"},
			Ordinal: 0,
		}
		lambda := &glsl.CallExpr{
			Callee: "sdSphere",
			Args: []glsl.Expr{
				&glsl.PlaceholderExpr{Index: 0},
				&glsl.Ident{Name: cp.GenName},
			},
		}
		return canonicalCall("opElongate", []ResolvedArg{{Kind: ArgLambda, Lambda: lambda}},
			map[string]*Capture{cp.GenName: cp})
	}

	// The captured symbol's source name does not influence identity.
	assert.Equal(t, mk("sz"), mk("radius"))
}

func TestCanonicalParensTransparent(t *testing.T) {
	plain := &glsl.CallExpr{Callee: "f", Args: []glsl.Expr{&glsl.Ident{Name: "x"}}}
	wrapped := &glsl.CallExpr{Callee: "f", Args: []glsl.Expr{&glsl.ParenExpr{Expr: &glsl.Ident{Name: "x"}}}}

	a := canonicalCall("tpl", []ResolvedArg{{Kind: ArgLambda, Lambda: plain}}, nil)
	b := canonicalCall("tpl", []ResolvedArg{{Kind: ArgLambda, Lambda: wrapped}}, nil)
	assert.Equal(t, a, b)
}

func TestMangleFormat(t *testing.T) {
	store := newSpecStore(DefaultPrefix)
	fp := "abcdef0123456789"

	name := store.mangle("fnTemplate", fp)
	assert.Equal(t, "_glslt_fnTemplate_abcdef", name)

	// Stable across calls.
	assert.Equal(t, name, store.mangle("fnTemplate", fp))
}

func TestMangleCollisionExtends(t *testing.T) {
	store := newSpecStore(DefaultPrefix)

	first := store.mangle("tpl", "abcdef1111111111")
	second := store.mangle("tpl", "abcdef2222222222")

	assert.Equal(t, "_glslt_tpl_abcdef", first)
	assert.Equal(t, "_glslt_tpl_abcdef22", second)

	// Both names remain stable after the collision.
	assert.Equal(t, first, store.mangle("tpl", "abcdef1111111111"))
	assert.Equal(t, second, store.mangle("tpl", "abcdef2222222222"))
}

func TestStoreAtMostOnce(t *testing.T) {
	store := newSpecStore(DefaultPrefix)

	spec := &Specialization{Fingerprint: "ff00", Name: "_glslt_t_ff00"}
	store.record(spec)

	require.Same(t, spec, store.get("ff00"))
	assert.Nil(t, store.get("0000"))
}

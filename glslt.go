// Package glslt implements the GLSLT template compiler: a
// source-to-source transform that extends GLSL with template function
// parameters and produces standard GLSL by monomorphizing every
// template call into a concrete specialization.
//
// GLSLT input follows two conventions: a bare function prototype
// denotes a function pointer type, and call expressions may pass a
// function name or a lambda expression wherever a pointer-typed
// parameter is expected:
//
//	int intfn();
//
//	int fnReturnsOne() { return 1; }
//
//	int fnTemplate(in intfn callback) { return callback(); }
//
//	void main() {
//	    gl_FragColor = vec4(fnTemplate(fnReturnsOne));
//	}
//
// Example usage:
//
//	tu, err := glslt.Parse(source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := glslt.Transform(tu)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(glslt.NewWriter().WriteTranslationUnit(out))
//
// For minified output, set Config.KeepFns to the entry points to keep:
//
//	out, err := glslt.TransformWithConfig(glslt.Config{KeepFns: []string{"mainImage"}}, tu)
package glslt

import (
	"fmt"

	"github.com/gogpu/glslt/glsl"
	"github.com/gogpu/glslt/transform"
)

// Config configures a transformation.
type Config struct {
	// IdentifierPrefix is the prefix for generated identifiers
	// (default: "_glslt_"). Identifiers with this prefix are reserved.
	IdentifierPrefix string

	// KeepFns lists root functions for minifying mode. When non-empty,
	// the output only contains the transitive dependencies of these
	// functions.
	KeepFns []string
}

// DefaultConfig returns sensible default options.
func DefaultConfig() Config {
	return Config{
		IdentifierPrefix: transform.DefaultPrefix,
	}
}

// Transform transforms GLSLT translation units into a single GLSL
// translation unit using default options.
//
// All declarations are emitted in input order, with template
// specializations interleaved before their first use.
func Transform(units ...*glsl.TranslationUnit) (*glsl.TranslationUnit, error) {
	return TransformWithConfig(DefaultConfig(), units...)
}

// TransformWithConfig transforms GLSLT translation units with custom
// options. A non-empty Config.KeepFns activates minifying mode.
func TransformWithConfig(config Config, units ...*glsl.TranslationUnit) (*glsl.TranslationUnit, error) {
	if config.IdentifierPrefix != "" && !validPrefix(config.IdentifierPrefix) {
		return nil, fmt.Errorf("identifier prefix %q is not a valid GLSL identifier prefix", config.IdentifierPrefix)
	}

	tc := transform.Config{IdentifierPrefix: config.IdentifierPrefix}

	if len(config.KeepFns) > 0 {
		unit := transform.NewMinUnit(tc)
		for _, tu := range units {
			if err := unit.AddUnit(tu); err != nil {
				return nil, err
			}
		}
		return unit.TranslationUnit(config.KeepFns)
	}

	unit := transform.NewUnit(tc)
	for _, tu := range units {
		if err := unit.AddUnit(tu); err != nil {
			return nil, err
		}
	}
	return unit.TranslationUnit()
}

// Parse parses GLSLT source code to a translation unit AST.
func Parse(source string) (*glsl.TranslationUnit, error) {
	return glsl.Parse(source)
}

// validPrefix reports whether p can start a GLSL identifier.
func validPrefix(p string) bool {
	for i, r := range p {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// NewWriter returns a GLSL serializer for transformed units.
func NewWriter() *glsl.Writer {
	return glsl.NewWriter()
}

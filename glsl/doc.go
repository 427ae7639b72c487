// Package glsl provides GLSL parsing, AST manipulation and serialization
// for the GLSLT template compiler.
//
// The package implements the subset of GLSL exercised by GLSLT shaders:
// preprocessor directives are preserved verbatim as opaque declarations,
// and a bare function prototype's identifier may be used as a parameter
// type name in later signatures (the GLSLT function pointer convention).
//
// The typical pipeline is:
//
//	tu, err := glsl.Parse(source)
//	// ... transform tu ...
//	text := glsl.NewWriter().WriteTranslationUnit(tu)
package glsl

// Package transform implements the GLSLT template transformation core.
//
// The engine consumes parsed GLSL translation units that follow the two
// GLSLT conventions: a bare function prototype denotes a function
// pointer type, and call expressions may pass a function identifier or
// a lambda expression where such a pointer type is expected. Every
// template call is monomorphized into a concrete specialization with a
// stable mangled name; templates and pointer-type prototypes never
// survive into the output.
//
// Two transform units are available: Unit emits every declaration in
// input order with specializations interleaved before first use, and
// MinUnit prunes the output to the transitive dependencies of a root
// set of functions.
//
// The engine is single-threaded. A unit owns all of its state; separate
// units share nothing and identical inputs produce byte-identical
// output.
package transform

package transform

import (
	"github.com/gogpu/glslt/glsl"
)

// TemplateParameter is a function pointer parameter of a template.
type TemplateParameter struct {
	// TypeName is the name of the function pointer type.
	TypeName string
	// Symbol is the parameter name inside the template body, empty for
	// unnamed parameters.
	Symbol string
	// Index is the parameter position in the original signature.
	Index int
}

// TemplateDefinition is a function definition with at least one
// function-pointer-typed parameter. Templates are never emitted; only
// their specializations are.
type TemplateDefinition struct {
	def    *glsl.FunctionDecl
	params []TemplateParameter
}

// Name returns the original template name.
func (t *TemplateDefinition) Name() string {
	return t.def.Proto.Name
}

// Parameters returns the pointer parameters of the template.
func (t *TemplateDefinition) Parameters() []TemplateParameter {
	return t.params
}

// Definition returns the original template AST. It must not be
// mutated; instantiation always works on clones.
func (t *TemplateDefinition) Definition() *glsl.FunctionDecl {
	return t.def
}

// valueParams returns clones of the non-pointer parameters, in order.
func (t *TemplateDefinition) valueParams() []*glsl.Param {
	pointer := make(map[int]bool, len(t.params))
	for _, p := range t.params {
		pointer[p.Index] = true
	}
	var out []*glsl.Param
	for i, p := range t.def.Proto.Params {
		if pointer[i] {
			continue
		}
		out = append(out, &glsl.Param{
			Qualifiers: append([]string(nil), p.Qualifiers...),
			Type:       glsl.CloneTypeSpec(p.Type),
			Name:       p.Name,
			Array:      p.Array,
			Span:       p.Span,
		})
	}
	return out
}

// splitArgs partitions the full call argument list into pointer
// arguments (one per template parameter, in order) and value arguments.
func (t *TemplateDefinition) splitArgs(args []glsl.Expr) (ptrArgs, valueArgs []glsl.Expr, err error) {
	if len(args) != len(t.def.Proto.Params) {
		return nil, nil, &TemplateArgMismatchError{
			Template: t.Name(),
			Index:    len(args),
			Arg:      "argument count",
		}
	}

	pointer := make(map[int]bool, len(t.params))
	for _, p := range t.params {
		pointer[p.Index] = true
	}

	for i, a := range args {
		if pointer[i] {
			ptrArgs = append(ptrArgs, a)
		} else {
			valueArgs = append(valueArgs, a)
		}
	}
	return ptrArgs, valueArgs, nil
}

// parseDefinitionAsTemplate classifies a function definition. It
// returns a TemplateDefinition if at least one parameter has a declared
// function pointer type, nil otherwise. Pointer types referenced by the
// signature are marked as used.
func parseDefinitionAsTemplate(def *glsl.FunctionDecl, g *GlobalScope) *TemplateDefinition {
	var params []TemplateParameter

	for i, p := range def.Proto.Params {
		if p.Array != nil || p.Type.Array != nil {
			continue
		}
		if _, ok := g.pointerTypes[p.Type.Name]; !ok {
			continue
		}
		g.pointerUsed[p.Type.Name] = true
		params = append(params, TemplateParameter{
			TypeName: p.Type.Name,
			Symbol:   p.Name,
			Index:    i,
		})
	}

	if len(params) == 0 {
		return nil
	}
	return &TemplateDefinition{def: def, params: params}
}

// Resolved template arguments.

// ResolvedArgKind discriminates static and lambda template arguments.
type ResolvedArgKind uint8

const (
	// ArgStatic is a bound ordinary function.
	ArgStatic ResolvedArgKind = iota
	// ArgLambda is a call-shaped expression with placeholders resolved
	// to indices and captures rewritten to generated parameter names.
	ArgLambda
)

// ResolvedArg is a template argument bound to a pointer parameter.
type ResolvedArg struct {
	Kind    ResolvedArgKind
	Name    string    // static: target function name
	Lambda  glsl.Expr // lambda: rewritten expression
	Pointer *glsl.Prototype
}

// Capture is a local variable or enclosing formal parameter referenced
// by a lambda, appended to the specialization signature.
type Capture struct {
	Symbol  string // original name in the calling scope
	GenName string // generated parameter name
	Type    *glsl.TypeSpec
	Array   *glsl.ArraySpec
	Ordinal int // lexical discovery order
}

// resolvedCall is a fully resolved template call, ready to fingerprint
// and instantiate.
type resolvedCall struct {
	template *TemplateDefinition
	args     []ResolvedArg
	captures []*Capture
}

// signatureCompatible reports whether a function signature can be bound
// to a pointer type: same return type, same arity, same parameter types
// ignoring qualifiers.
func signatureCompatible(fn, ptr *glsl.Prototype) bool {
	if !typeEqual(fn.ReturnType, ptr.ReturnType) {
		return false
	}
	if len(fn.Params) != len(ptr.Params) {
		return false
	}
	for i := range fn.Params {
		if !typeEqual(fn.Params[i].Type, ptr.Params[i].Type) {
			return false
		}
		if !arrayEqual(fn.Params[i].Array, ptr.Params[i].Array) {
			return false
		}
	}
	return true
}

func typeEqual(a, b *glsl.TypeSpec) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name == b.Name && arrayEqual(a.Array, b.Array)
}

func arrayEqual(a, b *glsl.ArraySpec) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	if (a.Size == nil) != (b.Size == nil) {
		return false
	}
	if a.Size == nil {
		return true
	}
	return glsl.ExprString(a.Size) == glsl.ExprString(b.Size)
}

// typeString renders a capture type for canonical fingerprints.
func typeString(ty *glsl.TypeSpec, array *glsl.ArraySpec) string {
	s := ty.Name
	if ty.Array != nil {
		s += "[]"
	}
	if array != nil {
		s += "[]"
	}
	return s
}

package transform

import (
	"strings"

	"github.com/gogpu/glslt/glsl"
)

// Config configures a transform unit.
type Config struct {
	// IdentifierPrefix is prepended to every generated identifier. It
	// must be a valid GLSL identifier prefix. Identifiers with this
	// prefix are reserved; user code must not declare them.
	IdentifierPrefix string
}

// DefaultPrefix is the identifier prefix used when none is configured.
const DefaultPrefix = "_glslt_"

// DefaultConfig returns the default transform configuration.
func DefaultConfig() Config {
	return Config{IdentifierPrefix: DefaultPrefix}
}

func (c Config) prefix() string {
	if c.IdentifierPrefix == "" {
		return DefaultPrefix
	}
	return c.IdentifierPrefix
}

// GlobalScope is the symbol classifier: it partitions top-level
// declarations into function pointer types, templates, ordinary
// functions, and carried-through types and globals, and owns the
// specialization store shared by all instantiations of a unit.
type GlobalScope struct {
	config Config

	// pointerTypes maps a prototype identifier to its prototype.
	pointerTypes map[string]*glsl.Prototype
	// pointerUsed records pointer types referenced as a parameter type.
	pointerUsed map[string]bool
	// templates maps template names to their definitions.
	templates map[string]*TemplateDefinition
	// knownFunctions maps ordinary function names (including emitted
	// specializations) to their prototypes.
	knownFunctions map[string]*glsl.Prototype
	// globals records top-level variable, struct and block names.
	globals map[string]bool

	store *specStore
}

// NewGlobalScope creates an empty global scope.
func NewGlobalScope(config Config) *GlobalScope {
	return &GlobalScope{
		config:         config,
		pointerTypes:   make(map[string]*glsl.Prototype),
		pointerUsed:    make(map[string]bool),
		templates:      make(map[string]*TemplateDefinition),
		knownFunctions: make(map[string]*glsl.Prototype),
		globals:        make(map[string]bool),
		store:          newSpecStore(config.prefix()),
	}
}

// Prefix returns the reserved identifier prefix.
func (g *GlobalScope) Prefix() string {
	return g.config.prefix()
}

// Template returns the template definition for name, or nil.
func (g *GlobalScope) Template(name string) *TemplateDefinition {
	return g.templates[name]
}

// PointerType returns the pointer type prototype for name, or nil.
func (g *GlobalScope) PointerType(name string) *glsl.Prototype {
	return g.pointerTypes[name]
}

// registerPrototype records a bare prototype as a candidate function
// pointer type. Duplicate pointer declarations are ambiguous.
func (g *GlobalScope) registerPrototype(proto *glsl.Prototype) error {
	if previous, ok := g.pointerTypes[proto.Name]; ok {
		return &AmbiguousPointerTypeError{
			Name:     proto.Name,
			Previous: glsl.PrototypeString(previous),
		}
	}
	g.pointerTypes[proto.Name] = proto
	return nil
}

// classifyFunction decides whether a definition is a template. A
// definition named after a pointer type already used as a parameter
// type is ambiguous; an unused prototype of the same name is discarded
// as a plain forward declaration.
func (g *GlobalScope) classifyFunction(def *glsl.FunctionDecl) (*TemplateDefinition, error) {
	name := def.Proto.Name
	if previous, ok := g.pointerTypes[name]; ok {
		if g.pointerUsed[name] {
			return nil, &AmbiguousPointerTypeError{
				Name:     name,
				Previous: glsl.PrototypeString(previous),
			}
		}
		delete(g.pointerTypes, name)
	}

	if tpl := parseDefinitionAsTemplate(def, g); tpl != nil {
		g.templates[name] = tpl
		return tpl, nil
	}
	return nil, nil
}

// registerFunction records an ordinary function (or specialization) so
// the resolver can bind static template arguments to it.
func (g *GlobalScope) registerFunction(proto *glsl.Prototype) {
	g.knownFunctions[proto.Name] = proto
}

// registerGlobal records a top-level non-function symbol.
func (g *GlobalScope) registerGlobal(name string) {
	g.globals[name] = true
}

// isGlobal reports whether name is a declared top-level symbol.
func (g *GlobalScope) isGlobal(name string) bool {
	return g.globals[name]
}

// lookupFunction resolves name to a known ordinary function prototype.
func (g *GlobalScope) lookupFunction(name string) *glsl.Prototype {
	return g.knownFunctions[name]
}

// checkReserved verifies that a user-declared identifier does not fall
// into the reserved prefix namespace.
func (g *GlobalScope) checkReserved(name string) error {
	if name != "" && strings.HasPrefix(name, g.Prefix()) {
		return &ReservedIdentifierError{Name: name, Prefix: g.Prefix()}
	}
	return nil
}

// checkReservedDecl checks every identifier declared by d against the
// reserved namespace.
func (g *GlobalScope) checkReservedDecl(d glsl.Decl) error {
	var err error
	check := func(name string) {
		if err == nil {
			err = g.checkReserved(name)
		}
	}

	switch d := d.(type) {
	case *glsl.StructDecl:
		check(d.Name)
		for _, f := range d.Fields {
			check(f.Name)
		}
	case *glsl.BlockDecl:
		check(d.Name)
		check(d.Instance)
	case *glsl.VarDecl:
		check(d.Name)
	case *glsl.PrototypeDecl:
		check(d.Proto.Name)
	case *glsl.FunctionDecl:
		check(d.Proto.Name)
		for _, p := range d.Proto.Params {
			check(p.Name)
		}
		glsl.Inspect(d.Body, func(n glsl.Node) bool {
			if v, ok := n.(*glsl.VarDecl); ok {
				check(v.Name)
			}
			return true
		})
	}
	return err
}

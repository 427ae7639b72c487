package transform

import (
	"strings"

	"github.com/gogpu/glslt/glsl"
)

// MinUnit is the minifying transform unit: declarations are stored in a
// name-keyed repository alongside a dependency graph, and the final
// translation unit contains only the transitive dependencies of a
// user-supplied root set. #version, #extension and global precision
// qualifiers are always kept at the head of the output.
type MinUnit struct {
	global *GlobalScope

	decls map[nodeKey]glsl.Decl
	order []nodeKey

	// statics are emitted unconditionally, before everything else.
	statics []glsl.Decl

	dag *depGraph

	structNames map[string]bool
}

// NewMinUnit creates a minifying transform unit.
func NewMinUnit(config Config) *MinUnit {
	return &MinUnit{
		global:      NewGlobalScope(config),
		decls:       make(map[nodeKey]glsl.Decl),
		dag:         newDepGraph(),
		structNames: make(map[string]bool),
	}
}

// GlobalScope returns the unit's symbol classifier.
func (m *MinUnit) GlobalScope() *GlobalScope {
	return m.global
}

// AddUnit feeds every declaration of a parsed translation unit through
// the transform, in order.
func (m *MinUnit) AddUnit(tu *glsl.TranslationUnit) error {
	for _, d := range tu.Decls {
		if err := m.AddDecl(d); err != nil {
			return err
		}
	}
	return nil
}

// AddDecl classifies and processes one top-level declaration.
func (m *MinUnit) AddDecl(d glsl.Decl) error {
	if err := m.global.checkReservedDecl(d); err != nil {
		return err
	}

	switch d := d.(type) {
	case *glsl.DirectiveDecl:
		m.addDirective(d)
		return nil

	case *glsl.PrecisionDecl:
		m.statics = append(m.statics, d)
		return nil

	case *glsl.BlockDecl:
		m.global.registerGlobal(d.Name)
		if d.Instance != "" {
			m.global.registerGlobal(d.Instance)
		}
		m.statics = append(m.statics, d)
		return nil

	case *glsl.StructDecl:
		m.structNames[d.Name] = true
		m.global.registerGlobal(d.Name)
		m.store(declKey(d.Name), d)
		return nil

	case *glsl.VarDecl:
		m.global.registerGlobal(d.Name)
		m.store(declKey(d.Name), d)
		return nil

	case *glsl.PrototypeDecl:
		return m.global.registerPrototype(d.Proto)

	case *glsl.FunctionDecl:
		tpl, err := m.global.classifyFunction(d)
		if err != nil {
			return err
		}
		if tpl != nil {
			return nil
		}

		inst := newInstantiator(m.global, m)
		if err := inst.instantiateFunction(d); err != nil {
			return err
		}
		m.global.registerFunction(d.Proto)
		m.store(fnKey(d.Proto.Name), d)
		return nil
	}
	return nil
}

// addDirective routes a preprocessor line: #version and #extension are
// always-emitted statics, #define enters the dependency repository
// under its macro name, anything else stays static.
func (m *MinUnit) addDirective(d *glsl.DirectiveDecl) {
	fields := strings.Fields(d.Raw)
	if len(fields) >= 2 && fields[0] == "#define" {
		name := fields[1]
		if i := strings.IndexByte(name, '('); i >= 0 {
			// Function-like macro.
			m.store(fnKey(name[:i]), d)
		} else {
			m.store(declKey(name), d)
		}
		return
	}
	m.statics = append(m.statics, d)
}

// store records a declaration and extends the dependency graph with
// the symbols it references.
func (m *MinUnit) store(key nodeKey, d glsl.Decl) {
	if _, ok := m.decls[key]; !ok {
		m.order = append(m.order, key)
	}
	m.decls[key] = d
	m.extendGraph(key, d)
}

// pushSpecialization adds a finished specialization to the repository.
func (m *MinUnit) pushSpecialization(spec *Specialization) {
	m.store(fnKey(spec.Name), spec.Decl)
}

// extendGraph walks a declaration and records a dependency edge for
// every referenced symbol, in lexical order.
func (m *MinUnit) extendGraph(key nodeKey, d glsl.Decl) {
	from := m.dag.declare(key)

	addType := func(ty *glsl.TypeSpec) {
		if ty == nil || IsBuiltinType(ty.Name) {
			return
		}
		m.dag.addDep(from, m.dag.declare(declKey(ty.Name)))
	}

	addExprRefs := func(e glsl.Expr) {
		glsl.Inspect(e, func(n glsl.Node) bool {
			switch n := n.(type) {
			case *glsl.CallExpr:
				m.addCallRef(from, n.Callee)
			case *glsl.Ident:
				m.addIdentRef(from, n.Name)
			}
			return true
		})
	}

	switch d := d.(type) {
	case *glsl.StructDecl:
		for _, f := range d.Fields {
			addType(f.Type)
		}

	case *glsl.VarDecl:
		addType(d.Type)
		if d.Init != nil {
			addExprRefs(d.Init)
		}

	case *glsl.FunctionDecl:
		addType(d.Proto.ReturnType)
		for _, p := range d.Proto.Params {
			addType(p.Type)
		}
		glsl.Inspect(d.Body, func(n glsl.Node) bool {
			switch n := n.(type) {
			case *glsl.VarDecl:
				addType(n.Type)
			case *glsl.CallExpr:
				m.addCallRef(from, n.Callee)
			case *glsl.Ident:
				m.addIdentRef(from, n.Name)
			}
			return true
		})
	}
}

func (m *MinUnit) addCallRef(from int, callee string) {
	if IsBuiltinFunction(callee) || IsBuiltinType(callee) {
		return
	}
	// A constructor call references a struct type, not a function.
	if m.structNames[callee] {
		m.dag.addDep(from, m.dag.declare(declKey(callee)))
		return
	}
	m.dag.addDep(from, m.dag.declare(fnKey(callee)))
}

func (m *MinUnit) addIdentRef(from int, name string) {
	// Only identifiers that name stored declarations (globals,
	// object-like macros) become dependencies; plain locals do not.
	if _, ok := m.decls[declKey(name)]; ok {
		m.dag.addDep(from, m.dag.declare(declKey(name)))
	}
}

// TranslationUnit prunes the repository to the transitive closure of
// the given roots and returns the minified translation unit.
func (m *MinUnit) TranslationUnit(keepFns []string) (*glsl.TranslationUnit, error) {
	roots := make([]nodeKey, 0, len(keepFns))
	for _, name := range keepFns {
		key := fnKey(name)
		if _, ok := m.decls[key]; !ok {
			return nil, &UnknownRootError{Name: name}
		}
		roots = append(roots, key)
	}

	ordered := m.dag.dependencies(roots)

	decls := make([]glsl.Decl, 0, len(m.statics)+len(ordered))
	decls = append(decls, m.statics...)

	var body []glsl.Decl
	for _, key := range ordered {
		if d, ok := m.decls[key]; ok {
			body = append(body, d)
		}
	}

	decls = append(decls, forwardPrototypes(body)...)
	decls = append(decls, body...)

	if len(decls) == 0 {
		return nil, ErrEmptyInput
	}
	return &glsl.TranslationUnit{Decls: decls}, nil
}

// forwardPrototypes returns prototypes for functions called before
// their definition in the emitted order. Post-order emission makes this
// rare, but the output stays valid if it happens.
func forwardPrototypes(decls []glsl.Decl) []glsl.Decl {
	position := make(map[string]int)
	for i, d := range decls {
		if fn, ok := d.(*glsl.FunctionDecl); ok {
			position[fn.Proto.Name] = i
		}
	}

	var protos []glsl.Decl
	declared := make(map[string]bool)

	for i, d := range decls {
		fn, ok := d.(*glsl.FunctionDecl)
		if !ok {
			continue
		}
		glsl.Inspect(fn.Body, func(n glsl.Node) bool {
			call, ok := n.(*glsl.CallExpr)
			if !ok {
				return true
			}
			pos, defined := position[call.Callee]
			if !defined || pos <= i || declared[call.Callee] {
				return true
			}
			declared[call.Callee] = true
			target := decls[pos].(*glsl.FunctionDecl)
			protos = append(protos, &glsl.PrototypeDecl{
				Proto: glsl.ClonePrototype(target.Proto),
			})
			return true
		})
	}

	return protos
}

package transform

import (
	"github.com/gogpu/glslt/glsl"
)

// Unit is the full-mode transform unit: every input declaration is
// emitted in order, with specializations interleaved immediately before
// the first function that references them. Pointer type prototypes and
// template functions are consumed and never emitted.
type Unit struct {
	global *GlobalScope
	decls  []glsl.Decl
}

// NewUnit creates a full-mode transform unit.
func NewUnit(config Config) *Unit {
	return &Unit{
		global: NewGlobalScope(config),
	}
}

// GlobalScope returns the unit's symbol classifier.
func (u *Unit) GlobalScope() *GlobalScope {
	return u.global
}

// AddUnit feeds every declaration of a parsed translation unit through
// the transform, in order.
func (u *Unit) AddUnit(tu *glsl.TranslationUnit) error {
	for _, d := range tu.Decls {
		if err := u.AddDecl(d); err != nil {
			return err
		}
	}
	return nil
}

// AddDecl classifies and processes one top-level declaration.
func (u *Unit) AddDecl(d glsl.Decl) error {
	if err := u.global.checkReservedDecl(d); err != nil {
		return err
	}

	switch d := d.(type) {
	case *glsl.PrototypeDecl:
		// Consumed: a candidate function pointer type.
		return u.global.registerPrototype(d.Proto)

	case *glsl.FunctionDecl:
		tpl, err := u.global.classifyFunction(d)
		if err != nil {
			return err
		}
		if tpl != nil {
			// Templates are consumed; only specializations are emitted.
			return nil
		}

		inst := newInstantiator(u.global, u)
		if err := inst.instantiateFunction(d); err != nil {
			return err
		}
		u.global.registerFunction(d.Proto)
		u.decls = append(u.decls, d)
		return nil

	case *glsl.StructDecl:
		u.global.registerGlobal(d.Name)
		u.decls = append(u.decls, d)
		return nil

	case *glsl.BlockDecl:
		u.global.registerGlobal(d.Name)
		if d.Instance != "" {
			u.global.registerGlobal(d.Instance)
		}
		u.decls = append(u.decls, d)
		return nil

	case *glsl.VarDecl:
		u.global.registerGlobal(d.Name)
		u.decls = append(u.decls, d)
		return nil

	default:
		// Directives, precision statements: carried through verbatim.
		u.decls = append(u.decls, d)
		return nil
	}
}

// pushSpecialization appends a finished specialization to the output.
// Instantiation happens while the referencing function is processed, so
// specializations always precede their first use.
func (u *Unit) pushSpecialization(spec *Specialization) {
	u.decls = append(u.decls, spec.Decl)
}

// TranslationUnit returns the transformed translation unit.
func (u *Unit) TranslationUnit() (*glsl.TranslationUnit, error) {
	if len(u.decls) == 0 {
		return nil, ErrEmptyInput
	}
	return &glsl.TranslationUnit{Decls: u.decls}, nil
}

package transform

import (
	"fmt"

	"github.com/gogpu/glslt/glsl"
)

type symbolKind uint8

const (
	symVariable symbolKind = iota
	symParameter
)

// declaredSymbol is a locally declared variable or formal parameter of
// the function currently being traversed.
type declaredSymbol struct {
	Name  string
	Kind  symbolKind
	Type  *glsl.TypeSpec
	Array *glsl.ArraySpec
	id    int // declaration order within the function
}

// symbolTable is a stack of scopes pushed on function entry, compound
// statements and for-init. It answers capture queries for the template
// argument resolver.
type symbolTable struct {
	scopes []map[string]*declaredSymbol
	nextID int

	// Pointer parameter names of the template currently being
	// instantiated; local declarations must not shadow them.
	pointerParams map[string]bool
}

func newSymbolTable() *symbolTable {
	return &symbolTable{}
}

func (t *symbolTable) push() {
	t.scopes = append(t.scopes, make(map[string]*declaredSymbol))
}

func (t *symbolTable) pop() {
	t.scopes = t.scopes[:len(t.scopes)-1]
}

func (t *symbolTable) declare(name string, kind symbolKind, ty *glsl.TypeSpec, array *glsl.ArraySpec) error {
	if t.pointerParams[name] {
		return fmt.Errorf("declaration of %s shadows a template pointer parameter", name)
	}
	scope := t.scopes[len(t.scopes)-1]
	scope[name] = &declaredSymbol{
		Name:  name,
		Kind:  kind,
		Type:  ty,
		Array: array,
		id:    t.nextID,
	}
	t.nextID++
	return nil
}

// lookup resolves name against the scope stack, innermost first.
func (t *symbolTable) lookup(name string) *declaredSymbol {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i][name]; ok {
			return sym
		}
	}
	return nil
}

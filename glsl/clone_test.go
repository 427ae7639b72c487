package glsl

import (
	"testing"
)

func TestCloneFunctionIsDeep(t *testing.T) {
	source := `float f(vec3 p, float r) {
    float d = length(p) - r;
    return d * 2.;
}`
	tu := parseSource(t, source)
	original := tu.Decls[0].(*FunctionDecl)
	before := NewWriter().WriteTranslationUnit(&TranslationUnit{Decls: []Decl{original}})

	clone := CloneDecl(original).(*FunctionDecl)

	// Mutate the clone everywhere a shared pointer would show.
	clone.Proto.Name = "g"
	clone.Proto.Params[0].Name = "q"
	clone.Body.Statements[0].(*VarDecl).Name = "e"
	ret := clone.Body.Statements[1].(*ReturnStmt)
	ret.Value.(*BinaryExpr).Left = &Ident{Name: "e"}

	after := NewWriter().WriteTranslationUnit(&TranslationUnit{Decls: []Decl{original}})
	if before != after {
		t.Errorf("mutating the clone changed the original:\nbefore:\n%s\nafter:\n%s", before, after)
	}
}

func TestCloneExprPlaceholder(t *testing.T) {
	e := &CallExpr{
		Callee: "sdSphere",
		Args: []Expr{
			&PlaceholderExpr{Index: 0},
			&Literal{Kind: TokenFloatLiteral, Value: "4."},
		},
	}

	c := CloneExpr(e).(*CallExpr)
	c.Args[0].(*PlaceholderExpr).Index = 7

	if e.Args[0].(*PlaceholderExpr).Index != 0 {
		t.Error("clone shares placeholder node with original")
	}
}

func TestInspectOrder(t *testing.T) {
	source := `void main() {
    a = f(b, c) + d;
}`
	tu := parseSource(t, source)

	var idents []string
	Inspect(tu.Decls[0], func(n Node) bool {
		if id, ok := n.(*Ident); ok {
			idents = append(idents, id.Name)
		}
		return true
	})

	expected := []string{"a", "b", "c", "d"}
	if len(idents) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, idents)
	}
	for i := range expected {
		if idents[i] != expected[i] {
			t.Fatalf("lexical order broken: expected %v, got %v", expected, idents)
		}
	}
}

package glsl

import (
	"testing"
)

// Helper function to parse source code
func parseSource(t *testing.T, source string) *TranslationUnit {
	t.Helper()
	tu, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return tu
}

func TestParsePrototype(t *testing.T) {
	tu := parseSource(t, "float sdf3d(vec3 p);")

	if len(tu.Decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(tu.Decls))
	}

	proto, ok := tu.Decls[0].(*PrototypeDecl)
	if !ok {
		t.Fatalf("expected PrototypeDecl, got %T", tu.Decls[0])
	}
	if proto.Proto.Name != "sdf3d" {
		t.Errorf("expected name 'sdf3d', got %q", proto.Proto.Name)
	}
	if proto.Proto.ReturnType.Name != "float" {
		t.Errorf("expected return type 'float', got %q", proto.Proto.ReturnType.Name)
	}
	if len(proto.Proto.Params) != 1 {
		t.Fatalf("expected 1 parameter, got %d", len(proto.Proto.Params))
	}
	if proto.Proto.Params[0].Name != "p" || proto.Proto.Params[0].Type.Name != "vec3" {
		t.Errorf("unexpected parameter: %+v", proto.Proto.Params[0])
	}
}

func TestParseFunctionDefinition(t *testing.T) {
	source := `float opElongate(in sdf3d primitive, vec3 p, vec3 h) {
    vec3 q = p - clamp(p, -h, h);
    return primitive(q);
}`

	tu := parseSource(t, source)

	fn, ok := tu.Decls[0].(*FunctionDecl)
	if !ok {
		t.Fatalf("expected FunctionDecl, got %T", tu.Decls[0])
	}
	if fn.Proto.Name != "opElongate" {
		t.Errorf("expected name 'opElongate', got %q", fn.Proto.Name)
	}
	if len(fn.Proto.Params) != 3 {
		t.Fatalf("expected 3 parameters, got %d", len(fn.Proto.Params))
	}

	first := fn.Proto.Params[0]
	if len(first.Qualifiers) != 1 || first.Qualifiers[0] != "in" {
		t.Errorf("expected 'in' qualifier, got %v", first.Qualifiers)
	}
	if first.Type.Name != "sdf3d" {
		t.Errorf("expected pointer type 'sdf3d', got %q", first.Type.Name)
	}

	if len(fn.Body.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(fn.Body.Statements))
	}
	if _, ok := fn.Body.Statements[0].(*VarDecl); !ok {
		t.Errorf("expected VarDecl, got %T", fn.Body.Statements[0])
	}
	if _, ok := fn.Body.Statements[1].(*ReturnStmt); !ok {
		t.Errorf("expected ReturnStmt, got %T", fn.Body.Statements[1])
	}
}

func TestParseVoidParameterList(t *testing.T) {
	tu := parseSource(t, "int one(void) { return 1; }")

	fn := tu.Decls[0].(*FunctionDecl)
	if len(fn.Proto.Params) != 0 {
		t.Errorf("expected empty parameter list, got %d", len(fn.Proto.Params))
	}
}

func TestParseGlobals(t *testing.T) {
	source := `#version 330
uniform float iTime;
const int COUNT = 4;
int a = 1, b = 2;`

	tu := parseSource(t, source)

	if len(tu.Decls) != 5 {
		t.Fatalf("expected 5 declarations, got %d", len(tu.Decls))
	}

	if d, ok := tu.Decls[0].(*DirectiveDecl); !ok || d.Raw != "#version 330" {
		t.Errorf("expected version directive, got %+v", tu.Decls[0])
	}

	u := tu.Decls[1].(*VarDecl)
	if len(u.Qualifiers) != 1 || u.Qualifiers[0] != "uniform" {
		t.Errorf("expected uniform qualifier, got %v", u.Qualifiers)
	}

	c := tu.Decls[2].(*VarDecl)
	if c.Init == nil {
		t.Error("expected initializer on COUNT")
	}

	// Comma declarator list splits into separate declarations.
	if tu.Decls[3].(*VarDecl).Name != "a" || tu.Decls[4].(*VarDecl).Name != "b" {
		t.Error("expected split declarator list")
	}
}

func TestParseStruct(t *testing.T) {
	source := `struct Light {
    vec3 position;
    float intensity;
};`

	tu := parseSource(t, source)

	s := tu.Decls[0].(*StructDecl)
	if s.Name != "Light" {
		t.Errorf("expected struct name 'Light', got %q", s.Name)
	}
	if len(s.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(s.Fields))
	}
	if s.Fields[0].Name != "position" || s.Fields[0].Type.Name != "vec3" {
		t.Errorf("unexpected field: %+v", s.Fields[0])
	}
}

func TestParseInterfaceBlock(t *testing.T) {
	source := `layout(std140) uniform Transforms {
    mat4 mvp;
} u;`

	tu := parseSource(t, source)

	b := tu.Decls[0].(*BlockDecl)
	if b.Name != "Transforms" {
		t.Errorf("expected block name 'Transforms', got %q", b.Name)
	}
	if b.Instance != "u" {
		t.Errorf("expected instance 'u', got %q", b.Instance)
	}
	if len(b.Qualifiers) != 2 {
		t.Errorf("expected 2 qualifiers, got %v", b.Qualifiers)
	}
}

func TestParsePrecision(t *testing.T) {
	tu := parseSource(t, "precision mediump float;")

	p := tu.Decls[0].(*PrecisionDecl)
	if p.Precision != "mediump" || p.Type.Name != "float" {
		t.Errorf("unexpected precision declaration: %+v", p)
	}
}

func TestParseControlFlow(t *testing.T) {
	source := `void main() {
    for (int i = 0; i < 10; i++) {
        if (i == 5) continue;
        total += i;
    }
    while (total > 0) total--;
    do { total++; } while (total < 3);
}`

	tu := parseSource(t, source)
	fn := tu.Decls[0].(*FunctionDecl)

	if len(fn.Body.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(fn.Body.Statements))
	}

	forStmt, ok := fn.Body.Statements[0].(*ForStmt)
	if !ok {
		t.Fatalf("expected ForStmt, got %T", fn.Body.Statements[0])
	}
	if _, ok := forStmt.Init.(*VarDecl); !ok {
		t.Errorf("expected VarDecl init, got %T", forStmt.Init)
	}
	if forStmt.Update == nil {
		t.Error("expected for update clause")
	}

	if _, ok := fn.Body.Statements[1].(*WhileStmt); !ok {
		t.Errorf("expected WhileStmt, got %T", fn.Body.Statements[1])
	}
	if _, ok := fn.Body.Statements[2].(*DoWhileStmt); !ok {
		t.Errorf("expected DoWhileStmt, got %T", fn.Body.Statements[2])
	}
}

func TestParseExpressions(t *testing.T) {
	source := `void main() {
    float x = a > 0. ? b.xyz.x : -c[2];
    v = vec4(p, 1.) * (m + 2.);
}`

	tu := parseSource(t, source)
	fn := tu.Decls[0].(*FunctionDecl)

	decl := fn.Body.Statements[0].(*VarDecl)
	if _, ok := decl.Init.(*TernaryExpr); !ok {
		t.Errorf("expected TernaryExpr, got %T", decl.Init)
	}

	assign := fn.Body.Statements[1].(*AssignStmt)
	bin, ok := assign.Right.(*BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr, got %T", assign.Right)
	}
	if _, ok := bin.Left.(*CallExpr); !ok {
		t.Errorf("expected CallExpr on the left, got %T", bin.Left)
	}
	if _, ok := bin.Right.(*ParenExpr); !ok {
		t.Errorf("expected ParenExpr on the right, got %T", bin.Right)
	}
}

func TestParseError(t *testing.T) {
	_, err := Parse("void main( {")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if _, ok := err.(*ParseError); !ok {
		t.Errorf("expected *ParseError, got %T", err)
	}
}

func TestParsePlaceholderIdents(t *testing.T) {
	// Placeholders are plain identifiers at parse time; the transform
	// layer gives them meaning.
	source := `void main() {
    d = opElongate(sdSphere(_1, 4.), p);
}`

	tu := parseSource(t, source)
	fn := tu.Decls[0].(*FunctionDecl)
	assign := fn.Body.Statements[0].(*AssignStmt)
	call := assign.Right.(*CallExpr)
	inner := call.Args[0].(*CallExpr)
	if ident, ok := inner.Args[0].(*Ident); !ok || ident.Name != "_1" {
		t.Errorf("expected _1 identifier, got %+v", inner.Args[0])
	}
}

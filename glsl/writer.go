package glsl

import (
	"fmt"
	"strings"
)

// Writer serializes an AST back to GLSL source text.
//
// The output is fully determined by the AST: same tree, same bytes.
type Writer struct {
	out    strings.Builder
	indent int
}

// NewWriter creates a new writer.
func NewWriter() *Writer {
	return &Writer{}
}

// String returns the generated GLSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

// WriteTranslationUnit serializes a whole translation unit and returns
// the generated source.
func (w *Writer) WriteTranslationUnit(tu *TranslationUnit) string {
	for i, d := range tu.Decls {
		if i > 0 {
			if _, ok := d.(*DirectiveDecl); !ok {
				w.out.WriteString("\n")
			} else if _, prev := tu.Decls[i-1].(*DirectiveDecl); !prev {
				w.out.WriteString("\n")
			}
		}
		w.writeDecl(d)
	}
	return w.String()
}

func (w *Writer) writeDecl(d Decl) {
	switch d := d.(type) {
	case *DirectiveDecl:
		w.out.WriteString(d.Raw)
		w.out.WriteString("\n")

	case *PrecisionDecl:
		fmt.Fprintf(&w.out, "precision %s %s;\n", d.Precision, w.typeString(d.Type))

	case *StructDecl:
		fmt.Fprintf(&w.out, "struct %s {\n", d.Name)
		w.writeFields(d.Fields)
		w.out.WriteString("};\n")

	case *BlockDecl:
		for _, q := range d.Qualifiers {
			w.out.WriteString(q)
			w.out.WriteString(" ")
		}
		fmt.Fprintf(&w.out, "%s {\n", d.Name)
		w.writeFields(d.Fields)
		w.out.WriteString("}")
		if d.Instance != "" {
			w.out.WriteString(" ")
			w.out.WriteString(d.Instance)
		}
		w.out.WriteString(";\n")

	case *VarDecl:
		w.writeVarDecl(d)
		w.out.WriteString("\n")

	case *PrototypeDecl:
		w.writePrototype(d.Proto)
		w.out.WriteString(";\n")

	case *FunctionDecl:
		w.writePrototype(d.Proto)
		w.out.WriteString(" ")
		w.writeBlock(d.Body)
		w.out.WriteString("\n")
	}
}

func (w *Writer) writeFields(fields []*StructField) {
	for _, f := range fields {
		fmt.Fprintf(&w.out, "    %s %s", w.typeString(f.Type), f.Name)
		w.writeArray(f.Array)
		w.out.WriteString(";\n")
	}
}

func (w *Writer) writeVarDecl(d *VarDecl) {
	for _, q := range d.Qualifiers {
		w.out.WriteString(q)
		w.out.WriteString(" ")
	}
	fmt.Fprintf(&w.out, "%s %s", w.typeString(d.Type), d.Name)
	w.writeArray(d.Array)
	if d.Init != nil {
		w.out.WriteString(" = ")
		w.writeExpr(d.Init)
	}
	w.out.WriteString(";")
}

func (w *Writer) writePrototype(proto *Prototype) {
	fmt.Fprintf(&w.out, "%s %s(", w.typeString(proto.ReturnType), proto.Name)
	for i, p := range proto.Params {
		if i > 0 {
			w.out.WriteString(", ")
		}
		for _, q := range p.Qualifiers {
			w.out.WriteString(q)
			w.out.WriteString(" ")
		}
		w.out.WriteString(w.typeString(p.Type))
		if p.Name != "" {
			w.out.WriteString(" ")
			w.out.WriteString(p.Name)
		}
		w.writeArray(p.Array)
	}
	w.out.WriteString(")")
}

func (w *Writer) writeArray(a *ArraySpec) {
	if a == nil {
		return
	}
	w.out.WriteString("[")
	if a.Size != nil {
		w.writeExpr(a.Size)
	}
	w.out.WriteString("]")
}

func (w *Writer) typeString(t *TypeSpec) string {
	if t.Array == nil {
		return t.Name
	}
	sub := NewWriter()
	sub.out.WriteString(t.Name)
	sub.writeArray(t.Array)
	return sub.String()
}

// Statements

func (w *Writer) writeBlock(b *BlockStmt) {
	w.out.WriteString("{\n")
	w.indent++
	for _, s := range b.Statements {
		w.writeIndent()
		w.writeStmt(s)
		w.out.WriteString("\n")
	}
	w.indent--
	w.writeIndent()
	w.out.WriteString("}")
}

func (w *Writer) writeStmt(s Stmt) {
	switch s := s.(type) {
	case *BlockStmt:
		w.writeBlock(s)

	case *VarDecl:
		w.writeVarDecl(s)

	case *ExprStmt:
		w.writeExpr(s.Expr)
		w.out.WriteString(";")

	case *AssignStmt:
		w.writeExpr(s.Left)
		fmt.Fprintf(&w.out, " %s ", s.Op)
		w.writeExpr(s.Right)
		w.out.WriteString(";")

	case *IfStmt:
		w.out.WriteString("if (")
		w.writeExpr(s.Condition)
		w.out.WriteString(") ")
		w.writeBlock(s.Body)
		if s.Else != nil {
			w.out.WriteString(" else ")
			w.writeStmt(s.Else)
		}

	case *ForStmt:
		w.out.WriteString("for (")
		if s.Init != nil {
			w.writeSimpleStmt(s.Init)
		} else {
			w.out.WriteString(";")
		}
		w.out.WriteString(" ")
		if s.Condition != nil {
			w.writeExpr(s.Condition)
		}
		w.out.WriteString("; ")
		if s.Update != nil {
			w.writeForUpdate(s.Update)
		}
		w.out.WriteString(") ")
		w.writeBlock(s.Body)

	case *WhileStmt:
		w.out.WriteString("while (")
		w.writeExpr(s.Condition)
		w.out.WriteString(") ")
		w.writeBlock(s.Body)

	case *DoWhileStmt:
		w.out.WriteString("do ")
		w.writeBlock(s.Body)
		w.out.WriteString(" while (")
		w.writeExpr(s.Condition)
		w.out.WriteString(");")

	case *ReturnStmt:
		w.out.WriteString("return")
		if s.Value != nil {
			w.out.WriteString(" ")
			w.writeExpr(s.Value)
		}
		w.out.WriteString(";")

	case *BreakStmt:
		w.out.WriteString("break;")

	case *ContinueStmt:
		w.out.WriteString("continue;")

	case *DiscardStmt:
		w.out.WriteString("discard;")

	case *SwitchStmt:
		w.out.WriteString("switch (")
		w.writeExpr(s.Selector)
		w.out.WriteString(") {\n")
		w.indent++
		for _, c := range s.Cases {
			w.writeIndent()
			if c.IsDefault {
				w.out.WriteString("default:\n")
			} else {
				w.out.WriteString("case ")
				w.writeExpr(c.Selector)
				w.out.WriteString(":\n")
			}
			w.indent++
			for _, st := range c.Body {
				w.writeIndent()
				w.writeStmt(st)
				w.out.WriteString("\n")
			}
			w.indent--
		}
		w.indent--
		w.writeIndent()
		w.out.WriteString("}")
	}
}

// writeSimpleStmt writes a for-init statement including its semicolon.
func (w *Writer) writeSimpleStmt(s Stmt) {
	switch s := s.(type) {
	case *BlockStmt:
		// Multi-declarator for-init.
		for i, st := range s.Statements {
			if i > 0 {
				w.out.WriteString(" ")
			}
			w.writeSimpleStmt(st)
		}
	case *VarDecl:
		w.writeVarDecl(s)
	case *ExprStmt:
		w.writeExpr(s.Expr)
		w.out.WriteString(";")
	case *AssignStmt:
		w.writeExpr(s.Left)
		fmt.Fprintf(&w.out, " %s ", s.Op)
		w.writeExpr(s.Right)
		w.out.WriteString(";")
	}
}

// writeForUpdate writes a for-update clause without a semicolon.
func (w *Writer) writeForUpdate(s Stmt) {
	switch s := s.(type) {
	case *ExprStmt:
		w.writeExpr(s.Expr)
	case *AssignStmt:
		w.writeExpr(s.Left)
		fmt.Fprintf(&w.out, " %s ", s.Op)
		w.writeExpr(s.Right)
	}
}

func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

// Expressions

func (w *Writer) writeExpr(e Expr) {
	switch e := e.(type) {
	case *Ident:
		w.out.WriteString(e.Name)

	case *Literal:
		w.out.WriteString(e.Value)

	case *PlaceholderExpr:
		// Internal node; rendered for diagnostics only.
		fmt.Fprintf(&w.out, "_%d", e.Index+1)

	case *BinaryExpr:
		w.writeExpr(e.Left)
		fmt.Fprintf(&w.out, " %s ", e.Op)
		w.writeExpr(e.Right)

	case *UnaryExpr:
		w.out.WriteString(e.Op.String())
		w.writeExpr(e.Operand)

	case *PostfixExpr:
		w.writeExpr(e.Operand)
		w.out.WriteString(e.Op.String())

	case *TernaryExpr:
		w.writeExpr(e.Condition)
		w.out.WriteString(" ? ")
		w.writeExpr(e.True)
		w.out.WriteString(" : ")
		w.writeExpr(e.False)

	case *CallExpr:
		w.out.WriteString(e.Callee)
		w.out.WriteString("(")
		for i, a := range e.Args {
			if i > 0 {
				w.out.WriteString(", ")
			}
			w.writeExpr(a)
		}
		w.out.WriteString(")")

	case *IndexExpr:
		w.writeExpr(e.Expr)
		w.out.WriteString("[")
		w.writeExpr(e.Index)
		w.out.WriteString("]")

	case *MemberExpr:
		w.writeExpr(e.Expr)
		w.out.WriteString(".")
		w.out.WriteString(e.Member)

	case *ParenExpr:
		w.out.WriteString("(")
		w.writeExpr(e.Expr)
		w.out.WriteString(")")
	}
}

// ExprString serializes a single expression.
func ExprString(e Expr) string {
	w := NewWriter()
	w.writeExpr(e)
	return w.String()
}

// PrototypeString serializes a function prototype without the trailing
// semicolon.
func PrototypeString(proto *Prototype) string {
	w := NewWriter()
	w.writePrototype(proto)
	return w.String()
}

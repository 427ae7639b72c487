package glsl

// Deep copies of AST nodes. Specializations produced by the template
// engine own their bodies; the original template AST is never mutated.

// CloneDecl returns a deep copy of a declaration.
func CloneDecl(d Decl) Decl {
	switch d := d.(type) {
	case *DirectiveDecl:
		c := *d
		return &c
	case *PrecisionDecl:
		return &PrecisionDecl{
			Precision: d.Precision,
			Type:      CloneTypeSpec(d.Type),
			Span:      d.Span,
		}
	case *StructDecl:
		return &StructDecl{
			Name:   d.Name,
			Fields: cloneFields(d.Fields),
			Span:   d.Span,
		}
	case *BlockDecl:
		return &BlockDecl{
			Qualifiers: cloneStrings(d.Qualifiers),
			Name:       d.Name,
			Fields:     cloneFields(d.Fields),
			Instance:   d.Instance,
			Span:       d.Span,
		}
	case *VarDecl:
		return &VarDecl{
			Qualifiers: cloneStrings(d.Qualifiers),
			Type:       CloneTypeSpec(d.Type),
			Name:       d.Name,
			Array:      cloneArray(d.Array),
			Init:       CloneExpr(d.Init),
			Span:       d.Span,
		}
	case *PrototypeDecl:
		return &PrototypeDecl{
			Proto: ClonePrototype(d.Proto),
			Span:  d.Span,
		}
	case *FunctionDecl:
		return &FunctionDecl{
			Proto: ClonePrototype(d.Proto),
			Body:  CloneStmt(d.Body).(*BlockStmt),
			Span:  d.Span,
		}
	}
	return nil
}

// ClonePrototype returns a deep copy of a function prototype.
func ClonePrototype(proto *Prototype) *Prototype {
	if proto == nil {
		return nil
	}
	params := make([]*Param, len(proto.Params))
	for i, p := range proto.Params {
		params[i] = &Param{
			Qualifiers: cloneStrings(p.Qualifiers),
			Type:       CloneTypeSpec(p.Type),
			Name:       p.Name,
			Array:      cloneArray(p.Array),
			Span:       p.Span,
		}
	}
	return &Prototype{
		ReturnType: CloneTypeSpec(proto.ReturnType),
		Name:       proto.Name,
		Params:     params,
		Span:       proto.Span,
	}
}

// CloneTypeSpec returns a deep copy of a type reference.
func CloneTypeSpec(t *TypeSpec) *TypeSpec {
	if t == nil {
		return nil
	}
	return &TypeSpec{
		Name:  t.Name,
		Array: cloneArray(t.Array),
		Span:  t.Span,
	}
}

// CloneStmt returns a deep copy of a statement.
func CloneStmt(s Stmt) Stmt {
	switch s := s.(type) {
	case nil:
		return nil
	case *BlockStmt:
		stmts := make([]Stmt, len(s.Statements))
		for i, st := range s.Statements {
			stmts[i] = CloneStmt(st)
		}
		return &BlockStmt{Statements: stmts, Span: s.Span}
	case *ExprStmt:
		return &ExprStmt{Expr: CloneExpr(s.Expr), Span: s.Span}
	case *AssignStmt:
		return &AssignStmt{
			Left:  CloneExpr(s.Left),
			Op:    s.Op,
			Right: CloneExpr(s.Right),
			Span:  s.Span,
		}
	case *VarDecl:
		return CloneDecl(s).(*VarDecl)
	case *IfStmt:
		c := &IfStmt{
			Condition: CloneExpr(s.Condition),
			Body:      CloneStmt(s.Body).(*BlockStmt),
			Span:      s.Span,
		}
		if s.Else != nil {
			c.Else = CloneStmt(s.Else)
		}
		return c
	case *ForStmt:
		c := &ForStmt{
			Condition: CloneExpr(s.Condition),
			Body:      CloneStmt(s.Body).(*BlockStmt),
			Span:      s.Span,
		}
		if s.Init != nil {
			c.Init = CloneStmt(s.Init)
		}
		if s.Update != nil {
			c.Update = CloneStmt(s.Update)
		}
		return c
	case *WhileStmt:
		return &WhileStmt{
			Condition: CloneExpr(s.Condition),
			Body:      CloneStmt(s.Body).(*BlockStmt),
			Span:      s.Span,
		}
	case *DoWhileStmt:
		return &DoWhileStmt{
			Body:      CloneStmt(s.Body).(*BlockStmt),
			Condition: CloneExpr(s.Condition),
			Span:      s.Span,
		}
	case *ReturnStmt:
		return &ReturnStmt{Value: CloneExpr(s.Value), Span: s.Span}
	case *BreakStmt:
		c := *s
		return &c
	case *ContinueStmt:
		c := *s
		return &c
	case *DiscardStmt:
		c := *s
		return &c
	case *SwitchStmt:
		cases := make([]*SwitchCase, len(s.Cases))
		for i, sc := range s.Cases {
			body := make([]Stmt, len(sc.Body))
			for j, st := range sc.Body {
				body[j] = CloneStmt(st)
			}
			cases[i] = &SwitchCase{
				Selector:  CloneExpr(sc.Selector),
				IsDefault: sc.IsDefault,
				Body:      body,
				Span:      sc.Span,
			}
		}
		return &SwitchStmt{
			Selector: CloneExpr(s.Selector),
			Cases:    cases,
			Span:     s.Span,
		}
	}
	return nil
}

// CloneExpr returns a deep copy of an expression.
func CloneExpr(e Expr) Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *Ident:
		c := *e
		return &c
	case *Literal:
		c := *e
		return &c
	case *PlaceholderExpr:
		c := *e
		return &c
	case *BinaryExpr:
		return &BinaryExpr{
			Left:  CloneExpr(e.Left),
			Op:    e.Op,
			Right: CloneExpr(e.Right),
			Span:  e.Span,
		}
	case *UnaryExpr:
		return &UnaryExpr{
			Op:      e.Op,
			Operand: CloneExpr(e.Operand),
			Span:    e.Span,
		}
	case *PostfixExpr:
		return &PostfixExpr{
			Operand: CloneExpr(e.Operand),
			Op:      e.Op,
			Span:    e.Span,
		}
	case *TernaryExpr:
		return &TernaryExpr{
			Condition: CloneExpr(e.Condition),
			True:      CloneExpr(e.True),
			False:     CloneExpr(e.False),
			Span:      e.Span,
		}
	case *CallExpr:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = CloneExpr(a)
		}
		return &CallExpr{Callee: e.Callee, Args: args, Span: e.Span}
	case *IndexExpr:
		return &IndexExpr{
			Expr:  CloneExpr(e.Expr),
			Index: CloneExpr(e.Index),
			Span:  e.Span,
		}
	case *MemberExpr:
		return &MemberExpr{
			Expr:   CloneExpr(e.Expr),
			Member: e.Member,
			Span:   e.Span,
		}
	case *ParenExpr:
		return &ParenExpr{Expr: CloneExpr(e.Expr), Span: e.Span}
	}
	return nil
}

func cloneFields(fields []*StructField) []*StructField {
	out := make([]*StructField, len(fields))
	for i, f := range fields {
		out[i] = &StructField{
			Type:  CloneTypeSpec(f.Type),
			Name:  f.Name,
			Array: cloneArray(f.Array),
			Span:  f.Span,
		}
	}
	return out
}

func cloneArray(a *ArraySpec) *ArraySpec {
	if a == nil {
		return nil
	}
	return &ArraySpec{Size: CloneExpr(a.Size), Span: a.Span}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

package transform

import (
	"strconv"
	"strings"

	"github.com/gogpu/glslt/glsl"
)

// unitSink receives finished specializations from the instantiator.
// Both transform units implement it; specializations are pushed before
// the declaration whose processing produced them.
type unitSink interface {
	pushSpecialization(spec *Specialization)
}

// instantiator walks one function body, resolving template calls into
// specializations. A fresh instantiator is created per function and per
// template instantiation; the global scope and the store are shared.
type instantiator struct {
	global  *GlobalScope
	sink    unitSink
	symbols *symbolTable

	// bindings maps pointer parameter names to their resolved arguments
	// while a template body is being instantiated. Nil for ordinary
	// functions.
	bindings map[string]*ResolvedArg
}

func newInstantiator(global *GlobalScope, sink unitSink) *instantiator {
	return &instantiator{
		global:  global,
		sink:    sink,
		symbols: newSymbolTable(),
	}
}

// instantiateFunction rewrites an ordinary function body in place,
// replacing every template call with a call to a specialization.
func (c *instantiator) instantiateFunction(def *glsl.FunctionDecl) error {
	c.symbols.push()
	defer c.symbols.pop()

	for _, p := range def.Proto.Params {
		if p.Name == "" {
			continue
		}
		if err := c.symbols.declare(p.Name, symParameter, p.Type, p.Array); err != nil {
			return err
		}
	}

	return c.walkBlock(def.Body, false)
}

// Statement traversal. Scopes are pushed on compound statements and
// for-init, matching capture visibility rules.

func (c *instantiator) walkBlock(b *glsl.BlockStmt, newScope bool) error {
	if newScope {
		c.symbols.push()
		defer c.symbols.pop()
	}

	for i, s := range b.Statements {
		rewritten, err := c.walkStmt(s)
		if err != nil {
			return err
		}
		b.Statements[i] = rewritten
	}
	return nil
}

func (c *instantiator) walkStmt(s glsl.Stmt) (glsl.Stmt, error) {
	switch s := s.(type) {
	case *glsl.VarDecl:
		if s.Init != nil {
			init, err := c.rewriteExpr(s.Init)
			if err != nil {
				return nil, err
			}
			s.Init = init
		}
		if err := c.symbols.declare(s.Name, symVariable, s.Type, s.Array); err != nil {
			return nil, err
		}
		return s, nil

	case *glsl.ExprStmt:
		e, err := c.rewriteExpr(s.Expr)
		if err != nil {
			return nil, err
		}
		s.Expr = e
		return s, nil

	case *glsl.AssignStmt:
		left, err := c.rewriteExpr(s.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.rewriteExpr(s.Right)
		if err != nil {
			return nil, err
		}
		s.Left, s.Right = left, right
		return s, nil

	case *glsl.BlockStmt:
		if err := c.walkBlock(s, true); err != nil {
			return nil, err
		}
		return s, nil

	case *glsl.IfStmt:
		cond, err := c.rewriteExpr(s.Condition)
		if err != nil {
			return nil, err
		}
		s.Condition = cond
		if err := c.walkBlock(s.Body, true); err != nil {
			return nil, err
		}
		if s.Else != nil {
			elseStmt, err := c.walkStmt(s.Else)
			if err != nil {
				return nil, err
			}
			s.Else = elseStmt
		}
		return s, nil

	case *glsl.ForStmt:
		c.symbols.push()
		defer c.symbols.pop()
		if s.Init != nil {
			init, err := c.walkStmt(s.Init)
			if err != nil {
				return nil, err
			}
			s.Init = init
		}
		if s.Condition != nil {
			cond, err := c.rewriteExpr(s.Condition)
			if err != nil {
				return nil, err
			}
			s.Condition = cond
		}
		if s.Update != nil {
			update, err := c.walkStmt(s.Update)
			if err != nil {
				return nil, err
			}
			s.Update = update
		}
		if err := c.walkBlock(s.Body, true); err != nil {
			return nil, err
		}
		return s, nil

	case *glsl.WhileStmt:
		cond, err := c.rewriteExpr(s.Condition)
		if err != nil {
			return nil, err
		}
		s.Condition = cond
		if err := c.walkBlock(s.Body, true); err != nil {
			return nil, err
		}
		return s, nil

	case *glsl.DoWhileStmt:
		if err := c.walkBlock(s.Body, true); err != nil {
			return nil, err
		}
		cond, err := c.rewriteExpr(s.Condition)
		if err != nil {
			return nil, err
		}
		s.Condition = cond
		return s, nil

	case *glsl.ReturnStmt:
		if s.Value != nil {
			value, err := c.rewriteExpr(s.Value)
			if err != nil {
				return nil, err
			}
			s.Value = value
		}
		return s, nil

	case *glsl.SwitchStmt:
		selector, err := c.rewriteExpr(s.Selector)
		if err != nil {
			return nil, err
		}
		s.Selector = selector
		for _, sc := range s.Cases {
			c.symbols.push()
			for i, st := range sc.Body {
				rewritten, err := c.walkStmt(st)
				if err != nil {
					c.symbols.pop()
					return nil, err
				}
				sc.Body[i] = rewritten
			}
			c.symbols.pop()
		}
		return s, nil

	default:
		// break, continue, discard
		return s, nil
	}
}

// Expression rewriting.

func (c *instantiator) rewriteExpr(e glsl.Expr) (glsl.Expr, error) {
	switch e := e.(type) {
	case *glsl.Ident, *glsl.Literal, *glsl.PlaceholderExpr, nil:
		return e, nil

	case *glsl.BinaryExpr:
		left, err := c.rewriteExpr(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.rewriteExpr(e.Right)
		if err != nil {
			return nil, err
		}
		e.Left, e.Right = left, right
		return e, nil

	case *glsl.UnaryExpr:
		operand, err := c.rewriteExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		e.Operand = operand
		return e, nil

	case *glsl.PostfixExpr:
		operand, err := c.rewriteExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		e.Operand = operand
		return e, nil

	case *glsl.TernaryExpr:
		cond, err := c.rewriteExpr(e.Condition)
		if err != nil {
			return nil, err
		}
		trueExpr, err := c.rewriteExpr(e.True)
		if err != nil {
			return nil, err
		}
		falseExpr, err := c.rewriteExpr(e.False)
		if err != nil {
			return nil, err
		}
		e.Condition, e.True, e.False = cond, trueExpr, falseExpr
		return e, nil

	case *glsl.IndexExpr:
		inner, err := c.rewriteExpr(e.Expr)
		if err != nil {
			return nil, err
		}
		index, err := c.rewriteExpr(e.Index)
		if err != nil {
			return nil, err
		}
		e.Expr, e.Index = inner, index
		return e, nil

	case *glsl.MemberExpr:
		inner, err := c.rewriteExpr(e.Expr)
		if err != nil {
			return nil, err
		}
		e.Expr = inner
		return e, nil

	case *glsl.ParenExpr:
		inner, err := c.rewriteExpr(e.Expr)
		if err != nil {
			return nil, err
		}
		e.Expr = inner
		return e, nil

	case *glsl.CallExpr:
		return c.rewriteCall(e)
	}
	return e, nil
}

func (c *instantiator) rewriteCall(ce *glsl.CallExpr) (glsl.Expr, error) {
	// A call through a pointer parameter of the template currently
	// being instantiated.
	if c.bindings != nil {
		if b, ok := c.bindings[ce.Callee]; ok {
			return c.expandPointerCall(b, ce)
		}
	}

	// A template call: resolve, fingerprint, instantiate, rewrite.
	if tpl := c.global.Template(ce.Callee); tpl != nil {
		return c.expandTemplateCall(tpl, ce)
	}

	for i, a := range ce.Args {
		rewritten, err := c.rewriteExpr(a)
		if err != nil {
			return nil, err
		}
		ce.Args[i] = rewritten
	}
	return ce, nil
}

// expandPointerCall replaces a call through a pointer parameter with
// its bound argument: a rename for static bindings, a body splice for
// lambdas.
func (c *instantiator) expandPointerCall(b *ResolvedArg, ce *glsl.CallExpr) (glsl.Expr, error) {
	args := make([]glsl.Expr, len(ce.Args))
	for i, a := range ce.Args {
		rewritten, err := c.rewriteExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = rewritten
	}

	if b.Kind == ArgStatic {
		return &glsl.CallExpr{
			Callee: b.Name,
			Args:   args,
			Span:   ce.Span,
		}, nil
	}

	expansion, err := substitutePlaceholders(glsl.CloneExpr(b.Lambda), args, len(b.Pointer.Params))
	if err != nil {
		return nil, err
	}

	// Template calls deferred during lambda resolution (because their
	// arguments still contained placeholders) are now concrete.
	return c.rewriteSpliced(expansion)
}

// substitutePlaceholders replaces every placeholder node with the
// corresponding actual argument.
func substitutePlaceholders(e glsl.Expr, actuals []glsl.Expr, arity int) (glsl.Expr, error) {
	switch e := e.(type) {
	case *glsl.PlaceholderExpr:
		if e.Index >= len(actuals) {
			return nil, &BadPlaceholderError{
				Name:  "_" + strconv.Itoa(e.Index+1),
				Arity: arity,
			}
		}
		return glsl.CloneExpr(actuals[e.Index]), nil

	case *glsl.BinaryExpr:
		left, err := substitutePlaceholders(e.Left, actuals, arity)
		if err != nil {
			return nil, err
		}
		right, err := substitutePlaceholders(e.Right, actuals, arity)
		if err != nil {
			return nil, err
		}
		e.Left, e.Right = left, right
		return e, nil

	case *glsl.UnaryExpr:
		operand, err := substitutePlaceholders(e.Operand, actuals, arity)
		if err != nil {
			return nil, err
		}
		e.Operand = operand
		return e, nil

	case *glsl.PostfixExpr:
		operand, err := substitutePlaceholders(e.Operand, actuals, arity)
		if err != nil {
			return nil, err
		}
		e.Operand = operand
		return e, nil

	case *glsl.TernaryExpr:
		cond, err := substitutePlaceholders(e.Condition, actuals, arity)
		if err != nil {
			return nil, err
		}
		trueExpr, err := substitutePlaceholders(e.True, actuals, arity)
		if err != nil {
			return nil, err
		}
		falseExpr, err := substitutePlaceholders(e.False, actuals, arity)
		if err != nil {
			return nil, err
		}
		e.Condition, e.True, e.False = cond, trueExpr, falseExpr
		return e, nil

	case *glsl.CallExpr:
		for i, a := range e.Args {
			sub, err := substitutePlaceholders(a, actuals, arity)
			if err != nil {
				return nil, err
			}
			e.Args[i] = sub
		}
		return e, nil

	case *glsl.IndexExpr:
		inner, err := substitutePlaceholders(e.Expr, actuals, arity)
		if err != nil {
			return nil, err
		}
		index, err := substitutePlaceholders(e.Index, actuals, arity)
		if err != nil {
			return nil, err
		}
		e.Expr, e.Index = inner, index
		return e, nil

	case *glsl.MemberExpr:
		inner, err := substitutePlaceholders(e.Expr, actuals, arity)
		if err != nil {
			return nil, err
		}
		e.Expr = inner
		return e, nil

	case *glsl.ParenExpr:
		inner, err := substitutePlaceholders(e.Expr, actuals, arity)
		if err != nil {
			return nil, err
		}
		e.Expr = inner
		return e, nil

	default:
		return e, nil
	}
}

// rewriteSpliced resolves template calls that became concrete after
// placeholder substitution. Calls through pointer bindings are left
// untouched here: a spliced lambda may legitimately mention identifiers
// that only an outer layer can bind.
func (c *instantiator) rewriteSpliced(e glsl.Expr) (glsl.Expr, error) {
	switch e := e.(type) {
	case *glsl.CallExpr:
		for i, a := range e.Args {
			sub, err := c.rewriteSpliced(a)
			if err != nil {
				return nil, err
			}
			e.Args[i] = sub
		}
		if tpl := c.global.Template(e.Callee); tpl != nil {
			return c.expandTemplateCall(tpl, e)
		}
		return e, nil

	case *glsl.BinaryExpr:
		left, err := c.rewriteSpliced(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.rewriteSpliced(e.Right)
		if err != nil {
			return nil, err
		}
		e.Left, e.Right = left, right
		return e, nil

	case *glsl.UnaryExpr:
		operand, err := c.rewriteSpliced(e.Operand)
		if err != nil {
			return nil, err
		}
		e.Operand = operand
		return e, nil

	case *glsl.PostfixExpr:
		operand, err := c.rewriteSpliced(e.Operand)
		if err != nil {
			return nil, err
		}
		e.Operand = operand
		return e, nil

	case *glsl.TernaryExpr:
		cond, err := c.rewriteSpliced(e.Condition)
		if err != nil {
			return nil, err
		}
		trueExpr, err := c.rewriteSpliced(e.True)
		if err != nil {
			return nil, err
		}
		falseExpr, err := c.rewriteSpliced(e.False)
		if err != nil {
			return nil, err
		}
		e.Condition, e.True, e.False = cond, trueExpr, falseExpr
		return e, nil

	case *glsl.IndexExpr:
		inner, err := c.rewriteSpliced(e.Expr)
		if err != nil {
			return nil, err
		}
		index, err := c.rewriteSpliced(e.Index)
		if err != nil {
			return nil, err
		}
		e.Expr, e.Index = inner, index
		return e, nil

	case *glsl.MemberExpr:
		inner, err := c.rewriteSpliced(e.Expr)
		if err != nil {
			return nil, err
		}
		e.Expr = inner
		return e, nil

	case *glsl.ParenExpr:
		inner, err := c.rewriteSpliced(e.Expr)
		if err != nil {
			return nil, err
		}
		e.Expr = inner
		return e, nil

	default:
		return e, nil
	}
}

// expandTemplateCall resolves and instantiates a template call,
// returning the rewritten call expression.
func (c *instantiator) expandTemplateCall(tpl *TemplateDefinition, ce *glsl.CallExpr) (glsl.Expr, error) {
	ptrArgs, valueArgs, err := tpl.splitArgs(ce.Args)
	if err != nil {
		return nil, err
	}

	for i, a := range valueArgs {
		rewritten, err := c.rewriteExpr(a)
		if err != nil {
			return nil, err
		}
		valueArgs[i] = rewritten
	}

	rc, err := c.resolveArgs(tpl, ptrArgs)
	if err != nil {
		return nil, err
	}

	captureMap := make(map[string]*Capture, len(rc.captures))
	for _, cp := range rc.captures {
		captureMap[cp.GenName] = cp
	}

	canonical := canonicalCall(tpl.Name(), rc.args, captureMap)
	store := c.global.store
	fp := store.fingerprint(canonical)

	spec := store.get(fp)
	if spec == nil {
		if store.resolving[fp] {
			return nil, &TemplateCycleError{Name: tpl.Name()}
		}
		spec, err = c.instantiateTemplate(tpl, rc, fp)
		if err != nil {
			return nil, err
		}
	}

	args := make([]glsl.Expr, 0, len(valueArgs)+len(rc.captures))
	args = append(args, valueArgs...)
	for _, cp := range rc.captures {
		args = append(args, &glsl.Ident{Name: cp.Symbol})
	}

	return &glsl.CallExpr{
		Callee: spec.Name,
		Args:   args,
		Span:   ce.Span,
	}, nil
}

// resolveArgs binds each pointer argument to a static function or a
// resolved lambda, collecting captures in lexical discovery order.
func (c *instantiator) resolveArgs(tpl *TemplateDefinition, ptrArgs []glsl.Expr) (*resolvedCall, error) {
	rc := &resolvedCall{template: tpl}
	capBySymbol := make(map[string]*Capture)

	for i, arg := range ptrArgs {
		ptr := c.global.PointerType(tpl.params[i].TypeName)

		switch a := arg.(type) {
		case *glsl.Ident:
			// A pointer parameter of the enclosing template propagates
			// its own binding.
			if c.bindings != nil {
				if b, ok := c.bindings[a.Name]; ok {
					resolved, err := c.propagateBinding(b, ptr, rc, capBySymbol)
					if err != nil {
						return nil, err
					}
					rc.args = append(rc.args, resolved)
					continue
				}
			}

			fn := c.global.lookupFunction(a.Name)
			if fn == nil {
				return nil, &TemplateArgMismatchError{
					Template: tpl.Name(),
					Index:    i,
					Arg:      a.Name,
				}
			}
			if !signatureCompatible(fn, ptr) {
				return nil, &TemplateArgMismatchError{
					Template: tpl.Name(),
					Index:    i,
					Arg:      a.Name,
				}
			}
			rc.args = append(rc.args, ResolvedArg{
				Kind:    ArgStatic,
				Name:    a.Name,
				Pointer: ptr,
			})

		case *glsl.CallExpr:
			lam, err := c.resolveLambdaExpr(glsl.CloneExpr(a), ptr, rc, capBySymbol)
			if err != nil {
				return nil, err
			}
			rc.args = append(rc.args, ResolvedArg{
				Kind:    ArgLambda,
				Lambda:  lam,
				Pointer: ptr,
			})

		default:
			return nil, &InvalidTemplateArgError{
				Template: tpl.Name(),
				Index:    i,
			}
		}
	}

	return rc, nil
}

// propagateBinding re-resolves an outer binding against the current
// scope: static bindings pass through, lambda bindings are cloned and
// their free identifiers re-captured.
func (c *instantiator) propagateBinding(b *ResolvedArg, ptr *glsl.Prototype, rc *resolvedCall, capBySymbol map[string]*Capture) (ResolvedArg, error) {
	if b.Kind == ArgStatic {
		return ResolvedArg{Kind: ArgStatic, Name: b.Name, Pointer: ptr}, nil
	}

	lam, err := c.resolveLambdaExpr(glsl.CloneExpr(b.Lambda), ptr, rc, capBySymbol)
	if err != nil {
		return ResolvedArg{}, err
	}
	return ResolvedArg{Kind: ArgLambda, Lambda: lam, Pointer: ptr}, nil
}

// resolveLambdaExpr rewrites a lambda expression: placeholders become
// index nodes, scope-visible identifiers become captures, everything
// else passes through unchanged for an outer layer to bind.
func (c *instantiator) resolveLambdaExpr(e glsl.Expr, ptr *glsl.Prototype, rc *resolvedCall, capBySymbol map[string]*Capture) (glsl.Expr, error) {
	switch e := e.(type) {
	case *glsl.Ident:
		idx, isPlaceholder, err := classifyPlaceholder(e.Name, ptr)
		if err != nil {
			return nil, err
		}
		if isPlaceholder {
			return &glsl.PlaceholderExpr{Index: idx, Span: e.Span}, nil
		}

		if sym := c.symbols.lookup(e.Name); sym != nil {
			cp := capBySymbol[e.Name]
			if cp == nil {
				cp = &Capture{
					Symbol:  e.Name,
					GenName: c.global.Prefix() + "lp" + strconv.Itoa(len(rc.captures)),
					Type:    glsl.CloneTypeSpec(sym.Type),
					Array:   sym.Array,
					Ordinal: len(rc.captures),
				}
				rc.captures = append(rc.captures, cp)
				capBySymbol[e.Name] = cp
			}
			return &glsl.Ident{Name: cp.GenName, Span: e.Span}, nil
		}

		return e, nil

	case *glsl.PlaceholderExpr, *glsl.Literal, nil:
		return e, nil

	case *glsl.CallExpr:
		// A call through a pointer parameter of the enclosing template
		// expands inside the lambda as well.
		if c.bindings != nil {
			if b, ok := c.bindings[e.Callee]; ok {
				args := make([]glsl.Expr, len(e.Args))
				for i, a := range e.Args {
					resolved, err := c.resolveLambdaExpr(a, ptr, rc, capBySymbol)
					if err != nil {
						return nil, err
					}
					args[i] = resolved
				}
				if b.Kind == ArgStatic {
					return &glsl.CallExpr{Callee: b.Name, Args: args, Span: e.Span}, nil
				}
				return substitutePlaceholders(glsl.CloneExpr(b.Lambda), args, len(b.Pointer.Params))
			}
		}

		// A lambda whose callee is itself a template instantiates
		// recursively, unless placeholders keep it abstract; those are
		// resolved after splicing. The resulting specialization call is
		// re-resolved so its arguments bind against the outer lambda.
		if tpl := c.global.Template(e.Callee); tpl != nil && !lambdaStillAbstract(e, ptr) {
			expanded, err := c.expandTemplateCall(tpl, e)
			if err != nil {
				return nil, err
			}
			return c.resolveLambdaExpr(expanded, ptr, rc, capBySymbol)
		}

		for i, a := range e.Args {
			resolved, err := c.resolveLambdaExpr(a, ptr, rc, capBySymbol)
			if err != nil {
				return nil, err
			}
			e.Args[i] = resolved
		}
		return e, nil

	case *glsl.BinaryExpr:
		left, err := c.resolveLambdaExpr(e.Left, ptr, rc, capBySymbol)
		if err != nil {
			return nil, err
		}
		right, err := c.resolveLambdaExpr(e.Right, ptr, rc, capBySymbol)
		if err != nil {
			return nil, err
		}
		e.Left, e.Right = left, right
		return e, nil

	case *glsl.UnaryExpr:
		operand, err := c.resolveLambdaExpr(e.Operand, ptr, rc, capBySymbol)
		if err != nil {
			return nil, err
		}
		e.Operand = operand
		return e, nil

	case *glsl.PostfixExpr:
		operand, err := c.resolveLambdaExpr(e.Operand, ptr, rc, capBySymbol)
		if err != nil {
			return nil, err
		}
		e.Operand = operand
		return e, nil

	case *glsl.TernaryExpr:
		cond, err := c.resolveLambdaExpr(e.Condition, ptr, rc, capBySymbol)
		if err != nil {
			return nil, err
		}
		trueExpr, err := c.resolveLambdaExpr(e.True, ptr, rc, capBySymbol)
		if err != nil {
			return nil, err
		}
		falseExpr, err := c.resolveLambdaExpr(e.False, ptr, rc, capBySymbol)
		if err != nil {
			return nil, err
		}
		e.Condition, e.True, e.False = cond, trueExpr, falseExpr
		return e, nil

	case *glsl.IndexExpr:
		inner, err := c.resolveLambdaExpr(e.Expr, ptr, rc, capBySymbol)
		if err != nil {
			return nil, err
		}
		index, err := c.resolveLambdaExpr(e.Index, ptr, rc, capBySymbol)
		if err != nil {
			return nil, err
		}
		e.Expr, e.Index = inner, index
		return e, nil

	case *glsl.MemberExpr:
		inner, err := c.resolveLambdaExpr(e.Expr, ptr, rc, capBySymbol)
		if err != nil {
			return nil, err
		}
		e.Expr = inner
		return e, nil

	case *glsl.ParenExpr:
		inner, err := c.resolveLambdaExpr(e.Expr, ptr, rc, capBySymbol)
		if err != nil {
			return nil, err
		}
		e.Expr = inner
		return e, nil
	}
	return e, nil
}

// classifyPlaceholder resolves the placeholder forms: "_n" (1-based
// index), "_name" and a bare formal parameter name of the pointer type.
func classifyPlaceholder(name string, ptr *glsl.Prototype) (int, bool, error) {
	if strings.HasPrefix(name, "_") {
		rest := name[1:]
		if rest != "" && rest[0] >= '0' && rest[0] <= '9' {
			n, err := strconv.Atoi(rest)
			if err != nil {
				// Numeric suffix that is not an integer, e.g. "_1x".
				return 0, false, &BadPlaceholderError{Name: name, Arity: len(ptr.Params)}
			}
			if n < 1 || n > len(ptr.Params) {
				return 0, false, &BadPlaceholderError{Name: name, Arity: len(ptr.Params)}
			}
			return n - 1, true, nil
		}
		for i, p := range ptr.Params {
			if p.Name != "" && p.Name == rest {
				return i, true, nil
			}
		}
	}

	for i, p := range ptr.Params {
		if p.Name != "" && p.Name == name {
			return i, true, nil
		}
	}

	return 0, false, nil
}

// lambdaStillAbstract reports whether the expression still references
// lambda placeholders, either as resolved index nodes or as raw
// identifiers that would classify as placeholders of ptr.
func lambdaStillAbstract(e glsl.Expr, ptr *glsl.Prototype) bool {
	found := false
	glsl.Inspect(e, func(n glsl.Node) bool {
		switch n := n.(type) {
		case *glsl.PlaceholderExpr:
			found = true
		case *glsl.Ident:
			if _, ok, err := classifyPlaceholder(n.Name, ptr); ok || err != nil {
				found = true
			}
		}
		return !found
	})
	return found
}

// instantiateTemplate produces a new specialization: clone the template
// body, expand pointer calls, append captures, drop pointer parameters,
// and resolve inner template calls recursively.
func (c *instantiator) instantiateTemplate(tpl *TemplateDefinition, rc *resolvedCall, fp string) (*Specialization, error) {
	store := c.global.store
	store.resolving[fp] = true
	defer delete(store.resolving, fp)

	mangled := store.mangle(tpl.Name(), fp)

	def := glsl.CloneDecl(tpl.Definition()).(*glsl.FunctionDecl)

	child := &instantiator{
		global:   c.global,
		sink:     c.sink,
		symbols:  newSymbolTable(),
		bindings: make(map[string]*ResolvedArg, len(tpl.params)),
	}
	child.symbols.pointerParams = make(map[string]bool, len(tpl.params))
	for i := range tpl.params {
		if sym := tpl.params[i].Symbol; sym != "" {
			child.bindings[sym] = &rc.args[i]
			child.symbols.pointerParams[sym] = true
		}
	}

	valueParams := tpl.valueParams()

	child.symbols.push()
	for _, p := range valueParams {
		if p.Name == "" {
			continue
		}
		if err := child.symbols.declare(p.Name, symParameter, p.Type, p.Array); err != nil {
			return nil, err
		}
	}
	for _, cp := range rc.captures {
		if err := child.symbols.declare(cp.GenName, symParameter, cp.Type, cp.Array); err != nil {
			return nil, err
		}
	}

	if err := child.walkBlock(def.Body, false); err != nil {
		return nil, err
	}
	child.symbols.pop()

	params := make([]*glsl.Param, 0, len(valueParams)+len(rc.captures))
	params = append(params, valueParams...)
	for _, cp := range rc.captures {
		params = append(params, &glsl.Param{
			Qualifiers: []string{"in"},
			Type:       glsl.CloneTypeSpec(cp.Type),
			Name:       cp.GenName,
			Array:      cp.Array,
		})
	}

	def.Proto = &glsl.Prototype{
		ReturnType: def.Proto.ReturnType,
		Name:       mangled,
		Params:     params,
		Span:       def.Proto.Span,
	}

	spec := &Specialization{
		Fingerprint: fp,
		Name:        mangled,
		Template:    tpl.Name(),
		Decl:        def,
		Captures:    rc.captures,
	}

	store.record(spec)
	c.global.registerFunction(def.Proto)
	c.sink.pushSpecialization(spec)

	return spec, nil
}

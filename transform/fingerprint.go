package transform

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"

	"github.com/gogpu/glslt/glsl"
)

// Specialization is a monomorphized copy of a template for a concrete
// tuple of resolved template arguments.
type Specialization struct {
	// Fingerprint is the full hex digest identifying the (template,
	// arguments) pair.
	Fingerprint string
	// Name is the mangled function name.
	Name string
	// Template is the original template name, kept for diagnostics.
	Template string
	// Decl is the synthesized function definition.
	Decl *glsl.FunctionDecl
	// Captures are the appended capture parameters, in lexical
	// discovery order.
	Captures []*Capture
}

// specStore maps fingerprints to specializations and guarantees at
// most one specialization per fingerprint across a whole compilation.
type specStore struct {
	prefix string

	byFingerprint map[string]*Specialization
	// nameOwner maps a mangled name to the fingerprint that claimed it,
	// for suffix collision detection.
	nameOwner map[string]string
	// names maps fingerprints to their mangled names, assigned once.
	names map[string]string

	// memo short-circuits repeated identical call sites: xxh3 of the
	// canonical bytes, verified against the full bytes before reuse.
	memo map[uint64][]memoEntry

	// resolving tracks fingerprints currently being instantiated; a
	// re-entry is a template cycle.
	resolving map[string]bool
}

type memoEntry struct {
	canonical   []byte
	fingerprint string
}

func newSpecStore(prefix string) *specStore {
	return &specStore{
		prefix:        prefix,
		byFingerprint: make(map[string]*Specialization),
		nameOwner:     make(map[string]string),
		names:         make(map[string]string),
		memo:          make(map[uint64][]memoEntry),
		resolving:     make(map[string]bool),
	}
}

// fingerprint returns the hex digest of the canonical serialization,
// consulting the memo table first.
func (s *specStore) fingerprint(canonical []byte) string {
	key := xxh3.Hash(canonical)
	for _, e := range s.memo[key] {
		if bytes.Equal(e.canonical, canonical) {
			return e.fingerprint
		}
	}

	sum := blake3.Sum256(canonical)
	fp := hex.EncodeToString(sum[:])

	stored := make([]byte, len(canonical))
	copy(stored, canonical)
	s.memo[key] = append(s.memo[key], memoEntry{canonical: stored, fingerprint: fp})
	return fp
}

// mangle assigns (or returns) the mangled name for a fingerprint:
// prefix + template + "_" + the first six hex characters of the digest,
// extended by two characters at a time until unique within the store.
func (s *specStore) mangle(template, fingerprint string) string {
	if name, ok := s.names[fingerprint]; ok {
		return name
	}

	for n := 6; n <= len(fingerprint); n += 2 {
		name := s.prefix + template + "_" + fingerprint[:n]
		owner, taken := s.nameOwner[name]
		if !taken || owner == fingerprint {
			s.nameOwner[name] = fingerprint
			s.names[fingerprint] = name
			return name
		}
	}

	// Unreachable short of a full digest collision.
	name := s.prefix + template + "_" + fingerprint
	s.names[fingerprint] = name
	return name
}

// get returns the recorded specialization for a fingerprint.
func (s *specStore) get(fingerprint string) *Specialization {
	return s.byFingerprint[fingerprint]
}

// record stores a finished specialization.
func (s *specStore) record(spec *Specialization) {
	s.byFingerprint[spec.Fingerprint] = spec
}

// Canonical serialization.
//
// The canonical form of a template call is a byte string over
// (template name, resolved arguments): static arguments are tagged 'S'
// with the bound function name; lambdas are tagged 'L' with a
// structural rendering in which placeholders appear as "P:<index>" and
// captures as "C:<ordinal>:<type>". A nested template call inside a
// lambda that has no placeholders has already been replaced by a call to
// its specialization, so its mangled name (which embeds its fingerprint)
// contributes instead of its source spelling; a nested template call
// that still holds placeholders contributes its template name and
// arguments.
func canonicalCall(template string, args []ResolvedArg, captures map[string]*Capture) []byte {
	var buf bytes.Buffer
	buf.WriteString(template)
	buf.WriteByte(0)

	for _, a := range args {
		switch a.Kind {
		case ArgStatic:
			buf.WriteByte('S')
			buf.WriteString(a.Name)
		case ArgLambda:
			buf.WriteByte('L')
			canonicalExpr(&buf, a.Lambda, captures)
		}
		buf.WriteByte(0)
	}

	return buf.Bytes()
}

func canonicalExpr(buf *bytes.Buffer, e glsl.Expr, captures map[string]*Capture) {
	switch e := e.(type) {
	case *glsl.Ident:
		if cp, ok := captures[e.Name]; ok {
			fmt.Fprintf(buf, "C:%d:%s;", cp.Ordinal, typeString(cp.Type, cp.Array))
		} else {
			fmt.Fprintf(buf, "I:%s;", e.Name)
		}

	case *glsl.PlaceholderExpr:
		fmt.Fprintf(buf, "P:%d;", e.Index)

	case *glsl.Literal:
		fmt.Fprintf(buf, "V:%s;", e.Value)

	case *glsl.BinaryExpr:
		fmt.Fprintf(buf, "B:%s(", e.Op)
		canonicalExpr(buf, e.Left, captures)
		canonicalExpr(buf, e.Right, captures)
		buf.WriteByte(')')

	case *glsl.UnaryExpr:
		fmt.Fprintf(buf, "U:%s(", e.Op)
		canonicalExpr(buf, e.Operand, captures)
		buf.WriteByte(')')

	case *glsl.PostfixExpr:
		fmt.Fprintf(buf, "X:%s(", e.Op)
		canonicalExpr(buf, e.Operand, captures)
		buf.WriteByte(')')

	case *glsl.TernaryExpr:
		buf.WriteString("T(")
		canonicalExpr(buf, e.Condition, captures)
		canonicalExpr(buf, e.True, captures)
		canonicalExpr(buf, e.False, captures)
		buf.WriteByte(')')

	case *glsl.CallExpr:
		fmt.Fprintf(buf, "F:%s(", e.Callee)
		for _, a := range e.Args {
			canonicalExpr(buf, a, captures)
		}
		buf.WriteByte(')')

	case *glsl.IndexExpr:
		buf.WriteString("N(")
		canonicalExpr(buf, e.Expr, captures)
		canonicalExpr(buf, e.Index, captures)
		buf.WriteByte(')')

	case *glsl.MemberExpr:
		fmt.Fprintf(buf, "M:%s(", e.Member)
		canonicalExpr(buf, e.Expr, captures)
		buf.WriteByte(')')

	case *glsl.ParenExpr:
		// Grouping does not change identity.
		canonicalExpr(buf, e.Expr, captures)
	}
}

// Package query holds the typed query AST and the planner that turns it
// into a per-partition operator plan (spec.md §4.2): predicate pushdown
// against partition range metadata, then a sequence of typed primitives the
// exec package's vectorized executor runs batch-at-a-time.
package query

import "github.com/cswinter/locustdb/format"

// CompareOp is a comparison predicate operator.
type CompareOp int

const (
	Eq CompareOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (op CompareOp) String() string {
	switch op {
	case Eq:
		return "="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	default:
		return "?"
	}
}

// AggFunc is an aggregate function applied to a select column. AggNone means
// the column is a bare projection (typically a GROUP BY key).
type AggFunc int

const (
	AggNone AggFunc = iota
	AggCount
	AggSum
	AggMin
	AggMax
)

// Literal is a typed constant value appearing in a predicate.
type Literal struct {
	Type format.ValueType
	I    int64
	F    float64
	S    string
}

func IntLit(v int64) Literal    { return Literal{Type: format.TypeInt64, I: v} }
func FloatLit(v float64) Literal { return Literal{Type: format.TypeFloat, F: v} }
func StringLit(v string) Literal { return Literal{Type: format.TypeString, S: v} }

// Predicate is a boolean expression tree over column comparisons. Exactly
// one of Compare/And/Or/Not is set.
type Predicate struct {
	Compare *CompareExpr
	And     []*Predicate
	Or      []*Predicate
	Not     *Predicate
}

// CompareExpr compares a named column against a literal.
type CompareExpr struct {
	Column string
	Op     CompareOp
	Value  Literal
}

func Cmp(column string, op CompareOp, value Literal) *Predicate {
	return &Predicate{Compare: &CompareExpr{Column: column, Op: op, Value: value}}
}

func And(preds ...*Predicate) *Predicate { return &Predicate{And: preds} }
func Or(preds ...*Predicate) *Predicate  { return &Predicate{Or: preds} }
func Not(p *Predicate) *Predicate        { return &Predicate{Not: p} }

// Columns returns every column name this predicate references.
func (p *Predicate) Columns() []string {
	if p == nil {
		return nil
	}

	var out []string
	if p.Compare != nil {
		out = append(out, p.Compare.Column)
	}
	for _, sub := range p.And {
		out = append(out, sub.Columns()...)
	}
	for _, sub := range p.Or {
		out = append(out, sub.Columns()...)
	}
	if p.Not != nil {
		out = append(out, p.Not.Columns()...)
	}

	return out
}

// ExprOp is a binary arithmetic operator over two column expressions,
// spec.md §4.3's "typed arithmetic" primitive.
type ExprOp int

const (
	OpAdd ExprOp = iota
	OpSub
	OpMul
	OpDiv
)

func (op ExprOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// Expr is a scalar expression evaluated row-at-a-time: either a bare column
// reference (Left/Right both nil) or a binary arithmetic expression over two
// sub-expressions (spec.md §8 scenario 4: "SELECT a+b"). Null propagates:
// either operand null makes the whole expression null.
type Expr struct {
	Column string
	Op     ExprOp
	Left   *Expr
	Right  *Expr
}

// Col builds a bare column-reference expression.
func Col(column string) *Expr { return &Expr{Column: column} }

// BinExpr builds a binary arithmetic expression over two sub-expressions.
func BinExpr(op ExprOp, left, right *Expr) *Expr {
	return &Expr{Op: op, Left: left, Right: right}
}

// IsBinary reports whether e is a binary expression rather than a bare
// column reference.
func (e *Expr) IsBinary() bool { return e != nil && e.Left != nil && e.Right != nil }

// Columns returns every column name e references.
func (e *Expr) Columns() []string {
	if e == nil {
		return nil
	}
	if e.IsBinary() {
		return append(e.Left.Columns(), e.Right.Columns()...)
	}
	if e.Column == "" {
		return nil
	}

	return []string{e.Column}
}

// String renders e for diagnostics and default output column naming.
func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	if e.IsBinary() {
		return "(" + e.Left.String() + " " + e.Op.String() + " " + e.Right.String() + ")"
	}

	return e.Column
}

// SelectExpr is one projected output column, optionally aggregated. Either
// Column names a bare column directly, or Expr holds a computed expression
// (e.g. a binary arithmetic expression); Expr, when set, takes precedence.
type SelectExpr struct {
	Column string
	Expr   *Expr
	Agg    AggFunc
	Alias  string
}

// AsExpr returns s's expression, treating a bare Column as a trivial
// column-reference expression when Expr is unset.
func (s SelectExpr) AsExpr() *Expr {
	if s.Expr != nil {
		return s.Expr
	}

	return Col(s.Column)
}

// Columns returns every column name s references.
func (s SelectExpr) Columns() []string { return s.AsExpr().Columns() }

func (s SelectExpr) OutputName() string {
	if s.Alias != "" {
		return s.Alias
	}
	if s.Expr != nil {
		return s.Expr.String()
	}

	return s.Column
}

// OrderTerm is one ORDER BY term.
type OrderTerm struct {
	Column string
	Desc   bool
}

// Query is the typed AST the planner consumes: select list, predicate,
// group-by, order-by, and limit, over a single table (spec.md §4.2).
type Query struct {
	Table   string
	Select  []SelectExpr
	Where   *Predicate
	GroupBy []string
	OrderBy []OrderTerm
	Limit   int
}

// ReferencedColumns returns every column name the query touches, the set
// the executor must fetch for each partition.
func (q *Query) ReferencedColumns() []string {
	seen := map[string]bool{}
	var out []string

	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	for _, s := range q.Select {
		for _, c := range s.Columns() {
			add(c)
		}
	}
	for _, c := range q.GroupBy {
		add(c)
	}
	for _, o := range q.OrderBy {
		add(o.Column)
	}
	for _, c := range q.Where.Columns() {
		add(c)
	}

	return out
}

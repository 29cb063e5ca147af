package query

// Node is the interface for all parse tree nodes.
type Node interface {
	node()
}

// Expr is the interface for criteria expression nodes.
type Expr interface {
	Node
	expr()
}

// Query represents a complete parsed query.
type Query struct {
	Criteria Expr        // The criteria expression (nil for order-only queries)
	OrderBy  []OrderItem // ORDER BY items (may be empty)
}

func (q *Query) node() {}

// OrExpr represents "a or b or ...". It always has two or more terms.
type OrExpr struct {
	Terms []Expr
}

func (o *OrExpr) node() {}
func (o *OrExpr) expr() {}

// AndExpr represents "a and b and ...". It always has two or more terms.
type AndExpr struct {
	Terms []Expr
}

func (a *AndExpr) node() {}
func (a *AndExpr) expr() {}

// NotExpr represents "not atom".
type NotExpr struct {
	Expr Expr
}

func (n *NotExpr) node() {}
func (n *NotExpr) expr() {}

// ParenExpr represents "( criteria )".
type ParenExpr struct {
	Expr Expr
}

func (p *ParenExpr) node() {}
func (p *ParenExpr) expr() {}

// OperatorExpr represents a stand-alone operator such as "resolved", or a
// value operator such as `mentioned "robin"`.
type OperatorExpr struct {
	Op    Operator
	Value string // Unescaped value, only for ShapeValue operators
	Pos   int
}

func (o *OperatorExpr) node() {}
func (o *OperatorExpr) expr() {}

// FieldExpr represents `"field" op "value"` or `"field" is empty`.
type FieldExpr struct {
	Field string
	Op    Operator
	Value string // Unescaped value, empty for ShapeFieldUnary operators
	Pos   int
}

func (f *FieldExpr) node() {}
func (f *FieldExpr) expr() {}

// FuzzyExpr represents "~text~".
type FuzzyExpr struct {
	Text string
	Pos  int
}

func (f *FuzzyExpr) node() {}
func (f *FuzzyExpr) expr() {}

// OrderItem represents a single ORDER BY item.
type OrderItem struct {
	Field string
	Desc  bool
	Pos   int
}

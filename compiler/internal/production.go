package internal

// ProductionRule describes one non-terminal. FirstSets, InnerSequences and FollowSets are
// aligned by alternative index: alternative i matches FirstSets[i], then parses the
// non-terminals in InnerSequences[i], then matches FollowSets[i].
type ProductionRule struct {
	Name           string
	FirstSets      [][]TokenType
	InnerSequences [][]string
	FollowSets     [][]TokenType

	// Peek rules pick their inner sequence by looking into the candidates' own first sets.
	Peek bool
	// Ambiguous rules compare their whole first tuple against the look-ahead, not just the leading terminal.
	Ambiguous bool
	// Nullable peek rules fall back to epsilon when no candidate matches.
	Nullable bool
	// Essential rules produce an AST node.
	Essential bool
	// Operator rules are folded into their parent's AST node.
	Operator bool
}

func (rule *ProductionRule) inner(alternative int) []string {
	if alternative < len(rule.InnerSequences) {
		return rule.InnerSequences[alternative]
	}
	return nil
}

func (rule *ProductionRule) follow(alternative int) []TokenType {
	if alternative < len(rule.FollowSets) {
		return rule.FollowSets[alternative]
	}
	return nil
}

// leading returns the first terminal of every alternative, used for error reporting.
func (rule *ProductionRule) leading() []TokenType {
	var ret []TokenType
	for _, first := range rule.FirstSets {
		if len(first) > 0 {
			ret = append(ret, first[0])
		}
	}
	return ret
}

// ProductionTable is immutable after construction and shared by the parser, the
// semantic analyzer and the code generator.
type ProductionTable struct {
	start string
	rules map[string]*ProductionRule
	order []string
}

func NewProductionTable(start string, rules []*ProductionRule) *ProductionTable {
	table := &ProductionTable{start: start, rules: map[string]*ProductionRule{}}
	for _, rule := range rules {
		table.rules[rule.Name] = rule
		table.order = append(table.order, rule.Name)
	}
	return table
}

func (table *ProductionTable) Start() string {
	return table.start
}

func (table *ProductionTable) Lookup(name string) (*ProductionRule, bool) {
	rule, ok := table.rules[name]
	return rule, ok
}

func (table *ProductionTable) Names() []string {
	return table.order
}

func (table *ProductionTable) IsEssential(name string) bool {
	rule, ok := table.rules[name]
	return ok && rule.Essential
}

func (table *ProductionTable) IsOperator(name string) bool {
	rule, ok := table.rules[name]
	return ok && rule.Operator
}

const (
	ProgramProduction       = "Program"
	BlockProduction         = "Block"
	StatementListProduction = "StatementList"
	StatementProduction     = "Statement"
	PrintProduction         = "PrintStatement"
	AssignmentProduction    = "AssignmentStatement"
	VarDeclProduction       = "VarDecl"
	WhileProduction         = "WhileStatement"
	IfProduction            = "IfStatement"
	ExprProduction          = "Expr"
	IntExprProduction       = "IntExpr"
	StringExprProduction    = "StringExpr"
	CharListProduction      = "CharList"
	BooleanExprProduction   = "BooleanExpr"
	IntOpProduction         = "IntOp"
	BoolOpProduction        = "BoolOp"
	IdProduction            = "Id"
	CharProduction          = "Char"
	SpaceProduction         = "Space"
)

func terminals(tps ...TokenType) []TokenType {
	return tps
}

func sequence(names ...string) []string {
	return names
}

var defaultProductionTable = NewProductionTable(ProgramProduction, []*ProductionRule{
	{
		Name:           ProgramProduction,
		InnerSequences: [][]string{sequence(BlockProduction)},
		FollowSets:     [][]TokenType{terminals(EOPTP)},
	},
	{
		Name:           BlockProduction,
		FirstSets:      [][]TokenType{terminals(LeftBraceTP)},
		InnerSequences: [][]string{sequence(StatementListProduction)},
		FollowSets:     [][]TokenType{terminals(RightBraceTP)},
		Essential:      true,
	},
	{
		Name:           StatementListProduction,
		InnerSequences: [][]string{sequence(StatementProduction, StatementListProduction)},
		Peek:           true,
		Nullable:       true,
	},
	{
		Name: StatementProduction,
		InnerSequences: [][]string{
			sequence(PrintProduction),
			sequence(AssignmentProduction),
			sequence(VarDeclProduction),
			sequence(WhileProduction),
			sequence(IfProduction),
			sequence(BlockProduction),
		},
		Peek: true,
	},
	{
		Name:           PrintProduction,
		FirstSets:      [][]TokenType{terminals(PrintTP, LeftParenTP)},
		InnerSequences: [][]string{sequence(ExprProduction)},
		FollowSets:     [][]TokenType{terminals(RightParenTP)},
		Essential:      true,
	},
	{
		Name:           AssignmentProduction,
		FirstSets:      [][]TokenType{terminals(IdTP, AssignTP)},
		InnerSequences: [][]string{sequence(ExprProduction)},
		Ambiguous:      true,
		Essential:      true,
	},
	{
		Name:      VarDeclProduction,
		FirstSets: [][]TokenType{terminals(TypeTP, IdTP)},
		Essential: true,
	},
	{
		Name:           WhileProduction,
		FirstSets:      [][]TokenType{terminals(WhileTP)},
		InnerSequences: [][]string{sequence(BooleanExprProduction, BlockProduction)},
		Essential:      true,
	},
	{
		Name:           IfProduction,
		FirstSets:      [][]TokenType{terminals(IfTP)},
		InnerSequences: [][]string{sequence(BooleanExprProduction, BlockProduction)},
		Essential:      true,
	},
	{
		Name: ExprProduction,
		InnerSequences: [][]string{
			sequence(IntExprProduction),
			sequence(StringExprProduction),
			sequence(BooleanExprProduction),
			sequence(IdProduction),
		},
		Peek: true,
	},
	{
		Name:           IntExprProduction,
		FirstSets:      [][]TokenType{terminals(DigitTP)},
		InnerSequences: [][]string{sequence(IntOpProduction, ExprProduction)},
		Peek:           true,
		Essential:      true,
	},
	{
		Name:           StringExprProduction,
		FirstSets:      [][]TokenType{terminals(QuoteTP)},
		InnerSequences: [][]string{sequence(CharListProduction)},
		FollowSets:     [][]TokenType{terminals(QuoteTP)},
	},
	{
		Name: CharListProduction,
		InnerSequences: [][]string{
			sequence(CharProduction, CharListProduction),
			sequence(SpaceProduction, CharListProduction),
		},
		Peek:     true,
		Nullable: true,
	},
	{
		Name:           BooleanExprProduction,
		FirstSets:      [][]TokenType{terminals(LeftParenTP), terminals(BoolValTP)},
		InnerSequences: [][]string{sequence(ExprProduction, BoolOpProduction, ExprProduction), nil},
		FollowSets:     [][]TokenType{terminals(RightParenTP), nil},
		Essential:      true,
	},
	{
		Name:      IntOpProduction,
		FirstSets: [][]TokenType{terminals(AdditionTP)},
		Operator:  true,
	},
	{
		Name:      BoolOpProduction,
		FirstSets: [][]TokenType{terminals(EqualityTP), terminals(InequalityTP)},
		Operator:  true,
	},
	{Name: IdProduction, FirstSets: [][]TokenType{terminals(IdTP)}},
	{Name: CharProduction, FirstSets: [][]TokenType{terminals(CharTP)}},
	{Name: SpaceProduction, FirstSets: [][]TokenType{terminals(SpaceTP)}},
})

// DefaultProductionTable returns the production grammar of the source language.
func DefaultProductionTable() *ProductionTable {
	return defaultProductionTable
}

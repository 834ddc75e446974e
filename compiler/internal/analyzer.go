package internal

import (
	"fmt"
	"strings"

	"compiler_for_6502a/logging"
)

const (
	AdditionOperator   = "+"
	EqualityOperator   = "=="
	InequalityOperator = "!="
)

// SemanticAnalyzer lowers a CST into an AST, building the scope tree and checking
// declarations, types and usage on the way. Only the first error is reported, the walk
// itself always runs to the end.
type SemanticAnalyzer struct {
	productions *ProductionTable
	logger      *logging.Logger

	cst       *Tree
	ast       *Tree
	scopes    *ScopeTable
	analyzing bool
	err       error
	errors    []*SemanticError
	warnings  []*Warning
}

func NewSemanticAnalyzer(productions *ProductionTable, logger *logging.Logger) *SemanticAnalyzer {
	analyzer := &SemanticAnalyzer{productions: productions, logger: logger}
	analyzer.Reset()
	return analyzer
}

func (analyzer *SemanticAnalyzer) Reset() {
	analyzer.cst = nil
	analyzer.ast = NewTree()
	analyzer.scopes = NewScopeTable()
	analyzer.analyzing = true
	analyzer.err = nil
	analyzer.errors, analyzer.warnings = nil, nil
}

func (analyzer *SemanticAnalyzer) Errors() []*SemanticError {
	return analyzer.errors
}

func (analyzer *SemanticAnalyzer) Warnings() []*Warning {
	return analyzer.warnings
}

// Analyze lowers cst. Once an analysis failed, calling Analyze again returns the same
// artifacts and error without logging anything until Reset is called.
func (analyzer *SemanticAnalyzer) Analyze(cst *Tree) (*Tree, *ScopeTable, error) {
	if analyzer.err != nil {
		return analyzer.ast, analyzer.scopes, analyzer.err
	}
	analyzer.Reset()
	analyzer.cst = cst
	analyzer.logger.Info("analyzing program")
	if cst.Root() != noNode {
		analyzer.walk(cst.Root())
	}
	analyzer.scan()
	if analyzer.err != nil {
		return analyzer.ast, analyzer.scopes, analyzer.err
	}
	analyzer.logger.Info("semantic analysis completed with %d warning(s)", len(analyzer.warnings))
	return analyzer.ast, analyzer.scopes, nil
}

func (analyzer *SemanticAnalyzer) walk(id int) {
	node := analyzer.cst.Node(id)
	if node.IsTerminal() {
		return
	}
	switch {
	case node.Name == BlockProduction:
		analyzer.lowerBlock(id)
	case analyzer.productions.IsEssential(node.Name):
		analyzer.lowerStatement(id)
	default:
		for _, child := range node.Children {
			analyzer.walk(child)
		}
	}
}

func (analyzer *SemanticAnalyzer) lowerBlock(id int) {
	node := analyzer.cst.Node(id)
	analyzer.addNode(NonTerminalNode, BlockProduction, nil, node.Loc)
	analyzer.scopes.Push()
	for _, child := range node.Children {
		analyzer.walk(child)
	}
	analyzer.scopes.Pop()
	analyzer.ast.Ascend()
}

func (analyzer *SemanticAnalyzer) lowerStatement(id int) {
	node := analyzer.cst.Node(id)
	statement := analyzer.addNode(NonTerminalNode, node.Name, nil, node.Loc)
	for _, child := range node.Children {
		childNode := analyzer.cst.Node(child)
		switch {
		case childNode.IsTerminal():
			if tp := childNode.Token.Type(); tp == TypeTP || tp == IdTP {
				analyzer.ast.AddChild(statement, TerminalNode, childNode.Name, childNode.Token, childNode.Loc)
			}
		case childNode.Name == BlockProduction:
			analyzer.walk(child)
		default:
			analyzer.lowerExpr(child, statement)
		}
	}
	analyzer.analyze(statement)
	analyzer.ast.Ascend()
}

// lowerExpr adds the AST of an expression under parent. Operators become the root of
// their operands.
func (analyzer *SemanticAnalyzer) lowerExpr(id, parent int) int {
	node := analyzer.cst.Node(id)
	switch node.Name {
	case ExprProduction:
		return analyzer.lowerExpr(node.Children[0], parent)
	case IdProduction:
		leaf := analyzer.cst.Node(node.Children[0])
		return analyzer.ast.AddChild(parent, TerminalNode, leaf.Name, leaf.Token, leaf.Loc)
	case StringExprProduction:
		return analyzer.seekString(id, parent)
	case IntExprProduction:
		digit := analyzer.cst.Node(node.Children[0])
		if len(node.Children) == 1 {
			return analyzer.ast.AddChild(parent, TerminalNode, digit.Name, digit.Token, digit.Loc)
		}
		op := analyzer.cst.Node(analyzer.cst.Node(node.Children[1]).Children[0])
		operator := analyzer.ast.AddChild(parent, TerminalNode, op.Name, op.Token, op.Loc)
		analyzer.ast.AddChild(operator, TerminalNode, digit.Name, digit.Token, digit.Loc)
		analyzer.lowerExpr(node.Children[2], operator)
		analyzer.analyze(operator)
		return operator
	case BooleanExprProduction:
		if len(node.Children) == 1 {
			value := analyzer.cst.Node(node.Children[0])
			return analyzer.ast.AddChild(parent, TerminalNode, value.Name, value.Token, value.Loc)
		}
		// ( Expr BoolOp Expr )
		op := analyzer.cst.Node(analyzer.cst.Node(node.Children[2]).Children[0])
		operator := analyzer.ast.AddChild(parent, TerminalNode, op.Name, op.Token, op.Loc)
		analyzer.lowerExpr(node.Children[1], operator)
		analyzer.lowerExpr(node.Children[3], operator)
		analyzer.analyze(operator)
		return operator
	}
	panic(fmt.Sprintf("unexpected %s in expression", node.Name))
}

// seekString combines the terminals of a string expression into one leaf, quotes
// included, located at the opening quote.
func (analyzer *SemanticAnalyzer) seekString(id, parent int) int {
	terminals := analyzer.cst.Terminals(id)
	bf := strings.Builder{}
	for _, terminal := range terminals {
		bf.WriteString(analyzer.cst.Node(terminal).Name)
	}
	quote := analyzer.cst.Node(terminals[0])
	return analyzer.ast.AddChild(parent, TerminalNode, bf.String(), quote.Token, quote.Loc)
}

func (analyzer *SemanticAnalyzer) addNode(kind NodeKind, name string, token *Token, loc Location) int {
	analyzer.logger.Debug("node", logging.F("name", name), logging.F("line", loc.Line), logging.F("col", loc.Col))
	return analyzer.ast.AddNode(kind, name, token, loc)
}

func (analyzer *SemanticAnalyzer) analyze(id int) {
	node := analyzer.ast.Node(id)
	switch node.Name {
	case VarDeclProduction:
		tp, name := analyzer.ast.Node(node.Children[0]), analyzer.ast.Node(node.Children[1])
		existing, ok := analyzer.scopes.Declare(name.Name, VarType(tp.Name), name.Loc)
		if !ok {
			analyzer.makeError(RedeclaredError, name.Loc, "variable %s is already declared at %s", name.Name, existing.DeclaredAt)
		}
	case AssignmentProduction:
		target, value := analyzer.ast.Node(node.Children[0]), node.Children[1]
		info, ok := analyzer.resolve(target)
		if !ok {
			return
		}
		valueType, ok := analyzer.typeOf(value)
		if !ok {
			return
		}
		if valueType != info.Type {
			analyzer.makeError(AssignmentError, target.Loc, "cannot assign %s to %s variable %s", valueType, info.Type, target.Name)
			return
		}
		info.Initializations = append(info.Initializations, target.Loc)
		analyzer.use(value)
	case PrintProduction:
		operand := analyzer.ast.Node(node.Children[0])
		if !isIdentifier(operand) {
			return
		}
		info, ok := analyzer.resolve(operand)
		if !ok {
			return
		}
		if !info.Initialized() {
			analyzer.warn(UninitializedWarning, operand.Loc, "variable %s is printed before it is initialized", operand.Name)
		}
		analyzer.use(node.Children[0])
	case AdditionOperator, EqualityOperator, InequalityOperator:
		left, right := node.Children[0], node.Children[1]
		leftType, ok := analyzer.typeOf(left)
		if !ok {
			return
		}
		rightType, ok := analyzer.typeOf(right)
		if !ok {
			return
		}
		analyzer.use(left)
		analyzer.use(right)
		if node.Name == AdditionOperator && (leftType != IntType || rightType != IntType) {
			analyzer.makeError(OperatorError, node.Loc, "cannot add %s to %s", rightType, leftType)
		} else if leftType != rightType {
			analyzer.makeError(OperatorError, node.Loc, "cannot compare %s with %s", leftType, rightType)
		}
	}
}

func isIdentifier(node *Node) bool {
	return node.IsTerminal() && len(node.Children) == 0 && node.Token != nil && node.Token.Type() == IdTP
}

func (analyzer *SemanticAnalyzer) resolve(node *Node) (*VarInfo, bool) {
	info, _, ok := analyzer.scopes.Resolve(analyzer.scopes.Current().ID, node.Name)
	if !ok {
		analyzer.makeError(UndeclaredError, node.Loc, "variable %s is not declared", node.Name)
	}
	return info, ok
}

// typeOf resolves the type of an expression node, identifiers through the scope chain.
func (analyzer *SemanticAnalyzer) typeOf(id int) (VarType, bool) {
	node := analyzer.ast.Node(id)
	if len(node.Children) > 0 {
		if node.Name == AdditionOperator {
			return IntType, true
		}
		return BooleanType, true
	}
	switch node.Token.Type() {
	case DigitTP:
		return IntType, true
	case QuoteTP:
		return StringType, true
	case BoolValTP:
		return BooleanType, true
	}
	info, ok := analyzer.resolve(node)
	if !ok {
		return "", false
	}
	return info.Type, true
}

// use records a read of id when it is an identifier.
func (analyzer *SemanticAnalyzer) use(id int) {
	node := analyzer.ast.Node(id)
	if !isIdentifier(node) {
		return
	}
	if info, _, ok := analyzer.scopes.Resolve(analyzer.scopes.Current().ID, node.Name); ok {
		info.Uses = append(info.Uses, node.Loc)
	}
}

// scan reports variables whose initializations and uses do not line up.
func (analyzer *SemanticAnalyzer) scan() {
	for id := 0; id < analyzer.scopes.Len(); id++ {
		for _, info := range analyzer.scopes.Scope(id).Entries() {
			if info.Initialized() && !info.Used() {
				analyzer.warn(UnusedInitializedWarning, info.DeclaredAt, "variable %s is initialized but never used", info.Name)
			}
			if info.Used() && !info.Initialized() {
				analyzer.warn(UnusedDeclaredWarning, info.DeclaredAt, "variable %s is used but never initialized", info.Name)
			}
		}
	}
}

func (analyzer *SemanticAnalyzer) makeError(kind SemanticErrorKind, loc Location, format string, args ...interface{}) {
	if !analyzer.analyzing {
		return
	}
	analyzer.analyzing = false
	err := &SemanticError{Kind: kind, Message: fmt.Sprintf(format, args...), Loc: loc}
	analyzer.errors = append(analyzer.errors, err)
	analyzer.err = err
	analyzer.logger.Error("%s", err.Error())
}

func (analyzer *SemanticAnalyzer) warn(kind WarningKind, loc Location, format string, args ...interface{}) {
	warning := &Warning{Kind: kind, Message: fmt.Sprintf(format, args...), Loc: loc}
	analyzer.warnings = append(analyzer.warnings, warning)
	analyzer.logger.Warn("%s", warning.String())
}

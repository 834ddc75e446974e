package internal

import (
	"errors"
	"fmt"

	"compiler_for_6502a/logging"
)

// Parser is a predictive recursive descent parser driven by a ProductionTable. It never
// backtracks: once an alternative is picked its terminals must match, and the first
// mismatch aborts the parse.
type Parser struct {
	productions *ProductionTable
	logger      *logging.Logger

	tokens []*Token
	pos    int
	cst    *Tree
	err    error
	errors []*ParseError
}

func NewParser(productions *ProductionTable, logger *logging.Logger) *Parser {
	return &Parser{productions: productions, logger: logger}
}

func (parser *Parser) Reset() {
	parser.tokens, parser.pos = nil, 0
	parser.cst = NewTree()
	parser.err = nil
	parser.errors = nil
}

func (parser *Parser) Errors() []*ParseError {
	return parser.errors
}

// Parse builds the concrete syntax tree of tokens. On error the partial tree is returned
// along with the *ParseError. A halted parser returns the same tree and error without
// parsing again until Reset is called.
func (parser *Parser) Parse(tokens []*Token) (*Tree, error) {
	if parser.err != nil {
		return parser.cst, parser.err
	}
	parser.Reset()
	parser.tokens = tokens
	parser.logger.Info("parsing program")
	err := parser.parse(parser.productions.Start())
	if err == nil && parser.pos < len(parser.tokens) {
		err = parser.makeError(nil)
	}
	if err != nil {
		parser.err = err
		return parser.cst, err
	}
	parser.logger.Info("parsing completed successfully")
	return parser.cst, nil
}

func (parser *Parser) peek(offset int) *Token {
	if parser.pos+offset < len(parser.tokens) {
		return parser.tokens[parser.pos+offset]
	}
	return nil
}

func (parser *Parser) currentLocation() Location {
	if token := parser.peek(0); token != nil {
		return token.Location()
	}
	if len(parser.tokens) > 0 {
		return parser.tokens[len(parser.tokens)-1].Location()
	}
	return Location{Line: 1, Col: 1}
}

func (parser *Parser) parse(name string) error {
	rule, ok := parser.productions.Lookup(name)
	if !ok {
		return errors.New(fmt.Sprintf("unknown production %s", name))
	}
	parser.cst.AddNode(NonTerminalNode, name, nil, parser.currentLocation())
	parser.logger.Debug("production", logging.F("name", name), logging.F("line", parser.currentLocation().Line),
		logging.F("col", parser.currentLocation().Col))

	var inner []string
	alternative := 0
	switch {
	case len(rule.FirstSets) > 0:
		alternative = parser.selectAlternative(rule)
		if alternative < 0 {
			return parser.makeError(rule.leading())
		}
		for _, tp := range rule.FirstSets[alternative] {
			if err := parser.match(tp); err != nil {
				return err
			}
		}
		inner = rule.inner(alternative)
		// a peek rule with its own first set continues only when the look-ahead allows it
		if rule.Peek && len(inner) > 0 && !parser.startsWith(inner[0]) {
			inner = nil
		}
	case rule.Peek:
		alternative = -1
		for i, candidate := range rule.InnerSequences {
			if len(candidate) > 0 && parser.startsWith(candidate[0]) {
				alternative = i
				break
			}
		}
		if alternative < 0 {
			if !rule.Nullable {
				return parser.makeError(parser.expectedOf(name))
			}
			parser.cst.Ascend()
			return nil
		}
		inner = rule.inner(alternative)
	default:
		inner = rule.inner(0)
	}

	for _, child := range inner {
		if err := parser.parse(child); err != nil {
			return err
		}
	}
	for _, tp := range rule.follow(alternative) {
		if err := parser.match(tp); err != nil {
			return err
		}
	}
	parser.cst.Ascend()
	return nil
}

// selectAlternative returns the first alternative whose first set fits the look-ahead, or -1.
func (parser *Parser) selectAlternative(rule *ProductionRule) int {
	for i, first := range rule.FirstSets {
		if parser.fits(rule, first) {
			return i
		}
	}
	return -1
}

func (parser *Parser) fits(rule *ProductionRule, first []TokenType) bool {
	if len(first) == 0 {
		return false
	}
	width := 1
	if rule.Ambiguous {
		width = len(first)
	}
	for j := 0; j < width; j++ {
		token := parser.peek(j)
		if token == nil || token.Type() != first[j] {
			return false
		}
	}
	return true
}

// startsWith reports whether the look-ahead can begin production name, descending into the
// leading non-terminal of each inner sequence for rules without a first set of their own.
func (parser *Parser) startsWith(name string) bool {
	rule, ok := parser.productions.Lookup(name)
	if !ok {
		return false
	}
	if len(rule.FirstSets) > 0 {
		return parser.selectAlternative(rule) >= 0
	}
	for _, candidate := range rule.InnerSequences {
		if len(candidate) > 0 && parser.startsWith(candidate[0]) {
			return true
		}
	}
	return false
}

// expectedOf collects the leading terminals that could begin production name.
func (parser *Parser) expectedOf(name string) []TokenType {
	rule, ok := parser.productions.Lookup(name)
	if !ok {
		return nil
	}
	if len(rule.FirstSets) > 0 {
		return rule.leading()
	}
	var ret []TokenType
	seen := map[TokenType]bool{}
	for _, candidate := range rule.InnerSequences {
		if len(candidate) == 0 {
			continue
		}
		for _, tp := range parser.expectedOf(candidate[0]) {
			if !seen[tp] {
				seen[tp] = true
				ret = append(ret, tp)
			}
		}
	}
	return ret
}

func (parser *Parser) match(tp TokenType) error {
	token := parser.peek(0)
	fields := []logging.Field{logging.F("expected", tp.String())}
	if token != nil {
		fields = append(fields, logging.F("found", token.Type().String()),
			logging.F("line", token.Location().Line), logging.F("col", token.Location().Col))
	}
	parser.logger.Debug("match", fields...)
	if token == nil || token.Type() != tp {
		return parser.makeError([]TokenType{tp})
	}
	parser.cst.AddNode(TerminalNode, token.Lexeme(), token, token.Location())
	parser.pos++
	return nil
}

func (parser *Parser) makeError(expected []TokenType) error {
	err := &ParseError{Expected: expected, Found: parser.peek(0), Loc: parser.currentLocation()}
	parser.errors = append(parser.errors, err)
	parser.logger.Error("%s", err.Error())
	return err
}

package internal

import (
	"testing"

	"compiler_for_6502a/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, source string, sink logging.Sink) (*Parser, *Tree, error) {
	tokens, err := newTestLexer(nil).Tokenize(source)
	require.Nil(t, err, source)
	parser := NewParser(DefaultProductionTable(), logging.NewLogger(sink, "Parser", true))
	cst, err := parser.Parse(tokens)
	return parser, cst, err
}

func TestParser_EmptyBlock(t *testing.T) {
	_, cst, err := parseSource(t, "{}$", nil)
	assert.Nil(t, err)
	assert.Equal(t, "<Program>\n-<Block>\n--[{]\n--<StatementList>\n--[}]\n-[$]\n", cst.String())
}

func TestParser_Expression(t *testing.T) {
	_, cst, err := parseSource(t, "{ print(1+a) }$", nil)
	assert.Nil(t, err)
	expected := `<Program>
-<Block>
--[{]
--<StatementList>
---<Statement>
----<PrintStatement>
-----[print]
-----[(]
-----<Expr>
------<IntExpr>
-------[1]
-------<IntOp>
--------[+]
-------<Expr>
--------<Id>
---------[a]
-----[)]
---<StatementList>
--[}]
-[$]
`
	assert.Equal(t, expected, cst.String())
}

func TestParser_ValidPrograms(t *testing.T) {
	testData := []string{
		"{ int a a = 1 }$",
		"{ string s s = \"hello world\" print(s) }$",
		"{ boolean b b = (1 == 2) b = true print(b) }$",
		"{ while (a != 5) { a = 1 + a } }$",
		"{ if true { print(\"\") } }$",
		"{ if ((a == b) != false) {} }$",
		"{ {} { { int a } } }$",
		"{ a = 1 + 2 + 3 + b }$",
	}
	for _, source := range testData {
		parser, _, err := parseSource(t, source, nil)
		assert.Nil(t, err, source)
		assert.Empty(t, parser.Errors(), source)
	}
}

func TestParser_Errors(t *testing.T) {
	testData := []struct {
		source   string
		expected []TokenType
		found    TokenType
		loc      Location
	}{
		{source: "{ print 1 }$", expected: []TokenType{LeftParenTP}, found: DigitTP, loc: Location{Line: 1, Col: 9}},
		{source: "{ a 1 }$", expected: []TokenType{RightBraceTP}, found: IdTP, loc: Location{Line: 1, Col: 3}},
		{source: "{ int }$", expected: []TokenType{IdTP}, found: RightBraceTP, loc: Location{Line: 1, Col: 7}},
		{
			source:   "{ print() }$",
			expected: []TokenType{DigitTP, QuoteTP, LeftParenTP, BoolValTP, IdTP},
			found:    RightParenTP,
			loc:      Location{Line: 1, Col: 9},
		},
		{source: "{ while (1 + 2) {} }$", expected: []TokenType{EqualityTP, InequalityTP}, found: RightParenTP, loc: Location{Line: 1, Col: 15}},
		{source: "{}}$", expected: []TokenType{EOPTP}, found: RightBraceTP, loc: Location{Line: 1, Col: 3}},
	}
	sink := logging.NewMemorySink()
	for _, data := range testData {
		sink.Reset()
		parser, _, err := parseSource(t, data.source, sink)
		parseErr, ok := err.(*ParseError)
		require.True(t, ok, data.source)
		assert.Equal(t, data.expected, parseErr.Expected, data.source)
		assert.Equal(t, data.found, parseErr.Found.Type(), data.source)
		assert.Equal(t, data.loc, parseErr.Loc, data.source)
		// the parse aborts on the first mismatch
		assert.Equal(t, 1, len(parser.Errors()), data.source)
		assert.Equal(t, 1, len(sink.Filter(logging.LevelError)), data.source)
	}
}

func TestParser_IdempotentHalt(t *testing.T) {
	sink := logging.NewMemorySink()
	tokens, err := newTestLexer(nil).Tokenize("{ a }$")
	require.Nil(t, err)
	parser := NewParser(DefaultProductionTable(), logging.NewLogger(sink, "Parser", true))
	cst, err := parser.Parse(tokens)
	_, ok := err.(*ParseError)
	require.True(t, ok)
	entries := len(sink.Entries)
	dump := cst.String()

	for i := 0; i < 3; i++ {
		againCST, againErr := parser.Parse(tokens)
		assert.Equal(t, err, againErr)
		assert.True(t, cst == againCST)
	}
	assert.Equal(t, entries, len(sink.Entries))
	assert.Equal(t, dump, cst.String())
	assert.Equal(t, 1, len(parser.Errors()))
	assert.Equal(t, 1, len(sink.Filter(logging.LevelError)))

	parser.Reset()
	tokens, err = newTestLexer(nil).Tokenize("{}$")
	require.Nil(t, err)
	_, err = parser.Parse(tokens)
	assert.Nil(t, err)
}

func TestParser_OutOfTokens(t *testing.T) {
	parser := NewParser(DefaultProductionTable(), logging.NewLogger(nil, "Parser", false))
	_, err := parser.Parse([]*Token{NewToken(LeftBraceTP, "{", 1, 1)})
	parseErr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Nil(t, parseErr.Found)
	assert.Equal(t, []TokenType{RightBraceTP}, parseErr.Expected)
}

func TestParser_DebugPayload(t *testing.T) {
	sink := logging.NewMemorySink()
	_, _, err := parseSource(t, "{}$", sink)
	assert.Nil(t, err)
	var matches []logging.Entry
	for _, entry := range sink.Filter(logging.LevelDebug) {
		if entry.Message == "match" {
			matches = append(matches, entry)
		}
	}
	assert.Equal(t, 3, len(matches))
	assert.Equal(t, "R_BRACE", matches[1].Field("expected"))
	assert.Equal(t, "R_BRACE", matches[1].Field("found"))
	assert.Equal(t, 2, matches[1].Field("col"))
}

package internal

import (
	"strings"
	"testing"

	"compiler_for_6502a/logging"
	"github.com/stretchr/testify/assert"
)

func newTestLexer(sink logging.Sink) *Lexer {
	return NewLexer(DefaultLexicalGrammar(), logging.NewLogger(sink, "Lexer", true))
}

func tokenTypes(tokens []*Token) []TokenType {
	var ret []TokenType
	for _, token := range tokens {
		ret = append(ret, token.Type())
	}
	return ret
}

func TestLexicalGrammar_Tiers(t *testing.T) {
	grammar := DefaultLexicalGrammar()
	assert.Equal(t, []int{0, 1, 2, 4}, grammar.Tiers())
	assert.Equal(t, 5, len(grammar.Rules(NormalMode, reservedTier)))
	assert.Equal(t, 0, len(grammar.Rules(QuoteMode, reservedTier)))
	assert.Equal(t, 1, len(grammar.Rules(CommentMode, catchAllTier)))
}

func TestLexer_Tokenize(t *testing.T) {
	testData := []struct {
		source   string
		expected []TokenType
	}{
		{source: "{}$", expected: []TokenType{LeftBraceTP, RightBraceTP, EOPTP}},
		{source: "{ int a\n a = 1 }$", expected: []TokenType{LeftBraceTP, TypeTP, IdTP, IdTP, AssignTP, DigitTP, RightBraceTP, EOPTP}},
		{source: "{print(\"a b\")}$", expected: []TokenType{LeftBraceTP, PrintTP, LeftParenTP, QuoteTP, CharTP, SpaceTP, CharTP, QuoteTP, RightParenTP, RightBraceTP, EOPTP}},
		{source: "{while (a != true) {}}$", expected: []TokenType{LeftBraceTP, WhileTP, LeftParenTP, IdTP, InequalityTP, BoolValTP, RightParenTP, LeftBraceTP, RightBraceTP, RightBraceTP, EOPTP}},
		{source: "{if(1==2){}}$", expected: []TokenType{LeftBraceTP, IfTP, LeftParenTP, DigitTP, EqualityTP, DigitTP, RightParenTP, LeftBraceTP, RightBraceTP, RightBraceTP, EOPTP}},
		{source: "{ /* int a \n } */ a = 1+2 }$", expected: []TokenType{LeftBraceTP, IdTP, AssignTP, DigitTP, AdditionTP, DigitTP, RightBraceTP, EOPTP}},
		{source: "{ string boolean }$", expected: []TokenType{LeftBraceTP, TypeTP, TypeTP, RightBraceTP, EOPTP}},
		// keywords win over identifiers, but only as whole keywords
		{source: "{ ix }$", expected: []TokenType{LeftBraceTP, IdTP, IdTP, RightBraceTP, EOPTP}},
		{source: "{}$ {}$", expected: []TokenType{LeftBraceTP, RightBraceTP, EOPTP}},
	}
	lexer := newTestLexer(nil)
	for _, data := range testData {
		tokens, err := lexer.Tokenize(data.source)
		assert.Nil(t, err, data.source)
		assert.Equal(t, data.expected, tokenTypes(tokens), data.source)
		assert.Empty(t, lexer.Warnings(), data.source)
	}
}

func TestLexer_Locations(t *testing.T) {
	lexer := newTestLexer(nil)
	tokens, err := lexer.Tokenize("{\n  int a\n\ta = 5 /* x\n */ }$")
	assert.Nil(t, err)
	var locations []string
	for _, token := range tokens {
		locations = append(locations, token.Location().String())
	}
	assert.Equal(t, []string{"1:1", "2:3", "2:7", "3:2", "3:4", "3:6", "4:5", "4:6"}, locations)
}

func TestLexer_Errors(t *testing.T) {
	testData := []struct {
		source string
		kind   LexErrorKind
		loc    Location
		tokens int
	}{
		{source: "{ int A }$", kind: UndefinedLexError, loc: Location{Line: 1, Col: 7}, tokens: 2},
		{source: "{\n a = 1 @ }$", kind: UndefinedLexError, loc: Location{Line: 2, Col: 8}, tokens: 4},
		{source: "{ print(\"ab1\") }$", kind: ReservedLexError, loc: Location{Line: 1, Col: 12}, tokens: 6},
		{source: "{ a = \"x\ny\" }$", kind: ReservedLexError, loc: Location{Line: 1, Col: 9}, tokens: 5},
	}
	lexer := newTestLexer(nil)
	for _, data := range testData {
		lexer.Reset()
		tokens, err := lexer.Tokenize(data.source)
		lexErr, ok := err.(*LexError)
		assert.True(t, ok, data.source)
		assert.Equal(t, data.kind, lexErr.Kind, data.source)
		assert.Equal(t, data.loc, lexErr.Loc, data.source)
		assert.Equal(t, data.tokens, len(tokens), data.source)
		assert.Equal(t, 1, len(lexer.Errors()))
	}
}

func TestLexer_Warnings(t *testing.T) {
	testData := []struct {
		source   string
		warnings []WarningKind
		expected []TokenType
	}{
		{source: "{}", warnings: []WarningKind{MissingEOPWarning}, expected: []TokenType{LeftBraceTP, RightBraceTP, EOPTP}},
		{source: "{ a = \"ab", warnings: []WarningKind{MissingEndQuoteWarning, MissingEOPWarning},
			expected: []TokenType{LeftBraceTP, IdTP, AssignTP, QuoteTP, CharTP, CharTP, QuoteTP, EOPTP}},
		{source: "{} /* trailing", warnings: []WarningKind{MissingEndCommentWarning, MissingEOPWarning},
			expected: []TokenType{LeftBraceTP, RightBraceTP, EOPTP}},
	}
	sink := logging.NewMemorySink()
	lexer := newTestLexer(sink)
	for _, data := range testData {
		sink.Reset()
		tokens, err := lexer.Tokenize(data.source)
		assert.Nil(t, err, data.source)
		assert.Equal(t, data.expected, tokenTypes(tokens), data.source)
		var kinds []WarningKind
		for _, warning := range lexer.Warnings() {
			kinds = append(kinds, warning.Kind)
		}
		assert.Equal(t, data.warnings, kinds, data.source)
		assert.Equal(t, len(data.warnings), len(sink.Filter(logging.LevelWarn)), data.source)
	}
}

func TestLexer_IdempotentHalt(t *testing.T) {
	sink := logging.NewMemorySink()
	lexer := newTestLexer(sink)
	tokens, err := lexer.Tokenize("{ int A }$")
	lexErr, ok := err.(*LexError)
	assert.True(t, ok)
	assert.Equal(t, UndefinedLexError, lexErr.Kind)
	entries := len(sink.Entries)

	for i := 0; i < 3; i++ {
		againTokens, againErr := lexer.Tokenize("{ int A }$")
		assert.Equal(t, err, againErr)
		assert.Equal(t, tokens, againTokens)
	}
	// a halted lexer ignores new input too
	_, againErr := lexer.Tokenize("{}$")
	assert.Equal(t, err, againErr)
	assert.Equal(t, entries, len(sink.Entries))
	assert.Equal(t, 1, len(lexer.Errors()))
	assert.Equal(t, 1, len(sink.Filter(logging.LevelError)))

	lexer.Reset()
	_, err = lexer.Tokenize("{}$")
	assert.Nil(t, err)
}

func TestLexer_RoundTrip(t *testing.T) {
	testData := []string{
		"{int a a=1 print(a)}$",
		"{ boolean b\n b = (1 == 2)\n while (b != false) { b = false } }$",
		"{ string s s = \"a b c\" if (s == s) { print(s) } }$",
	}
	lexer := newTestLexer(nil)
	for _, source := range testData {
		tokens, err := lexer.Tokenize(source)
		assert.Nil(t, err)
		bf := strings.Builder{}
		for _, token := range tokens {
			if token.Type() != SpaceTP {
				bf.WriteString(token.Lexeme())
			}
		}
		stripped := strings.NewReplacer(" ", "", "\n", "").Replace(source)
		assert.Equal(t, stripped, bf.String())
	}
}

func TestLexer_DebugPayload(t *testing.T) {
	sink := logging.NewMemorySink()
	lexer := newTestLexer(sink)
	_, err := lexer.Tokenize("{ }$")
	assert.Nil(t, err)
	debug := sink.Filter(logging.LevelDebug)
	assert.Equal(t, 3, len(debug))
	assert.Equal(t, "R_BRACE", debug[1].Message)
	assert.Equal(t, 3, debug[1].Field("col"))

	quiet := NewLexer(DefaultLexicalGrammar(), logging.NewLogger(sink, "Lexer", false))
	sink.Reset()
	_, err = quiet.Tokenize("{ }$")
	assert.Nil(t, err)
	assert.Empty(t, sink.Filter(logging.LevelDebug))
	assert.NotEmpty(t, sink.Filter(logging.LevelInfo))
}

package internal

import "fmt"

// The source language is made of:
// * KeyWord: print, while, if, int, string, boolean, true, false.
// * Symbol: {, }, (, ), =, ==, !=, +, ", $.
// * Id: a single lower case letter. Digit: a single decimal digit.
// * Inside quotes: lower case letters and spaces only.
// * Comment: /* */, not nestable.

type TokenType int

const (
	LeftBraceTP   TokenType = iota // {
	RightBraceTP                   // }
	LeftParenTP                    // (
	RightParenTP                   // )
	PrintTP                        // print
	WhileTP                        // while
	IfTP                           // if
	TypeTP                         // int, string, boolean
	BoolValTP                      // true, false
	IdTP                           // a
	DigitTP                        // 7
	CharTP                         // a, inside quotes
	SpaceTP                        // ' ', inside quotes
	QuoteTP                        // "
	AssignTP                       // =
	EqualityTP                     // ==
	InequalityTP                   // !=
	AdditionTP                     // +
	EOPTP                          // $
)

var tokenTypeNames = map[TokenType]string{
	LeftBraceTP:  "L_BRACE",
	RightBraceTP: "R_BRACE",
	LeftParenTP:  "L_PAREN",
	RightParenTP: "R_PAREN",
	PrintTP:      "PRINT",
	WhileTP:      "WHILE",
	IfTP:         "IF",
	TypeTP:       "TYPE",
	BoolValTP:    "BOOL_VAL",
	IdTP:         "ID",
	DigitTP:      "DIGIT",
	CharTP:       "CHAR",
	SpaceTP:      "SPACE",
	QuoteTP:      "QUOTE",
	AssignTP:     "ASSIGN",
	EqualityTP:   "EQUALITY",
	InequalityTP: "INEQUALITY",
	AdditionTP:   "ADDITION",
	EOPTP:        "EOP",
}

func (tp TokenType) String() string {
	if name, ok := tokenTypeNames[tp]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(tp))
}

// Location is a 1 based line and column in the program text.
type Location struct {
	Line int
	Col  int
}

func (loc Location) String() string {
	return fmt.Sprintf("%d:%d", loc.Line, loc.Col)
}

// Token is immutable once the lexer emitted it.
type Token struct {
	tp     TokenType
	lexeme string
	loc    Location
}

func NewToken(tp TokenType, lexeme string, line, col int) *Token {
	return &Token{tp: tp, lexeme: lexeme, loc: Location{Line: line, Col: col}}
}

func (token *Token) Type() TokenType {
	return token.tp
}

func (token *Token) Lexeme() string {
	return token.lexeme
}

func (token *Token) Location() Location {
	return token.loc
}

func (token *Token) String() string {
	return fmt.Sprintf("%s [ %s ] at %s", token.tp, token.lexeme, token.loc)
}

// Before reports whether loc comes strictly before other in the program text.
func (loc Location) Before(other Location) bool {
	return loc.Line < other.Line || (loc.Line == other.Line && loc.Col < other.Col)
}

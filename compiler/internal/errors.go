package internal

import (
	"fmt"
	"strings"
)

type LexErrorKind string

const (
	UndefinedLexError LexErrorKind = "UNDEFINED"
	ReservedLexError  LexErrorKind = "RESERVED"
)

// LexError halts lexing.
type LexError struct {
	Kind   LexErrorKind
	Lexeme string
	Loc    Location
}

func (err *LexError) Error() string {
	switch err.Kind {
	case ReservedLexError:
		return fmt.Sprintf("lex error at %s: character %q is not allowed inside a string", err.Loc, err.Lexeme)
	default:
		return fmt.Sprintf("lex error at %s: undefined character %q", err.Loc, err.Lexeme)
	}
}

// ParseError is a terminal mismatch, the parser aborts on the first one.
type ParseError struct {
	Expected []TokenType
	Found    *Token // nil when the token stream ran out
	Loc      Location
}

func (err *ParseError) Error() string {
	expected := make([]string, 0, len(err.Expected))
	for _, tp := range err.Expected {
		expected = append(expected, tp.String())
	}
	found := "end of tokens"
	if err.Found != nil {
		found = fmt.Sprintf("%s [ %s ]", err.Found.Type(), err.Found.Lexeme())
	}
	if len(expected) == 0 {
		return fmt.Sprintf("parse error at %s: unexpected %s", err.Loc, found)
	}
	return fmt.Sprintf("parse error at %s: expected %s, found %s", err.Loc, strings.Join(expected, " or "), found)
}

type SemanticErrorKind string

const (
	RedeclaredError SemanticErrorKind = "REDECLARED"
	UndeclaredError SemanticErrorKind = "UNDECLARED"
	AssignmentError SemanticErrorKind = "ASSIGNMENT"
	OperatorError   SemanticErrorKind = "OPERATOR"
)

type SemanticError struct {
	Kind    SemanticErrorKind
	Message string
	Loc     Location
}

func (err *SemanticError) Error() string {
	return fmt.Sprintf("semantic error %s at %s: %s", err.Kind, err.Loc, err.Message)
}

type CodeGenErrorKind string

const (
	UnsupportedCodeGenError CodeGenErrorKind = "UNSUPPORTED"
	CollisionCodeGenError   CodeGenErrorKind = "COLLISION"
	InternalCodeGenError    CodeGenErrorKind = "INTERNAL"
)

// CodeGenError halts byte emission.
type CodeGenError struct {
	Kind    CodeGenErrorKind
	Message string
}

func (err *CodeGenError) Error() string {
	return fmt.Sprintf("code generation error %s: %s", err.Kind, err.Message)
}

type WarningKind string

const (
	MissingEOPWarning        WarningKind = "EOP"
	MissingEndQuoteWarning   WarningKind = "QUOTE"
	MissingEndCommentWarning WarningKind = "COMMENT"
	UninitializedWarning     WarningKind = "UNINITIALIZED"
	UnusedDeclaredWarning    WarningKind = "UNUSED-DEC"
	UnusedInitializedWarning WarningKind = "UNUSED-INIT"
)

// Warning never halts a stage.
type Warning struct {
	Kind    WarningKind
	Message string
	Loc     Location
}

func (warning *Warning) String() string {
	return fmt.Sprintf("warning %s at %s: %s", warning.Kind, warning.Loc, warning.Message)
}

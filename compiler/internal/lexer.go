package internal

import (
	"errors"

	"compiler_for_6502a/logging"
)

// Lexer turns the text of one program into tokens. Rules are selected from the grammar
// tier by tier: every successful match restarts at the lowest tier, a tier with no match
// escalates to the next one.
type Lexer struct {
	grammar *LexicalGrammar
	logger  *logging.Logger

	line      int
	col       int
	inQuote   bool
	inComment bool
	foundEOP  bool

	tokens   []*Token
	err      error
	errors   []*LexError
	warnings []*Warning
}

func NewLexer(grammar *LexicalGrammar, logger *logging.Logger) *Lexer {
	lexer := &Lexer{grammar: grammar, logger: logger}
	lexer.Reset()
	return lexer
}

func (lexer *Lexer) Reset() {
	lexer.line, lexer.col = 1, 1
	lexer.inQuote, lexer.inComment, lexer.foundEOP = false, false, false
	lexer.tokens, lexer.errors, lexer.warnings = nil, nil, nil
	lexer.err = nil
}

func (lexer *Lexer) Tokens() []*Token {
	return lexer.tokens
}

func (lexer *Lexer) Errors() []*LexError {
	return lexer.errors
}

func (lexer *Lexer) Warnings() []*Warning {
	return lexer.warnings
}

func (lexer *Lexer) mode() LexMode {
	switch {
	case lexer.inQuote:
		return QuoteMode
	case lexer.inComment:
		return CommentMode
	}
	return NormalMode
}

// Tokenize lexes source until the end of program marker. The returned error is the
// *LexError that halted lexing, the tokens read up to that point are still returned.
// A halted lexer keeps returning them without lexing again until Reset is called.
func (lexer *Lexer) Tokenize(source string) ([]*Token, error) {
	if lexer.err != nil {
		return lexer.tokens, lexer.err
	}
	lexer.Reset()
	lexer.logger.Info("lexing program")
	pos := 0
	for pos < len(source) && !lexer.foundEOP {
		rule, length := lexer.nextRule(source[pos:])
		if length == 0 {
			// every mode ends in a catch-all, this only happens with a custom grammar
			return lexer.tokens, lexer.fail(UndefinedLexError, source[pos:pos+1])
		}
		lexeme := source[pos : pos+length]
		if err := lexer.apply(rule, lexeme); err != nil {
			lexer.err = err
			return lexer.tokens, err
		}
		pos += length
	}
	lexer.finish()
	lexer.logger.Info("lexing completed with %d error(s) and %d warning(s)", len(lexer.errors), len(lexer.warnings))
	return lexer.tokens, nil
}

// nextRule finds the first rule in priority-then-table order matching at the start of rest.
func (lexer *Lexer) nextRule(rest string) (GrammarRule, int) {
	mode := lexer.mode()
	for _, tier := range lexer.grammar.Tiers() {
		for _, rule := range lexer.grammar.Rules(mode, tier) {
			if length := rule.match(rest); length > 0 {
				return rule, length
			}
		}
	}
	return GrammarRule{}, 0
}

func (lexer *Lexer) apply(rule GrammarRule, lexeme string) error {
	switch rule.Action {
	case EmitAction:
		lexer.emit(rule.Kind, lexeme)
	case SkipAction:
	case NewLineAction:
		lexer.line++
		lexer.col = 1
		return nil
	case OpenQuoteAction:
		lexer.emit(QuoteTP, lexeme)
		lexer.inQuote = true
	case CloseQuoteAction:
		lexer.emit(QuoteTP, lexeme)
		lexer.inQuote = false
	case OpenCommentAction:
		lexer.inComment = true
	case CloseCommentAction:
		lexer.inComment = false
	case EndOfProgramAction:
		lexer.emit(EOPTP, lexeme)
		lexer.foundEOP = true
	case UndefinedAction:
		return lexer.fail(UndefinedLexError, lexeme)
	case ReservedAction:
		return lexer.fail(ReservedLexError, lexeme)
	default:
		return errors.New("unknown lexical action")
	}
	lexer.col += len(lexeme)
	return nil
}

func (lexer *Lexer) emit(tp TokenType, lexeme string) {
	token := NewToken(tp, lexeme, lexer.line, lexer.col)
	lexer.tokens = append(lexer.tokens, token)
	lexer.logger.Debug(tp.String(), logging.F("lexeme", lexeme), logging.F("line", lexer.line), logging.F("col", lexer.col))
}

func (lexer *Lexer) fail(kind LexErrorKind, lexeme string) error {
	err := &LexError{Kind: kind, Lexeme: lexeme, Loc: Location{Line: lexer.line, Col: lexer.col}}
	lexer.errors = append(lexer.errors, err)
	lexer.logger.Error("%s", err.Error())
	lexer.err = err
	return err
}

func (lexer *Lexer) warn(kind WarningKind, message string) {
	warning := &Warning{Kind: kind, Message: message, Loc: Location{Line: lexer.line, Col: lexer.col}}
	lexer.warnings = append(lexer.warnings, warning)
	lexer.logger.Warn("%s", warning.String())
}

// finish handles a program that ran out of text, lexing goes on as if the missing
// markers had been written.
func (lexer *Lexer) finish() {
	if lexer.foundEOP {
		return
	}
	if lexer.inQuote {
		lexer.warn(MissingEndQuoteWarning, "missing end quote")
		lexer.emit(QuoteTP, `"`)
		lexer.inQuote = false
	}
	if lexer.inComment {
		lexer.warn(MissingEndCommentWarning, "missing end comment")
		lexer.inComment = false
	}
	lexer.warn(MissingEOPWarning, "missing end of program marker $")
	lexer.emit(EOPTP, "$")
	lexer.foundEOP = true
}

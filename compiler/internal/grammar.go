package internal

import (
	"regexp"
	"sort"
)

// LexMode is the lexical sub-mode a rule belongs to.
type LexMode int

const (
	NormalMode LexMode = iota
	QuoteMode
	CommentMode
)

// LexAction is the side effect of a matched rule.
type LexAction int

const (
	EmitAction           LexAction = iota // emit a token of the rule's kind
	SkipAction                            // whitespace
	NewLineAction                         // line++, column reset
	OpenQuoteAction                       // emit QUOTE, enter quote mode
	CloseQuoteAction                      // emit QUOTE, leave quote mode
	OpenCommentAction                     // enter comment mode
	CloseCommentAction                    // leave comment mode
	EndOfProgramAction                    // emit EOP, stop lexing
	UndefinedAction                       // UNDEFINED error, stop lexing
	ReservedAction                        // RESERVED error, stop lexing
)

// GrammarRule is one row of the lexical grammar. Rules are tried tier by tier and, inside
// a tier, in table order; the first pattern matching at the current position wins.
type GrammarRule struct {
	Priority int
	Mode     LexMode
	Kind     TokenType
	Pattern  *regexp.Regexp
	Action   LexAction
}

func newRule(priority int, mode LexMode, kind TokenType, pattern string, action LexAction) GrammarRule {
	return GrammarRule{
		Priority: priority,
		Mode:     mode,
		Kind:     kind,
		Pattern:  regexp.MustCompile(`^(?:` + pattern + `)`),
		Action:   action,
	}
}

// match returns the length of the text matched at the start of rest, or 0.
func (rule GrammarRule) match(rest string) int {
	loc := rule.Pattern.FindStringIndex(rest)
	if loc == nil {
		return 0
	}
	return loc[1]
}

// LexicalGrammar is read only once built. The lexer gets it by reference.
type LexicalGrammar struct {
	rules []GrammarRule
	tiers []int
	modes map[LexMode][]GrammarRule
}

func NewLexicalGrammar(rules []GrammarRule) *LexicalGrammar {
	grammar := &LexicalGrammar{rules: rules, modes: map[LexMode][]GrammarRule{}}
	seen := map[int]bool{}
	for _, rule := range rules {
		grammar.modes[rule.Mode] = append(grammar.modes[rule.Mode], rule)
		if !seen[rule.Priority] {
			seen[rule.Priority] = true
			grammar.tiers = append(grammar.tiers, rule.Priority)
		}
	}
	sort.Ints(grammar.tiers)
	return grammar
}

// Tiers returns the priority levels in escalation order.
func (grammar *LexicalGrammar) Tiers() []int {
	return grammar.tiers
}

// Rules returns the rules active in mode at the given tier, in table order.
func (grammar *LexicalGrammar) Rules(mode LexMode, tier int) []GrammarRule {
	var ret []GrammarRule
	for _, rule := range grammar.modes[mode] {
		if rule.Priority == tier {
			ret = append(ret, rule)
		}
	}
	return ret
}

const (
	reservedTier = 0
	symbolTier   = 1
	atomTier     = 2
	catchAllTier = 4
)

var defaultLexicalGrammar = NewLexicalGrammar([]GrammarRule{
	newRule(reservedTier, NormalMode, PrintTP, `print`, EmitAction),
	newRule(reservedTier, NormalMode, WhileTP, `while`, EmitAction),
	newRule(reservedTier, NormalMode, IfTP, `if`, EmitAction),
	newRule(reservedTier, NormalMode, TypeTP, `int|string|boolean`, EmitAction),
	newRule(reservedTier, NormalMode, BoolValTP, `true|false`, EmitAction),

	newRule(symbolTier, NormalMode, EqualityTP, `==`, EmitAction),
	newRule(symbolTier, NormalMode, InequalityTP, `!=`, EmitAction),
	newRule(symbolTier, NormalMode, EOPTP, `/\*`, OpenCommentAction),
	newRule(symbolTier, NormalMode, LeftBraceTP, `\{`, EmitAction),
	newRule(symbolTier, NormalMode, RightBraceTP, `\}`, EmitAction),
	newRule(symbolTier, NormalMode, LeftParenTP, `\(`, EmitAction),
	newRule(symbolTier, NormalMode, RightParenTP, `\)`, EmitAction),
	newRule(symbolTier, NormalMode, AssignTP, `=`, EmitAction),
	newRule(symbolTier, NormalMode, AdditionTP, `\+`, EmitAction),
	newRule(symbolTier, NormalMode, QuoteTP, `"`, OpenQuoteAction),
	newRule(symbolTier, NormalMode, EOPTP, `\$`, EndOfProgramAction),

	newRule(atomTier, NormalMode, IdTP, `\n`, NewLineAction),
	newRule(atomTier, NormalMode, IdTP, `[ \t\r]+`, SkipAction),
	newRule(atomTier, NormalMode, IdTP, `[a-z]`, EmitAction),
	newRule(atomTier, NormalMode, DigitTP, `[0-9]`, EmitAction),

	newRule(catchAllTier, NormalMode, IdTP, `(?s).`, UndefinedAction),

	newRule(symbolTier, QuoteMode, QuoteTP, `"`, CloseQuoteAction),
	newRule(atomTier, QuoteMode, CharTP, `[a-z]`, EmitAction),
	newRule(atomTier, QuoteMode, SpaceTP, ` `, EmitAction),
	newRule(catchAllTier, QuoteMode, CharTP, `(?s).`, ReservedAction),

	newRule(symbolTier, CommentMode, EOPTP, `\*/`, CloseCommentAction),
	newRule(atomTier, CommentMode, IdTP, `\n`, NewLineAction),
	newRule(catchAllTier, CommentMode, IdTP, `(?s).`, SkipAction),
})

// DefaultLexicalGrammar returns the grammar of the source language.
func DefaultLexicalGrammar() *LexicalGrammar {
	return defaultLexicalGrammar
}

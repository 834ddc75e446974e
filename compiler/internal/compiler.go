package internal

import (
	"strings"

	"compiler_for_6502a/logging"
)

const (
	LexerStage    = "Lexer"
	ParserStage   = "Parser"
	AnalyzerStage = "Semantic Analyzer"
	CodeGenStage  = "Code Generator"
)

type Options struct {
	Sink    logging.Sink
	Verbose bool
}

// Result is everything one compilation produced. Artifacts of stages that never ran are nil.
type Result struct {
	Tokens   []*Token
	CST      *Tree
	AST      *Tree
	Scopes   *ScopeTable
	Image    *CodeImage
	Warnings []*Warning
}

// SplitPrograms splits text after every end of program marker. Text after the last marker
// is a program of its own unless it is blank.
func SplitPrograms(text string) []string {
	var ret []string
	for {
		idx := strings.IndexByte(text, '$')
		if idx < 0 {
			break
		}
		ret = append(ret, text[:idx+1])
		text = text[idx+1:]
	}
	if strings.TrimSpace(text) != "" {
		ret = append(ret, text)
	}
	return ret
}

// Compile runs the four stages over one program and stops at the first stage that fails.
func Compile(source string, options Options) (*Result, error) {
	logger := logging.NewLogger(options.Sink, LexerStage, options.Verbose)
	result := &Result{}

	lexer := NewLexer(DefaultLexicalGrammar(), logger)
	tokens, err := lexer.Tokenize(source)
	result.Tokens = tokens
	result.Warnings = append(result.Warnings, lexer.Warnings()...)
	if err != nil {
		return result, err
	}

	parser := NewParser(DefaultProductionTable(), logger.ForStage(ParserStage))
	cst, err := parser.Parse(tokens)
	result.CST = cst
	if err != nil {
		return result, err
	}
	if options.Verbose {
		logger.ForStage(ParserStage).Debug("concrete syntax tree", logging.F("tree", "\n"+cst.String()))
	}

	analyzer := NewSemanticAnalyzer(DefaultProductionTable(), logger.ForStage(AnalyzerStage))
	ast, scopes, err := analyzer.Analyze(cst)
	result.AST, result.Scopes = ast, scopes
	result.Warnings = append(result.Warnings, analyzer.Warnings()...)
	if err != nil {
		return result, err
	}
	if options.Verbose {
		analyzerLogger := logger.ForStage(AnalyzerStage)
		analyzerLogger.Debug("abstract syntax tree", logging.F("tree", "\n"+ast.String()))
		analyzerLogger.Debug("symbol table", logging.F("scopes", "\n"+scopes.String()))
	}

	generator := NewCodeGenerator(DefaultBlockTemplates(), logger.ForStage(CodeGenStage))
	image, err := generator.Generate(ast, scopes)
	result.Image = image
	return result, err
}

package internal

import (
	"testing"

	"compiler_for_6502a/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(sink logging.Sink) *SemanticAnalyzer {
	return NewSemanticAnalyzer(DefaultProductionTable(), logging.NewLogger(sink, "Semantic Analyzer", true))
}

func analyzeSource(t *testing.T, analyzer *SemanticAnalyzer, source string) (*Tree, *ScopeTable, error) {
	_, cst, err := parseSource(t, source, nil)
	require.Nil(t, err, source)
	return analyzer.Analyze(cst)
}

func TestSemanticAnalyzer_Lowering(t *testing.T) {
	testData := []struct {
		source string
		ast    string
		scopes int
	}{
		{source: "{}$", ast: "<Block>\n", scopes: 1},
		{
			source: "{ int a a = 1 + a print(a) }$",
			ast:    "<Block>\n-<VarDecl>\n--[int]\n--[a]\n-<AssignmentStatement>\n--[a]\n--[+]\n---[1]\n---[a]\n-<PrintStatement>\n--[a]\n",
			scopes: 1,
		},
		{
			source: "{ string s s = \"a b\" print(s) }$",
			ast:    "<Block>\n-<VarDecl>\n--[string]\n--[s]\n-<AssignmentStatement>\n--[s]\n--[\"a b\"]\n-<PrintStatement>\n--[s]\n",
			scopes: 1,
		},
		{
			source: "{ while (1 != 2) { print(3) } }$",
			ast:    "<Block>\n-<WhileStatement>\n--[!=]\n---[1]\n---[2]\n--<Block>\n---<PrintStatement>\n----[3]\n",
			scopes: 2,
		},
		{
			source: "{ if false {} {} }$",
			ast:    "<Block>\n-<IfStatement>\n--[false]\n--<Block>\n-<Block>\n",
			scopes: 3,
		},
		{
			source: "{ print(\"\") }$",
			ast:    "<Block>\n-<PrintStatement>\n--[\"\"]\n",
			scopes: 1,
		},
	}
	analyzer := newTestAnalyzer(nil)
	for _, data := range testData {
		ast, scopes, err := analyzeSource(t, analyzer, data.source)
		assert.Nil(t, err, data.source)
		assert.Equal(t, data.ast, ast.String(), data.source)
		assert.Equal(t, data.scopes, scopes.Len(), data.source)
	}
}

func TestSemanticAnalyzer_Errors(t *testing.T) {
	testData := []struct {
		source string
		kind   SemanticErrorKind
		loc    Location
	}{
		{source: "{ int a\n a = a\n string b\n a = b\n}$", kind: AssignmentError, loc: Location{Line: 4, Col: 2}},
		{source: "{ int a\n int a\n}$", kind: RedeclaredError, loc: Location{Line: 2, Col: 6}},
		{source: "{ a = 5\n}$", kind: UndeclaredError, loc: Location{Line: 1, Col: 3}},
		{source: "{ print(z) }$", kind: UndeclaredError, loc: Location{Line: 1, Col: 9}},
		{source: "{ int a a = 1 + \"x\" }$", kind: OperatorError, loc: Location{Line: 1, Col: 15}},
		{source: "{ boolean b b = (1 == \"x\") }$", kind: OperatorError, loc: Location{Line: 1, Col: 20}},
		{source: "{ int a a = true }$", kind: AssignmentError, loc: Location{Line: 1, Col: 9}},
		{source: "{ boolean b b = (1 == 2) b = 3 }$", kind: AssignmentError, loc: Location{Line: 1, Col: 26}},
		// later errors are not reported
		{source: "{ a = 1 b = 2 }$", kind: UndeclaredError, loc: Location{Line: 1, Col: 3}},
		{source: "{ { int a } a = 1 }$", kind: UndeclaredError, loc: Location{Line: 1, Col: 13}},
	}
	for _, data := range testData {
		sink := logging.NewMemorySink()
		analyzer := newTestAnalyzer(sink)
		_, _, err := analyzeSource(t, analyzer, data.source)
		semanticErr, ok := err.(*SemanticError)
		require.True(t, ok, data.source)
		assert.Equal(t, data.kind, semanticErr.Kind, data.source)
		assert.Equal(t, data.loc, semanticErr.Loc, data.source)
		assert.Equal(t, 1, len(analyzer.Errors()), data.source)
		assert.Equal(t, 1, len(sink.Filter(logging.LevelError)), data.source)
	}
}

func TestSemanticAnalyzer_Shadowing(t *testing.T) {
	analyzer := newTestAnalyzer(nil)
	_, scopes, err := analyzeSource(t, analyzer, "{ int a { string a a = \"x\" print(a) } a = 1 print(a) }$")
	assert.Nil(t, err)
	outer, _ := scopes.Scope(0).Lookup("a")
	inner, _ := scopes.Scope(1).Lookup("a")
	assert.Equal(t, IntType, outer.Type)
	assert.Equal(t, StringType, inner.Type)
	assert.Equal(t, 1, len(outer.Initializations))
	assert.Equal(t, 1, len(inner.Initializations))
	assert.Empty(t, analyzer.Warnings())
}

func TestSemanticAnalyzer_Warnings(t *testing.T) {
	testData := []struct {
		source   string
		warnings []WarningKind
	}{
		{source: "{ int a print(a) }$", warnings: []WarningKind{UninitializedWarning, UnusedDeclaredWarning}},
		{source: "{ int a a = 1 }$", warnings: []WarningKind{UnusedInitializedWarning}},
		{source: "{ int a }$", warnings: nil},
		{source: "{ int a int b a = 1 b = a }$", warnings: []WarningKind{UnusedInitializedWarning}},
		{source: "{ int a int b b = 1 + a print(b) }$", warnings: []WarningKind{UnusedDeclaredWarning}},
		// a nested sum is still an int
		{source: "{ int a a = 1 + 2 + 3 print(a) }$", warnings: nil},
	}
	for _, data := range testData {
		analyzer := newTestAnalyzer(nil)
		_, _, err := analyzeSource(t, analyzer, data.source)
		assert.Nil(t, err, data.source)
		var kinds []WarningKind
		for _, warning := range analyzer.Warnings() {
			kinds = append(kinds, warning.Kind)
		}
		assert.Equal(t, data.warnings, kinds, data.source)
	}
}

func TestSemanticAnalyzer_UsageTracking(t *testing.T) {
	analyzer := newTestAnalyzer(nil)
	_, scopes, err := analyzeSource(t, analyzer, "{ int a\n a = a\n print(a) }$")
	assert.Nil(t, err)
	info, _ := scopes.Scope(0).Lookup("a")
	assert.Equal(t, []Location{{Line: 2, Col: 2}}, info.Initializations)
	assert.Equal(t, []Location{{Line: 2, Col: 6}, {Line: 3, Col: 8}}, info.Uses)
}

func TestSemanticAnalyzer_IdempotentHalt(t *testing.T) {
	sink := logging.NewMemorySink()
	analyzer := newTestAnalyzer(sink)
	_, cst, err := parseSource(t, "{ int a\n int a\n}$", nil)
	require.Nil(t, err)
	ast, scopes, err := analyzer.Analyze(cst)
	require.NotNil(t, err)
	entries := len(sink.Entries)
	dump := ast.String()

	for i := 0; i < 3; i++ {
		againAST, againScopes, againErr := analyzer.Analyze(cst)
		assert.Equal(t, err, againErr)
		assert.True(t, ast == againAST)
		assert.True(t, scopes == againScopes)
	}
	assert.Equal(t, entries, len(sink.Entries))
	assert.Equal(t, dump, ast.String())
	assert.Equal(t, 1, len(analyzer.Errors()))

	analyzer.Reset()
	_, _, err = analyzeSource(t, analyzer, "{}$")
	assert.Nil(t, err)
}

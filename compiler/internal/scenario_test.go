package internal

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	mdast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const scenarioPrefix = "Test: "

var scenarioFences = map[string]bool{
	"program":      true,
	"tokens":       true,
	"errors":       true,
	"warnings":     true,
	"image-prefix": true,
	"heap":         true,
}

type scenario struct {
	name   string
	line   int
	fences map[string]string
}

// extractScenarios reads the markdown scenario format: a "Test: <name>" heading followed by
// fenced blocks whose language names what they hold.
func extractScenarios(markdown []byte) ([]*scenario, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))
	var ret []*scenario
	var current *scenario
	err := mdast.Walk(doc, func(node mdast.Node, entering bool) (mdast.WalkStatus, error) {
		if !entering {
			return mdast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *mdast.Heading:
			heading := headingText(n, markdown)
			if strings.HasPrefix(heading, scenarioPrefix) {
				current = &scenario{
					name:   strings.TrimPrefix(heading, scenarioPrefix),
					line:   headingLine(n, markdown),
					fences: map[string]string{},
				}
				ret = append(ret, current)
			}
		case *mdast.FencedCodeBlock:
			language := string(n.Language(markdown))
			if current == nil {
				return mdast.WalkStop, fmt.Errorf("%s fence outside of a test", language)
			}
			if !scenarioFences[language] {
				return mdast.WalkStop, fmt.Errorf("unknown fence %q in test %s", language, current.name)
			}
			if _, ok := current.fences[language]; ok {
				return mdast.WalkStop, fmt.Errorf("duplicated fence %q in test %s", language, current.name)
			}
			current.fences[language] = strings.TrimRight(fenceContent(n, markdown), "\n")
		}
		return mdast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	for _, s := range ret {
		if _, ok := s.fences["program"]; !ok {
			return nil, fmt.Errorf("test %s has no program fence", s.name)
		}
	}
	return ret, nil
}

func headingText(node mdast.Node, source []byte) string {
	bf := bytes.Buffer{}
	_ = mdast.Walk(node, func(n mdast.Node, entering bool) (mdast.WalkStatus, error) {
		if t, ok := n.(*mdast.Text); ok && entering {
			bf.Write(t.Segment.Value(source))
		}
		return mdast.WalkContinue, nil
	})
	return bf.String()
}

// headingLine is the 1-based line of the heading text in source.
func headingLine(node *mdast.Heading, source []byte) int {
	if node.Lines().Len() == 0 {
		return 0
	}
	return bytes.Count(source[:node.Lines().At(0).Start], []byte("\n")) + 1
}

func fenceContent(block *mdast.FencedCodeBlock, source []byte) string {
	bf := bytes.Buffer{}
	for i := 0; i < block.Lines().Len(); i++ {
		line := block.Lines().At(i)
		bf.Write(line.Value(source))
	}
	return bf.String()
}

// errorKind names the error that stopped a compilation the way the fixtures spell it.
func errorKind(err error) string {
	switch e := err.(type) {
	case *LexError:
		return string(e.Kind)
	case *ParseError:
		return "PARSE"
	case *SemanticError:
		return string(e.Kind)
	case *CodeGenError:
		return string(e.Kind)
	}
	return err.Error()
}

func TestExtractScenarios(t *testing.T) {
	scenarios, err := extractScenarios([]byte("# Title\n\n## Test: one\n\n```program\n{}$\n```\n\n```errors\nPARSE\n```\n"))
	require.Nil(t, err)
	require.Equal(t, 1, len(scenarios))
	assert.Equal(t, "one", scenarios[0].name)
	assert.Equal(t, "{}$", scenarios[0].fences["program"])
	assert.Equal(t, "PARSE", scenarios[0].fences["errors"])
	assert.Equal(t, 3, scenarios[0].line)

	_, err = extractScenarios([]byte("## Test: bad\n\n```program\n{}$\n```\n\n```output\n00\n```\n"))
	assert.NotNil(t, err)
	_, err = extractScenarios([]byte("```program\n{}$\n```\n"))
	assert.NotNil(t, err)
	_, err = extractScenarios([]byte("## Test: empty\n\n```tokens\nEOP\n```\n"))
	assert.NotNil(t, err)
}

func TestScenarios(t *testing.T) {
	markdown, err := os.ReadFile("testdata/scenarios.md")
	require.Nil(t, err)
	scenarios, err := extractScenarios(markdown)
	require.Nil(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		s := s
		t.Run(s.name, func(t *testing.T) {
			where := fmt.Sprintf("scenarios.md:%d", s.line)
			result, err := Compile(s.fences["program"], Options{})
			if expected, ok := s.fences["errors"]; ok {
				require.NotNil(t, err, where)
				assert.Equal(t, expected, errorKind(err), where)
				if _, codeGen := err.(*CodeGenError); !codeGen {
					assert.Nil(t, result.Image, "%s: no code is generated for a program that failed earlier", where)
				}
			} else {
				require.Nil(t, err, where)
			}
			if expected, ok := s.fences["tokens"]; ok {
				var kinds []string
				for _, token := range result.Tokens {
					kinds = append(kinds, token.Type().String())
				}
				assert.Equal(t, strings.Fields(expected), kinds, where)
			}
			if expected, ok := s.fences["warnings"]; ok {
				var kinds []string
				for _, warning := range result.Warnings {
					kinds = append(kinds, string(warning.Kind))
				}
				assert.Equal(t, strings.Fields(expected), kinds, where)
			}
			if expected, ok := s.fences["image-prefix"]; ok {
				cells := strings.Fields(expected)
				require.NotNil(t, result.Image, where)
				assert.Equal(t, cells, result.Image.Cells[:len(cells)], where)
			}
			if expected, ok := s.fences["heap"]; ok {
				require.NotNil(t, result.Image, where)
				var heap []string
				for _, entry := range result.Image.Heap {
					heap = append(heap, fmt.Sprintf("%02X %s", entry.Address, strconv.Quote(entry.Text)))
				}
				assert.Equal(t, strings.Split(expected, "\n"), heap, where)
			}
		})
	}
}

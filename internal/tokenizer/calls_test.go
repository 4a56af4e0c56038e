package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanCalls_Simple(t *testing.T) {
	text := `loadMacros("PGstandard.pl", "PGML.pl");`
	calls := ScanCalls(text, []string{"loadMacros"}, nil)

	require.Len(t, calls, 1)
	assert.Equal(t, "loadMacros", calls[0].Name)
	assert.Equal(t, `"PGstandard.pl", "PGML.pl"`, calls[0].ArgText)
	assert.Equal(t, 1, calls[0].Line)
}

func TestScanCalls_MultilineArgs(t *testing.T) {
	text := "loadMacros(\n\t\"PGstandard.pl\",\n\t\"MathObjects.pl\"\n);\nANS($a->cmp());\n"
	calls := ScanCalls(text, []string{"loadMacros", "ANS"}, nil)

	require.Len(t, calls, 2)
	assert.Equal(t, "loadMacros", calls[0].Name)
	assert.Contains(t, calls[0].ArgText, "MathObjects.pl")
	assert.Equal(t, "ANS", calls[1].Name)
	assert.Equal(t, "$a->cmp()", calls[1].ArgText)
	assert.Equal(t, 5, calls[1].Line)
}

func TestScanCalls_NestedParens(t *testing.T) {
	text := `ANS(num_cmp($answer, tol => abs(0.01)));`
	calls := ScanCalls(text, []string{"ANS"}, nil)

	require.Len(t, calls, 1)
	assert.Equal(t, "num_cmp($answer, tol => abs(0.01))", calls[0].ArgText)
}

func TestScanCalls_ParenInsideStringIgnored(t *testing.T) {
	text := `ANS(str_cmp("a ) b"));`
	calls := ScanCalls(text, []string{"ANS"}, nil)

	require.Len(t, calls, 1)
	assert.Equal(t, `str_cmp("a ) b")`, calls[0].ArgText)
}

func TestScanCalls_WordBoundary(t *testing.T) {
	text := `myloadMacros("x.pl"); loadMacrosExtra("y.pl");`
	calls := ScanCalls(text, []string{"loadMacros"}, nil)
	assert.Empty(t, calls)
}

func TestScanCalls_NameWithoutParens(t *testing.T) {
	text := "$x = loadMacros;\nloadMacros(\"z.pl\");\n"
	calls := ScanCalls(text, []string{"loadMacros"}, nil)

	require.Len(t, calls, 1)
	assert.Equal(t, 2, calls[0].Line)
}

func TestScanCalls_NoNames(t *testing.T) {
	assert.Nil(t, ScanCalls("loadMacros()", nil, nil))
}

func TestMatchParen(t *testing.T) {
	text := `f(a, g(b), "c)d")`
	close := MatchParen(text, 1)
	assert.Equal(t, len(text)-1, close)

	assert.Equal(t, -1, MatchParen("f(unclosed", 1))
	assert.Equal(t, -1, MatchParen("abc", 1))
}

func TestMatchBrace(t *testing.T) {
	text := `{$a->cmp(p => {x => 1})}`
	close := MatchBrace(text, 0)
	assert.Equal(t, len(text)-1, close)

	assert.Equal(t, -1, MatchBrace("{open", 0))
}

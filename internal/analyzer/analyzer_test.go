package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

const numericProblem = `DOCUMENT();
loadMacros("PGstandard.pl", "MathObjects.pl");
## DBsubject(Algebra)
$a = random(1, 10, 1);
$ans = Real($a + 2);
TEXT("Compute: " . ans_rule(10));
ANS($ans->cmp);
ENDDOCUMENT();
`

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestDiscover(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"alg/linear.pg":    numericProblem,
		"alg/quadratic.pg": numericProblem,
		"notes.txt":        "not a problem",
		".git/hidden.pg":   "skipped",
	})

	files, err := Discover([]string{root})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "alg/linear.pg", files[0].RelPath)
	assert.Equal(t, "alg/quadratic.pg", files[1].RelPath)
}

func TestDiscoverNoRoots(t *testing.T) {
	_, err := Discover(nil)
	assert.ErrorIs(t, err, types.ErrNoRoots)
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := Discover([]string{filepath.Join(t.TempDir(), "absent")})
	assert.Error(t, err)
}

func TestAnalyzeBytesClassifies(t *testing.T) {
	a := New()
	cl := a.AnalyzeBytes([]byte(numericProblem), "/corpus/p.pg", "p.pg")

	require.False(t, cl.Failed)
	assert.Contains(t, cl.Types, types.TypeNumericEntry)
	assert.NotEmpty(t, cl.SHA256)
	assert.NotEmpty(t, cl.SHA256WS)
	assert.True(t, cl.HasRandomization)
}

func TestAnalyzeBytesNulByteFails(t *testing.T) {
	a := New()
	cl := a.AnalyzeBytes([]byte("DOCUMENT();\x00binary"), "/corpus/p.pg", "p.pg")

	assert.True(t, cl.Failed)
	assert.Equal(t, types.FailEncoding, cl.FailReason)
	// failed files still hash for duplicate grouping
	assert.NotEmpty(t, cl.SHA256)
}

func TestAnalyzeBytesUnterminatedHeredocFails(t *testing.T) {
	a := New()
	cl := a.AnalyzeBytes([]byte("$t = <<EOT;\nnever closed\n"), "/corpus/p.pg", "p.pg")

	assert.True(t, cl.Failed)
	assert.Equal(t, types.FailUnterminatedHeredoc, cl.FailReason)
}

func TestAnalyzeBytesLatin1Content(t *testing.T) {
	a := New()
	content := append([]byte("DOCUMENT();\n# caf"), 0xE9, '\n')
	content = append(content, []byte("ANS(num_cmp($a));\nENDDOCUMENT();\n")...)
	cl := a.AnalyzeBytes(content, "/corpus/p.pg", "p.pg")

	assert.False(t, cl.Failed)
}

func TestAnalyzeWholeCorpus(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"alg/linear.pg":    numericProblem,
		"alg/copy.pg":      numericProblem,
		"broken/binary.pg": "DOCUMENT();\x00",
	})

	state, err := New(WithWorkers(2)).Analyze(context.Background(), []string{root})
	require.NoError(t, err)

	assert.Equal(t, 3, state.TotalFiles)
	assert.Equal(t, 1, state.FailedFiles)
	assert.Equal(t, 2, state.TypeCounts[string(types.TypeNumericEntry)])
	// the two identical files share a raw-hash group
	assert.Len(t, state.ByRawHash, 2)
}

func TestAnalyzeCanceledContext(t *testing.T) {
	root := writeCorpus(t, map[string]string{"p.pg": numericProblem})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state, err := New().Analyze(ctx, []string{root})
	assert.Error(t, err)
	assert.Nil(t, state)
}

func TestAnalyzeOrderIndependent(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"a.pg": numericProblem,
		"b.pg": "DOCUMENT();\nloadMacros(\"PGML.pl\");\nBEGIN_PGML\n[_]{$x}\nEND_PGML\nENDDOCUMENT();\n",
		"c.pg": "DOCUMENT();\nENDDOCUMENT();\n",
	})

	first, err := New(WithWorkers(1)).Analyze(context.Background(), []string{root})
	require.NoError(t, err)
	second, err := New(WithWorkers(3)).Analyze(context.Background(), []string{root})
	require.NoError(t, err)

	assert.Equal(t, first.TypeCounts, second.TypeCounts)
	assert.Equal(t, first.Coverage, second.Coverage)
	assert.Equal(t, first.ConfidenceBins, second.ConfidenceBins)
}

// Package integration exercises the full pipeline: corpus on disk,
// concurrent analysis, SQLite persistence, and the rendered report tree.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vosslab/webwork-pgml-opl-training-set/internal/aggregate"
	"github.com/vosslab/webwork-pgml-opl-training-set/internal/analyzer"
	"github.com/vosslab/webwork-pgml-opl-training-set/internal/report"
	"github.com/vosslab/webwork-pgml-opl-training-set/internal/storage"
	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

var corpus = map[string]string{
	"algebra/linear.pg": `DOCUMENT();
loadMacros("PGstandard.pl", "MathObjects.pl");
## DBsubject(Algebra)
## DBchapter(Linear equations)
$a = random(2, 9, 1);
$ans = Real(3 * $a);
TEXT("Solve: " . ans_rule(10));
ANS($ans->cmp);
ENDDOCUMENT();
`,
	"algebra/linear_copy.pg": `DOCUMENT();
loadMacros("PGstandard.pl", "MathObjects.pl");
## DBsubject(Algebra)
## DBchapter(Linear equations)
$a = random(2, 9, 1);
$ans = Real(3 * $a);
TEXT("Solve: " . ans_rule(10));
ANS($ans->cmp);
ENDDOCUMENT();
`,
	"stats/choice.pg": `DOCUMENT();
loadMacros("PGstandard.pl", "parserRadioButtons.pl");
## DBsubject(Statistics)
$radio = RadioButtons(["Mean", "Median", "Mode"], "Median");
TEXT($radio->buttons);
ANS($radio->cmp);
ENDDOCUMENT();
`,
	"pgml/annotated.pg": `DOCUMENT();
loadMacros("PGstandard.pl", "PGML.pl");
$x = Compute("4");
BEGIN_PGML
Twice [$x] is [_]{2 * $x}
END_PGML
ENDDOCUMENT();
`,
	"odd/empty.pg": `DOCUMENT();
ENDDOCUMENT();
`,
	"odd/binary.pg": "DOCUMENT();\x00garbage",
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range corpus {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestAnalyzeEndToEnd(t *testing.T) {
	root := writeCorpus(t)

	state, err := analyzer.New(analyzer.WithWorkers(4)).Analyze(context.Background(), []string{root})
	require.NoError(t, err)

	assert.Equal(t, len(corpus), state.TotalFiles)
	assert.Equal(t, 1, state.FailedFiles)
	assert.Equal(t, 1, state.FailReasons[types.FailEncoding])
	assert.Equal(t, 2, state.TypeCounts[string(types.TypeNumericEntry)])
	assert.Equal(t, 1, state.TypeCounts[string(types.TypeMultipleChoice)])
	assert.GreaterOrEqual(t, state.TypeCounts[string(types.TypeOther)], 1)
	assert.Equal(t, 2, state.DisciplineCounts["mathematics"])
	assert.Equal(t, 1, state.DisciplineCounts["statistics"])
	assert.Equal(t, 2, state.FeatureCounts[aggregate.FeatureRandomization])
}

func TestReportsAreByteStableAcrossRuns(t *testing.T) {
	root := writeCorpus(t)

	render := func(workers int) map[string]string {
		state, err := analyzer.New(analyzer.WithWorkers(workers)).Analyze(context.Background(), []string{root})
		require.NoError(t, err)
		return report.Render(state)
	}

	first := render(1)
	second := render(4)
	require.Equal(t, len(first), len(second))
	for path, content := range first {
		assert.Equal(t, content, second[path], path)
	}
}

func TestReportTreeOnDisk(t *testing.T) {
	root := writeCorpus(t)
	outDir := filepath.Join(t.TempDir(), "reports")

	state, err := analyzer.New().Analyze(context.Background(), []string{root})
	require.NoError(t, err)
	require.NoError(t, report.Write(outDir, report.Render(state)))

	dup, err := os.ReadFile(filepath.Join(outDir, "duplicates", "duplicate_clusters_raw.tsv"))
	require.NoError(t, err)
	assert.Contains(t, string(dup), "algebra/linear.pg")

	index, err := os.ReadFile(filepath.Join(outDir, "INDEX.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "summary/type_counts.tsv")
}

func TestAnalyzeWithPersistence(t *testing.T) {
	root := writeCorpus(t)
	dbPath := filepath.Join(t.TempDir(), "corpus.db")

	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	state, err := analyzer.New(
		analyzer.WithWorkers(2),
		analyzer.WithStorage(store),
	).Analyze(context.Background(), []string{root})
	require.NoError(t, err)

	ctx := context.Background()
	run, err := store.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, state.TotalFiles, run.TotalFiles)
	assert.Equal(t, state.FailedFiles, run.FailedFiles)

	rec, err := store.GetFileRecord(ctx, run.ID, "stats/choice.pg")
	require.NoError(t, err)
	assert.Contains(t, rec.TypeList(), string(types.TypeMultipleChoice))

	counts, err := store.CountByType(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, state.TypeCounts[string(types.TypeNumericEntry)], counts[string(types.TypeNumericEntry)])

	groups, err := store.ListDuplicateGroups(ctx, run.ID, false, 10)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].Count)
}

func TestRerunIsIdempotent(t *testing.T) {
	root := writeCorpus(t)

	first, err := analyzer.New().Analyze(context.Background(), []string{root})
	require.NoError(t, err)
	second, err := analyzer.New().Analyze(context.Background(), []string{root})
	require.NoError(t, err)

	assert.Equal(t, report.Render(first), report.Render(second))
}

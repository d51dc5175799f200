package diffengine

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_IdenticalInputs(t *testing.T) {
	files := map[string]string{
		"app/main.py":      "print('hello')\n",
		"requirements.txt": "fastapi\n",
	}

	result := Compute(files, files)
	require.Len(t, result.Files, 2)
	for _, f := range result.Files {
		assert.Equal(t, StatusUnchanged, f.Status)
		assert.Empty(t, f.DiffLines)
		assert.Zero(t, f.Additions)
		assert.Zero(t, f.Deletions)
		assert.Equal(t, 1.0, f.Similarity)
	}
	assert.Equal(t, 2, result.UnchangedCount())
	assert.Empty(t, result.ChangedFiles())
}

func TestCompute_AddedFile(t *testing.T) {
	result := Compute(map[string]string{}, map[string]string{"a.txt": "x\ny\n"})

	require.Len(t, result.Files, 1)
	f := result.Files[0]
	assert.Equal(t, "a.txt", f.Path)
	assert.Equal(t, StatusAdded, f.Status)
	assert.Equal(t, 2, f.Additions)
	assert.Equal(t, 0, f.Deletions)
	assert.Equal(t, 0.0, f.Similarity)

	diff := strings.Join(f.DiffLines, "")
	assert.Contains(t, diff, "--- /dev/null")
	assert.Contains(t, diff, "+++ b/a.txt")
	assert.Contains(t, diff, "@@ -0,0 +1,2 @@")
	assert.Contains(t, diff, "+x\n")
	assert.Contains(t, diff, "+y\n")
}

func TestCompute_RemovedFile(t *testing.T) {
	result := Compute(map[string]string{"a.txt": "x\ny\n"}, map[string]string{})

	require.Len(t, result.Files, 1)
	f := result.Files[0]
	assert.Equal(t, StatusRemoved, f.Status)
	assert.Equal(t, 0, f.Additions)
	assert.Equal(t, 2, f.Deletions)
	assert.Equal(t, 0.0, f.Similarity)

	diff := strings.Join(f.DiffLines, "")
	assert.Contains(t, diff, "--- a/a.txt")
	assert.Contains(t, diff, "+++ /dev/null")
	assert.Contains(t, diff, "-x\n")
}

func TestCompute_EmptyContentCountsZeroLines(t *testing.T) {
	result := Compute(map[string]string{}, map[string]string{"empty.txt": ""})

	require.Len(t, result.Files, 1)
	assert.Equal(t, StatusAdded, result.Files[0].Status)
	assert.Equal(t, 0, result.Files[0].Additions)
}

func TestCompute_ModifiedFile(t *testing.T) {
	old := map[string]string{"f": "line1\nline2\n"}
	new_ := map[string]string{"f": "line1\nline3\n"}

	result := Compute(old, new_)
	require.Len(t, result.Files, 1)
	f := result.Files[0]
	assert.Equal(t, StatusModified, f.Status)
	assert.Equal(t, 1, f.Additions)
	assert.Equal(t, 1, f.Deletions)
	assert.Greater(t, f.Similarity, 0.0)
	assert.Less(t, f.Similarity, 1.0)

	diff := strings.Join(f.DiffLines, "")
	assert.Contains(t, diff, "--- a/f")
	assert.Contains(t, diff, "+++ b/f")
	assert.Contains(t, diff, "-line2")
	assert.Contains(t, diff, "+line3")
}

func TestCompute_UnionCoverage(t *testing.T) {
	old := map[string]string{"a": "1", "b": "2", "c": "3"}
	new_ := map[string]string{"b": "2", "c": "changed", "d": "4"}

	result := Compute(old, new_)
	assert.Len(t, result.Files, 4)

	// Sorted by path.
	paths := make([]string, len(result.Files))
	for i, f := range result.Files {
		paths[i] = f.Path
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, paths)

	assert.Equal(t, 1, result.AddedCount())
	assert.Equal(t, 1, result.RemovedCount())
	assert.Equal(t, 1, result.ModifiedCount())
	assert.Equal(t, 1, result.UnchangedCount())
	assert.Len(t, result.ChangedFiles(), 3)
}

func TestCompute_Deterministic(t *testing.T) {
	old := map[string]string{"x.py": "a\nb\nc\n", "y.py": "1\n"}
	new_ := map[string]string{"x.py": "a\nB\nc\n", "z.py": "2\n"}

	first := Compute(old, new_)
	second := Compute(old, new_)
	assert.Equal(t, first, second)
}

func TestCompute_WhitespaceReorderKeepsSimilarityHigh(t *testing.T) {
	oldText := "def f():\n    return 1\n\n\ndef g():\n    return 2\n"
	newText := "def f():\n    return 1\n\ndef g():\n    return 2\n\n"

	result := Compute(map[string]string{"m.py": oldText}, map[string]string{"m.py": newText})
	require.Len(t, result.Files, 1)
	assert.Equal(t, StatusModified, result.Files[0].Status)
	assert.Greater(t, result.Files[0].Similarity, 0.7)
}

func TestCompute_SingleLineWhitespaceEdit(t *testing.T) {
	// Every line is touched, so the line-level ratio alone would report 0.
	result := Compute(map[string]string{"f": "a b\n"}, map[string]string{"f": "a  b\n"})
	require.Len(t, result.Files, 1)
	f := result.Files[0]
	assert.Equal(t, StatusModified, f.Status)
	assert.Greater(t, f.Similarity, 0.7)
	assert.Less(t, f.Similarity, 1.0)
}

func TestCompute_BothEmpty(t *testing.T) {
	result := Compute(map[string]string{}, map[string]string{})
	assert.Empty(t, result.Files)
}

func TestDiffResult_JSON(t *testing.T) {
	result := Compute(
		map[string]string{"f": "line1\nline2\n", "gone": "x\n"},
		map[string]string{"f": "line1\nline3\n", "new": "y\n"},
	)

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded struct {
		Summary struct {
			Added     int `json:"added"`
			Removed   int `json:"removed"`
			Modified  int `json:"modified"`
			Unchanged int `json:"unchanged"`
			Total     int `json:"total"`
		} `json:"summary"`
		Files []struct {
			Path       string  `json:"path"`
			Status     string  `json:"status"`
			Diff       string  `json:"diff"`
			Additions  int     `json:"additions"`
			Deletions  int     `json:"deletions"`
			Similarity float64 `json:"similarity"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, 1, decoded.Summary.Added)
	assert.Equal(t, 1, decoded.Summary.Removed)
	assert.Equal(t, 1, decoded.Summary.Modified)
	assert.Equal(t, 0, decoded.Summary.Unchanged)
	assert.Equal(t, 3, decoded.Summary.Total)
	require.Len(t, decoded.Files, 3)

	for _, f := range decoded.Files {
		if f.Status == "modified" {
			// Rounded to two decimals.
			assert.InDelta(t, f.Similarity, float64(int(f.Similarity*100))/100, 0.001)
			assert.NotEmpty(t, f.Diff)
		}
	}
}

func TestMerge_Selectivity(t *testing.T) {
	old := map[string]string{"a": "1", "b": "2"}
	new_ := map[string]string{"a": "9", "b": "3"}

	merged := Merge(old, new_, []string{"a"})
	assert.Equal(t, map[string]string{"a": "9", "b": "2"}, merged)
}

func TestMerge_Deletion(t *testing.T) {
	merged := Merge(map[string]string{"a": "1"}, map[string]string{}, []string{"a"})
	assert.Equal(t, map[string]string{}, merged)
}

func TestMerge_AddedFile(t *testing.T) {
	merged := Merge(map[string]string{}, map[string]string{"a": "new"}, []string{"a"})
	assert.Equal(t, map[string]string{"a": "new"}, merged)
}

func TestMerge_UnknownPathIsNoOp(t *testing.T) {
	old := map[string]string{"a": "1"}
	merged := Merge(old, map[string]string{"a": "2"}, []string{"nonexistent"})
	assert.Equal(t, old, merged)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	old := map[string]string{"a": "1", "b": "2"}
	new_ := map[string]string{"a": "9"}

	_ = Merge(old, new_, []string{"a", "b"})
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, old)
	assert.Equal(t, map[string]string{"a": "9"}, new_)
}

func TestLineCount(t *testing.T) {
	assert.Equal(t, 0, lineCount(""))
	assert.Equal(t, 1, lineCount("x"))
	assert.Equal(t, 1, lineCount("x\n"))
	assert.Equal(t, 2, lineCount("x\ny\n"))
	assert.Equal(t, 2, lineCount("x\ny"))
}

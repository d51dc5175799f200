// Package diffengine compares two generated file sets and supports
// user-directed selective merging. Both operations are pure functions of
// their inputs: comparison is infallible (any two strings are comparable)
// and merging treats unknown paths as no-ops, so neither has an error path.
//
// Unified patches come from github.com/pmezard/go-difflib with zero context
// lines and a/<path>, b/<path> labels; the similarity ratio is difflib's
// longest-common-subsequence ratio over lines, reported independently of the
// line-based add/delete counts.
package diffengine

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Status classifies one path in a diff.
type Status string

const (
	StatusAdded     Status = "added"
	StatusRemoved   Status = "removed"
	StatusModified  Status = "modified"
	StatusUnchanged Status = "unchanged"
)

// FileDiff is the comparison result for a single path.
type FileDiff struct {
	Path       string
	Status     Status
	DiffLines  []string // unified diff, empty for unchanged files
	Additions  int
	Deletions  int
	Similarity float64 // 0.0 (dissimilar) to 1.0 (identical)
}

// MarshalJSON serializes a FileDiff in the wire shape: the diff lines joined
// into one string and the similarity rounded to two decimals.
func (d FileDiff) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path       string  `json:"path"`
		Status     Status  `json:"status"`
		Diff       string  `json:"diff"`
		Additions  int     `json:"additions"`
		Deletions  int     `json:"deletions"`
		Similarity float64 `json:"similarity"`
	}{
		Path:       d.Path,
		Status:     d.Status,
		Diff:       strings.Join(d.DiffLines, ""),
		Additions:  d.Additions,
		Deletions:  d.Deletions,
		Similarity: math.Round(d.Similarity*100) / 100,
	})
}

// DiffResult is the complete comparison of two file sets, sorted by path.
// Summary counts are derived on read and never stored.
type DiffResult struct {
	Files []FileDiff
}

func (r DiffResult) countOf(s Status) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == s {
			n++
		}
	}
	return n
}

func (r DiffResult) AddedCount() int     { return r.countOf(StatusAdded) }
func (r DiffResult) RemovedCount() int   { return r.countOf(StatusRemoved) }
func (r DiffResult) ModifiedCount() int  { return r.countOf(StatusModified) }
func (r DiffResult) UnchangedCount() int { return r.countOf(StatusUnchanged) }

// ChangedFiles returns only the entries whose status is not unchanged.
func (r DiffResult) ChangedFiles() []FileDiff {
	out := make([]FileDiff, 0, len(r.Files))
	for _, f := range r.Files {
		if f.Status != StatusUnchanged {
			out = append(out, f)
		}
	}
	return out
}

// MarshalJSON serializes the result with its derived summary.
func (r DiffResult) MarshalJSON() ([]byte, error) {
	files := r.Files
	if files == nil {
		files = []FileDiff{}
	}
	return json.Marshal(struct {
		Summary struct {
			Added     int `json:"added"`
			Removed   int `json:"removed"`
			Modified  int `json:"modified"`
			Unchanged int `json:"unchanged"`
			Total     int `json:"total"`
		} `json:"summary"`
		Files []FileDiff `json:"files"`
	}{
		Summary: struct {
			Added     int `json:"added"`
			Removed   int `json:"removed"`
			Modified  int `json:"modified"`
			Unchanged int `json:"unchanged"`
			Total     int `json:"total"`
		}{
			Added:     r.AddedCount(),
			Removed:   r.RemovedCount(),
			Modified:  r.ModifiedCount(),
			Unchanged: r.UnchangedCount(),
			Total:     len(r.Files),
		},
		Files: files,
	})
}

// Compute produces the deterministic per-path comparison of two file sets.
// Every path in the union of both key sets yields exactly one FileDiff; the
// result is ordered by path.
func Compute(oldFiles, newFiles map[string]string) DiffResult {
	paths := make([]string, 0, len(oldFiles)+len(newFiles))
	seen := make(map[string]struct{}, len(oldFiles)+len(newFiles))
	for p := range oldFiles {
		paths = append(paths, p)
		seen[p] = struct{}{}
	}
	for p := range newFiles {
		if _, ok := seen[p]; !ok {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	diffs := make([]FileDiff, 0, len(paths))
	for _, path := range paths {
		oldContent, inOld := oldFiles[path]
		newContent, inNew := newFiles[path]

		switch {
		case !inOld:
			diffs = append(diffs, FileDiff{
				Path:       path,
				Status:     StatusAdded,
				DiffLines:  addDiff(path, newContent),
				Additions:  lineCount(newContent),
				Similarity: 0.0,
			})
		case !inNew:
			diffs = append(diffs, FileDiff{
				Path:       path,
				Status:     StatusRemoved,
				DiffLines:  removeDiff(path, oldContent),
				Deletions:  lineCount(oldContent),
				Similarity: 0.0,
			})
		case oldContent != newContent:
			lines := unifiedDiff(path, oldContent, newContent)
			adds, dels := countMarkers(lines)
			diffs = append(diffs, FileDiff{
				Path:       path,
				Status:     StatusModified,
				DiffLines:  lines,
				Additions:  adds,
				Deletions:  dels,
				Similarity: similarity(oldContent, newContent),
			})
		default:
			diffs = append(diffs, FileDiff{
				Path:       path,
				Status:     StatusUnchanged,
				DiffLines:  []string{},
				Similarity: 1.0,
			})
		}
	}

	return DiffResult{Files: diffs}
}

// Merge applies the caller-chosen paths from newFiles onto a copy of
// oldFiles. A selected path present in newFiles is adopted (covering both
// modified and added files); a selected path absent from newFiles is removed
// (the new generation deleted it and the user confirmed). Unselected paths
// are left exactly as in oldFiles, and unknown paths are no-ops.
func Merge(oldFiles, newFiles map[string]string, pathsToUpdate []string) map[string]string {
	result := make(map[string]string, len(oldFiles))
	for p, content := range oldFiles {
		result[p] = content
	}

	for _, p := range pathsToUpdate {
		if content, ok := newFiles[p]; ok {
			result[p] = content
		} else if _, ok := result[p]; ok {
			delete(result, p)
		}
	}

	return result
}

// lineCount returns the number of logical lines in content: empty content is
// zero lines, and a trailing newline does not open an additional line.
func lineCount(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// splitLines splits into lines keeping newline characters, matching the
// shape difflib expects for line-based comparison.
func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func unifiedDiff(path, oldContent, newContent string) []string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(oldContent),
		B:        splitLines(newContent),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  0,
	})
	if err != nil {
		// difflib only fails on writer errors, which a string builder
		// never produces; keep the entry well-formed regardless.
		return []string{fmt.Sprintf("--- a/%s\n", path), fmt.Sprintf("+++ b/%s\n", path)}
	}
	lines := strings.SplitAfter(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func addDiff(path, content string) []string {
	lines := []string{
		"--- /dev/null\n",
		fmt.Sprintf("+++ b/%s\n", path),
		fmt.Sprintf("@@ -0,0 +1,%d @@\n", lineCount(content)),
	}
	for _, line := range splitLines(content) {
		lines = append(lines, "+"+line)
	}
	return lines
}

func removeDiff(path, content string) []string {
	lines := []string{
		fmt.Sprintf("--- a/%s\n", path),
		"+++ /dev/null\n",
		fmt.Sprintf("@@ -1,%d +0,0 @@\n", lineCount(content)),
	}
	for _, line := range splitLines(content) {
		lines = append(lines, "-"+line)
	}
	return lines
}

// countMarkers counts added and removed lines in a unified diff, excluding
// the +++/--- file header lines.
func countMarkers(lines []string) (adds, dels int) {
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			adds++
		case strings.HasPrefix(line, "-"):
			dels++
		}
	}
	return adds, dels
}

// similarity is the LCS-based ratio over lines: 1.0 for identical texts,
// 0.0 for completely dissimilar ones, monotonic with textual closeness.
// When no line survives intact (every line touched, as with an intra-line
// whitespace edit to a one-line file) the line ratio bottoms out at 0; a
// rune-level ratio then keeps near-identical texts from scoring as rewrites.
func similarity(oldContent, newContent string) float64 {
	m := difflib.NewMatcher(splitLines(oldContent), splitLines(newContent))
	if r := m.Ratio(); r > 0 {
		return r
	}
	return difflib.NewMatcher(splitRunes(oldContent), splitRunes(newContent)).Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

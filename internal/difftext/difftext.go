// Package difftext renders a human-readable line diff between a file's
// before- and after-content, which the CLI's run command prints before
// executing when --preview-diff is set and both --before and --after
// content are non-empty.
package difftext

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType classifies a rendered line within a hunk.
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

// Line is a single rendered line.
type Line struct {
	OldNum  int
	NewNum  int
	Content string
	Type    LineType
}

// Hunk groups a run of changed lines with surrounding context.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// FileDiff is the rendered diff between two versions of one file.
type FileDiff struct {
	Path     string
	Hunks    []Hunk
	IsNew    bool
	IsDelete bool
}

// contextRadius is how many unchanged lines surround a run of changes in a
// rendered hunk.
const contextRadius = 3

// ComputeDiff diffs oldContent against newContent for display under path.
// Each call runs its own line-level diff; a CLI preview is a one-shot
// computation, not a repeated query against the same pair, so there is no
// cache to maintain.
func ComputeDiff(path, oldContent, newContent string) *FileDiff {
	fd := &FileDiff{Path: path}
	if oldContent == "" && newContent != "" {
		fd.IsNew = true
	}
	if newContent == "" && oldContent != "" {
		fd.IsDelete = true
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	a, b, lineArray := dmp.DiffLinesToChars(oldContent, newContent)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	fd.Hunks = buildHunks(flattenLines(diffs))
	return fd
}

// lineRecord is one line of the flattened diff, tagged with its position in
// both the old and new file (-1 where the line doesn't exist on that side).
type lineRecord struct {
	oldNum  int
	newNum  int
	content string
	typ     LineType
}

// flattenLines walks the diffmatchpatch output once, expanding each diff
// span's text into one lineRecord per line while tracking old/new line
// numbers.
func flattenLines(diffs []diffmatchpatch.Diff) []lineRecord {
	var records []lineRecord
	oldNum, newNum := 1, 1

	for _, d := range diffs {
		lines := strings.Split(d.Text, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}

		for _, content := range lines {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				records = append(records, lineRecord{oldNum: oldNum, newNum: newNum, content: content, typ: LineContext})
				oldNum++
				newNum++
			case diffmatchpatch.DiffDelete:
				records = append(records, lineRecord{oldNum: oldNum, newNum: -1, content: content, typ: LineRemoved})
				oldNum++
			case diffmatchpatch.DiffInsert:
				records = append(records, lineRecord{oldNum: -1, newNum: newNum, content: content, typ: LineAdded})
				newNum++
			}
		}
	}
	return records
}

// buildHunks finds the index ranges of changed lines, expands each by
// contextRadius on either side, merges ranges that now overlap, and renders
// one Hunk per surviving range.
func buildHunks(records []lineRecord) []Hunk {
	if len(records) == 0 {
		return nil
	}

	var windows [][2]int
	for i, r := range records {
		if r.typ == LineContext {
			continue
		}
		lo, hi := i-contextRadius, i+contextRadius
		if lo < 0 {
			lo = 0
		}
		if hi >= len(records) {
			hi = len(records) - 1
		}
		if n := len(windows); n > 0 && lo <= windows[n-1][1]+1 {
			if hi > windows[n-1][1] {
				windows[n-1][1] = hi
			}
		} else {
			windows = append(windows, [2]int{lo, hi})
		}
	}

	hunks := make([]Hunk, 0, len(windows))
	for _, w := range windows {
		hunks = append(hunks, renderHunk(records[w[0] : w[1]+1]))
	}
	return hunks
}

func renderHunk(records []lineRecord) Hunk {
	h := Hunk{}
	for i, r := range records {
		line := Line{OldNum: r.oldNum, NewNum: r.newNum, Content: r.content, Type: r.typ}
		h.Lines = append(h.Lines, line)
		if r.typ != LineAdded {
			h.OldCount++
		}
		if r.typ != LineRemoved {
			h.NewCount++
		}
		if i == 0 {
			h.OldStart, h.NewStart = r.oldNum, r.newNum
			if h.OldStart < 0 {
				h.OldStart = 0
			}
			if h.NewStart < 0 {
				h.NewStart = 0
			}
		}
	}
	return h
}

// String renders fd as a compact unified-style diff for terminal output.
func (fd *FileDiff) String() string {
	if len(fd.Hunks) == 0 {
		return fmt.Sprintf("--- %s (no textual change)\n", fd.Path)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", fd.Path)
	for _, h := range fd.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, line := range h.Lines {
			switch line.Type {
			case LineAdded:
				fmt.Fprintf(&b, "+%s\n", line.Content)
			case LineRemoved:
				fmt.Fprintf(&b, "-%s\n", line.Content)
			default:
				fmt.Fprintf(&b, " %s\n", line.Content)
			}
		}
	}
	return b.String()
}

// Package classify implements the Semantic Mutation Classifier (spec §4.2):
// a structural, regexp-driven line-set diff that tags a (before, after)
// file-content pair with a fixed set of MutationClass values. It is
// intentionally not a parser — this mirrors the teacher's own preference
// for cheap, language-tolerant structural scans (internal/world/scope.go
// and internal/world/go_parser.go hand-match source text rather than
// building a full AST for every language) over importing a grammar for
// each target language.
package classify

import (
	"sort"
	"strings"
)

// MutationClass is one tag from the closed classification vocabulary.
type MutationClass string

const (
	AddFunction    MutationClass = "ADD_FUNCTION"
	ModifyFunction MutationClass = "MODIFY_FUNCTION"
	DeleteFunction MutationClass = "DELETE_FUNCTION"
	AddClass       MutationClass = "ADD_CLASS"
	ModifyClass    MutationClass = "MODIFY_CLASS"
	DeleteClass    MutationClass = "DELETE_CLASS"
	AddImport      MutationClass = "ADD_IMPORT"
	ModifyImport   MutationClass = "MODIFY_IMPORT"
	DeleteImport   MutationClass = "DELETE_IMPORT"
	AddExport      MutationClass = "ADD_EXPORT"
	DeleteExport   MutationClass = "DELETE_EXPORT"
	AddType        MutationClass = "ADD_TYPE"
	ModifyType     MutationClass = "MODIFY_TYPE"
	RefactorBlock  MutationClass = "REFACTOR_BLOCK"
)

// Set is an order-irrelevant collection of mutation classes.
type Set map[MutationClass]struct{}

// NewSet builds a Set from the given classes.
func NewSet(classes ...MutationClass) Set {
	s := make(Set, len(classes))
	for _, c := range classes {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether class is present in the set.
func (s Set) Has(class MutationClass) bool {
	_, ok := s[class]
	return ok
}

// Slice returns the set's members in a deterministic (sorted) order, for
// serialization into a trace entry's file record.
func (s Set) Slice() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}

// family groups the pattern-table categories that share a mutation-class
// namespace: "function" and "method" both roll up to FUNCTION, "type
// alias" and "interface" both roll up to TYPE.
type family string

const (
	familyFunction family = "FUNCTION"
	familyClass    family = "CLASS"
	familyImport   family = "IMPORT"
	familyExport   family = "EXPORT"
	familyType     family = "TYPE"
)

// Classify maps a (before, after) file-content pair to its set of mutation
// classes, per spec §4.2's four-step algorithm.
func Classify(before, after string) Set {
	added, removed := lineSets(before, after)

	hitAdded := make(map[family]bool, 5)
	hitRemoved := make(map[family]bool, 5)

	for line := range added {
		for _, fam := range matchFamilies(line) {
			hitAdded[fam] = true
		}
	}
	for line := range removed {
		for _, fam := range matchFamilies(line) {
			hitRemoved[fam] = true
		}
	}

	result := make(Set)
	addFamily := func(fam family, addTag, deleteTag, modifyTag MutationClass) {
		a, d := hitAdded[fam], hitRemoved[fam]
		switch {
		case a && d && modifyTag != "":
			result[modifyTag] = struct{}{}
		case a && d:
			// No modify form defined for this family (export): keep both.
			result[addTag] = struct{}{}
			result[deleteTag] = struct{}{}
		case a:
			result[addTag] = struct{}{}
		case d && deleteTag != "":
			result[deleteTag] = struct{}{}
		}
	}

	addFamily(familyFunction, AddFunction, DeleteFunction, ModifyFunction)
	addFamily(familyClass, AddClass, DeleteClass, ModifyClass)
	addFamily(familyImport, AddImport, DeleteImport, ModifyImport)
	addFamily(familyExport, AddExport, DeleteExport, "")
	// TYPE has no public delete-only tag: a solitary removed type/interface
	// line contributes nothing here and falls through to the REFACTOR_BLOCK
	// fallback below, same as any other unrecognized removal.
	addFamily(familyType, AddType, "", ModifyType)

	if len(result) == 0 && (len(added) > 0 || len(removed) > 0) {
		result[RefactorBlock] = struct{}{}
	}

	return result
}

// lineSets splits before/after on newlines, trims each line, drops empty
// lines, and returns the added set (present in after, absent in before)
// and removed set (present in before, absent in after).
func lineSets(before, after string) (added, removed map[string]struct{}) {
	beforeLines := splitTrimNonEmpty(before)
	afterLines := splitTrimNonEmpty(after)

	added = make(map[string]struct{})
	for l := range afterLines {
		if _, inBefore := beforeLines[l]; !inBefore {
			added[l] = struct{}{}
		}
	}

	removed = make(map[string]struct{})
	for l := range beforeLines {
		if _, inAfter := afterLines[l]; !inAfter {
			removed[l] = struct{}{}
		}
	}

	return added, removed
}

func splitTrimNonEmpty(content string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			out[trimmed] = struct{}{}
		}
	}
	return out
}

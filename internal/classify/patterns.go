package classify

import "regexp"

// pattern pairs a compiled regexp with the mutation-class family it feeds.
// Patterns are anchored to line start, case-sensitive, and tolerate
// leading whitespace — per spec §4.2's pattern table.
type pattern struct {
	family family
	re     *regexp.Regexp
}

var patterns = []pattern{
	// function (declaration form): (export )?(async )?function NAME(...)
	{familyFunction, regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(async\s+)?function\s*\*?\s+\w+\s*\(`)},

	// function (arrow form): (export )?(const|let) NAME = (async )?(...) => ...
	{familyFunction, regexp.MustCompile(`^\s*(export\s+)?(const|let)\s+\w+\s*(:\s*[\w.<>\[\], ]+)?\s*=\s*(async\s+)?\([^()]*\)\s*(:\s*[\w.<>\[\], ]+)?\s*=>`)},

	// method: (async )?NAME(...) : TYPE  -- a class-body method signature.
	{familyFunction, regexp.MustCompile(`^\s*(public\s+|private\s+|protected\s+|static\s+|readonly\s+)*(async\s+)?[A-Za-z_$][\w$]*\s*\([^()]*\)\s*:\s*[\w.<>\[\], |]+\s*\{?\s*$`)},

	// class: (export )?class NAME ...
	{familyClass, regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(abstract\s+)?class\s+\w+`)},

	// import: import ... from "..."
	{familyImport, regexp.MustCompile(`^\s*import\s+.*\bfrom\s+["'].+["'];?\s*$`)},

	// export: export (default|type|const|function|class) ...
	{familyExport, regexp.MustCompile(`^\s*export\s+(default|type|const|function|class)\b`)},

	// type alias: (export )?type NAME = ...
	{familyType, regexp.MustCompile(`^\s*(export\s+)?type\s+\w+(<[^>]*>)?\s*=`)},

	// interface: (export )?interface NAME ...
	{familyType, regexp.MustCompile(`^\s*(export\s+)?interface\s+\w+`)},
}

// matchFamilies returns every family whose pattern matches line. A single
// line (e.g. "export function hash() {}") legitimately matches more than
// one family — here, both FUNCTION and EXPORT.
func matchFamilies(line string) []family {
	var out []family
	for _, p := range patterns {
		if p.re.MatchString(line) {
			out = append(out, p.family)
		}
	}
	return out
}

package query

import "strings"

// looksLikeTestFile reports whether a file path is conventionally test or
// benchmark code across the languages this engine extracts. Used by
// Trail's ProductionOnly caller-scope filter to drop CALL edges whose
// caller only exists to exercise the callee under test.
func looksLikeTestFile(path string) bool {
	lower := strings.ToLower(path)

	for _, seg := range []string{"/test/", "/tests/", "/__tests__/", "/bench/", "/benches/"} {
		if strings.Contains(lower, seg) {
			return true
		}
	}

	base := lower
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}

	suffixes := []string{
		"_test.go", "_test.py", ".test.ts", ".test.tsx", ".test.js", ".test.jsx",
		".spec.ts", ".spec.js", "test.java", "tests.java", "_test.rs", "_bench.rs",
	}
	for _, suf := range suffixes {
		if strings.HasSuffix(base, suf) {
			return true
		}
	}
	prefixes := []string{"test_", "bench_"}
	for _, pre := range prefixes {
		if strings.HasPrefix(base, pre) {
			return true
		}
	}
	return false
}

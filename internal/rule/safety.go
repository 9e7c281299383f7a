package rule

import (
	"fmt"
	"regexp"

	"github.com/jlwainwright/Auto-Claude/internal/types"
)

// MaxMatchInput caps the bytes fed to pattern matching. Content beyond the
// cap is truncated before evaluation; Go's RE2 engine is linear in input
// size so the cap bounds per-rule match cost.
const MaxMatchInput = 64 * 1024

var (
	overlyPermissive = map[string]bool{
		".*":   true,
		"^.*$": true,
		".+":   true,
		"^.+$": true,
	}

	largeQuantifier = regexp.MustCompile(`\{(\d{4,}|(\d{3,},\d*)|(\d*,\d{4,}))\}`)
)

// CheckPatternSafety rejects rule patterns that are empty, oversized,
// match-everything, or carry excessive repetition counts. Literal patterns
// only need the size checks since no regex engine is involved. Go regexes
// run on RE2, so catastrophic backtracking is not possible; the checks here
// bound memory and keep rules meaningful rather than guard against ReDoS.
func CheckPatternSafety(pattern string, patternType PatternType) error {
	if pattern == "" {
		return types.NewError(types.CUSTOM_RULE_INVALID, "pattern is required")
	}
	if len(pattern) > MaxPatternLength {
		return types.NewError(types.CUSTOM_RULE_INVALID,
			fmt.Sprintf("pattern exceeds %d bytes", MaxPatternLength))
	}
	if patternType == PatternLiteral {
		return nil
	}
	if overlyPermissive[pattern] {
		return types.NewError(types.CUSTOM_RULE_INVALID,
			"pattern is overly permissive and would match everything")
	}
	if largeQuantifier.MatchString(pattern) {
		return types.NewError(types.CUSTOM_RULE_INVALID,
			"pattern contains excessive repetition limit")
	}
	return nil
}

// CapMatchInput truncates text to MaxMatchInput bytes for matching.
func CapMatchInput(text string) string {
	if len(text) > MaxMatchInput {
		return text[:MaxMatchInput]
	}
	return text
}

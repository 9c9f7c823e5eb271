package listing

import (
	"fmt"
	"strings"
)

// repairTable fixes the encoding artifacts that show up in model output and
// scanned blurbs. It is a fixed substitution set, not an encoding detector:
// downstream workbooks already contain text cleaned with exactly these
// replacements, so the table must not drift.
var repairTable = strings.NewReplacer(
	"�", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"–", "-",
	"—", "-",
	"…", "...",
	"•", "-",
	"©", "(c)",
	"â€™", "'",
)

// CleanText converts an arbitrary scalar to a trimmed string, repairing
// common encoding artifacts along the way. nil becomes the empty string.
func CleanText(value any) string {
	if value == nil {
		return ""
	}
	text, ok := value.(string)
	if !ok {
		text = fmt.Sprintf("%v", value)
	}
	return strings.TrimSpace(repairTable.Replace(text))
}

// Truncate bounds text to limit characters. Overlong text keeps limit-3
// characters, drops trailing whitespace, and gains a "..." suffix; limits of
// three or fewer hard-cut with no ellipsis. Idempotent for any fixed limit.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return strings.TrimRight(string(runes[:limit-3]), " \t\n\r") + "..."
}

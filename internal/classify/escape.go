package classify

import "strings"

// EscapeTripleBackticks breaks every run of three or more consecutive
// backticks by inserting a space after each pair, so embedded content can
// never terminate the fenced block that surrounds it.
func EscapeTripleBackticks(content string) string {
	if !strings.Contains(content, "```") {
		return content
	}

	var builder strings.Builder
	builder.Grow(len(content))
	backtickRunLength := 0
	for _, currentRune := range content {
		if currentRune == '`' {
			backtickRunLength++
			if backtickRunLength == 3 {
				builder.WriteByte(' ')
				backtickRunLength = 1
			}
			builder.WriteRune('`')
			continue
		}
		backtickRunLength = 0
		builder.WriteRune(currentRune)
	}
	return builder.String()
}

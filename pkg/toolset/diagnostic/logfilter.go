package diagnostic

import (
	"fmt"
	"regexp"
	"strings"
)

var errorPatterns = regexp.MustCompile(`(?i)ERROR|Exception|FATAL|panic:|Traceback|FAIL|error:|level=error|"level":"error"`)

// filterErrorLines reduces log output to lines matching common error
// patterns, keeping 2 lines of context around each match and marking
// gaps with "---".
func filterErrorLines(raw string) string {
	lines := strings.Split(raw, "\n")
	total := len(lines)

	keep := make(map[int]bool)
	matches := 0
	for i, line := range lines {
		if errorPatterns.MatchString(line) {
			matches++
			for j := i - 2; j <= i+2; j++ {
				if j >= 0 && j < total {
					keep[j] = true
				}
			}
		}
	}

	if matches == 0 {
		return fmt.Sprintf("%d lines fetched, 0 match error patterns.", total)
	}

	var out []string
	prev := -2
	for i := 0; i < total; i++ {
		if !keep[i] {
			continue
		}
		if i > prev+1 {
			out = append(out, "---")
		}
		out = append(out, lines[i])
		prev = i
	}

	header := fmt.Sprintf("%d lines fetched, %d match error patterns (showing filtered)", total, matches)
	return header + "\n" + strings.Join(out, "\n")
}

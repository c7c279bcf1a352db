package generator

import "strings"

// wrapperPhrases are conversational openers the completion model reliably
// prepends to its output. Checked in declaration order, first prefix match
// wins and is stripped exactly once.
var wrapperPhrases = []string{
	"Here's a WordPress-formatted HTML blog post for solving the LeetCode",
	"Here's a detailed blog post about",
	"Here's a blog post about",
	"Here's a blog post",
	"Here is a blog post",
	"Here's the implementation",
	"Here is the implementation",
	"Interview Problem:",
}

const fenceMarker = "```"

// Clean turns raw model output into the body handed to a publisher. It strips
// known wrapper phrases, unwraps fenced blocks (preferring html-tagged ones),
// and collapses the remainder into non-empty trimmed lines. It never fails;
// worst case it returns the trimmed input. Fence-free inputs without a
// wrapper phrase are a fixed point: Clean(Clean(x)) == Clean(x).
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	content := stripWrapperPhrase(raw)

	if strings.Contains(content, fenceMarker) {
		segments := strings.Split(content, fenceMarker)

		if payload, ok := htmlFencePayload(segments); ok {
			return payload
		}

		if len(segments) >= 2 {
			if payload := fencedBody(segments[1]); payload != "" {
				return payload
			}
		}
	}

	content = strings.TrimSpace(content)
	content = stripQuotes(content)
	return strings.Join(nonEmptyLines(content), "\n")
}

func stripWrapperPhrase(s string) string {
	lower := strings.ToLower(s)
	for _, phrase := range wrapperPhrases {
		if strings.HasPrefix(lower, strings.ToLower(phrase)) {
			return s[len(phrase):]
		}
	}
	return s
}

// htmlFencePayload looks for a fence segment opened with an html language
// tag and extracts its body: one HTML line if present, otherwise the first
// non-empty line.
func htmlFencePayload(segments []string) (string, bool) {
	for _, segment := range segments {
		trimmed := strings.TrimSpace(segment)
		if len(trimmed) < 4 || !strings.EqualFold(trimmed[:4], "html") {
			continue
		}

		payload := stripQuotes(strings.TrimSpace(trimmed[4:]))
		lines := nonEmptyLines(payload)
		if len(lines) == 0 {
			return "", true
		}

		for _, line := range lines {
			if strings.HasPrefix(line, "<") && strings.HasSuffix(line, ">") {
				return line, true
			}
		}
		return lines[0], true
	}

	return "", false
}

// fencedBody extracts the body of a fence segment, treating everything up to
// the first newline as a language tag line.
func fencedBody(segment string) string {
	if idx := strings.Index(segment, "\n"); idx >= 0 {
		segment = segment[idx+1:]
	}
	return strings.TrimSpace(segment)
}

func stripQuotes(s string) string {
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

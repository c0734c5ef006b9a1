package youtube

import "strings"

// ResolveVideoID extracts the canonical video id from a watch URL, a short
// share URL, or a bare id. It performs no validation of its own; a bad id
// surfaces as a downstream transcript fetch failure.
func ResolveVideoID(input string) string {
	input = strings.TrimSpace(input)
	if strings.Contains(input, "youtube.com") || strings.Contains(input, "youtu.be") {
		if i := strings.LastIndex(input, "v="); i >= 0 {
			id := input[i+len("v="):]
			if j := strings.Index(id, "&"); j >= 0 {
				id = id[:j]
			}
			return id
		}
		if i := strings.LastIndex(input, "youtu.be/"); i >= 0 {
			id := input[i+len("youtu.be/"):]
			if j := strings.Index(id, "?"); j >= 0 {
				id = id[:j]
			}
			return id
		}
	}
	return input
}

package convo

import "strings"

// NormalizeForSpeech rewrites answer text so a speech synthesizer reads
// it naturally. Markdown markers are stripped, list bullets become
// sentences, and blank lines collapse into pauses.
func NormalizeForSpeech(text string) string {
	lines := strings.Split(text, "\n")

	var parts []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimLeft(line, "#")
		line = strings.TrimSpace(line)
		for _, bullet := range []string{"- ", "* ", "+ "} {
			if strings.HasPrefix(line, bullet) {
				line = strings.TrimSpace(line[len(bullet):])
				break
			}
		}
		line = strings.ReplaceAll(line, "**", "")
		line = strings.ReplaceAll(line, "__", "")
		line = strings.ReplaceAll(line, "`", "")
		if line == "" {
			continue
		}
		if !strings.HasSuffix(line, ".") && !strings.HasSuffix(line, "?") && !strings.HasSuffix(line, "!") && !strings.HasSuffix(line, ":") {
			line += "."
		}
		parts = append(parts, line)
	}

	return strings.Join(parts, " ")
}

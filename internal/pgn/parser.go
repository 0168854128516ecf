package pgn

import (
	"regexp"
	"strings"
)

// Entry is one parsed game record: its tag pairs, the space-joined move
// text, and the raw chunk it came from.
type Entry struct {
	Tags  map[string]string
	Moves string
	Raw   string
}

var tagPattern = regexp.MustCompile(`^\[([A-Za-z0-9_]+)\s+"((?:[^"\\]|\\.)*)"\]\s*$`)

// Parse splits a multi-game text blob into entries. Chunks that produce
// neither a tag nor move text (stray whitespace between records) are dropped
// silently. Parsing is strictly local to chunk boundaries; a malformed tag
// line is dropped from the tag set without aborting its chunk.
func Parse(text string) []Entry {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	var entries []Entry
	for _, chunk := range splitChunks(normalized) {
		if entry, ok := parseChunk(chunk); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// splitChunks separates concatenated records wherever a blank line is
// immediately followed by the start of a new tag block. The blank line
// between a game's tags and its moves is not a boundary because move text
// does not open with a tag marker.
func splitChunks(text string) []string {
	lines := strings.Split(text, "\n")

	var chunks []string
	var current []string
	prevBlank := false
	for _, line := range lines {
		if prevBlank && strings.HasPrefix(line, "[") && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = current[:0]
		}
		current = append(current, line)
		prevBlank = strings.TrimSpace(line) == ""
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}

func parseChunk(chunk string) (Entry, bool) {
	tags := make(map[string]string)
	var moveLines []string

	inMoves := false
	for _, line := range strings.Split(chunk, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !inMoves {
			if m := tagPattern.FindStringSubmatch(trimmed); m != nil {
				tags[m[1]] = unescapeTagValue(m[2])
				continue
			}
			if strings.HasPrefix(trimmed, "[") {
				// Malformed tag line: drop it, keep the chunk.
				continue
			}
			inMoves = true
		}
		moveLines = append(moveLines, trimmed)
	}

	if len(tags) == 0 && len(moveLines) == 0 {
		return Entry{}, false
	}
	return Entry{
		Tags:  tags,
		Moves: strings.Join(moveLines, " "),
		Raw:   chunk,
	}, true
}

func unescapeTagValue(value string) string {
	if !strings.Contains(value, `\`) {
		return value
	}
	replacer := strings.NewReplacer(`\"`, `"`, `\\`, `\`)
	return replacer.Replace(value)
}

// Tag returns the named tag value, or the empty string when absent.
func (e Entry) Tag(name string) string {
	return e.Tags[name]
}

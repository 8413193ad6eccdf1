package notes

import "strings"

const actionItemsMarker = "*** Action Items ***"

// ParseSummary splits a model response into the summary paragraph and the
// individual action items. Text before the marker is the summary; each
// non-empty line after it becomes one action item, with list bullets
// stripped. A response without the marker is all summary.
func ParseSummary(content string) (string, []string) {
	summary, rest, found := strings.Cut(content, actionItemsMarker)
	summary = strings.TrimSpace(summary)
	if !found {
		return summary, nil
	}

	var items []string
	for _, line := range strings.Split(rest, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, line)
	}

	return summary, items
}

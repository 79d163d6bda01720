// Package textutil contains the deterministic text-processing primitives the
// analysis stages rely on: heading-delimited section extraction, bullet-list
// splitting, rating classification, and analysis truncation. Model output is
// adversarial free text; everything here degrades to empty values rather than
// erroring.
package textutil

import "strings"

// headingMarker delimits sections in model responses. The grammar is fixed:
// a heading is a line beginning with "## " followed by a label, and a
// section runs from its heading to the next "##" occurrence or end of text.
const headingMarker = "##"

// ExtractSection returns the trimmed content between the first occurrence of
// heading and the next heading marker (or end of text). A missing heading
// yields "" rather than an error.
func ExtractSection(text, heading string) string {
	idx := strings.Index(text, heading)
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(heading):]
	if next := strings.Index(rest, headingMarker); next >= 0 {
		rest = rest[:next]
	}
	return strings.TrimSpace(rest)
}

// SplitDashItems splits a section on "-" delimiters and keeps non-empty items
// that do not themselves look like headings. Used for the risk and
// open-question lists, whose bullet items the model emits dash-separated.
func SplitDashItems(section string) []string {
	var items []string
	for _, part := range strings.Split(section, "-") {
		part = strings.TrimSpace(part)
		if part == "" || strings.HasPrefix(part, "#") {
			continue
		}
		items = append(items, part)
	}
	return items
}

// ListItems splits a section line by line, stripping leading bullet markers.
// Lines that look like headings are dropped; bare lines are kept as items.
// Used for dependency/consideration/limitation and tech-stack lists.
func ListItems(section string) []string {
	var items []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		item := strings.TrimSpace(strings.TrimLeft(line, "-*•"))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// CapItems bounds a list to at most max entries, keeping the head.
func CapItems(items []string, max int) []string {
	if max > 0 && len(items) > max {
		return items[:max]
	}
	return items
}

// CapText bounds text to at most max characters.
func CapText(text string, max int) string {
	if max > 0 && len(text) > max {
		return text[:max]
	}
	return text
}

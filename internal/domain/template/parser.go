package template

import (
	"strings"
)

const (
	ifPrefix       = "{{if:"
	endifTag       = "{{endif}}"
	closeBraces    = "}}"
	checklistMark  = "- [ ]"
	dueDateMarker  = ">{{date:YYYY-MM-DD}}"
)

// Rule is one parsed template rule: a condition paired with the task line it
// produces when the condition matches the materialization target date.
type Rule struct {
	// Condition gates the rule against the target date.
	Condition Condition

	// Title is the task title with #tag and +project tokens and the due-date
	// marker already stripped.
	Title string

	// DueOnTarget is true when the line carried the trailing
	// >{{date:YYYY-MM-DD}} marker, meaning the materialized task's due date
	// is bound to the target date.
	DueOnTarget bool
}

// Parse turns raw template note text into an ordered list of rules.
//
// The grammar is line-oriented. A block form is a line exactly
// {{if:<condition>}}, zero or more checklist lines, and a line exactly
// {{endif}}. An inline form is a single line {{if:<condition>}}- [ ] <text>
// with no closing tag; it consumes exactly that one line. CR, CRLF, and LF
// line endings are all accepted.
//
// Parse never fails: a condition that does not parse drops that rule, an
// unmatched {{if}} or {{endif}} degrades to zero rules for the region, and
// checklist lines whose title is empty after stripping are skipped.
func Parse(content string) []Rule {
	lines := splitLines(content)
	rules := make([]Rule, 0)

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, ifPrefix) {
			// Stray checklist lines and {{endif}} tags outside a block are
			// part of a degraded region; ignore them.
			continue
		}

		closeIdx := strings.Index(line, closeBraces)
		if closeIdx < len(ifPrefix) {
			continue
		}

		expr := line[len(ifPrefix):closeIdx]
		rest := line[closeIdx+len(closeBraces):]

		cond, condErr := ParseCondition(expr)

		if strings.TrimSpace(rest) != "" {
			// Inline form: exactly this one line, never the next one.
			if condErr != nil {
				continue
			}
			if rule, ok := buildRule(cond, rest); ok {
				rules = append(rules, rule)
			}
			continue
		}

		// Block form: consume checklist lines until the matching {{endif}}.
		body, next, closed := collectBlock(lines, i+1)
		if !closed {
			// Unmatched {{if}}: zero rules for this region.
			continue
		}
		i = next
		if condErr != nil {
			continue
		}
		for _, bodyLine := range body {
			if rule, ok := buildRule(cond, bodyLine); ok {
				rules = append(rules, rule)
			}
		}
	}

	return rules
}

// collectBlock gathers body lines from start until a {{endif}} line. Returns
// the body, the index of the closing tag, and whether it was found. A nested
// {{if:}} line before the close counts as unmatched.
func collectBlock(lines []string, start int) (body []string, end int, closed bool) {
	for j := start; j < len(lines); j++ {
		line := strings.TrimSpace(lines[j])
		if line == endifTag {
			return body, j, true
		}
		if strings.HasPrefix(line, ifPrefix) {
			return nil, start - 1, false
		}
		body = append(body, line)
	}
	return nil, start - 1, false
}

// buildRule parses a checklist line in the context of an already-parsed
// condition. Lines that are not checklist lines, or whose title strips down
// to nothing, produce no rule.
func buildRule(cond Condition, line string) (Rule, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, checklistMark) {
		return Rule{}, false
	}

	text := strings.TrimSpace(line[len(checklistMark):])

	due := false
	if strings.HasSuffix(text, dueDateMarker) {
		due = true
		text = strings.TrimSpace(strings.TrimSuffix(text, dueDateMarker))
	}

	title := stripTokens(text)
	if title == "" {
		return Rule{}, false
	}

	return Rule{Condition: cond, Title: title, DueOnTarget: due}, true
}

// stripTokens removes #tag and +project tokens from a checklist title.
func stripTokens(text string) string {
	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if strings.HasPrefix(f, "#") || strings.HasPrefix(f, "+") {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// splitLines splits template text on LF, CRLF, or bare CR uniformly.
func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}

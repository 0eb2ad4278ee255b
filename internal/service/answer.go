package service

import "strings"

// Answer is the parsed form of a discovery reply. The model answers in a
// line-oriented convention: lines whose trimmed form starts with "- " or
// "* " are list items, every other non-blank line is a prose paragraph.
// Order is preserved within each group.
type Answer struct {
	Raw        string
	Paragraphs []string
	Bullets    []string
}

func ParseAnswer(text string) Answer {
	answer := Answer{Raw: text}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			answer.Bullets = append(answer.Bullets, trimmed[2:])
			continue
		}

		answer.Paragraphs = append(answer.Paragraphs, trimmed)
	}

	return answer
}

// Package richtext converts the narrative convention used in analysis
// records (newline paragraphs, **bold** spans, "- " bullets, occasional basic
// HTML) into each output target. Every function is independent.
package richtext

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	boldRe      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	breakRe     = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</li>|</div>`)
	blankRunRe  = regexp.MustCompile(`\n{3,}`)
	bulletRe    = regexp.MustCompile(`^\s*(?:[-*•])\s+(.*)$`)
	ugcPolicy   = bluemonday.UGCPolicy()
	stripPolicy = bluemonday.StrictPolicy()
)

// ToHTML renders text for screen display. Markup is kept: existing HTML is
// sanitized, **x** becomes <strong>, bullet lines become a list and the
// remaining newlines become <br>.
func ToHTML(text string) string {
	clean := ugcPolicy.Sanitize(normalizeNewlines(text))

	var b strings.Builder
	inList := false
	lines := strings.Split(clean, "\n")
	for i, line := range lines {
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>")
			b.WriteString(bold(m[1]))
			b.WriteString("</li>")
			continue
		}
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
		b.WriteString(bold(line))
		if i < len(lines)-1 {
			b.WriteString("<br>")
		}
	}
	if inList {
		b.WriteString("</ul>")
	}
	return b.String()
}

// ToPlain renders text for a static document. All markup is removed:
// tags are stripped, entities decoded, bold markers dropped and bullets
// normalized to "• ".
func ToPlain(text string) string {
	s := breakRe.ReplaceAllString(normalizeNewlines(text), "\n")
	s = html.UnescapeString(stripPolicy.Sanitize(s))
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = boldRe.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "**", "")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			lines[i] = "• " + m[1]
			continue
		}
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(blankRunRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

// ToMarkdown renders text for a terminal Markdown renderer: tags are
// stripped but **bold** and bullets are kept, and each line is its own
// paragraph.
func ToMarkdown(text string) string {
	s := breakRe.ReplaceAllString(normalizeNewlines(text), "\n")
	s = html.UnescapeString(stripPolicy.Sanitize(s))
	s = strings.ReplaceAll(s, "\u00a0", " ")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	prevBullet := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		isBullet := bulletRe.MatchString(line)
		if len(out) > 0 && !(isBullet && prevBullet) {
			out = append(out, "")
		}
		out = append(out, line)
		prevBullet = isBullet
	}
	return strings.Join(out, "\n")
}

func bold(s string) string {
	return boldRe.ReplaceAllString(s, "<strong>$1</strong>")
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

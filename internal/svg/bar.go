// Package svg renders small dependency-free charts as inline SVG markup.
package svg

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
)

const (
	defaultWidth   = 640
	defaultHeight  = 280
	defaultPadding = 40.0
)

// Bars renders a single-series bar chart from labeled counts. Labels are
// sorted so the output is stable across renders.
func Bars(title string, counts map[string]int) (template.HTML, error) {
	if len(counts) == 0 {
		return "", fmt.Errorf("svg: at least one value required")
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	maxVal := 0
	for _, n := range counts {
		if n > maxVal {
			maxVal = n
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	width, height := defaultWidth, defaultHeight
	chartWidth := float64(width) - 2*defaultPadding
	chartHeight := float64(height) - 2*defaultPadding
	groupWidth := chartWidth / float64(len(labels))
	barWidth := groupWidth * 0.6
	baseline := defaultPadding + chartHeight

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-label=\"%s\">",
		width, height, template.HTMLEscapeString(title)))
	b.WriteString(fmt.Sprintf("<title>%s</title>", template.HTMLEscapeString(title)))

	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"#475569\" stroke-width=\"1\"></line>",
		defaultPadding, baseline, defaultPadding+chartWidth, baseline))

	for i, label := range labels {
		value := counts[label]
		h := chartHeight * float64(value) / float64(maxVal)
		x := defaultPadding + float64(i)*groupWidth + (groupWidth-barWidth)/2
		y := baseline - h
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"#0ea5e9\" aria-label=\"%s: %d\"></rect>",
			x, y, barWidth, h, template.HTMLEscapeString(label), value))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"#1e293b\" font-size=\"10\" text-anchor=\"middle\">%d</text>",
			x+barWidth/2, y-4, value))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"#475569\" font-size=\"10\" text-anchor=\"middle\">%s</text>",
			x+barWidth/2, baseline+14, template.HTMLEscapeString(truncateLabel(label))))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func truncateLabel(label string) string {
	const maxRunes = 12
	runes := []rune(label)
	if len(runes) <= maxRunes {
		return label
	}
	return string(runes[:maxRunes-1]) + "…"
}

package svg

import (
	"fmt"
	"html/template"
	"math"
	"sort"
	"strings"
)

var pieColors = []string{"#0ea5e9", "#f97316", "#22c55e", "#a855f7", "#eab308", "#ef4444", "#14b8a6", "#64748b"}

// Pie renders a donut-style pie chart from labeled counts.
func Pie(title string, counts map[string]int) (template.HTML, error) {
	if len(counts) == 0 {
		return "", fmt.Errorf("svg: at least one value required")
	}

	labels := make([]string, 0, len(counts))
	total := 0
	for label, n := range counts {
		labels = append(labels, label)
		total += n
	}
	sort.Strings(labels)
	if total == 0 {
		return "", fmt.Errorf("svg: all values are zero")
	}

	const size = 280
	cx, cy, radius := float64(size)/2, float64(size)/2, float64(size)/2-10

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-label=\"%s\">",
		size, size, template.HTMLEscapeString(title)))
	b.WriteString(fmt.Sprintf("<title>%s</title>", template.HTMLEscapeString(title)))

	angle := -math.Pi / 2
	for i, label := range labels {
		value := counts[label]
		if value == 0 {
			continue
		}
		share := float64(value) / float64(total)
		next := angle + share*2*math.Pi
		largeArc := 0
		if share > 0.5 {
			largeArc = 1
		}
		x1, y1 := cx+radius*math.Cos(angle), cy+radius*math.Sin(angle)
		x2, y2 := cx+radius*math.Cos(next), cy+radius*math.Sin(next)
		color := pieColors[i%len(pieColors)]
		if share >= 1 {
			b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\" aria-label=\"%s: %d\"></circle>",
				cx, cy, radius, color, template.HTMLEscapeString(label), value))
		} else {
			b.WriteString(fmt.Sprintf("<path d=\"M%.2f,%.2f L%.2f,%.2f A%.2f,%.2f 0 %d 1 %.2f,%.2f Z\" fill=\"%s\" aria-label=\"%s: %d\"></path>",
				cx, cy, x1, y1, radius, radius, largeArc, x2, y2, color, template.HTMLEscapeString(label), value))
		}
		angle = next
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

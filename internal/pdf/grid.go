package pdf

import (
	"fmt"
	"strings"
)

// Default character cell geometry, px. Matches the printed form's
// red-bordered boxes.
const (
	gridBoxWidth  = 20
	gridBoxHeight = 20
)

// RenderGrid lays value into fixed-width character cells, boxesPerLine
// cells per row. Complete rows are always emitted: the cell count is
// ceil(len/boxesPerLine) rows of boxesPerLine cells, the last row
// padded with empty cells, and an empty value still renders one full
// row so the field keeps its shape. Characters are never broken across
// cells and the value is never truncated.
func RenderGrid(value string, boxesPerLine, boxWidth, boxHeight int) string {
	if boxesPerLine <= 0 {
		return ""
	}
	if boxWidth <= 0 {
		boxWidth = gridBoxWidth
	}
	if boxHeight <= 0 {
		boxHeight = gridBoxHeight
	}

	chars := []rune(value)
	rows := 1
	if len(chars) > 0 {
		rows = (len(chars) + boxesPerLine - 1) / boxesPerLine
	}

	var b strings.Builder
	for row := 0; row < rows; row++ {
		b.WriteString(`<div style="overflow: hidden; display: flex; flex-wrap: nowrap; align-items: center; gap: 1px; flex-direction: row;">`)
		for col := 0; col < boxesPerLine; col++ {
			idx := row*boxesPerLine + col
			var ch string
			if idx < len(chars) {
				ch = escapeChar(chars[idx])
			}
			fmt.Fprintf(&b,
				`<div style="width: %dpx; height: %dpx; min-width: %dpx; max-width: %dpx; min-height: %dpx; font-size: 10px; font-weight: 600; line-height: %dpx; border: 1px solid #ee1e23; background-color: white; color: #58595b; text-align: center; display: inline-flex; align-items: center; justify-content: center; box-sizing: border-box; flex-shrink: 0; flex-grow: 0;">%s</div>`,
				boxWidth, boxHeight, boxWidth, boxWidth, boxHeight, boxHeight, ch)
		}
		b.WriteString(`</div>`)
	}
	return b.String()
}

// RenderGridLines splits value into full rows first and returns one
// grid row per line, wrapped for multi-line fields (address, tax ward)
// whose label sits beside a fixed number of rows. Rows beyond the
// value's needs render empty, so the field always shows lineCount rows.
func RenderGridLines(value string, boxesPerLine, lineCount, boxWidth, boxHeight int) string {
	if boxesPerLine <= 0 || lineCount <= 0 {
		return ""
	}
	chars := []rune(value)

	var b strings.Builder
	b.WriteString(`<div style="display: flex; flex-direction: column; gap: 2px;">`)
	for line := 0; line < lineCount; line++ {
		start := line * boxesPerLine
		end := start + boxesPerLine
		var part string
		if start < len(chars) {
			if end > len(chars) {
				end = len(chars)
			}
			part = string(chars[start:end])
		}
		b.WriteString(`<div>`)
		b.WriteString(RenderGrid(part, boxesPerLine, boxWidth, boxHeight))
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func escapeChar(r rune) string {
	switch r {
	case '&':
		return "&amp;"
	case '<':
		return "&lt;"
	case '>':
		return "&gt;"
	case '"':
		return "&#34;"
	case '\'':
		return "&#39;"
	}
	return string(r)
}

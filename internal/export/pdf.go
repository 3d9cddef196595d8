package export

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/RodCut/internal/model"
)

// pieceColor represents an RGB color for a cut piece.
type pieceColor struct {
	R, G, B int
}

var pieceColors = []pieceColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 8.0
	barHeight    = 10.0
	rowHeight    = 24.0
	rodsPerPage  = 6
)

// ExportPDF writes a cut plan: one bar diagram per rod, several rods per
// page, followed by a summary page.
func ExportPDF(path string, result model.OptimizeResult, settings model.Settings) error {
	if result.Solution == nil {
		return ErrNoSolution
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	layout := Layout(result, settings)
	longest := 0.0
	for _, p := range result.Solution.Patterns {
		longest = max(longest, p.OriginalLength)
	}
	scale := 0.0
	if longest > 0 {
		scale = (pageWidth - marginLeft - marginRight) / longest
	}

	pages := (len(result.Solution.Patterns) + rodsPerPage - 1) / rodsPerPage
	for page := 0; page < pages; page++ {
		pdf.AddPage()
		renderPageHeader(pdf, result, page+1, pages)
		for slot := 0; slot < rodsPerPage; slot++ {
			i := page*rodsPerPage + slot
			if i >= len(result.Solution.Patterns) {
				break
			}
			y := drawAreaTop + float64(slot)*rowHeight
			renderRod(pdf, result, i, layout[i], scale, y)
		}
	}

	pdf.AddPage()
	renderSummaryPage(pdf, result, settings)

	return pdf.OutputFileAndClose(path)
}

func renderPageHeader(pdf *fpdf.Fpdf, result model.OptimizeResult, page, pages int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Cut Plan (page %d of %d)", page, pages)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Rods: %d | Pieces: %d | Reward: %.2f | Total remainder: %.2f mm",
		len(result.Solution.Patterns), result.Solution.CutCount(), result.Solution.Reward, result.Solution.TotalRemainder())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")
}

// renderRod draws one rod as a bar with its cuts and remainder.
func renderRod(pdf *fpdf.Fpdf, result model.OptimizeResult, idx int, cuts []PlacedCut, scale, y float64) {
	pattern := result.Solution.Patterns[idx]

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	title := fmt.Sprintf("#%d %s: %.2f mm", idx+1, rodTitle(result, idx), pattern.OriginalLength)
	pdf.CellFormat(120, 5, title, "", 0, "L", false, 0, "")

	barY := y + 6
	barW := pattern.OriginalLength * scale

	// Stock background
	pdf.SetFillColor(210, 180, 140)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.4)
	pdf.Rect(marginLeft, barY, barW, barHeight, "FD")

	for _, c := range cuts {
		col := pieceColors[0]
		if c.PieceIndex >= 0 {
			col = pieceColors[c.PieceIndex%len(pieceColors)]
		}
		x := marginLeft + c.Offset*scale
		w := c.Length * scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.2)
		pdf.Rect(x, barY, w, barHeight, "FD")

		// Kerf gap
		if c.Reserved > c.Length {
			pdf.SetFillColor(60, 60, 60)
			pdf.Rect(x+w, barY, (c.Reserved-c.Length)*scale, barHeight, "F")
		}

		text := fmt.Sprintf("%s %.1f", c.Label, c.Length)
		pdf.SetFont("Helvetica", "", 6)
		if tw := pdf.GetStringWidth(text); tw < w-1 {
			pdf.SetXY(x+(w-tw)/2, barY+barHeight/2-2)
			pdf.CellFormat(tw, 4, text, "", 0, "C", false, 0, "")
		}
	}

	if pattern.Remainder > 0 {
		x := marginLeft + (pattern.OriginalLength-pattern.Remainder)*scale
		w := pattern.Remainder * scale
		drawHatchPattern(pdf, x, barY, w, barHeight)
	}

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetXY(marginLeft, barY+barHeight+0.5)
	info := fmt.Sprintf("Cuts: %d | Used: %.2f mm | Remainder: %.2f mm", len(pattern.Cuts), pattern.Used(), pattern.Remainder)
	pdf.CellFormat(120, 4, info, "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// drawHatchPattern marks the leftover part of a rod with diagonal lines.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(120, 120, 120)
	pdf.SetLineWidth(0.15)

	spacing := 3.0
	for d := spacing; d < w+h; d += spacing {
		x1 := x + max(0, d-h)
		y1 := y + min(h, d)
		x2 := x + min(w, d)
		y2 := y + max(0, d-w)
		pdf.Line(x1, y1, x2, y2)
	}
}

// renderSummaryPage draws the final summary page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.OptimizeResult, settings model.Settings) {
	sol := result.Solution

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Cut Optimization Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Reward (sum of squared remainders)", fmt.Sprintf("%.2f", sol.Reward)},
		{"Rods", fmt.Sprintf("%d", len(sol.Patterns))},
		{"Rods Used", fmt.Sprintf("%d", sol.RodsUsed())},
		{"Pieces Cut", fmt.Sprintf("%d", sol.CutCount())},
		{"Total Remainder", fmt.Sprintf("%.2f mm", sol.TotalRemainder())},
		{"Efficiency", fmt.Sprintf("%.1f%%", sol.Efficiency())},
		{"Assignments Evaluated", fmt.Sprintf("%d of %d", result.Evaluated, result.Combinations)},
		{"Feasible Assignments", fmt.Sprintf("%d", result.Feasible)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(75, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Rod Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{15, 60, 35, 25, 35, 35}
	headers := []string{"#", "Rod", "Length", "Cuts", "Used", "Remainder"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, p := range sol.Patterns {
		if y > pageHeight-marginBottom-30 {
			pdf.AddPage()
			y = marginTop
		}
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			rodTitle(result, i),
			fmt.Sprintf("%.2f", p.OriginalLength),
			fmt.Sprintf("%d", len(p.Cuts)),
			fmt.Sprintf("%.2f", p.Used()),
			fmt.Sprintf("%.2f", p.Remainder),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Settings", "", 0, "L", false, 0, "")
	y += 9

	kerf := "off"
	if settings.ApplyKerf {
		kerf = fmt.Sprintf("%.1f mm", settings.Kerf)
	}
	order := string(settings.SortOrder)
	if order == "" {
		order = string(model.SortNone)
	}
	settingsItems := []struct {
		label string
		value string
	}{
		{"Kerf Compensation", kerf},
		{"Sort Order", order},
		{"Tolerance", fmt.Sprintf("%g", settings.Tolerance)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by RodCut - Rod Cutting Optimizer", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

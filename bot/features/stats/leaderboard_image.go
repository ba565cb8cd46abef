package stats

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
)

// LeaderboardRow is one line of the rendered leaderboard
type LeaderboardRow struct {
	Rank    int
	Name    string
	Balance string
}

type column struct {
	header string
	x      float64
	rgb    [3]float64
}

// LeaderboardImage renders balance leaderboards as PNG
type LeaderboardImage struct {
	width     int
	minHeight int
	padding   int
	rowHeight int
	medals    [3][4]float64
}

// NewLeaderboardImage creates a renderer with the default style
func NewLeaderboardImage() *LeaderboardImage {
	return &LeaderboardImage{
		width:     360,
		minHeight: 120,
		padding:   15,
		rowHeight: 26,
		medals: [3][4]float64{
			{1, 0.84, 0, 0.1},
			{0.8, 0.8, 0.8, 0.08},
			{0.8, 0.5, 0.2, 0.06},
		},
	}
}

// Render draws rows as a table and returns the PNG bytes
func (g *LeaderboardImage) Render(title string, rows []LeaderboardRow) ([]byte, error) {
	pad := float64(g.padding)
	columns := []column{
		{header: "#", x: pad, rgb: [3]float64{0.85, 0.85, 0.9}},
		{header: "User", x: pad + 30, rgb: [3]float64{1, 1, 1}},
		{header: "Balance", x: pad + 230, rgb: [3]float64{0.85, 1, 0.85}},
	}

	height := 75 + len(rows)*g.rowHeight
	if height < g.minHeight {
		height = g.minHeight
	}
	dc := gg.NewContext(g.width, height)

	// vertical gradient background
	for y := 0; y < height; y++ {
		t := float64(y) / float64(height)
		dc.SetRGB(0.02+t*0.03, 0.02+t*0.05, 0.05+t*0.1)
		dc.DrawRectangle(0, float64(y), float64(g.width), 1)
		dc.Fill()
	}

	face, err := loadFont(gomono.TTF, 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	boldFace, err := loadFont(gobold.TTF, 13)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	dc.SetFontFace(boldFace)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(title, float64(g.width)/2, 18, 0.5, 0.5)

	y := 45.0
	dc.SetRGBA(0.3, 0.3, 0.4, 0.4)
	dc.DrawRectangle(0, y-15, float64(g.width), 20)
	dc.Fill()

	dc.SetFontFace(face)
	dc.SetRGB(1, 1, 1)
	for _, col := range columns {
		drawSharpText(dc, col.header, col.x, y)
	}
	dc.SetRGBA(0.6, 0.6, 0.7, 0.7)
	dc.SetLineWidth(1)
	dc.DrawLine(0, y+8, float64(g.width), y+8)
	dc.Stroke()

	y += 30
	for n, row := range rows {
		if n < len(g.medals) {
			c := g.medals[n]
			dc.SetRGBA(c[0], c[1], c[2], c[3])
		} else {
			dc.SetRGBA(0.5, 0.5, 0.6, 0.02)
		}
		dc.DrawRectangle(0, y-15, float64(g.width), float64(g.rowHeight))
		dc.Fill()

		if n < len(g.medals) {
			c := g.medals[n]
			dc.SetRGBA(c[0], c[1], c[2], 1)
			dc.DrawCircle(pad+4, y-4, 6)
			dc.Fill()
			dc.SetRGB(0, 0, 0)
			dc.DrawStringAnchored(fmt.Sprintf("%d", row.Rank), pad+4, y-5, 0.5, 0.4)
		} else {
			dc.SetRGB(columns[0].rgb[0], columns[0].rgb[1], columns[0].rgb[2])
			drawSharpText(dc, fmt.Sprintf("%d", row.Rank), columns[0].x, y)
		}

		for c, text := range []string{row.Name, row.Balance} {
			col := columns[c+1]
			dc.SetRGB(col.rgb[0], col.rgb[1], col.rgb[2])
			drawSharpText(dc, text, col.x, y)
		}
		y += float64(g.rowHeight)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// drawSharpText draws text over a faint offset shadow
func drawSharpText(dc *gg.Context, text string, x, y float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawString(text, x+0.5, y+0.5)
	dc.Pop()
	dc.DrawString(text, x, y)
}

func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:       size,
		DPI:        72,
		Hinting:    font.HintingFull,
		SubPixelsX: 4,
		SubPixelsY: 4,
	}), nil
}

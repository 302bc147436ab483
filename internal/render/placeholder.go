package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Placeholder canvas geometry.
const (
	placeholderWidth  = 1200
	placeholderHeight = 800
	placeholderInset  = 10
	textLeft          = 30
	titleBaseline     = 50
	previewTop        = 90
	previewLineStep   = 25
	previewMaxLines   = 15
	previewMaxCols    = 90
	noteGap           = 40
)

// placeholderNote explains why the reader sees source text instead of a diagram.
const placeholderNote = "Note: full diagram rendering was unavailable; showing the diagram source instead."

// Placeholder colors.
var (
	phWhite  = color.RGBA{255, 255, 255, 255}
	phBorder = color.RGBA{51, 51, 51, 255}   // #333
	phTitle  = color.RGBA{44, 62, 80, 255}   // #2c3e50
	phText   = color.RGBA{85, 85, 85, 255}   // #555
	phNote   = color.RGBA{136, 136, 136, 255} // #888
)

// PlaceholderStrategy synthesizes a raster image locally: a bordered canvas
// with a title derived from the diagram's first keyword, the first lines of
// source, and an explanatory note. It is the guaranteed final tier: it never
// fails under normal disk-write conditions.
type PlaceholderStrategy struct {
	once      sync.Once
	initErr   error
	titleFace font.Face
	textFace  font.Face
}

// NewPlaceholderStrategy creates the placeholder strategy. Font faces are
// parsed lazily from the embedded Go Regular font on first render.
func NewPlaceholderStrategy() *PlaceholderStrategy {
	return &PlaceholderStrategy{}
}

// Name identifies the strategy in logs and job records.
func (p *PlaceholderStrategy) Name() string { return "placeholder" }

// init parses the embedded font and builds the two faces.
func (p *PlaceholderStrategy) init() {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		p.initErr = fmt.Errorf("parsing embedded font: %w", err)
		return
	}
	p.titleFace, err = opentype.NewFace(fnt, &opentype.FaceOptions{Size: 24, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		p.initErr = fmt.Errorf("building title face: %w", err)
		return
	}
	p.textFace, err = opentype.NewFace(fnt, &opentype.FaceOptions{Size: 14, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		p.initErr = fmt.Errorf("building text face: %w", err)
	}
}

// Render draws the placeholder image and writes it as PNG to outPath.
func (p *PlaceholderStrategy) Render(ctx context.Context, source, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.once.Do(p.init)
	if p.initErr != nil {
		return p.initErr
	}

	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(phWhite), image.Point{}, draw.Src)
	drawBorder(img, placeholderInset, phBorder)

	title := PlaceholderTitle(source)
	p.drawString(img, p.titleFace, textLeft, titleBaseline, title, phTitle)

	y := previewTop
	for _, line := range PreviewLines(source, previewMaxLines, previewMaxCols) {
		p.drawString(img, p.textFace, textLeft, y, line, phText)
		y += previewLineStep
	}

	p.drawString(img, p.textFace, textLeft, y+noteGap, placeholderNote, phNote)

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating placeholder image: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding placeholder image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing placeholder image: %w", err)
	}
	return nil
}

// PlaceholderTitle derives a title line from the diagram's first keyword,
// e.g. "graph TD" yields "Mermaid Graph Diagram".
func PlaceholderTitle(source string) string {
	keyword := "diagram"
	if fields := strings.Fields(source); len(fields) > 0 {
		keyword = strings.ToLower(fields[0])
	}
	return "Mermaid " + strings.ToUpper(keyword[:1]) + keyword[1:] + " Diagram"
}

// PreviewLines returns up to maxLines non-blank source lines, wrapping lines
// longer than maxCols. Wrapped continuations count against the line budget.
func PreviewLines(source string, maxLines, maxCols int) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimSpace(source), "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		for len(line) > maxCols && len(out) < maxLines-1 {
			out = append(out, line[:maxCols])
			line = line[maxCols:]
		}
		if len(line) > maxCols {
			line = line[:maxCols]
		}
		out = append(out, line)
		if len(out) >= maxLines {
			break
		}
	}
	return out
}

// drawString renders text at the given baseline position.
func (p *PlaceholderStrategy) drawString(img *image.RGBA, face font.Face, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// drawBorder draws a 2px rectangle inset from the canvas edge.
func drawBorder(img *image.RGBA, inset int, c color.Color) {
	b := img.Bounds()
	for t := 0; t < 2; t++ {
		for x := b.Min.X + inset; x < b.Max.X-inset; x++ {
			img.Set(x, b.Min.Y+inset+t, c)
			img.Set(x, b.Max.Y-inset-1-t, c)
		}
		for y := b.Min.Y + inset; y < b.Max.Y-inset; y++ {
			img.Set(b.Min.X+inset+t, y, c)
			img.Set(b.Max.X-inset-1-t, y, c)
		}
	}
}

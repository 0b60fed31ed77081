package app

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/konkalaitzidis/digital-health-app/internal/model"
)

const (
	dpi      = 96.0
	fontSize = 14.0

	cellSize     = 110
	topBorder    = 70
	leftBorder   = 140
	bottomBorder = 40
	rightBorder  = 40
)

var (
	cellLow  = colorful.Color{R: 1, G: 1, B: 1}         // white for 0.0
	cellHigh = colorful.Color{R: 0.03, G: 0.2, B: 0.45} // dark blue for 1.0
)

func writeConfusionMatrix(config *Config, eval *model.Evaluation, classes []string) error {
	img, err := renderConfusionMatrix(eval, classes, config.Output.FontFile)
	if err != nil {
		return err
	}

	out, err := os.Create(config.Output.ReportImage)
	if err != nil {
		return err
	}
	defer out.Close()

	return png.Encode(out, img)
}

// renderConfusionMatrix draws the row-normalized confusion matrix as an
// annotated heatmap: one colored cell per (true, predicted) pair with its
// share printed inside, class names along both axes.
func renderConfusionMatrix(eval *model.Evaluation, classes []string, fontPath string) (*image.RGBA, error) {
	n := len(classes)
	if n == 0 || len(eval.Confusion) != n {
		return nil, fmt.Errorf("confusion matrix size %d does not match %d classes", len(eval.Confusion), n)
	}

	fontData, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font file: %w", err)
	}
	parsedFont, err := freetype.ParseFont(fontData)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	width := leftBorder + n*cellSize + rightBorder
	height := topBorder + n*cellSize + bottomBorder
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	fc := freetype.NewContext()
	fc.SetDPI(dpi)
	fc.SetFont(parsedFont)
	fc.SetFontSize(fontSize)
	fc.SetClip(img.Bounds())
	fc.SetDst(img)
	fc.SetHinting(font.HintingFull)

	drawCells(img, eval, n)

	if err = annotate(fc, parsedFont, eval, classes); err != nil {
		return nil, fmt.Errorf("drawing annotations: %w", err)
	}
	return img, nil
}

func drawCells(img *image.RGBA, eval *model.Evaluation, n int) {
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			v := clamp01(eval.Confusion[row][col])
			cell := image.Rect(
				leftBorder+col*cellSize,
				topBorder+row*cellSize,
				leftBorder+(col+1)*cellSize,
				topBorder+(row+1)*cellSize,
			)
			draw.Draw(img, cell, image.NewUniform(cellLow.BlendLab(cellHigh, v).Clamped()), image.Point{}, draw.Src)
		}
	}
}

func annotate(fc *freetype.Context, parsedFont *truetype.Font, eval *model.Evaluation, classes []string) error {
	n := len(classes)

	fc.SetSrc(image.Black)
	if _, err := fc.DrawString("Confusion Matrix (normalized)", freetype.Pt(leftBorder, topBorder/2)); err != nil {
		return err
	}

	for i, class := range classes {
		// Column label above its column, row label left of its row.
		x := leftBorder + i*cellSize + cellSize/2 - textWidth(parsedFont, class)/2
		if _, err := fc.DrawString(class, freetype.Pt(x, topBorder-10)); err != nil {
			return err
		}

		y := topBorder + i*cellSize + cellSize/2 + int(fontSize)/2
		if _, err := fc.DrawString(class, freetype.Pt(10, y)); err != nil {
			return err
		}
	}

	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			v := clamp01(eval.Confusion[row][col])

			// Dark cells get white text.
			if v > 0.5 {
				fc.SetSrc(image.White)
			} else {
				fc.SetSrc(image.Black)
			}

			label := fmt.Sprintf("%0.2f", v)
			x := leftBorder + col*cellSize + cellSize/2 - textWidth(parsedFont, label)/2
			y := topBorder + row*cellSize + cellSize/2 + int(fontSize)/2
			if _, err := fc.DrawString(label, freetype.Pt(x, y)); err != nil {
				return err
			}
		}
	}
	return nil
}

// textWidth estimates the rendered width of s in pixels at the report's font
// size, good enough for centering labels inside generous cells.
func textWidth(parsedFont *truetype.Font, s string) int {
	scale := fixedScale()
	var width int
	for _, r := range s {
		idx := parsedFont.Index(r)
		width += int(parsedFont.HMetric(scale, idx).AdvanceWidth)
	}
	return width >> 6
}

func fixedScale() fixed.Int26_6 {
	scale := fontSize * dpi / 72 * 64
	return fixed.Int26_6(scale)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package preview

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// upperHalf is drawn with the top pixel as foreground and the bottom pixel
// as background, packing two image rows into one terminal row.
const upperHalf = "▀"

// MaxThumbnailPixels caps the images Thumbnail decodes. Larger images are
// shown as a file card; their header is read but their pixels are not.
const MaxThumbnailPixels = 2048 * 2048

// Thumbnail renders file for the terminal. Decodable images become a
// half-block picture width cells wide; anything else becomes a file card.
func Thumbnail(file File, width int) string {
	if width < 2 {
		width = 2
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(file.Content))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return Card(file)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxThumbnailPixels {
		return Card(file)
	}
	img, _, err := image.Decode(bytes.NewReader(file.Content))
	if err != nil {
		return Card(file)
	}
	return renderHalfBlocks(img, width)
}

// Card describes a file without rendering its content.
func Card(file File) string {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return fmt.Sprintf("%s\n%s · %s", file.Name, humanize.Bytes(uint64(file.Size())), contentType)
}

func renderHalfBlocks(img image.Image, width int) string {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return ""
	}
	// Terminal cells are about twice as tall as wide, and each cell holds
	// two pixel rows, so rows == width keeps the aspect ratio of a square.
	height := width * bounds.Dy() / bounds.Dx()
	if height < 2 {
		height = 2
	}
	if height%2 == 1 {
		height++
	}

	sample := func(x, y int) string {
		sx := bounds.Min.X + x*bounds.Dx()/width
		sy := bounds.Min.Y + y*bounds.Dy()/height
		r, g, b, _ := img.At(sx, sy).RGBA()
		return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
	}

	var out strings.Builder
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			cell := lipgloss.NewStyle().
				Foreground(lipgloss.Color(sample(x, y))).
				Background(lipgloss.Color(sample(x, y+1)))
			out.WriteString(cell.Render(upperHalf))
		}
		if y+2 < height {
			out.WriteString("\n")
		}
	}
	return out.String()
}

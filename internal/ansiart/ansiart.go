// Package ansiart turns card images into half-block terminal art
package ansiart

import (
	"crypto/md5"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

const (
	DefaultWidth  = 40
	DefaultHeight = 32
)

// Converter renders images at a fixed size and caches the result on disk
type Converter struct {
	CacheDir  string
	Width     int
	Height    int
	TrueColor bool
}

func NewConverter(cacheDir string) *Converter {
	return &Converter{
		CacheDir:  filepath.Join(cacheDir, "ansi_cache"),
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		TrueColor: true,
	}
}

// Art returns the ANSI art for an image file, generating and caching it on
// first use. The cache key covers the path, size and modification time so an
// edited image is converted again.
func (c *Converter) Art(imagePath string) (string, error) {
	info, err := os.Stat(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}

	key := fmt.Sprintf("%s|%d|%d|%dx%d|%t", imagePath, info.Size(), info.ModTime().UnixNano(), c.Width, c.Height, c.TrueColor)
	cachePath := filepath.Join(c.CacheDir, fmt.Sprintf("%x.ansi", md5.Sum([]byte(key))))
	if data, err := os.ReadFile(cachePath); err == nil {
		return string(data), nil
	}

	art, err := c.generate(imagePath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(c.CacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create ANSI cache directory: %w", err)
	}
	if err := os.WriteFile(cachePath, []byte(art), 0644); err != nil {
		return "", fmt.Errorf("failed to write ANSI art to file: %w", err)
	}
	return art, nil
}

func (c *Converter) generate(imagePath string) (string, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img, c.Width, c.Height, c.TrueColor), nil
}

// FromImage converts an image to width x height cells of upper half blocks,
// the top pixels as foreground and the bottom pixels as background.
func FromImage(img image.Image, width, height int, trueColor bool) string {
	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.Lanczos3)

	var buffer strings.Builder
	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			col1, _ := colorful.MakeColor(colorAt(resized, x, y))
			col2, _ := colorful.MakeColor(colorAt(resized, x+1, y))
			col3, _ := colorful.MakeColor(colorAt(resized, x, y+1))
			col4, _ := colorful.MakeColor(colorAt(resized, x+1, y+1))

			fg := averageColor(col1, col2)
			bg := averageColor(col3, col4)
			buffer.WriteString(cell('▀', fg, bg, trueColor))
		}
		buffer.WriteString("\n")
	}
	return buffer.String()
}

func colorAt(img image.Image, x, y int) color.Color {
	bounds := img.Bounds()
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		return img.At(x, y)
	}
	return color.RGBA{0, 0, 0, 255}
}

func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	count := float64(len(colors))
	return colorful.Color{R: r / count, G: g / count, B: b / count}
}

func cell(char rune, fg, bg colorful.Color, trueColor bool) string {
	if !trueColor {
		return fmt.Sprintf("\x1b[38;5;%dm\x1b[48;5;%dm%c\x1b[0m", ansi256(fg), ansi256(bg), char)
	}
	r1, g1, b1 := fg.Clamped().RGB255()
	r2, g2, b2 := bg.Clamped().RGB255()
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%c\x1b[0m", r1, g1, b1, r2, g2, b2, char)
}

var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

// ansi256 maps a color to the nearer of the 6x6x6 cube entry and the
// grayscale ramp entry of the 256 color palette.
func ansi256(c colorful.Color) int {
	r, g, b := c.Clamped().RGB255()
	ri, gi, bi := cubeIndex(r), cubeIndex(g), cubeIndex(b)
	cube := colorful.Color{
		R: float64(cubeLevels[ri]) / 255,
		G: float64(cubeLevels[gi]) / 255,
		B: float64(cubeLevels[bi]) / 255,
	}

	grayIndex := min(max((int(r)+int(g)+int(b))/3-8, 0)/10, 23)
	level := float64(8+10*grayIndex) / 255
	gray := colorful.Color{R: level, G: level, B: level}

	if c.DistanceRgb(gray) < c.DistanceRgb(cube) {
		return 232 + grayIndex
	}
	return 16 + 36*ri + 6*gi + bi
}

func cubeIndex(v uint8) int {
	switch {
	case v < 48:
		return 0
	case v < 115:
		return 1
	default:
		return (int(v) - 35) / 40
	}
}

// SideBySide prints art on the left and info lines to its right, padding
// every art line to the widest one.
func SideBySide(art string, info []string, spacing int) string {
	artLines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if art == "" {
		artLines = nil
	}
	artWidth := 0
	for _, line := range artLines {
		artWidth = max(artWidth, lipgloss.Width(line))
	}
	col := artWidth + spacing

	var b strings.Builder
	for i := 0; i < max(len(artLines), len(info)); i++ {
		b.WriteString("  ")
		if i < len(artLines) {
			b.WriteString(artLines[i])
			b.WriteString(strings.Repeat(" ", col-lipgloss.Width(artLines[i])))
		} else {
			b.WriteString(strings.Repeat(" ", col))
		}
		if i < len(info) {
			b.WriteString(info[i])
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Wrap wraps text on word boundaries to the given width
func Wrap(text string, width int) []string {
	if width < 10 {
		width = 40
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var result []string
	var line string
	for _, word := range words {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			result = append(result, line)
			line = word
		}
	}
	return append(result, line)
}

package main

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/xuri/excelize/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

var errNothingToExport = errors.New("nothing to export")

// worldBounds is the box around every instance of s in world pixels, at zoom 1.
func worldBounds(s Snapshot) (Rect, bool) {
	instances := s.Instances()
	if len(instances) == 0 {
		return Rect{}, false
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, inst := range instances {
		b := ScreenBounds(inst, NewViewport())
		minX = math.Min(minX, b.X)
		minY = math.Min(minY, b.Y)
		maxX = math.Max(maxX, b.Right())
		maxY = math.Max(maxY, b.Bottom())
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, true
}

// ExportToPNG draws every instance of s as a labelled box.
func ExportToPNG(s Snapshot, filename string) error {
	bounds, ok := worldBounds(s)
	if !ok {
		return errNothingToExport
	}

	padding := 2 * CellHeight
	imageWidth := int(bounds.W + 2*padding)
	imageHeight := int(bounds.H + 2*padding)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(color.White)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %v", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	for _, inst := range s.Instances() {
		b := ScreenBounds(inst, NewViewport())
		x := b.X - bounds.X + padding
		y := b.Y - bounds.Y + padding

		dc.SetLineWidth(1.0)
		if inst.IsFirstDiscovery {
			dc.SetColor(color.RGBA{R: 0xea, G: 0xb3, B: 0x08, A: 0xff})
		} else {
			dc.SetColor(color.Black)
		}
		dc.DrawRoundedRectangle(x+0.5, y+0.5, b.W-1, b.H-1, 6)
		dc.Stroke()

		dc.SetColor(color.Black)
		dc.DrawStringAnchored(inst.Name, x+b.W/2, y+b.H/2, 0.5, 0.35)
	}

	return dc.SavePNG(filename)
}

// exportVisualTXT writes the canvas as plain text, the way it looks on
// screen at zoom 1.
func exportVisualTXT(s Snapshot, filename string) error {
	bounds, ok := worldBounds(s)
	if !ok {
		return errNothingToExport
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	v := Viewport{PanX: -bounds.X, PanY: -bounds.Y, Zoom: 1}
	g := newGrid(int(math.Ceil(bounds.W/CellWidth))+1, int(math.Ceil(bounds.H/CellHeight))+1)
	for _, inst := range s.Instances() {
		drawInstance(g, inst, v, styleBox)
	}
	for _, row := range g.cells {
		var line strings.Builder
		for _, c := range row {
			if !c.cont {
				line.WriteString(c.text)
			}
		}
		fmt.Fprintln(file, strings.TrimRight(line.String(), " "))
	}
	return nil
}

type recipeRow struct {
	First, Second string
	Result        Recipe
	Source        string
}

func recipeRows(book RecipeBook, cache *RecipeCache) []recipeRow {
	rows := make([]recipeRow, 0, len(book)+cache.Len())
	for key, r := range book {
		first, second := splitPairKey(key)
		rows = append(rows, recipeRow{First: first, Second: second, Result: r, Source: "built-in"})
	}
	for _, e := range cache.Entries() {
		first, second := splitPairKey(e.Key)
		rows = append(rows, recipeRow{First: first, Second: second, Result: Recipe{Element: e.Value}, Source: "generated"})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].First != rows[j].First {
			return rows[i].First < rows[j].First
		}
		return rows[i].Second < rows[j].Second
	})
	return rows
}

// splitPairKey splits a pair key for display. Names holding "+" make the
// split ambiguous; the first "+" is used.
func splitPairKey(key string) (string, string) {
	first, second, _ := strings.Cut(key, "+")
	return first, second
}

func (r recipeRow) result() string {
	if r.Result.IsExplosion {
		return "💥 explosion"
	}
	return r.Result.Glyph + " " + r.Result.Name
}

// ExportXLSX writes the discovery book: one sheet of discoveries, one of
// every known recipe.
func ExportXLSX(d *Discovery, book RecipeBook, cache *RecipeCache, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const discoveries = "Discoveries"
	if err := f.SetSheetName("Sheet1", discoveries); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(discoveries)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", []interface{}{"emoji", "name", "discovered_at", "description"}); err != nil {
		return err
	}
	for i, el := range d.All() {
		discovered := ""
		if el.DiscoveredAt > 1000 {
			discovered = time.UnixMilli(el.DiscoveredAt).Format(time.RFC3339)
		}
		cellAddr, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cellAddr, []interface{}{el.Glyph, el.Name, discovered, DescribeElement(el.Name)}); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	const recipes = "Recipes"
	if _, err := f.NewSheet(recipes); err != nil {
		return err
	}
	sw, err = f.NewStreamWriter(recipes)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", []interface{}{"first", "second", "result", "source"}); err != nil {
		return err
	}
	for i, r := range recipeRows(book, cache) {
		cellAddr, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cellAddr, []interface{}{r.First, r.Second, r.result(), r.Source}); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// selectionText lists the selected instances, one "glyph name" per line.
func selectionText(s *Session) string {
	var lines []string
	for _, id := range s.SelectedIDs() {
		if inst, ok := s.Canvas().Get(id); ok {
			lines = append(lines, inst.Glyph+" "+inst.Name)
		}
	}
	return strings.Join(lines, "\n")
}

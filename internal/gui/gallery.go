package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"codeberg.org/snonux/wordtale/internal/story"
)

// thumbSize is the size of one gallery cell
var thumbSize = fyne.NewSize(240, 300)

// Gallery shows one cell per illustrated sentence. Verified images are
// shown with their sentence; failed ones show only the failure message.
type Gallery struct {
	widget.BaseWidget

	grid *fyne.Container
}

// NewGallery creates an empty gallery
func NewGallery() *Gallery {
	g := &Gallery{grid: container.NewGridWrap(thumbSize)}
	g.ExtendBaseWidget(g)
	return g
}

// CreateRenderer implements fyne.Widget
func (g *Gallery) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(g.grid)
}

// SetImages replaces the gallery content
func (g *Gallery) SetImages(images []story.Image) {
	cells := make([]fyne.CanvasObject, 0, len(images))
	for _, img := range images {
		cells = append(cells, newGalleryCell(img))
	}
	g.grid.Objects = cells
	g.grid.Refresh()
}

// Clear removes all cells
func (g *Gallery) Clear() {
	g.SetImages(nil)
}

// Len returns the number of cells
func (g *Gallery) Len() int {
	return len(g.grid.Objects)
}

func newGalleryCell(img story.Image) fyne.CanvasObject {
	caption := widget.NewLabel(cellCaption(img))
	caption.Wrapping = fyne.TextWrapWord
	caption.Alignment = fyne.TextAlignCenter

	if !img.OK() {
		caption.Importance = widget.DangerImportance
		return container.NewBorder(nil, caption, nil, nil)
	}

	picture := canvas.NewImageFromFile(img.Path)
	picture.FillMode = canvas.ImageFillContain
	picture.SetMinSize(fyne.NewSize(200, 200))
	return container.NewBorder(nil, caption, nil, nil, picture)
}

// cellCaption is the sentence for verified images and the failure message
// otherwise
func cellCaption(img story.Image) string {
	if img.OK() {
		return img.Sentence
	}
	return img.Caption()
}

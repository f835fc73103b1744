package gui

import (
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/kikiluvv/ezcrop/internal/crop"
)

// cursorFor maps an editor hint to a desktop cursor. Fyne has no diagonal
// resize cursors, so corners share the pointer with moving.
func cursorFor(h crop.Hint) desktop.Cursor {
	switch h {
	case crop.HintResizeHorizontal:
		return desktop.HResizeCursor
	case crop.HintResizeVertical:
		return desktop.VResizeCursor
	case crop.HintMove, crop.HintResizeNWSE, crop.HintResizeNESW:
		return desktop.PointerCursor
	default:
		return desktop.CrosshairCursor
	}
}

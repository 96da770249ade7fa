// Package terminal renders command results with colors and styling.
package terminal

import (
	"io"

	"github.com/arthur-debert/isna/pkg/ui/styles"
	"github.com/arthur-debert/isna/pkg/ui/text"
)

// Renderer is the text layout decorated with the terminal styles.
type Renderer struct {
	*text.Renderer
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	r, err := text.NewStyled(w, styles.Render)
	if err != nil {
		return nil, err
	}
	return &Renderer{Renderer: r}, nil
}

package interfaces

import (
	"io"
)

// TemplateRenderer renders named page templates. When out is supplied the
// result is written there and the returned string is empty.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}

// Package markdown renders revision paragraph text into embeddable HTML.
// Output is sanitised by the renderer itself and every list container is
// decorated with a fixed class set so pages need no further post-processing.
package markdown

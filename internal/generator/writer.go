package generator

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

// artifactWriter routes generator outputs to the artifact store.
type artifactWriter struct {
	store interfaces.ArtifactStore
}

func newArtifactWriter(store interfaces.ArtifactStore) *artifactWriter {
	return &artifactWriter{store: store}
}

func (w *artifactWriter) writePage(ctx context.Context, page RenderedPage) error {
	if strings.TrimSpace(page.Output) == "" {
		return fmt.Errorf("generator: page %s has no output path", page.Route)
	}
	return w.writeFile(ctx, page.Output, page.HTML)
}

func (w *artifactWriter) writeFile(ctx context.Context, target, content string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return errors.New("generator: write requires path")
	}
	if dir := path.Dir(target); dir != "." && dir != "/" {
		if err := w.store.EnsureDir(ctx, dir); err != nil {
			return fmt.Errorf("generator: ensure dir %s: %w", dir, err)
		}
	}
	if err := w.store.WriteFile(ctx, target, strings.NewReader(content)); err != nil {
		return fmt.Errorf("generator: write %s: %w", target, err)
	}
	return nil
}

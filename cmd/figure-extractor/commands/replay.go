package commands

import (
	"fmt"
	"os"

	"github.com/ironsheep/figure-extractor/internal/document"
	"github.com/ironsheep/figure-extractor/internal/geometry"
	"github.com/ironsheep/figure-extractor/internal/session"
)

// startSession opens a session on r with the first page's display surface.
func startSession(r document.Renderer, dpi float64) (*session.Session, error) {
	var surface geometry.Size
	if r.PageCount() > 0 {
		first, err := r.RenderPage(0, dpi)
		if err != nil {
			return nil, err
		}
		surface = first.Size()
	}
	return session.NewSession(r.PageCount(), surface, log), nil
}

// replayScript feeds the events of a YAML script into sess. After every
// navigation event the new page's display size becomes the session surface,
// as a host UI would report it.
func replayScript(sess *session.Session, r document.Renderer, dpi float64, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	events, err := session.LoadScript(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for i, ev := range events {
		st, _, err := sess.Apply(ev)
		if err != nil {
			return fmt.Errorf("%s: event %d: %w", path, i+1, err)
		}

		switch ev.(type) {
		case session.NextPage, session.PrevPage, session.GotoPage:
			if st.PageCount == 0 {
				continue
			}
			page, err := r.RenderPage(st.Page, dpi)
			if err != nil {
				return err
			}
			if size := page.Size(); size != st.Surface {
				if _, _, err := sess.Apply(session.SurfaceChanged{Size: size}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

package progress

import (
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows what the Link Collector is currently waiting on
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a Spinner writing to out. A nil out returns a nil Spinner.
func NewSpinner(out io.Writer) *Spinner {
	if out == nil {
		return nil
	}
	return &Spinner{s: spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(out))}
}

// Page announces a listing page and starts the animation
func (sp *Spinner) Page(category string, page int, pageURL string) {
	if sp == nil {
		return
	}
	sp.setSuffix(fmt.Sprintf(" [%s p%d] %s", category, page, formatURL(pageURL)))
	sp.s.Start()
}

// Blocks reports the block count seen by the latest scroll
func (sp *Spinner) Blocks(category string, page, count, stable, need int) {
	if sp == nil {
		return
	}
	sp.setSuffix(fmt.Sprintf(" [%s p%d] %d products, stable %d/%d", category, page, count, stable, need))
}

// Stop halts the animation
func (sp *Spinner) Stop() {
	if sp == nil {
		return
	}
	sp.s.Stop()
}

func (sp *Spinner) setSuffix(suffix string) {
	sp.s.Lock()
	sp.s.Suffix = suffix
	sp.s.Unlock()
}

// formatURL shortens long URLs to host plus the tail of the path and query
func formatURL(urlStr string) string {
	maxLen := 60
	if len(urlStr) <= maxLen {
		return urlStr
	}

	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "..." + urlStr[len(urlStr)-maxLen:]
	}
	tail := u.RequestURI()
	if room := maxLen - len(u.Host) - 3; room > 0 && len(tail) > room {
		tail = "..." + tail[len(tail)-room:]
	}
	return u.Host + tail
}

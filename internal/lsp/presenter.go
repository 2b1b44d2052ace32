package lsp

import (
	"fmt"
	"sync"

	"github.com/aidanlsb/loclink/internal/document"
	"github.com/aidanlsb/loclink/internal/present"
	"github.com/aidanlsb/loclink/internal/search"
)

// presenter routes search results back to the request that activated a
// marker. Regions are installed by the registry as documents are reindexed.
type presenter struct {
	*present.Regions
	s *Server

	activating sync.Mutex // one activation at a time

	mu      sync.Mutex
	capture *capture
}

// capture holds the results of one activation.
type capture struct {
	query     string
	matches   []search.Match
	err       error
	displayed bool
}

func newPresenter(s *Server) *presenter {
	return &presenter{Regions: present.NewRegions(), s: s}
}

// Display records results for the pending activation.
func (p *presenter) Display(query string, matches []search.Match) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.capture == nil {
		p.s.logger.Debug("dropping results with no pending request", "query", query)
		return
	}
	p.capture.query = query
	p.capture.matches = matches
	p.capture.displayed = true
}

// Warn surfaces an incomplete search to the user.
func (p *presenter) Warn(query string, err error) {
	p.mu.Lock()
	if p.capture != nil {
		p.capture.err = err
	}
	p.mu.Unlock()

	p.s.showMessage(messageTypeWarning, fmt.Sprintf("loclink: results for %s may be incomplete: %v", query, err))
}

// activate runs the region at offset and returns what it displayed.
func (p *presenter) activate(id document.ID, offset int) (*capture, bool) {
	p.activating.Lock()
	defer p.activating.Unlock()

	c := &capture{}
	p.mu.Lock()
	p.capture = c
	p.mu.Unlock()

	ok := p.Regions.Activate(id, offset)

	p.mu.Lock()
	p.capture = nil
	p.mu.Unlock()

	return c, ok && c.displayed
}

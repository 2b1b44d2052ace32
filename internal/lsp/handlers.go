package lsp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aidanlsb/loclink/internal/document"
	"github.com/aidanlsb/loclink/internal/marker"
	"github.com/aidanlsb/loclink/internal/registry"
	"github.com/aidanlsb/loclink/internal/search"
)

// LSP Protocol Types
// These are simplified versions covering only what the server uses.

type InitializeParams struct {
	RootURI    string      `json:"rootUri"`
	ClientInfo *ClientInfo `json:"clientInfo,omitempty"`
}

type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

type ServerInfo struct {
	Name string `json:"name"`
}

type ServerCapabilities struct {
	TextDocumentSync     int                  `json:"textDocumentSync"`
	DefinitionProvider   bool                 `json:"definitionProvider"`
	ReferencesProvider   bool                 `json:"referencesProvider"`
	HoverProvider        bool                 `json:"hoverProvider"`
	DocumentLinkProvider *DocumentLinkOptions `json:"documentLinkProvider,omitempty"`
}

type DocumentLinkOptions struct {
	ResolveProvider bool `json:"resolveProvider"`
}

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type TextDocumentContentChangeEvent struct {
	Text string `json:"text"` // Full content (we use full sync)
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type DocumentLinkParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type DocumentLink struct {
	Range   Range     `json:"range"`
	Target  string    `json:"target,omitempty"`
	Tooltip string    `json:"tooltip,omitempty"`
	Data    *linkData `json:"data,omitempty"`
}

// linkData lets documentLink/resolve find the marker again.
type linkData struct {
	URI    string `json:"uri"`
	Offset int    `json:"offset"`
}

type ShowMessageParams struct {
	Type    int    `json:"type"`
	Message string `json:"message"`
}

const messageTypeWarning = 2

const textDocumentSyncFull = 1

// Handler implementations

func (s *Server) handleInitialize(msg jsonRPCMessage) error {
	var params InitializeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "Invalid params")
	}

	if params.RootURI != "" {
		s.logger.Debug("workspace opened", "path", uriToPath(params.RootURI))
	}
	if params.ClientInfo != nil {
		s.logger.Debug("client connected", "client", params.ClientInfo.Name, "version", params.ClientInfo.Version)
	}

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:     textDocumentSyncFull,
			DefinitionProvider:   true,
			ReferencesProvider:   true,
			HoverProvider:        true,
			DocumentLinkProvider: &DocumentLinkOptions{ResolveProvider: true},
		},
		ServerInfo: &ServerInfo{Name: "loclink"},
	}

	return s.sendResult(msg.ID, result)
}

func (s *Server) handleDidOpen(msg jsonRPCMessage) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	item := params.TextDocument
	buf := s.documents.Open(item.URI, item.LanguageID, item.Text, item.Version)
	s.registry.Observe(registry.Created, buf)

	s.logger.Debug("opened", "uri", item.URI, "language", item.LanguageID)
	return nil
}

func (s *Server) handleDidChange(msg jsonRPCMessage) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	// We use full sync, so take the last content change
	if len(params.ContentChanges) == 0 {
		return nil
	}
	content := params.ContentChanges[len(params.ContentChanges)-1].Text
	buf := s.documents.Update(params.TextDocument.URI, content, params.TextDocument.Version)
	if buf == nil {
		s.logger.Debug("change for unknown document", "uri", params.TextDocument.URI)
		return nil
	}
	s.registry.Observe(registry.Mutated, buf)
	return nil
}

func (s *Server) handleDidClose(msg jsonRPCMessage) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	uri := params.TextDocument.URI
	s.documents.Close(uri)
	s.registry.Forget(document.ID(uri))
	s.logger.Debug("closed", "uri", uri)
	return nil
}

// handlePartners answers definition and references requests on a marker
// with every matching partner.
func (s *Server) handlePartners(msg jsonRPCMessage) error {
	var params TextDocumentPositionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "Invalid params")
	}

	uri := params.TextDocument.URI
	buf := s.documents.Get(uri)
	if buf == nil {
		return s.sendResult(msg.ID, nil)
	}

	offset := OffsetAt(buf.Text(), params.Position)
	c, ok := s.presenter.activate(document.ID(uri), offset)
	if !ok {
		return s.sendResult(msg.ID, nil)
	}
	return s.sendResult(msg.ID, s.locations(c.matches))
}

func (s *Server) handleHover(msg jsonRPCMessage) error {
	var params TextDocumentPositionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "Invalid params")
	}

	uri := params.TextDocument.URI
	buf := s.documents.Get(uri)
	if buf == nil {
		return s.sendResult(msg.ID, nil)
	}
	text := buf.Text()

	m, ok := s.registry.Index(document.ID(uri)).At(OffsetAt(text, params.Position))
	if !ok {
		return s.sendResult(msg.ID, nil)
	}

	var hover strings.Builder
	fmt.Fprintf(&hover, "**%s** `%s`\n\n", m.Kind, m.UUID)
	partners, err := s.search.SearchDocuments(m.PartnerPattern())
	if err == nil {
		fmt.Fprintf(&hover, "%s in open documents", countOf(len(partners), m.Kind.Complement()))
	}

	r := RangeOf(text, m.Interval.Start(), m.Interval.End())
	return s.sendResult(msg.ID, Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: hover.String(),
		},
		Range: &r,
	})
}

func (s *Server) handleDocumentLink(msg jsonRPCMessage) error {
	var params DocumentLinkParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "Invalid params")
	}

	uri := params.TextDocument.URI
	buf := s.documents.Get(uri)
	if buf == nil {
		return s.sendResult(msg.ID, []DocumentLink{})
	}
	text := buf.Text()

	markers := s.registry.Index(document.ID(uri)).Markers()
	links := make([]DocumentLink, 0, len(markers))
	for _, m := range markers {
		links = append(links, DocumentLink{
			Range:   RangeOf(text, m.Interval.Start(), m.Interval.End()),
			Tooltip: fmt.Sprintf("Find %s %s", m.Kind.Complement(), m.UUID),
			Data:    &linkData{URI: uri, Offset: m.Interval.Start()},
		})
	}
	return s.sendResult(msg.ID, links)
}

func (s *Server) handleDocumentLinkResolve(msg jsonRPCMessage) error {
	var link DocumentLink
	if err := json.Unmarshal(msg.Params, &link); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "Invalid params")
	}
	if link.Data == nil {
		return s.sendResult(msg.ID, link)
	}

	c, ok := s.presenter.activate(document.ID(link.Data.URI), link.Data.Offset)
	if ok {
		if locs := s.locations(c.matches); len(locs) > 0 {
			link.Target = fmt.Sprintf("%s#L%d", locs[0].URI, locs[0].Range.Start.Line+1)
		}
	}
	return s.sendResult(msg.ID, link)
}

// locations converts matches into LSP locations. Filesystem matches for a
// file that is open in the editor are skipped; the open buffer is fresher.
func (s *Server) locations(matches []search.Match) []Location {
	out := make([]Location, 0, len(matches))
	for _, m := range matches {
		switch m.Source {
		case search.SourceDocument:
			buf := s.documents.Get(m.Label)
			if buf == nil {
				continue
			}
			out = append(out, Location{
				URI:   m.Label,
				Range: RangeOf(buf.Text(), m.Offset, m.Offset+len(m.Text)),
			})
		case search.SourceFile:
			uri := pathToURI(m.Label)
			if s.documents.Get(uri) != nil {
				continue
			}
			line := 0
			if m.HasPosition {
				line = m.Line - 1
			}
			pos := Position{Line: line}
			out = append(out, Location{URI: uri, Range: Range{Start: pos, End: pos}})
		}
	}
	return out
}

func (s *Server) showMessage(kind int, message string) {
	if err := s.sendNotification("window/showMessage", ShowMessageParams{Type: kind, Message: message}); err != nil {
		s.logger.Debug("failed to show message", "error", err)
	}
}

func countOf(n int, kind marker.Kind) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", kind)
	}
	return fmt.Sprintf("%d %ss", n, kind)
}

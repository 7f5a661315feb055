package core

import (
	"strings"
)

// SelectionKind tags a decoded callback payload.
type SelectionKind int

const (
	// SelectionInvalid marks an unrecognized action token.
	SelectionInvalid SelectionKind = iota
	// SelectionDownload routes to the direct chat-delivery path.
	SelectionDownload
	// SelectionInlineDownload routes to the inline-edit delivery path.
	SelectionInlineDownload
)

const (
	actionDownload = "download"
	actionInline   = "inline"
	payloadSep     = "_"
)

// Selection is a callback payload decoded at the transport boundary,
// before any job logic runs.
type Selection struct {
	Kind SelectionKind
	Link string
}

// ParseSelection decodes an "<action>_<payload>" callback string.
// The payload is split on the first separator only, since links may
// themselves contain underscores.
func ParseSelection(payload string) Selection {
	parts := strings.SplitN(payload, payloadSep, 2)
	if len(parts) != 2 || parts[1] == "" {
		return Selection{Kind: SelectionInvalid}
	}

	switch parts[0] {
	case actionDownload:
		return Selection{Kind: SelectionDownload, Link: parts[1]}
	case actionInline:
		return Selection{Kind: SelectionInlineDownload, Link: parts[1]}
	}
	return Selection{Kind: SelectionInvalid}
}

// Payload encodes the selection for use as callback data.
func (s Selection) Payload() string {
	switch s.Kind {
	case SelectionDownload:
		return actionDownload + payloadSep + s.Link
	case SelectionInlineDownload:
		return actionInline + payloadSep + s.Link
	case SelectionInvalid:
	}
	return ""
}

// DownloadPayload builds the callback data for a chat-delivery selection.
func DownloadPayload(link string) string {
	return Selection{Kind: SelectionDownload, Link: link}.Payload()
}

// InlinePayload builds the callback data for an inline-delivery selection.
func InlinePayload(link string) string {
	return Selection{Kind: SelectionInlineDownload, Link: link}.Payload()
}

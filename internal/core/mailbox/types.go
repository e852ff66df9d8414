// Package mailbox implements the file-based IPC backend: a shared directory
// where the emulator drops request files and picks up response files.
package mailbox

import (
	"strings"
	"time"
)

// File naming for mailbox entries.
const (
	RequestPrefix  = "ipc_in_"
	ResponsePrefix = "ipc_out_"
	Suffix         = ".bin"

	tempMarker  = ".tmp."
	claimMarker = ".claim."
)

// DefaultTTL is how long an entry may sit in the mailbox before it is purged
const DefaultTTL = 60 * time.Second

// Kind classifies a mailbox entry by its name
type Kind string

const (
	// KindRequest is a complete request written by the peer
	KindRequest Kind = "request"
	// KindResponse is a complete response waiting for the peer
	KindResponse Kind = "response"
	// KindTemp is a write in progress
	KindTemp Kind = "temp"
	// KindClaim is a request being consumed
	KindClaim Kind = "claim"
	// KindOther is anything else found in the directory
	KindOther Kind = "other"
)

// Entry describes one file in the mailbox
type Entry struct {
	Name    string
	Kind    Kind
	ID      string
	Size    int64
	ModTime time.Time
}

// RequestName returns the canonical file name of a request
func RequestName(id string) string {
	return RequestPrefix + id + Suffix
}

// ResponseName returns the canonical file name of a response
func ResponseName(id string) string {
	return ResponsePrefix + id + Suffix
}

// Classify derives the kind and request id from an entry name. A name
// ending in Suffix is canonical even when the id contains a marker, since
// temporary and claim names never end in Suffix.
func Classify(name string) (Kind, string) {
	for _, role := range []struct {
		prefix string
		kind   Kind
	}{
		{RequestPrefix, KindRequest},
		{ResponsePrefix, KindResponse},
	} {
		if !strings.HasPrefix(name, role.prefix) {
			continue
		}
		rest := name[len(role.prefix):]
		if id, ok := strings.CutSuffix(rest, Suffix); ok && id != "" {
			return role.kind, id
		}
		if i := strings.Index(rest, tempMarker); i > 0 {
			return KindTemp, rest[:i]
		}
		if i := strings.Index(rest, claimMarker); i > 0 {
			return KindClaim, rest[:i]
		}
	}
	return KindOther, ""
}

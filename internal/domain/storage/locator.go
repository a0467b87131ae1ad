package storage

import "strings"

// Scheme tags where a locator's bytes live.
type Scheme string

const (
	// SchemeInline — bytes are a row in the blobs table.
	SchemeInline Scheme = "inline"
	// SchemeExternal — bytes live in the external object store, referenced by URL.
	SchemeExternal Scheme = "external"
)

// Locator is the opaque reference an artifact record holds to its stored
// bytes. It is a closed tagged value: the scheme decides which backend the
// Store dispatches to, and it never changes after creation.
type Locator struct {
	Scheme Scheme
	// Ref is the blob id for inline locators and the absolute URL for
	// external ones.
	Ref string
}

// String renders the wire form: "inline:<id>" or "external:<url>".
// Round-trips exactly through ParseLocator.
func (l Locator) String() string {
	return string(l.Scheme) + ":" + l.Ref
}

// InlineLocator builds an inline locator for a blob id.
func InlineLocator(blobID string) Locator {
	return Locator{Scheme: SchemeInline, Ref: blobID}
}

// ExternalLocator builds an external locator for an object-store URL.
func ExternalLocator(url string) Locator {
	return Locator{Scheme: SchemeExternal, Ref: url}
}

// ParseLocator parses the wire form. A malformed locator is a data or
// programmer error, never user input — callers must treat it as a bug and
// must not hand it to a backend.
func ParseLocator(s string) (Locator, error) {
	scheme, ref, ok := strings.Cut(s, ":")
	if !ok || ref == "" {
		return Locator{}, ErrInvalidLocator
	}
	switch Scheme(scheme) {
	case SchemeInline, SchemeExternal:
		return Locator{Scheme: Scheme(scheme), Ref: ref}, nil
	default:
		return Locator{}, ErrInvalidLocator
	}
}

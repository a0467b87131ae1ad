package reaper

import "errors"

// Kind names one of the four artifact record tables the reaper can cascade
// over. All four share the blob pool, so every delete path funnels through
// here.
type Kind string

const (
	KindConversion Kind = "conversion"
	KindUpscale    Kind = "upscale"
	KindSharedLink Kind = "shared_link"
	KindDropLink   Kind = "drop_link"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrUnknownKind = errors.New("unknown record kind")
)

// table maps a kind to its table name. Unknown kinds never reach SQL.
func (k Kind) table() (string, error) {
	switch k {
	case KindConversion:
		return "conversions", nil
	case KindUpscale:
		return "upscales", nil
	case KindSharedLink:
		return "shared_links", nil
	case KindDropLink:
		return "drop_links", nil
	default:
		return "", ErrUnknownKind
	}
}

// ParseKind validates a caller-supplied kind string.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, err := k.table(); err != nil {
		return "", err
	}
	return k, nil
}

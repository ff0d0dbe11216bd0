// Package pathkey canonicalizes build unit identifiers.
//
// Hosts report the same logical unit under several spellings: with a
// query-string suffix appended by a transform stage, or with Windows
// separators. Normalize collapses those spellings into one key so that
// start and complete notifications correlate.
package pathkey

import "strings"

const (
	// DefaultDepRoot is the marker segment separating vendored
	// dependencies from first-party source.
	DefaultDepRoot = "node_modules"
	// DefaultSourceLabel is the bucket label for units without a
	// dependency-root marker in their key.
	DefaultSourceLabel = "first-party source"

	sourceMarker = "/src/"
)

// Normalize converts a raw unit identifier into its canonical key.
// It strips everything from the first '?' and rewrites backslash
// separators to '/'. Total: malformed input passes through unchanged
// after the two transforms.
func Normalize(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	return strings.ReplaceAll(raw, "\\", "/")
}

// Mapper derives display names and report buckets from canonical keys.
// The zero value uses DefaultDepRoot and DefaultSourceLabel.
type Mapper struct {
	DepRoot     string
	SourceLabel string
}

func (m Mapper) depRoot() string {
	if m.DepRoot == "" {
		return DefaultDepRoot
	}
	return m.DepRoot
}

func (m Mapper) sourceLabel() string {
	if m.SourceLabel == "" {
		return DefaultSourceLabel
	}
	return m.SourceLabel
}

func (m Mapper) depMarker() string {
	return "/" + m.depRoot() + "/"
}

// Short returns a compact display name for a key: the suffix after the
// last "/src/" marker, else the suffix after the last dependency-root
// marker, else the key itself. Display only, never identity.
func (m Mapper) Short(key string) string {
	if i := strings.LastIndex(key, sourceMarker); i >= 0 {
		return key[i+len(sourceMarker):]
	}
	marker := m.depMarker()
	if i := strings.LastIndex(key, marker); i >= 0 {
		return key[i+len(marker):]
	}
	return key
}

// Bucket returns the report bucket for a key: the path segment right
// after the dependency-root marker, or the first-party label when the
// marker is absent (or is the final segment).
func (m Mapper) Bucket(key string) string {
	marker := m.depMarker()
	i := strings.Index(key, marker)
	if i < 0 {
		return m.sourceLabel()
	}
	rest := key[i+len(marker):]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		rest = rest[:j]
	}
	if rest == "" {
		return m.sourceLabel()
	}
	return rest
}

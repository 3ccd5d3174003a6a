package cache

// ScopedKeyer wraps a Keyer with a prefix so that several callers can share
// one backend without seeing each other's entries.
//
// The HTTP server scopes its keys this way:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "server:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ExpandKey generates a prefixed key for expansion results.
func (k *ScopedKeyer) ExpandKey(designHash, rulesHash string) string {
	return k.prefix + k.inner.ExpandKey(designHash, rulesHash)
}

// LayoutKey generates a prefixed key for layout frames.
func (k *ScopedKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(inputHash, opts)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(inputHash, opts)
}

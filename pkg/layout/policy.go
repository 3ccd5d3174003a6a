package layout

// Resizing is the per-axis policy that decides how a node's origin and
// length follow a change of its container's size.
type Resizing int

const (
	FixStartFixEnd Resizing = iota
	FixStartFixSize
	FixStartScale
	FixEndFixSize
	FixEndScale
	Scale
	FixCenterRatioFixSize
	FixCenterOffsetFixSize
)

func (r Resizing) String() string {
	switch r {
	case FixStartFixEnd:
		return "fix-start-fix-end"
	case FixStartFixSize:
		return "fix-start-fix-size"
	case FixStartScale:
		return "fix-start-scale"
	case FixEndFixSize:
		return "fix-end-fix-size"
	case FixEndScale:
		return "fix-end-scale"
	case Scale:
		return "scale"
	case FixCenterRatioFixSize:
		return "fix-center-ratio-fix-size"
	case FixCenterOffsetFixSize:
		return "fix-center-offset-fix-size"
	}
	return "unknown"
}

// ContentResizing controls whether a container resizes its children when
// its own size changes.
type ContentResizing int

const (
	// SkipGroupOrBooleanGroup resizes plain groups and boolean paths among
	// the children by their contents instead of by their own policy.
	SkipGroupOrBooleanGroup ContentResizing = iota
	Disabled
	Enabled
)

func (c ContentResizing) String() string {
	switch c {
	case SkipGroupOrBooleanGroup:
		return "skip-group-or-boolean-group"
	case Disabled:
		return "disabled"
	case Enabled:
		return "enabled"
	}
	return "unknown"
}

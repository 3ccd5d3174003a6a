package design

// Kind tags the variant carried by an [Element].
type Kind int

const (
	// KindUnknown marks an element whose class is not modeled. Its JSON is
	// preserved verbatim in Extra.
	KindUnknown Kind = iota
	KindFrame
	KindGroup
	KindPath
	KindText
	KindImage
	KindSymbolMaster
	KindSymbolInstance
	KindContour
	KindRectangle
	KindEllipse
	KindPolygon
	KindStar
)

var kindClasses = map[Kind]string{
	KindFrame:          "frame",
	KindGroup:          "group",
	KindPath:           "path",
	KindText:           "text",
	KindImage:          "image",
	KindSymbolMaster:   "symbolMaster",
	KindSymbolInstance: "symbolInstance",
	KindContour:        "contour",
	KindRectangle:      "rectangle",
	KindEllipse:        "ellipse",
	KindPolygon:        "polygon",
	KindStar:           "star",
}

var classKinds = func() map[string]Kind {
	m := make(map[string]Kind, len(kindClasses))
	for k, c := range kindClasses {
		m[c] = k
	}
	return m
}()

// KindOf returns the kind for a JSON class string.
func KindOf(class string) Kind {
	return classKinds[class]
}

// Class returns the JSON class string of k, or "" for KindUnknown.
func (k Kind) Class() string {
	return kindClasses[k]
}

func (k Kind) String() string {
	if c := k.Class(); c != "" {
		return c
	}
	return "unknown"
}

// IsObject reports whether elements of this kind carry an id, bounds and a
// matrix. Only objects take part in layout and override resolution.
func (k Kind) IsObject() bool {
	switch k {
	case KindFrame, KindGroup, KindPath, KindText, KindImage, KindSymbolMaster, KindSymbolInstance:
		return true
	case KindUnknown, KindContour, KindRectangle, KindEllipse, KindPolygon, KindStar:
		return false
	}
	return false
}

// HasChildObjects reports whether the kind stores its children under
// "childObjects".
func (k Kind) HasChildObjects() bool {
	switch k {
	case KindFrame, KindGroup, KindSymbolMaster, KindSymbolInstance:
		return true
	case KindUnknown, KindPath, KindText, KindImage, KindContour,
		KindRectangle, KindEllipse, KindPolygon, KindStar:
		return false
	}
	return false
}

// BooleanOp is the operation a path subshape uses to combine with the
// subshapes before it.
type BooleanOp int

const (
	BooleanUnion BooleanOp = iota
	BooleanSubtraction
	BooleanIntersection
	BooleanExclusion
	BooleanNone
)

func (op BooleanOp) String() string {
	switch op {
	case BooleanUnion:
		return "union"
	case BooleanSubtraction:
		return "subtraction"
	case BooleanIntersection:
		return "intersection"
	case BooleanExclusion:
		return "exclusion"
	case BooleanNone:
		return "none"
	}
	return "unknown"
}

package models

// Point is a canvas coordinate. On the wire it is a two element JSON
// array [x, y], matching what the drawing clients send.
type Point [2]float64

func (p Point) X() float64 { return p[0] }
func (p Point) Y() float64 { return p[1] }

// Note is a sticky note on a wall. Text length is enforced client-side
// only; the server stores whatever it is given.
type Note struct {
	Id     string  `json:"_id"`
	ZIndex int     `json:"zIndex"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Colour string  `json:"colour"`
	Text   string  `json:"text"`
}

// Line is a freehand or straight-line stroke. Width is a string because
// that is how the clients have always sent it.
type Line struct {
	Id     string  `json:"_id"`
	Points []Point `json:"points"`
	Colour string  `json:"colour"`
	Width  string  `json:"width"`
}

// Valid reports whether a line is complete enough to keep. Lines with a
// single point are half-finished drags whose connection died; they are
// garbage-collected at wall load.
func (l Line) Valid() bool {
	return len(l.Points) >= 2 && l.Colour != ""
}

// Image is the metadata for a pasted image. The binary payload is kept
// in the BinaryData store under the same id so that frequent
// move/resize patches never rewrite the large blob.
type Image struct {
	Id             string  `json:"_id"`
	Name           string  `json:"name"`
	ZIndex         int     `json:"zIndex"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	OriginalWidth  float64 `json:"originalWidth"`
	OriginalHeight float64 `json:"originalHeight"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
}

// User is the durable identity behind a browser. It is keyed in the
// store by the browser's client id, not by connection, so it survives
// reconnects and tab closures.
type User struct {
	Id           string `json:"id"`
	Colour       string `json:"colour"`
	Name         string `json:"name"`
	UseNightMode bool   `json:"useNightMode"`
}

// Wall is the ownership record for a named canvas: which note, line and
// image ids belong to it. The id sets are advisory; rows may be missing
// and are filtered out at load time.
type Wall struct {
	Name   string   `json:"name"`
	Notes  []string `json:"notes"`
	Lines  []string `json:"lines"`
	Images []string `json:"images"`
}

// BinaryData is an opaque payload, usually a base64 data URL for an
// image, keyed by the owning image id.
type BinaryData struct {
	Id   string `json:"_id"`
	Data string `json:"data"`
}

type EntityKind int

const (
	KindNote EntityKind = iota
	KindLine
	KindImage
)

func (k EntityKind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindLine:
		return "line"
	case KindImage:
		return "image"
	}
	return "unknown"
}

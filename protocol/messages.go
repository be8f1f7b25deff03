// Package protocol defines the closed set of messages exchanged over a
// wall socket. Every message is a flat JSON object with a "type"
// discriminator whose value is the message name.
package protocol

import "github.com/wallyhq/wally/models"

const (
	TypeCreateWall     = "CreateWall"
	TypeJoinWall       = "JoinWall"
	TypeDeleteWall     = "DeleteWall"
	TypeWallState      = "WallState"
	TypeWallyError     = "WallyError"
	TypeUserConnected  = "UserConnected"
	TypeUserJoinedWall = "UserJoinedWall"
	TypeUserLeftWall   = "UserLeftWall"
	TypeUpdateUser     = "UpdateUser"
	TypeNewNote        = "NewNote"
	TypeMoveNote       = "MoveNote"
	TypeUpdateNoteText = "UpdateNoteText"
	TypeSelectNote     = "SelectNote"
	TypeDeleteNote     = "DeleteNote"
	TypeNewLine        = "NewLine"
	TypeUpdateLine     = "UpdateLine"
	TypeDeleteLine     = "DeleteLine"
	TypeNewImage       = "NewImage"
	TypeUpdateImage    = "UpdateImage"
	TypeDeleteImage    = "DeleteImage"
	TypeUndo           = "Undo"
)

// Message is implemented by every protocol variant.
type Message interface {
	MessageType() string
}

// envelope carries the discriminator on every concrete message so that
// plain json.Marshal produces the wire shape.
type envelope struct {
	Type string `json:"type"`
}

func (e envelope) MessageType() string { return e.Type }

// CreateWall asks for a brand new wall with the given name.
type CreateWall struct {
	envelope
	Name string `json:"name"`
}

func NewCreateWall(name string) *CreateWall {
	return &CreateWall{envelope{TypeCreateWall}, name}
}

// JoinWall registers the sending session on an existing wall. A repeat
// join from the same session is a no-op; reconnecting clients resend it
// freely.
type JoinWall struct {
	envelope
	Name string `json:"name"`
}

func NewJoinWall(name string) *JoinWall {
	return &JoinWall{envelope{TypeJoinWall}, name}
}

// DeleteWall removes a wall and everything on it. The server also sends
// it as the eviction notice to every session on the wall.
type DeleteWall struct {
	envelope
	Name string `json:"name"`
}

func NewDeleteWall(name string) *DeleteWall {
	return &DeleteWall{envelope{TypeDeleteWall}, name}
}

// WallState is the full snapshot sent to a session on create/join and
// from the REST read surface.
type WallState struct {
	envelope
	Name     string            `json:"name"`
	Lines    []models.Line     `json:"lines"`
	Notes    []models.Note     `json:"notes"`
	Images   []models.Image    `json:"images"`
	Users    []models.User     `json:"users"`
	Selected map[string]string `json:"selected"`
}

func NewWallState(name string, lines []models.Line, notes []models.Note, images []models.Image, users []models.User, selected map[string]string) *WallState {
	return &WallState{envelope{TypeWallState}, name, lines, notes, images, users, selected}
}

// WallyError is a domain error surfaced to the requesting session only.
type WallyError struct {
	envelope
	Message string `json:"message"`
}

func NewWallyError(message string) *WallyError {
	return &WallyError{envelope{TypeWallyError}, message}
}

// UserConnected is pushed right after the socket opens, carrying the
// durable user resolved from the client id.
type UserConnected struct {
	envelope
	User models.User `json:"user"`
}

func NewUserConnected(user models.User) *UserConnected {
	return &UserConnected{envelope{TypeUserConnected}, user}
}

type UserJoinedWall struct {
	envelope
	WallName string      `json:"wallName"`
	User     models.User `json:"user"`
}

func NewUserJoinedWall(wallName string, user models.User) *UserJoinedWall {
	return &UserJoinedWall{envelope{TypeUserJoinedWall}, wallName, user}
}

type UserLeftWall struct {
	envelope
	WallName string      `json:"wallName"`
	User     models.User `json:"user"`
}

func NewUserLeftWall(wallName string, user models.User) *UserLeftWall {
	return &UserLeftWall{envelope{TypeUserLeftWall}, wallName, user}
}

// UserPatch is a partial update of a durable user; nil fields are left
// untouched.
type UserPatch struct {
	Colour       *string `json:"colour,omitempty"`
	Name         *string `json:"name,omitempty"`
	UseNightMode *bool   `json:"useNightMode,omitempty"`
}

// UpdateUser patches the durable user record. The server echoes the
// applied patch back to the requester and to every wall the user's
// client id is present on.
type UpdateUser struct {
	envelope
	UserId string    `json:"userId"`
	User   UserPatch `json:"user"`
}

func NewUpdateUser(userId string, patch UserPatch) *UpdateUser {
	return &UpdateUser{envelope{TypeUpdateUser}, userId, patch}
}

type NewNote struct {
	envelope
	WallName string      `json:"wallName"`
	Note     models.Note `json:"note"`
}

func NewNewNote(wallName string, note models.Note) *NewNote {
	return &NewNote{envelope{TypeNewNote}, wallName, note}
}

type MoveNote struct {
	envelope
	WallName string  `json:"wallName"`
	NoteId   string  `json:"noteId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

func NewMoveNote(wallName, noteId string, x, y float64) *MoveNote {
	return &MoveNote{envelope{TypeMoveNote}, wallName, noteId, x, y}
}

type UpdateNoteText struct {
	envelope
	WallName string `json:"wallName"`
	NoteId   string `json:"noteId"`
	Text     string `json:"text"`
}

func NewUpdateNoteText(wallName, noteId, text string) *UpdateNoteText {
	return &UpdateNoteText{envelope{TypeUpdateNoteText}, wallName, noteId, text}
}

// SelectNote records which note a user is holding. It is echoed to all
// sessions on the wall, including the sender, so every client converges
// on the server's view of who holds what.
type SelectNote struct {
	envelope
	WallName string `json:"wallName"`
	NoteId   string `json:"noteId"`
	ByUser   string `json:"byUser"`
}

func NewSelectNote(wallName, noteId, byUser string) *SelectNote {
	return &SelectNote{envelope{TypeSelectNote}, wallName, noteId, byUser}
}

type DeleteNote struct {
	envelope
	WallName string `json:"wallName"`
	NoteId   string `json:"noteId"`
}

func NewDeleteNote(wallName, noteId string) *DeleteNote {
	return &DeleteNote{envelope{TypeDeleteNote}, wallName, noteId}
}

type NewLine struct {
	envelope
	WallName string      `json:"wallName"`
	Line     models.Line `json:"line"`
}

func NewNewLine(wallName string, line models.Line) *NewLine {
	return &NewLine{envelope{TypeNewLine}, wallName, line}
}

// UpdateLine extends a line. With Replace false the points are appended
// (freehand pen). With Replace true the stored first point is kept and
// everything after it is replaced by the given points (straight line or
// shape drag redrawing from its anchor each frame).
type UpdateLine struct {
	envelope
	WallName string         `json:"wallName"`
	LineId   string         `json:"lineId"`
	Points   []models.Point `json:"points"`
	Replace  bool           `json:"replace"`
}

func NewUpdateLine(wallName, lineId string, points []models.Point, replace bool) *UpdateLine {
	return &UpdateLine{envelope{TypeUpdateLine}, wallName, lineId, points, replace}
}

type DeleteLine struct {
	envelope
	WallName string `json:"wallName"`
	LineId   string `json:"lineId"`
}

func NewDeleteLine(wallName, lineId string) *DeleteLine {
	return &DeleteLine{envelope{TypeDeleteLine}, wallName, lineId}
}

// NewImage carries the image metadata plus its data URL payload. The
// payload is stored separately and never broadcast; peers fetch it from
// the data endpoint by id.
type NewImage struct {
	envelope
	WallName string       `json:"wallName"`
	Image    models.Image `json:"image"`
	Data     string       `json:"data,omitempty"`
}

func NewNewImage(wallName string, image models.Image, data string) *NewImage {
	return &NewImage{envelope{TypeNewImage}, wallName, image, data}
}

type UpdateImage struct {
	envelope
	WallName string  `json:"wallName"`
	ImageId  string  `json:"imageId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	ZIndex   int     `json:"zIndex"`
}

func NewUpdateImage(wallName, imageId string, x, y, width, height float64, zIndex int) *UpdateImage {
	return &UpdateImage{envelope{TypeUpdateImage}, wallName, imageId, x, y, width, height, zIndex}
}

type DeleteImage struct {
	envelope
	WallName string `json:"wallName"`
	ImageId  string `json:"imageId"`
}

func NewDeleteImage(wallName, imageId string) *DeleteImage {
	return &DeleteImage{envelope{TypeDeleteImage}, wallName, imageId}
}

// Undo asks the server to replay the session's most recent tracked
// deletion as a fresh creation. With nothing to replay it is a no-op.
type Undo struct {
	envelope
}

func NewUndo() *Undo {
	return &Undo{envelope{TypeUndo}}
}

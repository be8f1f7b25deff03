package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownType marks an envelope whose type is not part of the
// protocol. Callers drop these rather than failing the connection, so
// that older servers tolerate newer clients and vice versa.
var ErrUnknownType = errors.New("unknown message type")

// Decode parses a wire message into its concrete variant.
func Decode(data []byte) (Message, error) {
	var head envelope
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}

	var msg Message
	switch head.Type {
	case TypeCreateWall:
		msg = &CreateWall{}
	case TypeJoinWall:
		msg = &JoinWall{}
	case TypeDeleteWall:
		msg = &DeleteWall{}
	case TypeWallState:
		msg = &WallState{}
	case TypeWallyError:
		msg = &WallyError{}
	case TypeUserConnected:
		msg = &UserConnected{}
	case TypeUserJoinedWall:
		msg = &UserJoinedWall{}
	case TypeUserLeftWall:
		msg = &UserLeftWall{}
	case TypeUpdateUser:
		msg = &UpdateUser{}
	case TypeNewNote:
		msg = &NewNote{}
	case TypeMoveNote:
		msg = &MoveNote{}
	case TypeUpdateNoteText:
		msg = &UpdateNoteText{}
	case TypeSelectNote:
		msg = &SelectNote{}
	case TypeDeleteNote:
		msg = &DeleteNote{}
	case TypeNewLine:
		msg = &NewLine{}
	case TypeUpdateLine:
		msg = &UpdateLine{}
	case TypeDeleteLine:
		msg = &DeleteLine{}
	case TypeNewImage:
		msg = &NewImage{}
	case TypeUpdateImage:
		msg = &UpdateImage{}
	case TypeDeleteImage:
		msg = &DeleteImage{}
	case TypeUndo:
		msg = &Undo{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, head.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("malformed %s: %w", head.Type, err)
	}
	return msg, nil
}

// Encode marshals a message for the wire.
func Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

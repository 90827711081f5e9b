package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"dreamrelay/backend/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	ErrMalformed    = errors.New("malformed frame")
	ErrUnknownEvent = errors.New("unknown event")
	ErrInvalid      = errors.New("invalid payload")
)

// Envelope is an inbound JSON frame. Outbound frames use the same shape.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var catalog = map[Channel]map[string]func() Request{
	Directory: {
		EventGetLobbies:      func() Request { return &GetLobbies{} },
		EventGetRooms:        func() Request { return &GetRooms{} },
		EventGetLobbyPlayers: func() Request { return &GetLobbyPlayers{} },
		EventGetRoomPlayers:  func() Request { return &GetRoomPlayers{} },
	},
	Lobby: {
		EventCreateLobby:          func() Request { return &CreateLobby{} },
		EventJoinLobby:            func() Request { return &JoinLobby{} },
		EventReconnectToLobby:     func() Request { return &ReconnectToLobby{} },
		EventChat:                 func() Request { return &LobbyChat{} },
		EventLeaveLobby:           func() Request { return &LeaveLobby{} },
		EventKickFromLobby:        func() Request { return &KickFromLobby{} },
		EventToggleReady:          func() Request { return &ToggleReady{} },
		EventSelectGame:           func() Request { return &SelectGame{} },
		EventTransferAdminRole:    func() Request { return &TransferAdminRole{} },
		EventRequestGameCountdown: func() Request { return &RequestGameCountdown{} },
		EventCancelGameCountdown:  func() Request { return &CancelGameCountdown{} },
		EventMoveToRoom:           func() Request { return &MoveToRoom{} },
	},
	Room: {
		EventJoinRoom: func() Request { return &JoinRoom{} },
		EventInput:    func() Request { return &Input{} },
		EventChat:     func() Request { return &RoomChat{} },
	},
}

// Decoder turns raw frames into validated requests for one channel.
type Decoder struct {
	validate *validator.Validate
}

func NewDecoder() *Decoder {
	return &Decoder{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Decode parses data as an Envelope addressed to ch, binds the verified
// identity of the sender (if any) and validates the result.
func (d *Decoder) Decode(ch Channel, data []byte, id models.Identity) (Request, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	ctor, ok := catalog[ch][env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q on %s", ErrUnknownEvent, env.Type, ch)
	}

	req := ctor()
	if len(env.Payload) > 0 && string(env.Payload) != "null" {
		if err := json.Unmarshal(env.Payload, req); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, env.Type, err)
		}
	}

	BindIdentity(req, id)

	if err := d.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, env.Type, err)
	}
	return req, nil
}

package wire

import (
	"encoding/json"
	"fmt"
)

// Events sent by a game server peer to the hub.
const (
	// MsgTypeOptions authenticates the connection and declares channels
	MsgTypeOptions = "options"
	// MsgTypeInfo is a system-origin broadcast (console output etc.)
	MsgTypeInfo = "info"
	// MsgTypeChat is an in-game chat line
	MsgTypeChat = "chat"
	// MsgTypeCnf reports an unrecognized command back to a channel
	MsgTypeCnf = "cnf"
	// MsgTypeVcb is the peer's answer to a verification push
	MsgTypeVcb = "vcb"
	// MsgTypeVerify submits an in-game verification code
	MsgTypeVerify = "verify"
	// MsgTypeUnlink removes a linked account by uuid
	MsgTypeUnlink = "unlink"
	// MsgTypeAddRole grants a platform role to a linked account
	MsgTypeAddRole = "addrole"
	// MsgTypeRemoveRole revokes a platform role from a linked account
	MsgTypeRemoveRole = "removerole"
	// MsgTypeGetUser looks up linked accounts by in-game name
	MsgTypeGetUser = "getuser"
	// MsgTypeRequest is a correlated administrative request
	MsgTypeRequest = "request"
)

// Events sent by the hub to a game server peer.
const (
	MsgTypeCommand       = "command"
	MsgTypeMessage       = "message"
	MsgTypeReactionEvent = "reactionEvent"
	MsgTypeUnlinkCb      = "unlinkcb"
	MsgTypeAddRoleCb     = "addrolecb"
	MsgTypeRemoveRoleCb  = "removerolecb"
	MsgTypeUserCb        = "usercb"
	MsgTypeCallback      = "callback"
)

// Message is one protocol frame: a named event plus its typed body.
type Message struct {
	Event string
	Body  interface{}
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// MakeMessage builds a Message for an outbound event.
func MakeMessage(event string, body interface{}) *Message {
	return &Message{Event: event, Body: body}
}

// Encode marshals a Message into one websocket text frame.
func Encode(m *Message) ([]byte, error) {
	data, err := json.Marshal(m.Body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&envelope{Event: m.Event, Data: data})
}

// Decode parses an inbound frame into a Message with a typed body.
func Decode(raw []byte) (*Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	body, err := MakeEmptyBody(env.Event)
	if err != nil {
		return nil, err
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, body); err != nil {
			return nil, err
		}
	}
	return &Message{Event: env.Event, Body: body}, nil
}

// MakeEmptyBody builds an empty body for an inbound event.
func MakeEmptyBody(event string) (interface{}, error) {
	var body interface{}
	switch event {
	case MsgTypeOptions:
		body = &MsgOptions{}
	case MsgTypeInfo:
		body = &MsgInfo{}
	case MsgTypeChat:
		body = &MsgChat{}
	case MsgTypeCnf:
		body = &MsgCnf{}
	case MsgTypeVcb:
		body = &MsgVcb{}
	case MsgTypeVerify:
		body = &MsgVerifyConfirm{}
	case MsgTypeUnlink:
		body = &MsgUnlink{}
	case MsgTypeAddRole, MsgTypeRemoveRole:
		body = &MsgRole{}
	case MsgTypeGetUser:
		body = &MsgGetUser{}
	case MsgTypeRequest:
		body = &MsgRequest{}
	default:
		return nil, fmt.Errorf("unhandled event[%s]", event)
	}
	return body, nil
}

package domain

import "fmt"

// RoomKind discriminates the broadcast groups a connection can belong to.
type RoomKind int

const (
	RoomPersonal RoomKind = iota
	RoomConversation
	RoomContent
	RoomStream
	RoomCall
)

// Room identifies one broadcast group. The typed form keeps routing
// code honest; the wire names stay the conventional strings.
type Room struct {
	Kind RoomKind
	ID   string
}

func PersonalRoom(id UserID) Room    { return Room{Kind: RoomPersonal, ID: string(id)} }
func ConversationRoom(id string) Room { return Room{Kind: RoomConversation, ID: id} }
func ContentRoom(postID string) Room  { return Room{Kind: RoomContent, ID: postID} }
func StreamRoom(id string) Room       { return Room{Kind: RoomStream, ID: id} }
func CallRoom(id string) Room         { return Room{Kind: RoomCall, ID: id} }

// String renders the external wire name for the room.
func (r Room) String() string {
	switch r.Kind {
	case RoomPersonal:
		return "user-" + r.ID
	case RoomConversation:
		return "conversation-" + r.ID
	case RoomContent:
		return "post-" + r.ID
	case RoomStream:
		return "stream-" + r.ID
	case RoomCall:
		return "call-" + r.ID
	}
	return fmt.Sprintf("room-%d-%s", r.Kind, r.ID)
}

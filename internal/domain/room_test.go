package domain

import "testing"

func TestRoomWireNames(t *testing.T) {
	cases := []struct {
		room Room
		want string
	}{
		{PersonalRoom("u1"), "user-u1"},
		{ConversationRoom("42"), "conversation-42"},
		{ContentRoom("p9"), "post-p9"},
		{StreamRoom("s3"), "stream-s3"},
		{CallRoom("c7"), "call-c7"},
	}
	for _, c := range cases {
		if got := c.room.String(); got != c.want {
			t.Errorf("Room%+v.String() = %q, want %q", c.room, got, c.want)
		}
	}
}

func TestRoomIdentity(t *testing.T) {
	if PersonalRoom("u1") != PersonalRoom("u1") {
		t.Error("equal rooms must compare equal")
	}
	if ConversationRoom("1") == ContentRoom("1") {
		t.Error("rooms of different kinds must not collide on ID")
	}
}

package app

import (
	"testing"

	"github.com/ledyaev/amity/internal/domain"
)

func TestRoomsJoinLeave(t *testing.T) {
	r := NewRooms()
	room := domain.ConversationRoom("7")

	r.Join(room, "c1")
	r.Join(room, "c2")

	if !r.Contains(room, "c1") || !r.Contains(room, "c2") {
		t.Fatal("both connections should be members")
	}
	if got := len(r.MembersOf(room)); got != 2 {
		t.Fatalf("MembersOf = %d members, want 2", got)
	}

	r.Leave(room, "c1")
	if r.Contains(room, "c1") {
		t.Error("c1 should have left")
	}
	if !r.Contains(room, "c2") {
		t.Error("c2 should still be a member")
	}
}

func TestRoomsEmptyRoomVanishes(t *testing.T) {
	r := NewRooms()
	room := domain.StreamRoom("s1")

	r.Join(room, "c1")
	r.Leave(room, "c1")

	if got := r.MembersOf(room); len(got) != 0 {
		t.Errorf("MembersOf after last leave = %v, want empty", got)
	}
	if r.Contains(room, "c1") {
		t.Error("membership should be gone")
	}
}

func TestRoomsLeaveAll(t *testing.T) {
	r := NewRooms()
	convo := domain.ConversationRoom("7")
	post := domain.ContentRoom("p1")
	personal := domain.PersonalRoom("alice")

	r.Join(convo, "c1")
	r.Join(post, "c1")
	r.Join(personal, "c1")
	r.Join(convo, "c2")

	left := r.LeaveAll("c1")
	if len(left) != 3 {
		t.Fatalf("LeaveAll returned %v, want 3 rooms", left)
	}
	if len(r.RoomsOf("c1")) != 0 {
		t.Error("c1 should belong to no rooms")
	}
	if !r.Contains(convo, "c2") {
		t.Error("c2 must be unaffected")
	}
}

func TestRoomsLeaveUnknownIsNoop(t *testing.T) {
	r := NewRooms()
	r.Leave(domain.ConversationRoom("7"), "ghost")
	if got := r.LeaveAll("ghost"); len(got) != 0 {
		t.Errorf("LeaveAll(ghost) = %v, want empty", got)
	}
}

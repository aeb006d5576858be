package repository

import (
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/testutil"
	"testing"
	"time"
)

func TestMarkReadOnlyPartnerMessages(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMessageRepository(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	send := func(from, to uint, content string) *model.Message {
		m := &model.Message{SenderID: from, ReceiverID: to, Content: content}
		if err := repo.Create(m); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		return m
	}
	fromBob := send(bob.ID, alice.ID, "hi alice")
	fromAlice := send(alice.ID, bob.ID, "hi bob")
	fromCarol := send(carol.ID, alice.ID, "hey")

	n, err := repo.MarkRead(alice.ID, bob.ID, time.Now())
	if err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if n != 1 {
		t.Errorf("MarkRead() = %d, want 1", n)
	}

	read := func(id uint) bool {
		var m model.Message
		db.First(&m, id)
		return m.IsRead
	}
	if !read(fromBob.ID) {
		t.Error("message from partner not marked read")
	}
	if read(fromAlice.ID) {
		t.Error("message sent by the reader was marked read")
	}
	if read(fromCarol.ID) {
		t.Error("message from a third user was marked read")
	}

	unread, err := repo.UnreadBySender(alice.ID)
	if err != nil {
		t.Fatalf("UnreadBySender() error = %v", err)
	}
	if len(unread) != 1 || unread[carol.ID] != 1 {
		t.Errorf("UnreadBySender() = %v, want {%d:1}", unread, carol.ID)
	}

	conv, _ := repo.Conversation(alice.ID, bob.ID)
	if len(conv) != 2 || conv[0].ID != fromBob.ID {
		t.Errorf("Conversation() = %d messages, want 2 oldest first", len(conv))
	}
}

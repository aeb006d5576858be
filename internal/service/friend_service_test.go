package service

import (
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/testutil"
	"game_portal_backend/internal/util"
	"testing"
	"time"

	"gorm.io/gorm"
)

func newFriendService(t *testing.T, presence PresenceChecker) (*FriendService, *gorm.DB, *recordingFeed) {
	t.Helper()
	db := testutil.NewDB(t)
	feed := &recordingFeed{}
	svc := NewFriendService(
		repository.NewFriendRepository(db, nil),
		repository.NewUserRepository(db),
		presence,
		feed,
		2*time.Minute,
	)
	return svc, db, feed
}

func TestSendRequestValidation(t *testing.T) {
	svc, db, _ := newFriendService(t, nil)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	if _, err := svc.SendRequest(alice.ID, bob.ID); err != nil {
		t.Fatalf("SendRequest() error = %v", err)
	}

	tests := []struct {
		name     string
		from, to uint
		want     util.ErrorKind
	}{
		{"self", alice.ID, alice.ID, util.KindValidation},
		{"missing user", alice.ID, 9999, util.KindNotFound},
		{"duplicate", alice.ID, bob.ID, util.KindConflict},
		{"reverse duplicate", bob.ID, alice.ID, util.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendRequest(tt.from, tt.to)
			wantKind(t, err, tt.want)
		})
	}
}

func TestAcceptFlow(t *testing.T) {
	svc, db, feed := newFriendService(t, staticPresence{})
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	req, err := svc.SendRequest(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest() error = %v", err)
	}
	if got := feed.on(FriendsTopic(bob.ID)); len(got) != 1 || got[0].Type != EventFriendRequest {
		t.Errorf("recipient events = %v, want one %s", got, EventFriendRequest)
	}

	_, err = svc.Accept(req.ID, alice.ID)
	wantKind(t, err, util.KindForbidden)

	if _, err := svc.Accept(req.ID, bob.ID); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if got := feed.on(FriendsTopic(alice.ID)); len(got) != 1 || got[0].Type != EventFriendAccepted {
		t.Errorf("requester events = %v, want one %s", got, EventFriendAccepted)
	}

	_, err = svc.Accept(req.ID, bob.ID)
	wantKind(t, err, util.KindConflict)

	friends, err := svc.ListFriends(alice.ID)
	if err != nil {
		t.Fatalf("ListFriends() error = %v", err)
	}
	if len(friends) != 1 || friends[0].ID != bob.ID || friends[0].FriendshipID != req.ID {
		t.Errorf("ListFriends(alice) = %+v, want bob", friends)
	}
	if friends[0].FriendshipDate == nil {
		t.Error("FriendshipDate not set")
	}
}

func TestFriendOnlineStatus(t *testing.T) {
	svc, db, _ := newFriendService(t, nil)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	svc.Presence = staticPresence{carol.ID: true}

	for _, other := range []uint{bob.ID, carol.ID} {
		req, _ := svc.SendRequest(alice.ID, other)
		if _, err := svc.Accept(req.ID, other); err != nil {
			t.Fatalf("Accept() error = %v", err)
		}
	}
	repository.NewUserRepository(db).TouchLastSeen(bob.ID, time.Now().Add(-10*time.Minute))

	online := func() map[uint]bool {
		friends, err := svc.ListFriends(alice.ID)
		if err != nil {
			t.Fatalf("ListFriends() error = %v", err)
		}
		out := map[uint]bool{}
		for _, f := range friends {
			out[f.ID] = f.IsOnline
		}
		return out
	}

	got := online()
	if got[bob.ID] || !got[carol.ID] {
		t.Errorf("online = %v, want bob offline carol online", got)
	}

	svc.SetPresenceWindow(time.Hour)
	if got := online(); !got[bob.ID] {
		t.Error("bob offline after widening presence window")
	}
}

func TestRejectAndRemove(t *testing.T) {
	svc, db, feed := newFriendService(t, nil)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	req, _ := svc.SendRequest(alice.ID, bob.ID)
	wantKind(t, svc.Reject(req.ID, alice.ID), util.KindForbidden)
	if err := svc.Reject(req.ID, bob.ID); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	wantKind(t, svc.Reject(req.ID, bob.ID), util.KindNotFound)

	// 拒绝后可以重新申请
	req, err := svc.SendRequest(bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("SendRequest() after reject error = %v", err)
	}
	wantKind(t, svc.Remove(req.ID, carol.ID), util.KindForbidden)
	if err := svc.Remove(req.ID, bob.ID); err != nil {
		t.Fatalf("Remove() by requester error = %v", err)
	}

	removed := 0
	for _, m := range feed.on(FriendsTopic(alice.ID)) {
		if m.Type == EventFriendRemoved {
			removed++
		}
	}
	if removed != 2 {
		t.Errorf("FRIEND_REMOVED events for alice = %d, want 2", removed)
	}
}

func TestOverview(t *testing.T) {
	svc, db, _ := newFriendService(t, nil)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	svc.SendRequest(alice.ID, bob.ID)
	svc.SendRequest(carol.ID, alice.ID)

	ov, err := svc.Overview(alice.ID)
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if len(ov.Friends) != 0 {
		t.Errorf("Friends = %d, want 0", len(ov.Friends))
	}
	if len(ov.SentRequests) != 1 || ov.SentRequests[0].ID != bob.ID {
		t.Errorf("SentRequests = %+v, want bob", ov.SentRequests)
	}
	if len(ov.PendingRequests) != 1 || ov.PendingRequests[0].ID != carol.ID {
		t.Errorf("PendingRequests = %+v, want carol", ov.PendingRequests)
	}
}

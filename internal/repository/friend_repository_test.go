package repository

import (
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/testutil"
	"testing"
	"time"
)

func TestFriendRequestUniquePerPair(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFriendRepository(db, nil)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	tests := []struct {
		name     string
		from, to uint
		want     bool
	}{
		{"first request", alice.ID, bob.ID, true},
		{"same direction again", alice.ID, bob.ID, false},
		{"reverse direction", bob.ID, alice.ID, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := repo.CreateRequest(&model.Friend{
				UserID:      tt.from,
				FriendID:    tt.to,
				Status:      model.FriendPending,
				RequestedAt: time.Now(),
			})
			if err != nil {
				t.Fatalf("CreateRequest() error = %v", err)
			}
			if created != tt.want {
				t.Errorf("CreateRequest() = %v, want %v", created, tt.want)
			}
		})
	}

	var count int64
	db.Model(&model.Friend{}).Count(&count)
	if count != 1 {
		t.Errorf("friend rows = %d, want 1", count)
	}
}

func TestFriendAcceptOnlyByRecipient(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFriendRepository(db, nil)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	f := &model.Friend{UserID: alice.ID, FriendID: bob.ID, Status: model.FriendPending, RequestedAt: time.Now()}
	if _, err := repo.CreateRequest(f); err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}

	ok, err := repo.Accept(f, alice.ID, time.Now())
	if err != nil || ok {
		t.Fatalf("Accept() by sender = %v, %v, want false", ok, err)
	}
	ok, err = repo.Accept(f, bob.ID, time.Now())
	if err != nil || !ok {
		t.Fatalf("Accept() by recipient = %v, %v, want true", ok, err)
	}
	ok, _ = repo.Accept(f, bob.ID, time.Now())
	if ok {
		t.Error("Accept() twice = true, want false")
	}

	ids, err := repo.FriendIDs(bob.ID)
	if err != nil {
		t.Fatalf("FriendIDs() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != alice.ID {
		t.Errorf("FriendIDs(bob) = %v, want [%d]", ids, alice.ID)
	}
}

func TestFriendIDsCacheInvalidation(t *testing.T) {
	db := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)
	repo := NewFriendRepository(db, rdb)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	f := &model.Friend{UserID: alice.ID, FriendID: bob.ID, Status: model.FriendPending, RequestedAt: time.Now()}
	repo.CreateRequest(f)
	if _, err := repo.Accept(f, bob.ID, time.Now()); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}

	ids, err := repo.FriendIDsCached(alice.ID)
	if err != nil || len(ids) != 1 {
		t.Fatalf("FriendIDsCached() = %v, %v", ids, err)
	}
	if !mr.Exists(friendCacheKey(alice.ID)) {
		t.Fatal("friend cache not populated")
	}

	if err := repo.Delete(f); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if mr.Exists(friendCacheKey(alice.ID)) || mr.Exists(friendCacheKey(bob.ID)) {
		t.Error("friend cache not invalidated after delete")
	}
	ids, _ = repo.FriendIDsCached(alice.ID)
	if len(ids) != 0 {
		t.Errorf("FriendIDsCached() after delete = %v, want empty", ids)
	}
}

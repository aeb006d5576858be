package repository

import (
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/testutil"
	"testing"
	"time"
)

func TestActivityListNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewActivityRepository(db)
	u := testutil.CreateUser(t, db, "alice")

	base := time.Now().Add(-time.Hour)
	for i, action := range []string{"first", "second", "third"} {
		a := &model.Activity{UserID: u.ID, Type: "custom", Action: action}
		a.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := repo.Create(a); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	list, total, err := repo.List(2, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 {
		t.Errorf("List() total = %d, want 3", total)
	}
	if len(list) != 2 || list[0].Action != "third" || list[1].Action != "second" {
		t.Errorf("List() = %v, want [third second]", actions(list))
	}
	if list[0].User == nil || list[0].User.Name != "alice" {
		t.Error("List() did not preload user")
	}

	page2, _, _ := repo.List(2, 2)
	if len(page2) != 1 || page2[0].Action != "first" {
		t.Errorf("List() page 2 = %v, want [first]", actions(page2))
	}
}

func actions(list []model.Activity) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Action)
	}
	return out
}

package service

import (
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/testutil"
	"game_portal_backend/internal/util"
	"testing"
	"time"

	"gorm.io/gorm"
)

func newActivityService(t *testing.T, feed FeedPublisher) (*ActivityService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc := NewActivityService(
		repository.NewActivityRepository(db),
		repository.NewGameRepository(db),
		repository.NewAchievementRepository(db),
		repository.NewUserRepository(db),
		nil,
		feed,
		50,
	)
	return svc, db
}

func TestRecordValidation(t *testing.T) {
	svc, db := newActivityService(t, nil)
	u := testutil.CreateUser(t, db, "alice")

	tests := []struct {
		name string
		in   RecordInput
	}{
		{"missing type", RecordInput{Action: "x"}},
		{"missing action", RecordInput{Type: "custom", Action: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(u.ID, tt.in)
			wantKind(t, err, util.KindValidation)
		})
	}
}

func TestRecordPublishesAndPresents(t *testing.T) {
	feed := &recordingFeed{}
	svc, db := newActivityService(t, feed)
	u := testutil.CreateUser(t, db, "alice")
	g := testutil.CreateGame(t, db, "Space Runner", "arcade")

	a, err := svc.Record(u.ID, RecordInput{
		Type:    "game",
		Action:  g.Title,
		Subject: model.GameSubject(g.ID),
		Data:    map[string]interface{}{"level": 3},
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if a.ID == 0 {
		t.Fatal("Record() did not assign an id")
	}

	events := feed.on(TopicActivity)
	if len(events) != 1 || events[0].Type != EventActivityCreated {
		t.Fatalf("activity events = %v, want one %s", events, EventActivityCreated)
	}
	full, ok := events[0].Data.(*model.Activity)
	if !ok {
		t.Fatalf("event data = %T, want *model.Activity", events[0].Data)
	}
	if full.Description != "Played Space Runner" {
		t.Errorf("Description = %q", full.Description)
	}
	summary, ok := full.SubjectDetail.(model.GameSummary)
	if !ok || summary.Slug != g.Slug {
		t.Errorf("SubjectDetail = %#v, want game summary", full.SubjectDetail)
	}
	if full.User == nil || full.User.Email != "" {
		t.Error("activity user should be present without email")
	}
}

func TestListAndSnapshot(t *testing.T) {
	svc, db := newActivityService(t, nil)
	u := testutil.CreateUser(t, db, "alice")

	for _, action := range []string{"one", "two", "three"} {
		if _, err := svc.Record(u.ID, RecordInput{Type: "custom", Action: action}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	list, total, err := svc.List(1, 20)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 || list[0].Action != "three" || list[2].Action != "one" {
		t.Errorf("List() = %d total, first %q, want newest first", total, list[0].Action)
	}

	svc.SetSnapshotSize(2)
	snap, err := svc.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap.Data) != 2 || snap.Data[0].Action != "three" {
		t.Errorf("Snapshot() = %d items, want 2 newest", len(snap.Data))
	}
	if _, err := time.Parse(ISOTimestamp, snap.Timestamp); err != nil {
		t.Errorf("Snapshot() timestamp %q: %v", snap.Timestamp, err)
	}
}

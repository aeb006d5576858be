package model

import (
	"math"
	"testing"
	"time"
)

func TestFormatPlays(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1K"},
		{1200, "1.2K"},
		{15430, "15.4K"},
		{999949, "999.9K"},
		{1000000, "1M"},
		{3400000, "3.4M"},
	}
	for _, tt := range tests {
		if got := FormatPlays(tt.in); got != tt.want {
			t.Errorf("FormatPlays(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClampRating(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{0, 0},
		{4.5, 4.5},
		{5, 5},
		{7.2, 5},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := ClampRating(tt.in); got != tt.want {
			t.Errorf("ClampRating(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClampProgress(t *testing.T) {
	for in, want := range map[int]int{-5: 0, 0: 0, 42: 42, 100: 100, 150: 100} {
		if got := ClampProgress(in); got != want {
			t.Errorf("ClampProgress(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestFriendPairKeyIsUnordered(t *testing.T) {
	if FriendPairKey(3, 9) != FriendPairKey(9, 3) {
		t.Fatalf("FriendPairKey(3, 9) = %q, FriendPairKey(9, 3) = %q", FriendPairKey(3, 9), FriendPairKey(9, 3))
	}
	if got := FriendPairKey(9, 3); got != "3:9" {
		t.Errorf("FriendPairKey(9, 3) = %q, want %q", got, "3:9")
	}
}

func TestFriendOther(t *testing.T) {
	f := &Friend{
		UserID:   1,
		User:     &User{Name: "alice"},
		FriendID: 2,
		Friend:   &User{Name: "bob"},
	}
	if got := f.Other(1).Name; got != "bob" {
		t.Errorf("Other(1) = %q, want bob", got)
	}
	if got := f.Other(2).Name; got != "alice" {
		t.Errorf("Other(2) = %q, want alice", got)
	}
	if f.Involves(3) {
		t.Error("Involves(3) = true, want false")
	}
}

func TestParseSubject(t *testing.T) {
	id := uint(5)
	tests := []struct {
		name   string
		kind   string
		id     *uint
		want   SubjectKind
		wantOK bool
	}{
		{"none", "", nil, SubjectNone, true},
		{"game", "game", &id, SubjectGame, true},
		{"achievement", "achievement", &id, SubjectAchievement, true},
		{"user", "user", &id, SubjectUser, true},
		{"unknown kind", "post", &id, SubjectNone, false},
		{"kind without id", "game", nil, SubjectNone, false},
		{"id without kind", "", &id, SubjectNone, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSubject(tt.kind, tt.id)
			if ok != tt.wantOK {
				t.Fatalf("ParseSubject() ok = %v, want %v", ok, tt.wantOK)
			}
			if got.Kind != tt.want {
				t.Errorf("ParseSubject() kind = %q, want %q", got.Kind, tt.want)
			}
			if tt.want != SubjectNone && (got.RefID == nil || *got.RefID != id) {
				t.Errorf("ParseSubject() ref = %v, want %d", got.RefID, id)
			}
		})
	}
}

func TestActivityDescribe(t *testing.T) {
	tests := []struct {
		typ, action, want string
	}{
		{"game", "Space Runner", "Played Space Runner"},
		{"achievement", "First Steps", "Unlocked achievement: First Steps"},
		{"friend", "Became friends with bob", "Became friends with bob"},
	}
	for _, tt := range tests {
		a := &Activity{Type: tt.typ, Action: tt.action}
		if got := a.Describe(); got != tt.want {
			t.Errorf("Describe(%s) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestGamePresent(t *testing.T) {
	g := &Game{Slug: "space-runner", Plays: 1200}
	g.Present(nil)
	if g.Image != PlaceholderImage("space-runner") {
		t.Errorf("Image = %q, want placeholder", g.Image)
	}
	if g.PlaysFormatted != "1.2K" || g.Players != "1.2K" {
		t.Errorf("PlaysFormatted = %q, Players = %q", g.PlaysFormatted, g.Players)
	}

	g.ImagePath = "games/a.png"
	g.Present(func(p string) string { return "/uploads/" + p })
	if g.ImageURL != "/uploads/games/a.png" {
		t.Errorf("ImageURL = %q", g.ImageURL)
	}
}

func TestUserIsOnline(t *testing.T) {
	now := time.Now()
	recent := now.Add(-time.Minute)
	stale := now.Add(-10 * time.Minute)

	if (&User{}).IsOnline(2*time.Minute, now) {
		t.Error("user without last_seen reported online")
	}
	if !(&User{LastSeen: &recent}).IsOnline(2*time.Minute, now) {
		t.Error("recent user reported offline")
	}
	if (&User{LastSeen: &stale}).IsOnline(2*time.Minute, now) {
		t.Error("stale user reported online")
	}
}

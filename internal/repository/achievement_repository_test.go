package repository

import (
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/testutil"
	"testing"
	"time"
)

func createAchievement(t *testing.T, repo *AchievementRepository, name string, points int, hidden bool) *model.Achievement {
	t.Helper()
	a := &model.Achievement{Name: name, Type: "gameplay", Points: points, IsHidden: hidden}
	if err := repo.DB.Create(a).Error; err != nil {
		t.Fatalf("create achievement: %v", err)
	}
	return a
}

func TestUnlockFirstTimeOnly(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAchievementRepository(db)
	u := testutil.CreateUser(t, db, "alice")
	a := createAchievement(t, repo, "First Steps", 10, false)

	first, err := repo.Unlock(u.ID, a.ID, time.Now())
	if err != nil || !first {
		t.Fatalf("Unlock() = %v, %v, want true", first, err)
	}
	first, err = repo.Unlock(u.ID, a.ID, time.Now())
	if err != nil || first {
		t.Errorf("Unlock() again = %v, %v, want false", first, err)
	}

	pivot, err := repo.FindPivot(u.ID, a.ID)
	if err != nil {
		t.Fatalf("FindPivot() error = %v", err)
	}
	if !pivot.Unlocked() || pivot.Progress != 100 {
		t.Errorf("pivot = unlocked %v progress %d, want unlocked 100", pivot.Unlocked(), pivot.Progress)
	}
}

func TestUnlockAfterProgress(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAchievementRepository(db)
	u := testutil.CreateUser(t, db, "alice")
	a := createAchievement(t, repo, "Explorer", 25, false)

	if err := repo.SetProgress(u.ID, a.ID, 40); err != nil {
		t.Fatalf("SetProgress() error = %v", err)
	}
	if err := repo.SetProgress(u.ID, a.ID, 140); err != nil {
		t.Fatalf("SetProgress() error = %v", err)
	}
	pivot, _ := repo.FindPivot(u.ID, a.ID)
	if pivot.Progress != 100 || pivot.Unlocked() {
		t.Errorf("pivot = progress %d unlocked %v, want 100 locked", pivot.Progress, pivot.Unlocked())
	}

	first, err := repo.Unlock(u.ID, a.ID, time.Now())
	if err != nil || !first {
		t.Errorf("Unlock() after progress = %v, %v, want true", first, err)
	}
}

func TestSetProgressKeepsUnlockedRows(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAchievementRepository(db)
	u := testutil.CreateUser(t, db, "alice")
	a := createAchievement(t, repo, "Explorer", 25, false)

	if _, err := repo.Unlock(u.ID, a.ID, time.Now()); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if err := repo.SetProgress(u.ID, a.ID, 20); err != nil {
		t.Fatalf("SetProgress() error = %v", err)
	}
	pivot, err := repo.FindPivot(u.ID, a.ID)
	if err != nil {
		t.Fatalf("FindPivot() error = %v", err)
	}
	if pivot.Progress != 100 || !pivot.Unlocked() {
		t.Errorf("pivot = progress %d unlocked %v, want 100 unlocked", pivot.Progress, pivot.Unlocked())
	}
}

func TestUnlockedStatsAndVisibility(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAchievementRepository(db)
	u := testutil.CreateUser(t, db, "alice")
	a := createAchievement(t, repo, "First Steps", 10, false)
	b := createAchievement(t, repo, "High Scorer", 50, false)
	secret := createAchievement(t, repo, "Secret", 100, true)

	repo.Unlock(u.ID, a.ID, time.Now())
	repo.Unlock(u.ID, secret.ID, time.Now())
	repo.SetProgress(u.ID, b.ID, 30)

	unlocked, points, err := repo.UnlockedStats(u.ID)
	if err != nil {
		t.Fatalf("UnlockedStats() error = %v", err)
	}
	if unlocked != 2 || points != 110 {
		t.Errorf("UnlockedStats() = %d, %d, want 2, 110", unlocked, points)
	}

	visible, _ := repo.ListVisible("all")
	if len(visible) != 2 {
		t.Errorf("ListVisible() = %d, want 2", len(visible))
	}
	total, _ := repo.CountVisible()
	if total != 2 {
		t.Errorf("CountVisible() = %d, want 2", total)
	}
	progress, _ := repo.Progress(u.ID)
	if len(progress) != 3 || progress[b.ID].Progress != 30 {
		t.Errorf("Progress() = %v", progress)
	}
}

package repository

import (
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/testutil"
	"testing"
)

func TestFavoriteToggleRoundTrip(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFavoriteRepository(db)
	u := testutil.CreateUser(t, db, "alice")
	g := testutil.CreateGame(t, db, "Space Runner", "arcade")

	for i, want := range []bool{true, false, true} {
		got, err := repo.Toggle(u.ID, g.ID)
		if err != nil {
			t.Fatalf("Toggle() #%d error = %v", i+1, err)
		}
		if got != want {
			t.Errorf("Toggle() #%d = %v, want %v", i+1, got, want)
		}
		fav, _ := repo.IsFavorited(u.ID, g.ID)
		if fav != want {
			t.Errorf("IsFavorited() after #%d = %v, want %v", i+1, fav, want)
		}
	}
}

func TestFavoriteCreateIgnoresDuplicate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFavoriteRepository(db)
	u := testutil.CreateUser(t, db, "alice")
	g := testutil.CreateGame(t, db, "Space Runner", "arcade")

	created, err := repo.Create(&model.Favorite{UserID: u.ID, GameID: g.ID})
	if err != nil || !created {
		t.Fatalf("Create() = %v, %v, want true", created, err)
	}
	created, err = repo.Create(&model.Favorite{UserID: u.ID, GameID: g.ID})
	if err != nil || created {
		t.Errorf("Create() duplicate = %v, %v, want false", created, err)
	}
}

func TestGameIDsIn(t *testing.T) {
	db := testutil.NewDB(t)
	favorites := NewFavoriteRepository(db)
	bookmarks := NewBookmarkRepository(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	g1 := testutil.CreateGame(t, db, "Game One", "arcade")
	g2 := testutil.CreateGame(t, db, "Game Two", "arcade")
	g3 := testutil.CreateGame(t, db, "Game Three", "arcade")

	favorites.Create(&model.Favorite{UserID: alice.ID, GameID: g1.ID})
	favorites.Create(&model.Favorite{UserID: bob.ID, GameID: g2.ID})
	bookmarks.Create(&model.Bookmark{UserID: alice.ID, GameID: g2.ID, Category: "later"})
	bookmarks.Create(&model.Bookmark{UserID: alice.ID, GameID: g3.ID, Category: "later"})

	favSet, err := favorites.GameIDsIn(alice.ID, []uint{g1.ID, g2.ID, g3.ID})
	if err != nil {
		t.Fatalf("favorites GameIDsIn() error = %v", err)
	}
	if len(favSet) != 1 || !favSet[g1.ID] {
		t.Errorf("favorites GameIDsIn() = %v, want only %d", favSet, g1.ID)
	}

	markSet, err := bookmarks.GameIDsIn(alice.ID, []uint{g1.ID, g2.ID})
	if err != nil {
		t.Fatalf("bookmarks GameIDsIn() error = %v", err)
	}
	if len(markSet) != 1 || !markSet[g2.ID] {
		t.Errorf("bookmarks GameIDsIn() = %v, want only %d", markSet, g2.ID)
	}

	empty, err := bookmarks.GameIDsIn(alice.ID, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("GameIDsIn(nil) = %v, %v", empty, err)
	}
}

func TestBookmarkCategories(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewBookmarkRepository(db)
	u := testutil.CreateUser(t, db, "alice")
	g1 := testutil.CreateGame(t, db, "Game One", "arcade")
	g2 := testutil.CreateGame(t, db, "Game Two", "arcade")
	g3 := testutil.CreateGame(t, db, "Game Three", "arcade")

	for _, b := range []model.Bookmark{
		{UserID: u.ID, GameID: g1.ID, Category: "later"},
		{UserID: u.ID, GameID: g2.ID, Category: "favorites"},
		{UserID: u.ID, GameID: g3.ID, Category: "later"},
	} {
		b := b
		if _, err := repo.Create(&b); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	categories, err := repo.Categories(u.ID)
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(categories) != 2 || categories[0] != "favorites" || categories[1] != "later" {
		t.Errorf("Categories() = %v, want [favorites later]", categories)
	}

	later, _ := repo.List(u.ID, "later")
	if len(later) != 2 {
		t.Errorf("List(later) = %d, want 2", len(later))
	}
	all, _ := repo.List(u.ID, "all")
	if len(all) != 3 || all[0].Game == nil {
		t.Errorf("List(all) = %d with game preloaded, want 3", len(all))
	}

	n, err := repo.DeleteByGame(u.ID, g1.ID)
	if err != nil || n != 1 {
		t.Errorf("DeleteByGame() = %d, %v, want 1", n, err)
	}
	n, _ = repo.DeleteByGame(u.ID, g1.ID)
	if n != 0 {
		t.Errorf("DeleteByGame() again = %d, want 0", n)
	}
}

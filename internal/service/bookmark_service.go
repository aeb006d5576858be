package service

import (
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/util"
	"game_portal_backend/pkg/security"
	"strings"
	"time"
	"unicode/utf8"
)

type BookmarkView struct {
	ID        uint              `json:"id"`
	Game      model.GameSummary `json:"game"`
	Category  string            `json:"category"`
	Notes     string            `json:"notes"`
	CreatedAt time.Time         `json:"createdAt"`
}

type BookmarkService struct {
	BookmarkRepo *repository.BookmarkRepository
	GameRepo     *repository.GameRepository
	Storage      *StorageService
}

func NewBookmarkService(bookmarkRepo *repository.BookmarkRepository, gameRepo *repository.GameRepository, storage *StorageService) *BookmarkService {
	return &BookmarkService{
		BookmarkRepo: bookmarkRepo,
		GameRepo:     gameRepo,
		Storage:      storage,
	}
}

// normalize 校验分类与备注长度，备注去除 HTML
func normalizeBookmark(category, notes string) (string, string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = model.DefaultBookmarkCategory
	}
	if utf8.RuneCountInString(category) > model.MaxBookmarkCategory {
		return "", "", util.FieldValidation("category", "The category may not be greater than 50 characters.")
	}
	notes = security.SanitizeText(notes)
	if utf8.RuneCountInString(notes) > model.MaxBookmarkNotes {
		return "", "", util.FieldValidation("notes", "The notes may not be greater than 500 characters.")
	}
	return category, notes, nil
}

func (s *BookmarkService) view(b *model.Bookmark) BookmarkView {
	v := BookmarkView{
		ID:        b.ID,
		Category:  b.Category,
		Notes:     b.Notes,
		CreatedAt: b.CreatedAt,
	}
	if b.Game != nil {
		b.Game.Present(s.Storage.URLFunc())
		v.Game = b.Game.Summary()
	} else {
		v.Game = model.GameSummary{ID: b.GameID}
	}
	return v
}

func (s *BookmarkService) List(userID uint, category string) ([]BookmarkView, error) {
	bookmarks, err := s.BookmarkRepo.List(userID, category)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load bookmarks")
	}
	views := make([]BookmarkView, 0, len(bookmarks))
	for i := range bookmarks {
		views = append(views, s.view(&bookmarks[i]))
	}
	return views, nil
}

// Categories 用户使用过的分类，去掉空值
func (s *BookmarkService) Categories(userID uint) ([]string, error) {
	categories, err := s.BookmarkRepo.Categories(userID)
	if err != nil {
		return nil, util.Wrap(err, "Failed to load categories")
	}
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		if c != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *BookmarkService) Create(userID, gameID uint, category, notes string) (*model.Bookmark, error) {
	category, notes, err := normalizeBookmark(category, notes)
	if err != nil {
		return nil, err
	}
	exists, err := s.GameRepo.Exists(gameID)
	if err != nil {
		return nil, util.Wrap(err, "Failed to bookmark game.")
	}
	if !exists {
		return nil, util.ErrGameNotFound
	}

	b := &model.Bookmark{
		UserID:   userID,
		GameID:   gameID,
		Category: category,
		Notes:    notes,
	}
	inserted, err := s.BookmarkRepo.Create(b)
	if err != nil {
		return nil, util.Wrap(err, "Failed to bookmark game.")
	}
	if !inserted {
		return nil, util.ErrBookmarkExists
	}
	return b, nil
}

func (s *BookmarkService) owned(id, actingUserID uint) (*model.Bookmark, error) {
	b, err := s.BookmarkRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, util.ErrBookmarkNotFound, "Failed to load bookmark")
	}
	if b.UserID != actingUserID {
		return nil, util.ErrPermissionDenied
	}
	return b, nil
}

func (s *BookmarkService) Update(id, actingUserID uint, category, notes string) (*model.Bookmark, error) {
	b, err := s.owned(id, actingUserID)
	if err != nil {
		return nil, err
	}
	category, notes, err = normalizeBookmark(category, notes)
	if err != nil {
		return nil, err
	}
	b.Category = category
	b.Notes = notes
	if err := s.BookmarkRepo.Update(b); err != nil {
		return nil, util.Wrap(err, "Failed to update bookmark")
	}
	return b, nil
}

func (s *BookmarkService) Delete(id, actingUserID uint) error {
	if _, err := s.owned(id, actingUserID); err != nil {
		return err
	}
	if err := s.BookmarkRepo.Delete(id); err != nil {
		return util.Wrap(err, "Failed to remove bookmark.")
	}
	return nil
}

// DeleteByGame 按游戏删除自己的书签
func (s *BookmarkService) DeleteByGame(userID, gameID uint) error {
	n, err := s.BookmarkRepo.DeleteByGame(userID, gameID)
	if err != nil {
		return util.Wrap(err, "Failed to remove bookmark.")
	}
	if n == 0 {
		return util.ErrBookmarkNotFound
	}
	return nil
}

package service

import (
	"errors"
	"game_portal_backend/internal/config"
	"game_portal_backend/internal/model"
	"game_portal_backend/internal/repository"
	"game_portal_backend/internal/util"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

func (s *AuthService) Register(name, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := s.UserRepo.FindByEmail(email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.Wrap(err, "Registration failed")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, util.Wrap(err, "Registration failed")
	}

	user := &model.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hashedPassword),
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, util.Wrap(err, "Registration failed")
	}
	return user, nil
}

func (s *AuthService) Login(email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, util.ErrInvalidLogin
		}
		return "", nil, util.Wrap(err, "Login failed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidLogin
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, util.Wrap(err, "Login failed")
	}
	return token, user, nil
}

func (s *AuthService) CurrentUser(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, notFoundOr(err, util.ErrUserNotFound, "Failed to load user")
	}
	return user, nil
}

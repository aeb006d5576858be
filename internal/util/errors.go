package util

import (
	"errors"
	"fmt"
)

// ErrorKind 业务错误分类，决定 HTTP 状态码
type ErrorKind string

const (
	KindValidation ErrorKind = "validation_failed"
	KindNotFound   ErrorKind = "not_found"
	KindForbidden  ErrorKind = "forbidden"
	KindConflict   ErrorKind = "conflict"
	KindInternal   ErrorKind = "internal"
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Validation(message string) *AppError {
	return NewError(KindValidation, message)
}

// FieldValidation 带字段级提示的校验错误
func FieldValidation(field, message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Fields: map[string]string{field: message}}
}

func NotFoundError(message string) *AppError {
	return NewError(KindNotFound, message)
}

func ForbiddenError(message string) *AppError {
	return NewError(KindForbidden, message)
}

func Conflict(message string) *AppError {
	return NewError(KindConflict, message)
}

func Wrap(err error, message string) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf 非 AppError 一律视为内部错误
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

var (
	ErrUserNotFound      = NotFoundError("User not found.")
	ErrGameNotFound      = NotFoundError("Game not found.")
	ErrEmailRegistered   = Conflict("Email is already registered.")
	ErrInvalidLogin      = Validation("Invalid email or password.")
	ErrPermissionDenied  = ForbiddenError("You are not allowed to perform this action.")
	ErrSelfAdminToggle   = ForbiddenError("You cannot modify your own admin status!")
	ErrFriendExists      = Conflict("Friend request already exists or you are already friends.")
	ErrFriendSelf        = FieldValidation("friend_id", "You cannot add yourself as a friend.")
	ErrFriendNotFound    = NotFoundError("Friend request not found.")
	ErrFriendNotPending  = Conflict("Friend request has already been handled.")
	ErrBookmarkExists    = Conflict("Game already bookmarked.")
	ErrBookmarkNotFound  = NotFoundError("Bookmark not found.")
	ErrFavoriteExists    = Conflict("Game already in favorites.")
	ErrFavoriteNotFound  = NotFoundError("Favorite not found.")
	ErrAchievementAbsent = NotFoundError("Achievement not found.")
	ErrActivityNotFound  = NotFoundError("Activity not found.")
)

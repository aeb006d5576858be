package service

import (
	"errors"
	"game_portal_backend/internal/util"

	"gorm.io/gorm"
)

// notFoundOr 记录不存在时返回 nf，其他错误包装为内部错误
func notFoundOr(err error, nf *util.AppError, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return util.Wrap(err, msg)
}

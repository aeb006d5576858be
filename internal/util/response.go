package util

import (
	"errors"
	"game_portal_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Error   ErrorKind         `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// Flash 一次性状态提示，对应页面上的 flash 消息
func Flash(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:    http.StatusBadRequest,
		Message: message,
		Error:   KindValidation,
	})
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

// StatusFor 错误分类到 HTTP 状态码
func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleError 把服务层错误转换成统一响应，内部错误只返回通用提示
func HandleError(c *gin.Context, err error, fallback string) {
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Kind == KindInternal {
		logger.Log.Error(fallback, zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, Response{
			Code:    http.StatusInternalServerError,
			Message: fallback,
			Error:   KindInternal,
		})
		return
	}

	status := StatusFor(appErr.Kind)
	c.JSON(status, Response{
		Code:    status,
		Message: appErr.Message,
		Error:   appErr.Kind,
		Fields:  appErr.Fields,
	})
}

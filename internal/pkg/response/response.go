package response

import (
	"CopilotHub/internal/api/dto"
	"CopilotHub/internal/service"
	"errors"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	Ok                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
	ServiceUnavailable  = 503
)

// Success 成功返回封装
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

// Fail 失败返回封装
func Fail(c *gin.Context, businessCode int, message string) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    businessCode,
		Message: message,
		Data:    nil,
	})
}

// Error 处理错误，业务错误只返回对应的提示文案，不暴露底层细节
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		Fail(c, BadRequest, "参数错误")
		return
	}

	var unmarshalTypeError *json.UnmarshalTypeError
	if errors.As(err, &unmarshalTypeError) {
		Fail(c, BadRequest, "Json错误")
		return
	}

	ctx := c.Request.Context()
	if errors.Is(err, service.ErrStoreUnavailable) {
		log.ErrorContext(ctx, "store unavailable", "err", err)
		Fail(c, ServiceUnavailable, service.ErrStoreUnavailable.Error())
		return
	}
	for sentinel, code := range service.ErrorMap {
		if errors.Is(err, sentinel) {
			if code >= InternalServerError {
				log.ErrorContext(ctx, "Error", "err", err)
			}
			Fail(c, code, sentinel.Error())
			return
		}
	}

	log.ErrorContext(ctx, "Error", "err", err)
	Fail(c, InternalServerError, service.UnExpectedError.Error())
}

package service

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
	ServiceUnavailable  = 503
)

var (
	ErrParamInvalid          = errors.New("参数错误")
	ErrRatingInvalid         = errors.New("评分类型错误")
	ErrCopilotContentInvalid = errors.New("作业内容格式错误")
	ErrCopilotNotFound       = errors.New("作业不存在")
	ErrNotCopilotOwner       = errors.New("您无法修改不属于您的作业")
	ErrLoginRequired         = errors.New("请先登录")
	UnauthorizedError        = errors.New("权限不足")
	ErrStoreUnavailable      = errors.New("存储服务暂不可用，请稍后重试")
	ErrMigrationBusy         = errors.New("评分数据迁移中，请稍后重试")
	UnExpectedError          = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:          BadRequest,
	ErrRatingInvalid:         BadRequest,
	ErrCopilotContentInvalid: BadRequest,
	ErrCopilotNotFound:       NotFound,
	ErrNotCopilotOwner:       Forbidden,
	ErrLoginRequired:         Unauthorized,
	UnauthorizedError:        Forbidden,
	ErrStoreUnavailable:      ServiceUnavailable,
	ErrMigrationBusy:         ServiceUnavailable,
	UnExpectedError:          InternalServerError,
}

// storeErr 将存储层错误归类为 ErrStoreUnavailable，保留原始错误链
func storeErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	for sentinel := range ErrorMap {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrStoreUnavailable, err)
}

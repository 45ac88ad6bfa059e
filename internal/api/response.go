package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/switcher-game/internal/errors"
)

// respondError 按错误码输出统一错误响应
func respondError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	if appErr == nil {
		appErr = apperrors.Wrap(err, apperrors.ErrUnknown)
	}
	c.JSON(appErr.HTTPStatus(), apperrors.NewErrorResponse(appErr, c.GetHeader("X-Request-ID")))
}

// respondBindError 请求体校验失败统一返回 422
func respondBindError(c *gin.Context, err error) {
	appErr := apperrors.New(apperrors.ErrInvalidParam, err.Error())
	c.JSON(http.StatusUnprocessableEntity, apperrors.NewErrorResponse(appErr, c.GetHeader("X-Request-ID")))
}

func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Newf(apperrors.ErrInvalidParam, "invalid %s: %q", name, c.Param(name))
	}
	return uint(id), nil
}

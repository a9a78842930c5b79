package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/i18n"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ListResponse struct {
	Data     interface{} `json:"data"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func List(c *gin.Context, data interface{}, total, page, pageSize int) {
	c.JSON(http.StatusOK, ListResponse{Data: data, Total: total, Page: page, PageSize: pageSize})
}

// Pagination reads page and page_size, clamping to sane bounds.
func Pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(DefaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// Error writes err as JSON. Domain errors keep their status; anything else is
// logged and hidden behind a 500.
func Error(c *gin.Context, log logger.ZapLogger, err error) {
	lang := c.GetHeader("Accept-Language")

	appErr, ok := apperror.As(err)
	if !ok {
		log.Error("unhandled error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: ErrorBody{
			Code:    apperror.KindInternal.String(),
			Message: i18n.Localize(lang, "InternalError", "internal server error", nil),
		}})
		return
	}

	if appErr.Kind == apperror.KindInternal {
		log.Error("internal error", zap.String("path", c.FullPath()), zap.Error(appErr))
	}

	c.AbortWithStatusJSON(appErr.Kind.HTTPStatus(), ErrorResponse{Error: ErrorBody{
		Code:    appErr.Kind.String(),
		Message: i18n.Localize(lang, appErr.MessageID, appErr.Message, appErr.Data),
	}})
}

// BindError reports request decoding or validation failures as 400.
func BindError(c *gin.Context, err error) {
	lang := c.GetHeader("Accept-Language")
	body := ErrorBody{
		Code:    apperror.KindInvalid.String(),
		Message: i18n.Localize(lang, "InvalidRequest", "invalid request", nil),
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		body.Fields = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			body.Fields[toSnake(fe.Field())] = fe.Tag()
		}
	} else {
		body.Message = err.Error()
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: body})
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] >= 'a' && s[i-1] <= 'z' {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

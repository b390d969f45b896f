package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every handler replies with.
type Response[T any] struct {
	Code ErrorCode `json:"code"`
	Data T         `json:"data"`
	Msg  string    `json:"msg"`
}

// Page is the data of a paginated reply.
type Page[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPage builds the page envelope. pages is computed by the caller's
// paginator so both agree on rounding.
func NewPage[T any](items []T, page, size int, total int64, pages int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Page: page, Size: size, Total: total, Pages: pages}
}

func reply[T any](c *gin.Context, httpCode int, resp Response[T]) {
	c.JSON(httpCode, resp)
}

// Success replies 200 with data.
func Success(c *gin.Context, data any) {
	reply(c, http.StatusOK, Response[any]{Code: OK, Data: data})
}

// Paged replies 200 with one page of items.
func Paged[T any](c *gin.Context, p Page[T]) {
	reply(c, http.StatusOK, Response[Page[T]]{Code: OK, Data: p})
}

// Error replies 500 unless code is OK.
func Error(c *gin.Context, msg string, code ErrorCode) {
	httpCode := http.StatusInternalServerError
	if code == OK {
		httpCode = http.StatusOK
	}
	HTTPError(c, httpCode, msg, code)
}

func HTTPError(c *gin.Context, httpCode int, msg string, code ErrorCode) {
	reply(c, httpCode, Response[any]{Code: code, Msg: msg})
}

// BadRequestError is for ShouldBindJSON, ShouldBindQuery and friends failing.
func BadRequestError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusBadRequest, msg, InvalidRequest)
}

func NotFoundError(c *gin.Context, msg string, code ErrorCode) {
	HTTPError(c, http.StatusNotFound, msg, code)
}

package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(f func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	f(c)
	return w
}

func TestPaged(t *testing.T) {
	w := record(func(c *gin.Context) {
		Paged(c, NewPage[int](nil, 2, 10, 11, 2))
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response[Page[int]]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, OK, resp.Code)
	assert.Equal(t, []int{}, resp.Data.Items)
	assert.Equal(t, 2, resp.Data.Page)
	assert.Equal(t, int64(11), resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Pages)
}

func TestErrorStatus(t *testing.T) {
	w := record(func(c *gin.Context) { Error(c, "boom", NotSpecified) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp Response[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, NotSpecified, resp.Code)
	assert.Equal(t, "boom", resp.Msg)
	assert.Nil(t, resp.Data)

	w = record(func(c *gin.Context) { NotFoundError(c, "gone", RegionalNotFound) })
	assert.Equal(t, http.StatusNotFound, w.Code)
}

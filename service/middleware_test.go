package service

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"pyape/orm"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionMiddlewareSameRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := orm.Open(orm.SingleURI("sqlite:///"+filepath.Join(t.TempDir(), "mw.db")), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	const n = 2
	var (
		arrived  sync.WaitGroup
		release  = make(chan struct{})
		mu       sync.Mutex
		sessions []*orm.Session
	)
	arrived.Add(n)

	r := gin.New()
	r.GET("/s", SessionMiddleware(db), func(c *gin.Context) {
		s := db.Session(c.Request.Context())
		mu.Lock()
		sessions = append(sessions, s)
		mu.Unlock()
		arrived.Done()
		<-release
		assert.Same(t, s, db.Session(c.Request.Context()))
		assert.NoError(t, c.Request.Context().Err())
		c.Status(http.StatusNoContent)
	})

	var done sync.WaitGroup
	recorders := make([]*httptest.ResponseRecorder, n)
	for i := 0; i < n; i++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			req := httptest.NewRequest(http.MethodGet, "/s", nil)
			req.Header.Set(RequestIDHeader, "same-id")
			recorders[i] = httptest.NewRecorder()
			r.ServeHTTP(recorders[i], req)
		}(i)
	}
	arrived.Wait()
	close(release)
	done.Wait()

	require.Len(t, sessions, n)
	assert.NotSame(t, sessions[0], sessions[1])
	for _, w := range recorders {
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "same-id", w.Header().Get(RequestIDHeader))
	}
}

func TestSessionMiddlewareGeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := orm.Open(orm.SingleURI("sqlite:///"+filepath.Join(t.TempDir(), "mw.db")), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	r := gin.New()
	r.GET("/s", SessionMiddleware(db), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
}

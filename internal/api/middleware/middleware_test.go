package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-token-sweeper/internal/api/middleware"
	"github.com/feral-file/ff-token-sweeper/internal/api/shared/constants"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		reused   bool
	}{
		{name: "client id reused", incoming: "req-123", reused: true},
		{name: "missing id generated"},
		{name: "oversized id replaced", incoming: strings.Repeat("x", constants.MAX_REQUEST_ID_LENGTH+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(middleware.RequestID(), middleware.Recovery())
			router.GET("/ping", func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.incoming != "" {
				req.Header.Set(constants.REQUEST_ID_HEADER, tt.incoming)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNoContent, w.Code)
			id := w.Header().Get(constants.REQUEST_ID_HEADER)
			if tt.reused {
				assert.Equal(t, tt.incoming, id)
				return
			}
			_, err := uuid.Parse(id)
			require.NoError(t, err)
		})
	}
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Recovery())
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

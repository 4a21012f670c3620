// file: internal/server/middleware/request_size_test.go
// version: 1.1.0
// guid: 8f5ed221-2f04-49aa-86f7-f63fa1732b2d

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMethodHasBody(t *testing.T) {
	t.Parallel()

	assert.True(t, methodHasBody(http.MethodPost))
	assert.True(t, methodHasBody(http.MethodPut))
	assert.True(t, methodHasBody(http.MethodPatch))
	assert.False(t, methodHasBody(http.MethodGet))
	assert.False(t, methodHasBody(http.MethodDelete))
}

func TestMaxRequestBodySize_Middleware(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MaxRequestBodySize(8))
	router.POST("/api/v1/recognize", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/v1/medicines", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Body over limit should be rejected.
	payload := bytes.Repeat([]byte("a"), 9)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recognize", bytes.NewReader(payload))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)

	// Body within limit passes.
	okReq := httptest.NewRequest(http.MethodPost, "/api/v1/recognize", bytes.NewReader([]byte("small")))
	okResp := httptest.NewRecorder()
	router.ServeHTTP(okResp, okReq)
	assert.Equal(t, http.StatusOK, okResp.Code)

	// Methods without request bodies should pass untouched.
	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/medicines", nil)
	getResp := httptest.NewRecorder()
	router.ServeHTTP(getResp, getReq)
	assert.Equal(t, http.StatusOK, getResp.Code)
}

package response

import (
	"CopilotHub/internal/api/dto"
	"CopilotHub/internal/service"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorResponse(t *testing.T, err error) dto.Response {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Error(c, err)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestError_MapsWrappedSentinels(t *testing.T) {
	resp := errorResponse(t, fmt.Errorf("%w: bad json", service.ErrCopilotContentInvalid))
	assert.Equal(t, BadRequest, resp.Code)
	assert.Equal(t, service.ErrCopilotContentInvalid.Error(), resp.Message)

	resp = errorResponse(t, service.ErrNotCopilotOwner)
	assert.Equal(t, Forbidden, resp.Code)
}

func TestError_StoreFailureHidesCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:3306: connection refused")
	resp := errorResponse(t, fmt.Errorf("get copilot: %w: %w", service.ErrStoreUnavailable, cause))
	assert.Equal(t, ServiceUnavailable, resp.Code)
	assert.NotContains(t, resp.Message, "10.0.0.1")
}

func TestError_UnknownIsInternal(t *testing.T) {
	resp := errorResponse(t, errors.New("boom"))
	assert.Equal(t, InternalServerError, resp.Code)
	assert.Equal(t, service.UnExpectedError.Error(), resp.Message)
}

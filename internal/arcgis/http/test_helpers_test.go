package http

import (
	"bytes"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"github.com/geocrest/gateway/internal/arcgis/usecase/mocks"
)

const (
	parcelsURL = "https://gis.example.com/arcgis/rest/services/Parcels/MapServer"
	toolsURL   = "https://gis.example.com/arcgis/rest/services/Tools/GPServer"
	rootURL    = "https://gis.example.com/arcgis/rest/services"
)

// createTestContext creates a test Gin context with the given request.
// A string body is sent verbatim; anything else is JSON encoded.
func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		bodyReader = bytes.NewReader([]byte(b))
	default:
		bodyBytes, _ := json.Marshal(b)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMockGateway(t *testing.T) *mocks.MockGatewayUseCase {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return mocks.NewMockGatewayUseCase(t)
}

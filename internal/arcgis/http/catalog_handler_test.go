package http

import (
	"net/http"
	"net/url"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	"github.com/geocrest/gateway/internal/arcgis/http/dto"
	apperrors "github.com/geocrest/gateway/internal/errors"
)

func catalogPath(extra string) string {
	return "/v1/catalog?url=" + url.QueryEscape(rootURL) + extra
}

func TestCatalogHandler_GetHandler(t *testing.T) {
	t.Run("Success_Paginated", func(t *testing.T) {
		mockUseCase := newMockGateway(t)
		handler := NewCatalogHandler(mockUseCase, testLogger())

		catalog := &arcgisDomain.Catalog{
			RootURL:        rootURL,
			CurrentVersion: 10.91,
			ServiceInfos: []arcgisDomain.ServiceInfo{
				{Name: "Parcels", Type: arcgisDomain.MapServer},
				{Name: "Roads", Type: arcgisDomain.FeatureServer},
				{Name: "Tools", Type: arcgisDomain.GPServer},
			},
		}
		mockUseCase.On("Catalog", mock.Anything, rootURL, "").Return(catalog, nil).Once()

		c, w := createTestContext(http.MethodGet, catalogPath("&offset=1&limit=1"), nil)

		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.CatalogResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, 3, response.Total)
		assert.Equal(t, 1, response.Offset)
		assert.Equal(t, 1, response.Limit)
		require.Len(t, response.Services, 1)
		assert.Equal(t, "Roads", response.Services[0].Name)
	})

	t.Run("Error_MissingURL", func(t *testing.T) {
		handler := NewCatalogHandler(newMockGateway(t), testLogger())

		c, w := createTestContext(http.MethodGet, "/v1/catalog", nil)

		handler.GetHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_InvalidLimit", func(t *testing.T) {
		handler := NewCatalogHandler(newMockGateway(t), testLogger())

		c, w := createTestContext(http.MethodGet, catalogPath("&limit=0"), nil)

		handler.GetHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_CatalogUnavailable", func(t *testing.T) {
		mockUseCase := newMockGateway(t)
		handler := NewCatalogHandler(mockUseCase, testLogger())

		mockUseCase.On("Catalog", mock.Anything, rootURL, "").
			Return(nil, arcgisDomain.ErrCatalogUnavailable).
			Once()

		c, w := createTestContext(http.MethodGet, catalogPath(""), nil)

		handler.GetHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("Error_Unreachable", func(t *testing.T) {
		mockUseCase := newMockGateway(t)
		handler := NewCatalogHandler(mockUseCase, testLogger())

		mockUseCase.On("Catalog", mock.Anything, rootURL, "").
			Return(nil, apperrors.Wrap(apperrors.ErrUnreachable, "dial tcp")).
			Once()

		c, w := createTestContext(http.MethodGet, catalogPath(""), nil)

		handler.GetHandler(c)

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	})
}

func TestCatalogHandler_DeleteHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockUseCase := newMockGateway(t)
		handler := NewCatalogHandler(mockUseCase, testLogger())

		proxy := "https://proxy.example.com/proxy.ashx"
		mockUseCase.On("InvalidateCatalog", mock.Anything, rootURL, proxy).Return(nil).Once()

		c, w := createTestContext(http.MethodDelete, catalogPath("&proxy="+url.QueryEscape(proxy)), nil)

		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusNoContent, c.Writer.Status())
		assert.Empty(t, w.Body.String())
	})

	t.Run("Error_InvalidURL", func(t *testing.T) {
		handler := NewCatalogHandler(newMockGateway(t), testLogger())

		c, w := createTestContext(http.MethodDelete, "/v1/catalog?url=not-a-url", nil)

		handler.DeleteHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

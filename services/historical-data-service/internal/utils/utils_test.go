package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func contextWithQuery(query string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return c
}

func TestParsePaginationParams(t *testing.T) {
	params := ParsePaginationParams(contextWithQuery(""), 1000, 5000)
	assert.Equal(t, PaginationParams{Page: 1, Limit: 1000}, params)

	params = ParsePaginationParams(contextWithQuery("page=3&limit=50"), 1000, 5000)
	assert.Equal(t, PaginationParams{Page: 3, Limit: 50}, params)

	params = ParsePaginationParams(contextWithQuery("page=-1&limit=99999"), 1000, 5000)
	assert.Equal(t, PaginationParams{Page: 1, Limit: 5000}, params)

	params = ParsePaginationParams(contextWithQuery("limit=abc"), 1000, 5000)
	assert.Equal(t, 1000, params.Limit)
}

func TestCalculateTotalPages(t *testing.T) {
	assert.Equal(t, 1, CalculateTotalPages(0, 10))
	assert.Equal(t, 1, CalculateTotalPages(10, 10))
	assert.Equal(t, 2, CalculateTotalPages(11, 10))
	assert.Equal(t, 20, CalculateOffset(3, 10))
}

func TestNormalizeSortDirection(t *testing.T) {
	assert.Equal(t, "DESC", NormalizeSortDirection("desc", "ASC"))
	assert.Equal(t, "ASC", NormalizeSortDirection(" asc ", "DESC"))
	assert.Equal(t, "ASC", NormalizeSortDirection("sideways", "ASC"))
	assert.Equal(t, "DESC", NormalizeSortDirection("", "DESC"))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-01-01T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	_, err = ParseDate("01/02/2024")
	assert.Error(t, err)

	assert.Equal(t, "2024-01-01", FormatDate(time.Date(2024, time.January, 1, 23, 0, 0, 0, time.UTC)))
}

package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextWithQuery(raw string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+raw, nil)
	return c
}

func TestQueryTime(t *testing.T) {
	c := contextWithQuery("from=2024-03-01&to=2024-03-31T23:59:59Z&bad=yesterday")

	from, err := QueryTime(c, "from")
	require.NoError(t, err)
	assert.Equal(t, 2024, from.Year())

	to, err := QueryTime(c, "to")
	require.NoError(t, err)
	assert.Equal(t, 23, to.Hour())

	missing, err := QueryTime(c, "since")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	_, err = QueryTime(c, "bad")
	assert.Error(t, err)
}

func TestQueryBool(t *testing.T) {
	c := contextWithQuery("featured=true&active=nope")

	assert.True(t, *QueryBool(c, "featured"))
	assert.Nil(t, QueryBool(c, "active"))
	assert.Nil(t, QueryBool(c, "missing"))
}

type slugRequest struct {
	Slug string `json:"slug" binding:"slug"`
}

func TestSlugValidator(t *testing.T) {
	RegisterValidators()

	assert.NoError(t, binding.Validator.ValidateStruct(&slugRequest{Slug: "summer-sale"}))
	assert.NoError(t, binding.Validator.ValidateStruct(&slugRequest{}))
	assert.Error(t, binding.Validator.ValidateStruct(&slugRequest{Slug: "Summer Sale"}))
}

package cms

import (
	"testing"

	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfig(t *testing.T) {
	required := []string{"title", "cta.url", "slides.0.image"}

	ok := []byte(`{"title":"Summer","cta":{"url":"/sale"},"slides":[{"image":"a.jpg"}]}`)
	assert.NoError(t, CheckConfig(ok, required))

	err := CheckConfig([]byte(`{"title":"Summer","slides":[]}`), required)
	appErr, isApp := apperror.As(err)
	require.True(t, isApp)
	assert.Equal(t, "BlockConfigMissing", appErr.MessageID)
	assert.Equal(t, "cta.url, slides.0.image", appErr.Data["Fields"])

	for _, bad := range []string{`[1,2]`, `{"title":`, `"text"`} {
		err := CheckConfig([]byte(bad), nil)
		appErr, isApp := apperror.As(err)
		require.True(t, isApp, bad)
		assert.Equal(t, "BlockConfigInvalid", appErr.MessageID, bad)
	}
}

func TestCheckContent(t *testing.T) {
	assert.NoError(t, CheckContent([]byte(`{"sections":[]}`)))
	assert.Error(t, CheckContent([]byte(`null`)))
}

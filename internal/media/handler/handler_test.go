package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/media"
	"github.com/fekuna/omnipos-commerce/internal/media/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUseCase struct {
	media.UseCase
	mock.Mock
}

func (m *mockUseCase) Upload(ctx context.Context, in *dto.UploadInput) (*model.MediaAsset, error) {
	args := m.Called(ctx, in)
	a, _ := args.Get(0).(*model.MediaAsset)
	return a, args.Error(1)
}

func setup() (*gin.Engine, *mockUseCase) {
	gin.SetMode(gin.TestMode)
	uc := new(mockUseCase)
	h := NewMediaHandler(uc, 8, logger.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetUser(c, auth.UserContext{UserID: "a1", Role: auth.RoleStaff})
		c.Next()
	})
	r.POST("/admin/media", h.Upload)
	return r, uc
}

func multipartBody(t *testing.T, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("folder", "banners"))
	if content != "" {
		part, err := w.CreateFormFile("file", "hero.png")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestUploadReadsFormFile(t *testing.T) {
	r, uc := setup()
	uc.On("Upload", mock.Anything, mock.MatchedBy(func(in *dto.UploadInput) bool {
		return in.ActorID == "a1" && in.OriginalName == "hero.png" && in.Folder == "banners" && string(in.Data) == "abc"
	})).Return(&model.MediaAsset{FileName: "x.png"}, nil)

	body, ct := multipartBody(t, "abc")
	req := httptest.NewRequest(http.MethodPost, "/admin/media", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUploadTruncatesPastLimit(t *testing.T) {
	r, uc := setup()
	uc.On("Upload", mock.Anything, mock.MatchedBy(func(in *dto.UploadInput) bool {
		return len(in.Data) == 9
	})).Return(&model.MediaAsset{}, nil)

	body, ct := multipartBody(t, "0123456789abcdef")
	req := httptest.NewRequest(http.MethodPost, "/admin/media", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	uc.AssertExpectations(t)
}

func TestUploadRequiresFile(t *testing.T) {
	r, uc := setup()
	body, ct := multipartBody(t, "")
	req := httptest.NewRequest(http.MethodPost, "/admin/media", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

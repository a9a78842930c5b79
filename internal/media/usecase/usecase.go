package usecase

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	logdto "github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	"github.com/fekuna/omnipos-commerce/internal/media"
	"github.com/fekuna/omnipos-commerce/internal/media/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options bounds what may be uploaded and where it is served from.
type Options struct {
	BaseURL      string
	MaxBytes     int64
	AllowedTypes []string
}

type mediaUseCase struct {
	repo     media.Repository
	files    media.FileStore
	opts     Options
	activity activitylog.Recorder
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewMediaUseCase(repo media.Repository, files media.FileStore, opts Options, activity activitylog.Recorder, log logger.ZapLogger) media.UseCase {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &mediaUseCase{
		repo:     repo,
		files:    files,
		opts:     opts,
		activity: activity,
		logger:   log,
		now:      time.Now,
	}
}

func cleanFolder(folder string) string {
	return strings.Trim(strings.TrimSpace(folder), "/")
}

func (uc *mediaUseCase) Upload(ctx context.Context, input *dto.UploadInput) (*model.MediaAsset, error) {
	size := int64(len(input.Data))
	if size == 0 {
		return nil, apperror.Invalid("MediaFileEmpty", "uploaded file is empty")
	}
	if uc.opts.MaxBytes > 0 && size > uc.opts.MaxBytes {
		return nil, apperror.Invalid("MediaFileTooLarge", "file exceeds the {{.Limit}} MB upload limit").
			WithData("Limit", uc.opts.MaxBytes>>20)
	}

	// The client's Content-Type is ignored; only the bytes decide.
	mtype := mimetype.Detect(input.Data)
	if !mimetype.EqualsAny(mtype.String(), uc.opts.AllowedTypes...) {
		return nil, apperror.Invalid("MediaTypeNotAllowed", "files of type {{.Type}} are not allowed").
			WithData("Type", mtype.String())
	}

	now := uc.now()
	id := uuid.New().String()
	fileName := id + mtype.Extension()
	rel := path.Join(now.Format("2006/01"), fileName)

	if err := uc.files.Save(rel, input.Data); err != nil {
		return nil, err
	}

	asset := &model.MediaAsset{
		BaseModel:    model.NewBase(id, now),
		FileName:     fileName,
		OriginalName: path.Base(strings.ReplaceAll(input.OriginalName, "\\", "/")),
		MimeType:     mtype.String(),
		SizeBytes:    size,
		StoragePath:  rel,
		URL:          uc.opts.BaseURL + "/" + rel,
		AltText:      strings.TrimSpace(input.AltText),
		Folder:       cleanFolder(input.Folder),
	}
	if input.ActorID != "" {
		asset.UploadedBy = &input.ActorID
	}

	if err := uc.repo.Create(ctx, asset); err != nil {
		if rmErr := uc.files.Remove(rel); rmErr != nil {
			uc.logger.Warn("failed to remove orphaned upload", zap.String("path", rel), zap.Error(rmErr))
		}
		return nil, err
	}

	uc.logger.Info("media uploaded",
		zap.String("media_id", asset.ID),
		zap.String("mime_type", asset.MimeType),
		zap.Int64("size_bytes", size),
	)
	uc.activity.Record(ctx, &logdto.RecordInput{
		ActorID:    input.ActorID,
		Action:     "media.uploaded",
		EntityType: "media",
		EntityID:   asset.ID,
		Metadata:   map[string]interface{}{"file_name": asset.OriginalName},
	})
	return asset, nil
}

func (uc *mediaUseCase) List(ctx context.Context, filters *dto.MediaFilters) ([]model.MediaAsset, int, error) {
	filters.Folder = cleanFolder(filters.Folder)
	return uc.repo.FindAll(ctx, filters)
}

func (uc *mediaUseCase) Get(ctx context.Context, id string) (*model.MediaAsset, error) {
	asset, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apperror.NotFound("MediaNotFound", "media asset not found")
	}
	return asset, nil
}

func (uc *mediaUseCase) Update(ctx context.Context, input *dto.UpdateInput) (*model.MediaAsset, error) {
	asset, err := uc.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	asset.AltText = strings.TrimSpace(input.AltText)
	asset.Folder = cleanFolder(input.Folder)
	asset.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// Delete removes the row first; a leftover file is only logged.
func (uc *mediaUseCase) Delete(ctx context.Context, actorID, id string) error {
	asset, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := uc.files.Remove(asset.StoragePath); err != nil {
		uc.logger.Error("failed to remove media file", zap.String("path", asset.StoragePath), zap.Error(err))
	}
	uc.activity.Record(ctx, &logdto.RecordInput{
		ActorID:    actorID,
		Action:     "media.deleted",
		EntityType: "media",
		EntityID:   id,
	})
	return nil
}

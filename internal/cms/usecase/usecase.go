package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	logdto "github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	"github.com/fekuna/omnipos-commerce/internal/cms"
	"github.com/fekuna/omnipos-commerce/internal/cms/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/fekuna/omnipos-commerce/pkg/textutil"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultPlacement = "main"

var (
	errTemplateNotFound = apperror.NotFound("TemplateNotFound", "block template not found")
	errPageNotFound     = apperror.NotFound("PageNotFound", "page not found")
	errBlockNotFound    = apperror.NotFound("BlockNotFound", "block not found")
	errRevisionNotFound = apperror.NotFound("RevisionNotFound", "revision not found")
	emptyObject         = types.JSONText(`{}`)
)

type cmsUseCase struct {
	repo     cms.Repository
	activity activitylog.Recorder
	logger   logger.ZapLogger
	now      func() time.Time
}

func NewCMSUseCase(repo cms.Repository, activity activitylog.Recorder, log logger.ZapLogger) cms.UseCase {
	return &cmsUseCase{
		repo:     repo,
		activity: activity,
		logger:   log,
		now:      time.Now,
	}
}

func jsonOrEmpty(raw []byte) types.JSONText {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return emptyObject
	}
	return types.JSONText(raw)
}

func actor(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// Templates

func (uc *cmsUseCase) ListTemplates(ctx context.Context) ([]model.CMSTemplate, error) {
	return uc.repo.ListTemplates(ctx)
}

func (uc *cmsUseCase) GetTemplate(ctx context.Context, id string) (*model.CMSTemplate, error) {
	t, err := uc.repo.FindTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errTemplateNotFound
	}
	return t, nil
}

func (uc *cmsUseCase) applyTemplate(t *model.CMSTemplate, input *dto.TemplateInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return apperror.Invalid("TemplateNameRequired", "template name is required")
	}
	fields := make([]string, 0, len(input.RequiredFields))
	for _, f := range input.RequiredFields {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	config := jsonOrEmpty(input.DefaultConfig)
	if err := cms.CheckConfig(config, nil); err != nil {
		return err
	}

	t.Name = name
	t.BlockType = strings.TrimSpace(input.BlockType)
	t.Description = strings.TrimSpace(input.Description)
	t.RequiredFields = pq.StringArray(fields)
	t.DefaultConfig = config
	t.UpdatedAt = uc.now()
	return nil
}

func templateConflict(err error) error {
	if postgres.IsUniqueViolation(err) {
		return apperror.Conflict("TemplateNameTaken", "a template with this name already exists").Wrap(err)
	}
	return err
}

func (uc *cmsUseCase) CreateTemplate(ctx context.Context, input *dto.TemplateInput) (*model.CMSTemplate, error) {
	t := &model.CMSTemplate{BaseModel: model.NewBase(uuid.New().String(), uc.now())}
	if err := uc.applyTemplate(t, input); err != nil {
		return nil, err
	}
	if err := uc.repo.CreateTemplate(ctx, t); err != nil {
		return nil, templateConflict(err)
	}
	uc.record(ctx, input.ActorID, "cms_template.created", "cms_template", t.ID, nil)
	return t, nil
}

func (uc *cmsUseCase) UpdateTemplate(ctx context.Context, input *dto.TemplateInput) (*model.CMSTemplate, error) {
	t, err := uc.GetTemplate(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := uc.applyTemplate(t, input); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateTemplate(ctx, t); err != nil {
		return nil, templateConflict(err)
	}
	uc.record(ctx, input.ActorID, "cms_template.updated", "cms_template", t.ID, nil)
	return t, nil
}

func (uc *cmsUseCase) DeleteTemplate(ctx context.Context, actorID, id string) error {
	if _, err := uc.GetTemplate(ctx, id); err != nil {
		return err
	}
	n, err := uc.repo.CountTemplateBlocks(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperror.Conflict("TemplateInUse", "template is used by {{.Count}} blocks").WithData("Count", n)
	}
	if err := uc.repo.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	uc.record(ctx, actorID, "cms_template.deleted", "cms_template", id, nil)
	return nil
}

// Pages

func (uc *cmsUseCase) resolveSlug(ctx context.Context, slug, title, excludeID string) (string, error) {
	if slug == "" {
		slug = textutil.Slugify(title)
	}
	if !textutil.IsSlug(slug) {
		return "", apperror.Invalid("SlugInvalid", "slug may only contain lowercase letters, digits and dashes")
	}
	taken, err := uc.repo.IsSlugTaken(ctx, slug, excludeID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperror.Conflict("SlugTaken", "slug {{.Slug}} is already in use").WithData("Slug", slug)
	}
	return slug, nil
}

func revisionOf(p *model.CMSPage, note string, by *string) *model.CMSPageRevision {
	return &model.CMSPageRevision{
		ID:        uuid.New().String(),
		PageID:    p.ID,
		Version:   p.Version,
		Title:     p.Title,
		Content:   p.Content,
		Note:      note,
		CreatedBy: by,
		CreatedAt: p.UpdatedAt,
	}
}

func (uc *cmsUseCase) CreatePage(ctx context.Context, input *dto.PageInput) (*model.CMSPage, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperror.Invalid("PageTitleRequired", "page title is required")
	}
	content := jsonOrEmpty(input.Content)
	if err := cms.CheckContent(content); err != nil {
		return nil, err
	}
	slug, err := uc.resolveSlug(ctx, input.Slug, title, "")
	if err != nil {
		return nil, err
	}

	by := actor(input.ActorID)
	page := &model.CMSPage{
		BaseModel: model.NewBase(uuid.New().String(), uc.now()),
		Title:     title,
		Slug:      slug,
		Content:   content,
		Status:    model.PageDraft,
		Version:   1,
		CreatedBy: by,
		UpdatedBy: by,
	}
	if err := uc.repo.CreatePage(ctx, page, revisionOf(page, input.Note, by)); err != nil {
		return nil, err
	}
	uc.record(ctx, input.ActorID, "page.created", "cms_page", page.ID, map[string]interface{}{"slug": slug})
	return page, nil
}

func (uc *cmsUseCase) UpdatePage(ctx context.Context, input *dto.PageInput) (*model.CMSPage, error) {
	page, err := uc.GetPage(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperror.Invalid("PageTitleRequired", "page title is required")
	}
	if len(input.Content) > 0 {
		if err := cms.CheckContent(input.Content); err != nil {
			return nil, err
		}
		page.Content = types.JSONText(input.Content)
	}
	if input.Slug != "" && input.Slug != page.Slug {
		if page.Slug, err = uc.resolveSlug(ctx, input.Slug, title, page.ID); err != nil {
			return nil, err
		}
	}
	page.Title = title
	return uc.saveVersion(ctx, page, input.ActorID, input.Note, "page.updated")
}

// saveVersion bumps the version and stores the page with a matching revision.
func (uc *cmsUseCase) saveVersion(ctx context.Context, page *model.CMSPage, actorID, note, action string) (*model.CMSPage, error) {
	by := actor(actorID)
	page.Version++
	page.UpdatedBy = by
	page.UpdatedAt = uc.now()
	if err := uc.repo.SavePage(ctx, page, revisionOf(page, note, by)); err != nil {
		if errors.Is(err, cms.ErrPageChanged) {
			return nil, apperror.Conflict("PageChanged", "the page was changed by someone else, reload and retry").Wrap(err)
		}
		return nil, err
	}
	uc.record(ctx, actorID, action, "cms_page", page.ID, map[string]interface{}{"version": page.Version})
	return page, nil
}

func (uc *cmsUseCase) GetPage(ctx context.Context, id string) (*model.CMSPage, error) {
	page, err := uc.repo.FindPageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, errPageNotFound
	}
	return page, nil
}

func (uc *cmsUseCase) ListPages(ctx context.Context, filters *dto.PageFilters) ([]model.CMSPage, int, error) {
	return uc.repo.FindPages(ctx, filters)
}

func (uc *cmsUseCase) setStatus(ctx context.Context, actorID, id, status, action string) (*model.CMSPage, error) {
	page, err := uc.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	page.Status = status
	page.UpdatedBy = actor(actorID)
	page.UpdatedAt = now
	if status == model.PagePublished {
		page.PublishedAt = &now
	}
	if err := uc.repo.SetPageStatus(ctx, page); err != nil {
		return nil, err
	}
	uc.logger.Info("page status changed", zap.String("page_id", page.ID), zap.String("status", status))
	uc.record(ctx, actorID, action, "cms_page", page.ID, map[string]interface{}{"slug": page.Slug})
	return page, nil
}

func (uc *cmsUseCase) PublishPage(ctx context.Context, actorID, id string) (*model.CMSPage, error) {
	return uc.setStatus(ctx, actorID, id, model.PagePublished, "page.published")
}

func (uc *cmsUseCase) UnpublishPage(ctx context.Context, actorID, id string) (*model.CMSPage, error) {
	return uc.setStatus(ctx, actorID, id, model.PageDraft, "page.unpublished")
}

func (uc *cmsUseCase) ArchivePage(ctx context.Context, actorID, id string) (*model.CMSPage, error) {
	return uc.setStatus(ctx, actorID, id, model.PageArchived, "page.archived")
}

func (uc *cmsUseCase) DeletePage(ctx context.Context, actorID, id string) error {
	page, err := uc.GetPage(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.repo.DeletePage(ctx, id); err != nil {
		return err
	}
	uc.record(ctx, actorID, "page.deleted", "cms_page", id, map[string]interface{}{"slug": page.Slug})
	return nil
}

func (uc *cmsUseCase) ListRevisions(ctx context.Context, pageID string) ([]model.CMSPageRevision, error) {
	if _, err := uc.GetPage(ctx, pageID); err != nil {
		return nil, err
	}
	return uc.repo.ListRevisions(ctx, pageID)
}

func (uc *cmsUseCase) RestoreRevision(ctx context.Context, input *dto.RestoreInput) (*model.CMSPage, error) {
	page, err := uc.GetPage(ctx, input.PageID)
	if err != nil {
		return nil, err
	}
	rev, err := uc.repo.FindRevision(ctx, input.PageID, input.RevisionID)
	if err != nil {
		return nil, err
	}
	if rev == nil {
		return nil, errRevisionNotFound
	}

	page.Title = rev.Title
	page.Content = rev.Content
	return uc.saveVersion(ctx, page, input.ActorID, "Restored from version "+strconv.Itoa(rev.Version), "page.restored")
}

func (uc *cmsUseCase) GetPublishedPage(ctx context.Context, slug string) (*model.CMSPage, error) {
	page, err := uc.repo.FindPageBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if page == nil || page.Status != model.PagePublished {
		return nil, errPageNotFound
	}
	if page.Blocks, err = uc.repo.ListBlocks(ctx, &dto.BlockFilters{PageID: page.ID, ActiveOnly: true}); err != nil {
		return nil, err
	}
	return page, nil
}

// Blocks

func (uc *cmsUseCase) ListBlocks(ctx context.Context, filters *dto.BlockFilters) ([]model.CMSBlock, error) {
	return uc.repo.ListBlocks(ctx, filters)
}

// applyBlock validates input against its template and copies it onto b.
func (uc *cmsUseCase) applyBlock(ctx context.Context, b *model.CMSBlock, input *dto.BlockInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return apperror.Invalid("BlockNameRequired", "block name is required")
	}
	t, err := uc.repo.FindTemplate(ctx, input.TemplateID)
	if err != nil {
		return err
	}
	if t == nil {
		return apperror.Invalid("BlockTemplateUnknown", "block template does not exist")
	}
	if input.PageID != nil && *input.PageID != "" {
		page, err := uc.repo.FindPageByID(ctx, *input.PageID)
		if err != nil {
			return err
		}
		if page == nil {
			return errPageNotFound
		}
		b.PageID = input.PageID
	} else {
		b.PageID = nil
	}

	config := types.JSONText(input.Config)
	if len(strings.TrimSpace(string(config))) == 0 {
		config = t.DefaultConfig
	}
	if err := cms.CheckConfig(config, t.RequiredFields); err != nil {
		return err
	}

	b.TemplateID = t.ID
	b.Name = name
	b.Placement = strings.TrimSpace(input.Placement)
	if b.Placement == "" {
		b.Placement = defaultPlacement
	}
	b.SortOrder = input.SortOrder
	b.Config = config
	if input.IsActive != nil {
		b.IsActive = *input.IsActive
	}
	b.UpdatedAt = uc.now()
	return nil
}

func (uc *cmsUseCase) CreateBlock(ctx context.Context, input *dto.BlockInput) (*model.CMSBlock, error) {
	b := &model.CMSBlock{BaseModel: model.NewBase(uuid.New().String(), uc.now()), IsActive: true}
	if err := uc.applyBlock(ctx, b, input); err != nil {
		return nil, err
	}
	if err := uc.repo.CreateBlock(ctx, b); err != nil {
		return nil, err
	}
	uc.record(ctx, input.ActorID, "cms_block.created", "cms_block", b.ID, nil)
	return b, nil
}

func (uc *cmsUseCase) UpdateBlock(ctx context.Context, input *dto.BlockInput) (*model.CMSBlock, error) {
	b, err := uc.repo.FindBlock(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errBlockNotFound
	}
	if err := uc.applyBlock(ctx, b, input); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateBlock(ctx, b); err != nil {
		return nil, err
	}
	uc.record(ctx, input.ActorID, "cms_block.updated", "cms_block", b.ID, nil)
	return b, nil
}

func (uc *cmsUseCase) DeleteBlock(ctx context.Context, actorID, id string) error {
	b, err := uc.repo.FindBlock(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return errBlockNotFound
	}
	if err := uc.repo.DeleteBlock(ctx, id); err != nil {
		return err
	}
	uc.record(ctx, actorID, "cms_block.deleted", "cms_block", id, nil)
	return nil
}

func (uc *cmsUseCase) ReorderBlocks(ctx context.Context, input *dto.ReorderInput) ([]model.CMSBlock, error) {
	if len(input.BlockIDs) == 0 {
		return nil, apperror.Invalid("BlockOrderEmpty", "block order must list at least one block")
	}
	seen := make(map[string]bool, len(input.BlockIDs))
	for _, id := range input.BlockIDs {
		if seen[id] {
			return nil, apperror.Invalid("BlockOrderDuplicate", "block order lists a block twice")
		}
		seen[id] = true
	}
	if _, err := uc.GetPage(ctx, input.PageID); err != nil {
		return nil, err
	}

	if err := uc.repo.ReorderBlocks(ctx, input.PageID, input.BlockIDs); err != nil {
		if errors.Is(err, cms.ErrBlockNotOnPage) {
			return nil, apperror.Invalid("BlockNotOnPage", "every block must belong to the page").Wrap(err)
		}
		return nil, err
	}
	uc.record(ctx, input.ActorID, "cms_block.reordered", "cms_page", input.PageID, nil)
	return uc.repo.ListBlocks(ctx, &dto.BlockFilters{PageID: input.PageID})
}

func (uc *cmsUseCase) record(ctx context.Context, actorID, action, entityType, entityID string, meta map[string]interface{}) {
	uc.activity.Record(ctx, &logdto.RecordInput{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   meta,
	})
}

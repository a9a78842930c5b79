package cms

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-commerce/internal/cms/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
)

var (
	// ErrPageChanged is returned when a page was saved by someone else
	// between read and write.
	ErrPageChanged = errors.New("cms page changed concurrently")
	// ErrBlockNotOnPage is returned by a reorder naming a foreign block.
	ErrBlockNotOnPage = errors.New("block does not belong to page")
)

type Repository interface {
	ListTemplates(ctx context.Context) ([]model.CMSTemplate, error)
	FindTemplate(ctx context.Context, id string) (*model.CMSTemplate, error)
	CreateTemplate(ctx context.Context, t *model.CMSTemplate) error
	UpdateTemplate(ctx context.Context, t *model.CMSTemplate) error
	DeleteTemplate(ctx context.Context, id string) error
	CountTemplateBlocks(ctx context.Context, templateID string) (int, error)

	// CreatePage and SavePage write the page and its revision together.
	// SavePage expects page.Version to be one past the stored version.
	CreatePage(ctx context.Context, page *model.CMSPage, rev *model.CMSPageRevision) error
	SavePage(ctx context.Context, page *model.CMSPage, rev *model.CMSPageRevision) error
	FindPageByID(ctx context.Context, id string) (*model.CMSPage, error)
	FindPageBySlug(ctx context.Context, slug string) (*model.CMSPage, error)
	FindPages(ctx context.Context, filters *dto.PageFilters) ([]model.CMSPage, int, error)
	IsSlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
	SetPageStatus(ctx context.Context, page *model.CMSPage) error
	DeletePage(ctx context.Context, id string) error
	ListRevisions(ctx context.Context, pageID string) ([]model.CMSPageRevision, error)
	FindRevision(ctx context.Context, pageID, id string) (*model.CMSPageRevision, error)

	ListBlocks(ctx context.Context, filters *dto.BlockFilters) ([]model.CMSBlock, error)
	FindBlock(ctx context.Context, id string) (*model.CMSBlock, error)
	CreateBlock(ctx context.Context, b *model.CMSBlock) error
	UpdateBlock(ctx context.Context, b *model.CMSBlock) error
	DeleteBlock(ctx context.Context, id string) error
	// ReorderBlocks sets sort_order to each id's position.
	ReorderBlocks(ctx context.Context, pageID string, ids []string) error
}

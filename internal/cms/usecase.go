package cms

import (
	"context"

	"github.com/fekuna/omnipos-commerce/internal/cms/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
)

type UseCase interface {
	ListTemplates(ctx context.Context) ([]model.CMSTemplate, error)
	GetTemplate(ctx context.Context, id string) (*model.CMSTemplate, error)
	CreateTemplate(ctx context.Context, input *dto.TemplateInput) (*model.CMSTemplate, error)
	UpdateTemplate(ctx context.Context, input *dto.TemplateInput) (*model.CMSTemplate, error)
	DeleteTemplate(ctx context.Context, actorID, id string) error

	CreatePage(ctx context.Context, input *dto.PageInput) (*model.CMSPage, error)
	UpdatePage(ctx context.Context, input *dto.PageInput) (*model.CMSPage, error)
	GetPage(ctx context.Context, id string) (*model.CMSPage, error)
	ListPages(ctx context.Context, filters *dto.PageFilters) ([]model.CMSPage, int, error)
	PublishPage(ctx context.Context, actorID, id string) (*model.CMSPage, error)
	UnpublishPage(ctx context.Context, actorID, id string) (*model.CMSPage, error)
	ArchivePage(ctx context.Context, actorID, id string) (*model.CMSPage, error)
	DeletePage(ctx context.Context, actorID, id string) error
	ListRevisions(ctx context.Context, pageID string) ([]model.CMSPageRevision, error)
	RestoreRevision(ctx context.Context, input *dto.RestoreInput) (*model.CMSPage, error)
	// GetPublishedPage is the storefront view with active blocks in order.
	GetPublishedPage(ctx context.Context, slug string) (*model.CMSPage, error)

	ListBlocks(ctx context.Context, filters *dto.BlockFilters) ([]model.CMSBlock, error)
	CreateBlock(ctx context.Context, input *dto.BlockInput) (*model.CMSBlock, error)
	UpdateBlock(ctx context.Context, input *dto.BlockInput) (*model.CMSBlock, error)
	DeleteBlock(ctx context.Context, actorID, id string) error
	ReorderBlocks(ctx context.Context, input *dto.ReorderInput) ([]model.CMSBlock, error)
}

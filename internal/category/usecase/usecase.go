package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	logdto "github.com/fekuna/omnipos-commerce/internal/activitylog/dto"
	"github.com/fekuna/omnipos-commerce/internal/category"
	"github.com/fekuna/omnipos-commerce/internal/category/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/apperror"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/fekuna/omnipos-commerce/pkg/textutil"
	"github.com/google/uuid"
)

var errCategoryNotFound = apperror.NotFound("CategoryNotFound", "category not found")

type categoryUseCase struct {
	repo     category.Repository
	activity activitylog.Recorder
	logger   logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, activity activitylog.Recorder, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:     repo,
		activity: activity,
		logger:   log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	parentID := normalizeID(input.ParentID)
	if parentID != nil {
		parent, err := uc.repo.FindByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperror.Invalid("ParentCategoryNotFound", "parent category does not exist")
		}
	}

	slug, err := uc.resolveSlug(ctx, input.Slug, input.Name, "")
	if err != nil {
		return nil, err
	}

	cat := &model.Category{
		BaseModel:   model.NewBase(uuid.New().String(), time.Now()),
		ParentID:    parentID,
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: optional(input.Description),
		ImageURL:    optional(input.ImageURL),
		SortOrder:   input.SortOrder,
		IsActive:    true,
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, err
	}

	uc.record(ctx, input.ActorID, "category.created", cat.ID)
	return cat, nil
}

// resolveSlug derives a slug from the name when none is given and checks uniqueness.
func (uc *categoryUseCase) resolveSlug(ctx context.Context, slug, name, excludeID string) (string, error) {
	if slug == "" {
		slug = textutil.Slugify(name)
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

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, errCategoryNotFound
	}
	return cat, nil
}

func (uc *categoryUseCase) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	cat, err := uc.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if cat == nil || !cat.IsActive {
		return nil, errCategoryNotFound
	}
	return cat, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *categoryUseCase) GetTree(ctx context.Context) ([]model.Category, error) {
	categories, err := uc.repo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(categories), nil
}

// BuildTree nests categories under their parents, preserving input order.
// Categories whose parent is missing from the input (inactive parent) are dropped
// along with their subtree.
func BuildTree(categories []model.Category) []model.Category {
	byParent := make(map[string][]model.Category)
	var roots []model.Category
	for _, c := range categories {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
	}

	var attach func(nodes []model.Category) []model.Category
	attach = func(nodes []model.Category) []model.Category {
		for i := range nodes {
			nodes[i].Children = attach(byParent[nodes[i].ID])
		}
		return nodes
	}

	if roots == nil {
		return []model.Category{}
	}
	return attach(roots)
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	cat, err := uc.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	parentID := normalizeID(input.ParentID)
	if parentID != nil {
		if err := uc.checkParent(ctx, cat.ID, *parentID); err != nil {
			return nil, err
		}
	}

	slug := input.Slug
	if slug == "" {
		slug = cat.Slug
	}
	if slug != cat.Slug {
		if slug, err = uc.resolveSlug(ctx, slug, input.Name, cat.ID); err != nil {
			return nil, err
		}
	}

	cat.ParentID = parentID
	cat.Name = strings.TrimSpace(input.Name)
	cat.Slug = slug
	cat.Description = optional(input.Description)
	cat.ImageURL = optional(input.ImageURL)
	cat.SortOrder = input.SortOrder
	cat.IsActive = input.IsActive
	cat.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, err
	}

	uc.record(ctx, input.ActorID, "category.updated", cat.ID)
	return cat, nil
}

// checkParent rejects a parent that is missing, the category itself, or one of its descendants.
func (uc *categoryUseCase) checkParent(ctx context.Context, id, parentID string) error {
	if parentID == id {
		return apperror.Invalid("CategoryCycle", "a category cannot be its own ancestor")
	}
	parent, err := uc.repo.FindByID(ctx, parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return apperror.Invalid("ParentCategoryNotFound", "parent category does not exist")
	}
	ancestors, err := uc.repo.AncestorIDs(ctx, parentID)
	if err != nil {
		return err
	}
	for _, a := range ancestors {
		if a == id {
			return apperror.Invalid("CategoryCycle", "a category cannot be its own ancestor")
		}
	}
	return nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, actorID, id string) error {
	if _, err := uc.GetCategory(ctx, id); err != nil {
		return err
	}

	children, err := uc.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	products, err := uc.repo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 || products > 0 {
		return apperror.Conflict("CategoryInUse", "category still has subcategories or products")
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.record(ctx, actorID, "category.deleted", id)
	return nil
}

func (uc *categoryUseCase) record(ctx context.Context, actorID, action, id string) {
	uc.activity.Record(ctx, &logdto.RecordInput{
		ActorID:    actorID,
		Action:     action,
		EntityType: "category",
		EntityID:   id,
	})
}

func normalizeID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	return id
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

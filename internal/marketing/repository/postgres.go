package repository

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-commerce/internal/marketing/dto"
	"github.com/fekuna/omnipos-commerce/internal/model"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// Subscribe keeps the original subscription date for addresses that never left.
func (r *PGRepository) Subscribe(ctx context.Context, s *model.NewsletterSubscriber) error {
	query, args, err := r.DB.BindNamed(`
        INSERT INTO newsletter_subscribers (id, email, status, source, subscribed_at, created_at, updated_at)
        VALUES (:id, :email, :status, :source, :subscribed_at, :created_at, :updated_at)
        ON CONFLICT (email) DO UPDATE
        SET subscribed_at = CASE WHEN newsletter_subscribers.status = 'UNSUBSCRIBED'
                                 THEN EXCLUDED.subscribed_at
                                 ELSE newsletter_subscribers.subscribed_at END,
            status = 'SUBSCRIBED',
            source = CASE WHEN EXCLUDED.source = '' THEN newsletter_subscribers.source ELSE EXCLUDED.source END,
            unsubscribed_at = NULL,
            updated_at = EXCLUDED.updated_at
        RETURNING *
    `, s)
	if err != nil {
		return err
	}
	return r.DB.GetContext(ctx, s, query, args...)
}

func (r *PGRepository) Unsubscribe(ctx context.Context, email string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE newsletter_subscribers
        SET status = 'UNSUBSCRIBED', unsubscribed_at = $2, updated_at = $2
        WHERE email = $1 AND status = 'SUBSCRIBED'
    `, email, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.SubscriberFilters) ([]model.NewsletterSubscriber, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.Query != "" {
		conditions = append(conditions, "email ILIKE :q")
		args["q"] = "%" + f.Query + "%"
	}
	where := postgres.Where(conditions)

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM newsletter_subscribers"+where, args)
	if err != nil {
		return nil, 0, err
	}

	subs := []model.NewsletterSubscriber{}
	query := "SELECT * FROM newsletter_subscribers" + where + " ORDER BY subscribed_at DESC" + postgres.Paginate(f.Page, f.PageSize)
	if err := postgres.NamedSelect(ctx, r.DB, &subs, query, args); err != nil {
		return nil, 0, err
	}
	return subs, count, nil
}

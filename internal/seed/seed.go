// Package seed loads bootstrap data (feature flags, loyalty tiers, CMS block
// templates and the first admin) from YAML. Rows that already exist are left alone.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type File struct {
	FeatureFlags []Flag     `yaml:"feature_flags"`
	LoyaltyTiers []Tier     `yaml:"loyalty_tiers"`
	Templates    []Template `yaml:"cms_templates"`
	Admin        *Admin     `yaml:"admin"`
}

type Flag struct {
	Key         string `yaml:"key"`
	Description string `yaml:"description"`
	Enabled     bool   `yaml:"enabled"`
	IsPremium   bool   `yaml:"is_premium"`
}

type Tier struct {
	Name             string          `yaml:"name"`
	MinPoints        int             `yaml:"min_points"`
	DiscountPercent  decimal.Decimal `yaml:"discount_percent"`
	PointsMultiplier decimal.Decimal `yaml:"points_multiplier"`
	Benefits         string          `yaml:"benefits"`
}

type Template struct {
	Name           string                 `yaml:"name"`
	BlockType      string                 `yaml:"block_type"`
	Description    string                 `yaml:"description"`
	RequiredFields []string               `yaml:"required_fields"`
	DefaultConfig  map[string]interface{} `yaml:"default_config"`
}

// Admin.Password may be left empty and supplied through SEED_ADMIN_PASSWORD.
type Admin struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

// Result counts the rows actually inserted.
type Result struct {
	Flags     int
	Tiers     int
	Templates int
	Admin     bool
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if f.Admin != nil && f.Admin.Password == "" {
		f.Admin.Password = os.Getenv("SEED_ADMIN_PASSWORD")
	}
	return &f, f.validate()
}

func (f *File) validate() error {
	for i, fl := range f.FeatureFlags {
		if strings.TrimSpace(fl.Key) == "" {
			return fmt.Errorf("feature_flags[%d]: key is required", i)
		}
	}
	for i, t := range f.LoyaltyTiers {
		if strings.TrimSpace(t.Name) == "" || t.MinPoints < 0 {
			return fmt.Errorf("loyalty_tiers[%d]: name and a non-negative min_points are required", i)
		}
	}
	for i, t := range f.Templates {
		if strings.TrimSpace(t.Name) == "" || strings.TrimSpace(t.BlockType) == "" {
			return fmt.Errorf("cms_templates[%d]: name and block_type are required", i)
		}
	}
	if f.Admin != nil {
		if f.Admin.Email == "" {
			return fmt.Errorf("admin: email is required")
		}
		if len(f.Admin.Password) < 8 {
			return fmt.Errorf("admin: password must be at least 8 characters")
		}
	}
	return nil
}

type Seeder struct {
	db     *sqlx.DB
	logger logger.ZapLogger
	now    func() time.Time
}

func NewSeeder(db *sqlx.DB, log logger.ZapLogger) *Seeder {
	return &Seeder{db: db, logger: log, now: time.Now}
}

// Apply inserts everything in one transaction.
func (s *Seeder) Apply(ctx context.Context, f *File) (*Result, error) {
	res := &Result{}
	now := s.now().UTC()

	err := postgres.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, fl := range f.FeatureFlags {
			n, err := insert(ctx, tx, `INSERT INTO feature_flags (id, key, description, enabled, is_premium, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $6) ON CONFLICT (key) DO NOTHING`,
				uuid.New().String(), fl.Key, fl.Description, fl.Enabled, fl.IsPremium, now)
			if err != nil {
				return fmt.Errorf("flag %s: %w", fl.Key, err)
			}
			res.Flags += n
		}

		for _, t := range f.LoyaltyTiers {
			multiplier := t.PointsMultiplier
			if multiplier.IsZero() {
				multiplier = decimal.NewFromInt(1)
			}
			n, err := insert(ctx, tx, `INSERT INTO loyalty_tiers (id, name, min_points, discount_percent, points_multiplier, benefits, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $7) ON CONFLICT DO NOTHING`,
				uuid.New().String(), t.Name, t.MinPoints, t.DiscountPercent, multiplier, t.Benefits, now)
			if err != nil {
				return fmt.Errorf("tier %s: %w", t.Name, err)
			}
			res.Tiers += n
		}

		for _, t := range f.Templates {
			config := t.DefaultConfig
			if config == nil {
				config = map[string]interface{}{}
			}
			raw, err := json.Marshal(config)
			if err != nil {
				return fmt.Errorf("template %s: %w", t.Name, err)
			}
			required := t.RequiredFields
			if required == nil {
				required = []string{}
			}
			n, err := insert(ctx, tx, `INSERT INTO cms_templates (id, name, block_type, description, required_fields, default_config, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $7) ON CONFLICT (name) DO NOTHING`,
				uuid.New().String(), t.Name, t.BlockType, t.Description, pq.Array(required), string(raw), now)
			if err != nil {
				return fmt.Errorf("template %s: %w", t.Name, err)
			}
			res.Templates += n
		}

		if f.Admin != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(f.Admin.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			n, err := insert(ctx, tx, `INSERT INTO users (id, email, password_hash, name, role, is_active, created_at, updated_at)
				VALUES ($1, $2, $3, $4, 'ADMIN', TRUE, $5, $5) ON CONFLICT (email) DO NOTHING`,
				uuid.New().String(), strings.ToLower(strings.TrimSpace(f.Admin.Email)), string(hash), f.Admin.Name, now)
			if err != nil {
				return fmt.Errorf("admin: %w", err)
			}
			res.Admin = n == 1
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Seed applied",
		zap.Int("flags", res.Flags),
		zap.Int("tiers", res.Tiers),
		zap.Int("templates", res.Templates),
		zap.Bool("admin_created", res.Admin),
	)
	return res, nil
}

func insert(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) (int, error) {
	out, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := out.RowsAffected()
	return int(n), err
}

package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(Files(), ".")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestInitMigrationCreatesCoreTables(t *testing.T) {
	data, err := fs.ReadFile(Files(), "000001_init.up.sql")
	require.NoError(t, err)

	sql := string(data)
	for _, table := range []string{
		"users", "addresses", "categories", "products", "product_variants", "carts",
		"orders", "order_items", "loyalty_tiers", "loyalty_accounts", "cms_pages",
		"cms_page_revisions", "cms_blocks", "flash_sales", "pos_sessions", "feature_flags",
	} {
		assert.Contains(t, sql, "CREATE TABLE "+table+" (", table)
	}
}

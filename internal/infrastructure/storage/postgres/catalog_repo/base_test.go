package catalog_repo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/item"
	"tradebook/internal/domain/catalogs/party"
)

func TestItemUpdateNeverWritesStock(t *testing.T) {
	repo := NewItemRepo(nil)
	it := item.NewItem("Widget", "pcs", types.NewQuantity(5))

	sql, args, err := repo.updateQuery(it).ToSql()
	require.NoError(t, err)

	assert.NotContains(t, sql, "stock =")
	assert.NotContains(t, sql, "opening_stock")
	assert.Contains(t, sql, "version = version + 1")
	assert.Contains(t, sql, "WHERE id = $")
	assert.Contains(t, sql, "RETURNING version, updated_at")
	assert.Contains(t, args, it.ID)
	assert.Contains(t, args, 1)
}

func TestItemInsertIncludesStock(t *testing.T) {
	repo := NewItemRepo(nil)
	it := item.NewItem("Widget", "pcs", types.NewQuantity(5))

	sql, args, err := repo.insertQuery(it).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "INSERT INTO cat_items")
	assert.Contains(t, sql, "stock")
	assert.Contains(t, args, types.NewQuantity(5))
}

func TestPartyListQuery(t *testing.T) {
	repo := NewPartyRepo(nil)
	customers := party.TypeCustomer

	sql, args, err := repo.listQuery(party.ListFilter{
		ListFilter: domain.ListFilter{Search: "acme"},
		Type:       &customers,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM cat_parties WHERE type = $1 AND (name ILIKE $2 OR mobile ILIKE $3)")
	assert.Equal(t, []any{customers, "%acme%", "%acme%"}, args)
}

func TestPartyLockQuery(t *testing.T) {
	repo := NewPartyRepo(nil)
	partyID := id.New()

	for _, lock := range []string{"FOR SHARE", "FOR UPDATE"} {
		sql, args, err := repo.lockQuery(partyID, lock).ToSql()
		require.NoError(t, err)
		assert.Contains(t, sql, "FROM cat_parties WHERE id = $1")
		assert.True(t, strings.HasSuffix(sql, lock), sql)
		assert.Equal(t, []any{partyID}, args)
	}
}

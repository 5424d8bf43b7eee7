package report_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentQueryOrdersByCreation(t *testing.T) {
	sql, args, err := NewReportRepo(nil).recentQuery(5).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, invoice_no, party_name, type, grand_total, date FROM doc_invoices ORDER BY created_at DESC, id DESC LIMIT 5",
		sql)
	assert.Empty(t, args)
}

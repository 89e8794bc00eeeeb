package repository

import (
	"strings"
	"testing"

	"go-pos-ws/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dryRunDB builds statements without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=pos dbname=pos sslmode=disable"}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestProductInsert_KeepsZeroTaxRate(t *testing.T) {
	db := dryRunDB(t)
	p := &model.Product{
		Barcode:   "8690000000001",
		Name:      "Ekmek",
		SellPrice: decimal.RequireFromString("10.00"),
		TaxRate:   0,
	}

	stmt := db.Create(p).Statement
	sql := stmt.SQL.String()
	columns := sql[:strings.Index(sql, "VALUES")]
	assert.Contains(t, columns, `"tax_rate"`)
	assert.Contains(t, stmt.Vars, 0)

	field := stmt.Schema.LookUpField("tax_rate")
	require.NotNil(t, field)
	assert.False(t, field.HasDefaultValue)
}

package persistence

import (
	"context"
	"testing"

	"github.com/bizbooks/backend/internal/domain/company"
	"github.com/bizbooks/backend/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCompanyRepository_SaveAndFind(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormCompanyRepository(db)
	ctx := context.Background()

	c, err := company.NewCompany("Biofoods Kenya Ltd", "KES", decimal.NewFromInt(16))
	require.NoError(t, err)
	require.NoError(t, c.UpdateProfile("Biofoods Kenya Ltd", "C.123456", "P051234567A", "accounts@biofoods.co.ke", "+254700000000", "Nairobi"))
	require.NoError(t, repo.Save(ctx, c))

	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Biofoods Kenya Ltd", found.Name)
	assert.Equal(t, "KES", found.Currency)
	assert.True(t, found.TaxRate.Equal(decimal.NewFromInt(16)))
	assert.Equal(t, "BIO", found.NumberCode())

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGormUserRepository_SaveAndFindByUsername(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	u, err := identity.NewUser(uuid.New(), "Jane.Accounts", "s3cret-pass", "Jane")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, u))

	found, err := repo.FindByUsername(ctx, "jane.accounts")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)
	assert.True(t, found.Active)
	assert.True(t, found.CheckPassword("s3cret-pass"))
	assert.False(t, found.CheckPassword("wrong-pass"))

	missing, err := repo.FindByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

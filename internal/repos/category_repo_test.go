package repos_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/domain"
)

func TestCategoryRepo_CreateGetList(t *testing.T) {
	s := memdb(t)

	idB, err := s.cats.Create("  Snacks ", "crisps and nuts")
	require.NoError(t, err)
	idA, err := s.cats.Create("Beverages", "")
	require.NoError(t, err)
	assert.Greater(t, idA, idB)

	c, err := s.cats.Get(idB)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Snacks", c.Name)
	assert.Equal(t, "crisps and nuts", c.Description)
	assert.False(t, c.CreatedAt.IsZero())

	all, err := s.cats.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Beverages", all[0].Name)
	assert.Equal(t, "Snacks", all[1].Name)

	missing, err := s.cats.Get(12345)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCategoryRepo_DuplicateName(t *testing.T) {
	s := memdb(t)

	_, err := s.cats.Create("Dairy", "")
	require.NoError(t, err)
	_, err = s.cats.Create("Dairy", "again")
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	assert.Equal(t, 1, s.count(t, `SELECT COUNT(*) FROM categories WHERE name = ?`, "Dairy"))
}

func TestCategoryRepo_EmptyName(t *testing.T) {
	s := memdb(t)

	for _, name := range []string{"", "   "} {
		_, err := s.cats.Create(name, "x")
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.Equal(t, 0, s.count(t, `SELECT COUNT(*) FROM categories`))
}

func TestCategoryRepo_Update(t *testing.T) {
	s := memdb(t)
	id, err := s.cats.Create("Frozen", "ice")
	require.NoError(t, err)
	other, err := s.cats.Create("Bakery", "")
	require.NoError(t, err)

	ok, err := s.cats.Update(id, domain.CategoryPatch{})
	require.NoError(t, err)
	assert.False(t, ok, "empty patch is a no-op")

	ok, err = s.cats.Update(id, domain.CategoryPatch{Description: domain.Ptr("ice cream")})
	require.NoError(t, err)
	assert.True(t, ok)
	c, _ := s.cats.Get(id)
	assert.Equal(t, "Frozen", c.Name)
	assert.Equal(t, "ice cream", c.Description)

	_, err = s.cats.Update(other, domain.CategoryPatch{Name: domain.Ptr("Frozen")})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	_, err = s.cats.Update(id, domain.CategoryPatch{Name: domain.Ptr(" ")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	ok, err = s.cats.Update(999, domain.CategoryPatch{Name: domain.Ptr("Ghost")})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCategoryRepo_DeleteDetachesProducts(t *testing.T) {
	s := memdb(t)
	catID, err := s.cats.Create("Garden", "")
	require.NoError(t, err)
	pid, err := s.prods.Create(domain.NewProduct{Name: "Hose", CategoryID: &catID, UnitPrice: price("12.50")})
	require.NoError(t, err)

	ok, err := s.cats.Delete(catID)
	require.NoError(t, err)
	assert.True(t, ok)

	p, err := s.prods.Get(pid)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Nil(t, p.CategoryID)
	assert.Nil(t, p.CategoryName)

	ok, err = s.cats.Delete(catID)
	require.NoError(t, err)
	assert.False(t, ok)
}

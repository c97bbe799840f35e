package pagination

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-api/internal/core/database"
)

func intp(v int) *int { return &v }

func TestNewMeta(t *testing.T) {
	cases := []struct {
		name  string
		total int64
		p     Params
		want  Meta
	}{
		{"middle page", 23, Params{Page: 2, Limit: 10}, Meta{Total: 23, LastPage: 3, CurrentPage: 2, PerPage: 10, Prev: intp(1), Next: intp(3)}},
		{"last page", 23, Params{Page: 3, Limit: 10}, Meta{Total: 23, LastPage: 3, CurrentPage: 3, PerPage: 10, Prev: intp(2)}},
		{"first page", 23, Params{Page: 1, Limit: 10}, Meta{Total: 23, LastPage: 3, CurrentPage: 1, PerPage: 10, Next: intp(2)}},
		{"empty", 0, Params{Page: 1, Limit: 10}, Meta{Total: 0, LastPage: 0, CurrentPage: 1, PerPage: 10}},
		{"exact fit", 20, Params{Page: 2, Limit: 10}, Meta{Total: 20, LastPage: 2, CurrentPage: 2, PerPage: 10, Prev: intp(1)}},
		{"zero params use defaults", 5, Params{}, Meta{Total: 5, LastPage: 1, CurrentPage: 1, PerPage: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewMeta(tc.total, tc.p))
		})
	}
}

func TestParseParams(t *testing.T) {
	assert.Equal(t, Params{Page: 1, Limit: 10}, ParseParams("", ""))
	assert.Equal(t, Params{Page: 1, Limit: 10}, ParseParams("abc", "x"))
	assert.Equal(t, Params{Page: 1, Limit: 10}, ParseParams("-2", "0"))
	assert.Equal(t, Params{Page: 3, Limit: 25}, ParseParams("3", " 25 "))
	assert.Equal(t, Params{Page: 1, Limit: MaxLimit}, ParseParams("1", "5000"))
}

func TestParseSort(t *testing.T) {
	allowed := map[string]string{"name": "name", "createdAt": "created_at"}

	s, err := ParseSort("createdAt_desc", allowed)
	require.NoError(t, err)
	assert.Equal(t, Sort{Column: "created_at", Desc: true}, s)

	s, err = ParseSort("name_ASC", allowed)
	require.NoError(t, err)
	assert.Equal(t, Sort{Column: "name"}, s)

	s, err = ParseSort("", allowed)
	require.NoError(t, err)
	assert.Equal(t, Sort{}, s)

	for _, bad := range []string{"password_asc", "name_sideways", "name", "_asc", "name_"} {
		_, err := ParseSort(bad, allowed)
		assert.ErrorIs(t, err, ErrInvalidSort, bad)
	}
}

type row struct {
	ID        uint
	Name      string
	DeletedAt gorm.DeletedAt
}

func seed(t *testing.T, n int) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "page.db"),
		LogLevel: "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&row{}))
	for i := 1; i <= n; i++ {
		require.NoError(t, db.Create(&row{Name: fmt.Sprintf("row-%02d", i)}).Error)
	}
	return db
}

func TestPaginate(t *testing.T) {
	db := seed(t, 23)
	ctx := context.Background()

	res, err := Paginate[row](ctx, db.Model(&row{}), Params{Page: 2, Limit: 10}, Sort{})
	require.NoError(t, err)
	assert.Len(t, res.Data, 10)
	assert.EqualValues(t, 13, res.Data[0].ID)
	assert.Equal(t, Meta{Total: 23, LastPage: 3, CurrentPage: 2, PerPage: 10, Prev: intp(1), Next: intp(3)}, res.Meta)

	res, err = Paginate[row](ctx, db.Model(&row{}), Params{Page: 3, Limit: 10}, Sort{Column: "name"})
	require.NoError(t, err)
	assert.Len(t, res.Data, 3)
	assert.Equal(t, "row-21", res.Data[0].Name)
	assert.Nil(t, res.Meta.Next)
}

func TestPaginate_FiltersAndSoftDelete(t *testing.T) {
	db := seed(t, 5)
	ctx := context.Background()
	require.NoError(t, db.Delete(&row{}, 1).Error)

	res, err := Paginate[row](ctx, db.Model(&row{}).Where("id <= ?", 3), Params{Page: 1, Limit: 10}, Sort{Column: "id", Desc: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Meta.Total)
	require.Len(t, res.Data, 2)
	assert.EqualValues(t, 3, res.Data[0].ID)
}

func TestPaginate_EmptyDataIsNotNil(t *testing.T) {
	db := seed(t, 0)
	res, err := Paginate[row](context.Background(), db.Model(&row{}), Params{Page: 4, Limit: 10}, Sort{})
	require.NoError(t, err)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
}

package repository

import (
	"context"
	"testing"

	repo "shop/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return gormDB, mock
}

// stock >= qty を満たす行があるときだけUPDATEされる
func TestDecreaseStockIfEnough_Enough(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewInventoryGormRepository(db)

	mock.ExpectExec(`UPDATE "products" SET .+ WHERE id = \$\d+ AND stock >= \$\d+`).
		WithArgs(int64(2), sqlmock.AnyArg(), int64(5), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := r.DecreaseStockIfEnough(context.Background(), 5, 2)

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 在庫不足はRowsAffected=0で返る（エラーにはしない）
func TestDecreaseStockIfEnough_NotEnough(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewInventoryGormRepository(db)

	mock.ExpectExec(`UPDATE "products" SET .+ WHERE id = \$\d+ AND stock >= \$\d+`).
		WithArgs(int64(99), sqlmock.AnyArg(), int64(5), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := r.DecreaseStockIfEnough(context.Background(), 5, 99)

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncreaseStock_MissingProduct(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewInventoryGormRepository(db)

	mock.ExpectExec(`UPDATE "products" SET .+ WHERE id = \$\d+`).
		WithArgs(int64(3), sqlmock.AnyArg(), int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.IncreaseStock(context.Background(), 404, 3)

	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStock_Success(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewInventoryGormRepository(db)

	mock.ExpectExec(`UPDATE "products" SET .+ WHERE id = \$\d+`).
		WithArgs(int64(10), sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.SetStock(context.Background(), 5, 10)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

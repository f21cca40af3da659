package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
	"shop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAdminOrderUsecase(repos *txReposStub) *usecase.AdminOrderUsecase {
	return usecase.NewAdminOrderUsecase(newTxManagerStub(repos))
}

func TestAdminList_ReturnsTotalCount(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposStub()

	f := repo.AdminOrderListFilter{Page: 1, Limit: 20}
	repos.orders.On("ListAdmin", mock.Anything, f).Return([]model.Order{
		{ID: 1, UserID: 1, Status: model.OrderStatusPending},
	}, int64(42), nil)
	repos.items.On("ListByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{}, nil)

	uc := newAdminOrderUsecase(repos)
	outs, total, err := uc.List(ctx, f)

	assert.NoError(t, err)
	assert.Len(t, outs, 1)
	assert.Equal(t, int64(42), total)
}

func TestAdminList_InvalidStatusFilter(t *testing.T) {
	uc := newAdminOrderUsecase(newTxReposStub())

	_, _, err := uc.List(context.Background(), repo.AdminOrderListFilter{
		Page: 1, Limit: 20, Status: "UNKNOWN",
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestAdminUpdateStatus_ValidTransition(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposStub()

	repos.orders.On("FindByID", mock.Anything, int64(50)).Return(model.Order{
		ID: 50, UserID: 1, Status: model.OrderStatusProcessing,
	}, nil)
	repos.orders.On("UpdateStatus", mock.Anything, int64(50), model.OrderStatusShipped).Return(nil)

	// 監査ログはステータス変更と同じTx内で書かれる
	repos.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceType == model.AuditResourceOrder &&
			l.ResourceID == 50 &&
			l.ActorUserID == 9
	})).Return(nil)

	uc := newAdminOrderUsecase(repos)
	err := uc.UpdateStatus(ctx, 9, 50, usecase.AdminUpdateOrderStatusInput{Status: "SHIPPED"})

	assert.NoError(t, err)
	repos.orders.AssertExpectations(t)
	repos.audit.AssertExpectations(t)
}

// DELIVEREDからPENDINGへの巻き戻しは拒否される
func TestAdminUpdateStatus_InvalidTransition(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposStub()

	repos.orders.On("FindByID", mock.Anything, int64(50)).Return(model.Order{
		ID: 50, UserID: 1, Status: model.OrderStatusDelivered,
	}, nil)

	uc := newAdminOrderUsecase(repos)
	err := uc.UpdateStatus(ctx, 9, 50, usecase.AdminUpdateOrderStatusInput{Status: "PENDING"})

	assertHTTPStatus(t, err, http.StatusConflict)
	assertErrContains(t, err, "invalid status transition")
	repos.orders.AssertNotCalled(t, "UpdateStatus")
}

func TestAdminUpdateStatus_SameStatusIsNoop(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposStub()

	repos.orders.On("FindByID", mock.Anything, int64(50)).Return(model.Order{
		ID: 50, UserID: 1, Status: model.OrderStatusShipped,
	}, nil)

	uc := newAdminOrderUsecase(repos)
	err := uc.UpdateStatus(ctx, 9, 50, usecase.AdminUpdateOrderStatusInput{Status: "SHIPPED"})

	assert.NoError(t, err)
	repos.orders.AssertNotCalled(t, "UpdateStatus")
	repos.audit.AssertNotCalled(t, "Create")
}

func TestAdminUpdateStatus_UnknownStatus(t *testing.T) {
	uc := newAdminOrderUsecase(newTxReposStub())

	err := uc.UpdateStatus(context.Background(), 9, 50, usecase.AdminUpdateOrderStatusInput{Status: "REFUNDED"})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

// 管理者キャンセルでも在庫を戻す
func TestAdminUpdateStatus_CancelRestoresStock(t *testing.T) {
	ctx := context.Background()
	repos := newTxReposStub()

	repos.orders.On("FindByID", mock.Anything, int64(50)).Return(model.Order{
		ID: 50, UserID: 1, Status: model.OrderStatusProcessing,
	}, nil)
	repos.items.On("ListByOrderID", mock.Anything, int64(50)).Return([]model.OrderItem{
		{ProductID: 5, Quantity: 2},
	}, nil)
	repos.inventory.On("IncreaseStock", mock.Anything, int64(5), int64(2)).Return(nil)
	repos.orders.On("UpdateStatus", mock.Anything, int64(50), model.OrderStatusCancelled).Return(nil)
	repos.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := newAdminOrderUsecase(repos)
	err := uc.UpdateStatus(ctx, 9, 50, usecase.AdminUpdateOrderStatusInput{Status: "CANCELLED"})

	assert.NoError(t, err)
	repos.inventory.AssertExpectations(t)
	repos.orders.AssertExpectations(t)
}

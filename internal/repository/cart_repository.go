package repository

import (
	"context"

	"shop/internal/domain/model"
)

type CartRepository interface {
	// 無ければ作る。user_idのunique制約前提でINSERT衝突時は再取得する
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	Clear(ctx context.Context, cartID int64) error
}

package usecase

import (
	"context"
	"errors"
)

// 決済が拒否された（ゲートウェイ自体は正常応答）
var ErrPaymentDeclined = errors.New("payment declined")

// ゲートウェイに渡す決済内容。金額は最小通貨単位。
type ChargeInput struct {
	AmountMinor        int64
	Currency           string
	PaymentMethodToken string
}

// ゲートウェイが返す参照ID（注文のpayment_refに保存する）
type ChargeResult struct {
	ReferenceID string
}

// 外部決済サービスとの約束。
// Chargeは同期確定（リダイレクト不可）で呼ぶ。
type PaymentGateway interface {
	Charge(ctx context.Context, in ChargeInput) (ChargeResult, error)
	//オーソリ取り消し（ベストエフォートの補償用）
	Refund(ctx context.Context, referenceID string) error
}

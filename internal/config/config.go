package config

import (
	"fmt"
	"os"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret string // JWT署名シークレット

	PaymentAPIURL string // 決済ゲートウェイのURL
	PaymentAPIKey string // 決済ゲートウェイのAPIキー
	Currency      string // 決済通貨（jpy）

	GoEnv string // dev/prod
}

// Loadは環境変数から設定を読み込む。
// DB接続情報はinfra/db側でDATABASE_URL / POSTGRES_*を読む。
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		PaymentAPIURL: os.Getenv("PAYMENT_API_URL"),
		PaymentAPIKey: os.Getenv("PAYMENT_API_KEY"),
		Currency:      os.Getenv("CURRENCY"),

		GoEnv: os.Getenv("GO_ENV"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.PaymentAPIURL == "" {
		return Config{}, fmt.Errorf("PAYMENT_API_URL is required")
	}
	if cfg.PaymentAPIKey == "" {
		return Config{}, fmt.Errorf("PAYMENT_API_KEY is required")
	}

	//デフォルト
	if cfg.Currency == "" {
		cfg.Currency = "jpy"
	}
	if cfg.GoEnv == "" {
		cfg.GoEnv = "dev"
	}

	return cfg, nil
}

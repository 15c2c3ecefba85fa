// 認証サービスのエントリポイント。
// ユーザー登録、パスワード検証、アクセストークンの発行を担当する。
package main

import (
	"log"

	"github.com/knaka256/ocrhub/internal/auth"
)

func main() {
	cfg := auth.LoadConfig()

	server, err := auth.NewServer(cfg)
	if err != nil {
		log.Fatalf("認証サーバーの初期化に失敗: %v", err)
	}

	log.Printf("認証サービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("認証サービスの起動に失敗: %v", err)
	}
}

// 統計サービスのエントリポイント。
// 各サービスの利用実績の記録と集計を担当する。
package main

import (
	"log"

	"github.com/knaka256/ocrhub/internal/stats"
)

func main() {
	cfg := stats.LoadConfig()

	server, err := stats.NewServer(cfg)
	if err != nil {
		log.Fatalf("統計サーバーの初期化に失敗: %v", err)
	}

	log.Printf("統計サービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("統計サービスの起動に失敗: %v", err)
	}
}

// 画像処理サービスのエントリポイント。
// 画像バッチへのOCR実行と結果の永続化を担当する。
package main

import (
	"log"

	"github.com/knaka256/ocrhub/internal/ocr"
)

func main() {
	cfg := ocr.LoadConfig()

	server, err := ocr.NewServer(cfg)
	if err != nil {
		log.Fatalf("画像処理サーバーの初期化に失敗: %v", err)
	}

	log.Printf("画像処理サービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("画像処理サービスの起動に失敗: %v", err)
	}
}

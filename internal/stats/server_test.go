package stats

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"github.com/knaka256/ocrhub/pkg/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testJWTSecret はテスト用のJWT署名秘密鍵。
const testJWTSecret = "test-secret-key"

// newTestServer はインメモリSQLiteを使うテスト用の統計サーバーを生成する。
func newTestServer(t *testing.T) *Server {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリDB接続に失敗: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := initSchema(sqlDB); err != nil {
		t.Fatalf("スキーマ初期化に失敗: %v", err)
	}

	router := gin.New()
	s := &Server{
		router: router,
		config: Config{Port: "0", JWTSecret: testJWTSecret},
		store:  NewStore(sqlDB),
		db:     sqlDB,
	}
	s.setupRoutes()

	return s
}

// record はテスト用サーバーに利用実績を記録する。
func record(t *testing.T, s *Server, service, event string, count int) {
	t.Helper()

	jsonBody, err := json.Marshal(map[string]any{"service": service, "event": event, "count": count})
	if err != nil {
		t.Fatalf("リクエストボディのシリアライズに失敗: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stats/record", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("記録に失敗: status=%d, body=%s", w.Code, w.Body.String())
	}
}

// TestHandleRecord は利用実績記録エンドポイントを検証する。
func TestHandleRecord(t *testing.T) {
	t.Parallel()

	t.Run("必須フィールドがない場合に400を返すこと", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t)

		jsonBody, _ := json.Marshal(map[string]string{"service": "ocr"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/stats/record", bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		s.router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

// TestHandleSummary は集計エンドポイントを検証する。
func TestHandleSummary(t *testing.T) {
	t.Parallel()

	// getSummary はAuthorizationヘッダー付きでGET /stats/を実行する。
	getSummary := func(t *testing.T, s *Server, authHeader string) *httptest.ResponseRecorder {
		t.Helper()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/stats/", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		s.router.ServeHTTP(w, req)
		return w
	}

	t.Run("記録された実績がイベント種別ごとに集計されること", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t)

		record(t, s, "ocr", "image_processed", 3)
		record(t, s, "ocr", "image_processed", 2)
		record(t, s, "ocr", "image_failed", 1)

		tokenString, err := token.Issue(testJWTSecret, "alice", time.Hour)
		if err != nil {
			t.Fatalf("テスト用トークンの発行に失敗: %v", err)
		}

		w := getSummary(t, s, "Bearer "+tokenString)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
		}

		var summary Summary
		if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
			t.Fatalf("レスポンスの解析に失敗: %v", err)
		}
		if summary.Totals["image_processed"] != 5 {
			t.Errorf("image_processed = %d, want 5", summary.Totals["image_processed"])
		}
		if summary.Totals["image_failed"] != 1 {
			t.Errorf("image_failed = %d, want 1", summary.Totals["image_failed"])
		}
		if summary.Recorded != 3 {
			t.Errorf("recorded = %d, want 3", summary.Recorded)
		}
	})

	t.Run("トークンなしのリクエストで401を返すこと", func(t *testing.T) {
		t.Parallel()
		s := newTestServer(t)

		if w := getSummary(t, s, ""); w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}

package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

// newTestStore はインメモリSQLiteを使うテスト用ストアを生成する。
// コネクションプールが複数接続を張るとインメモリDBが分裂するため、
// 最大接続数を1に制限する。
func newTestStore(t *testing.T) *Store {
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

	return NewStore(sqlDB)
}

// TestStoreRegister はユーザー登録を検証する。
func TestStoreRegister(t *testing.T) {
	t.Parallel()

	t.Run("登録後に同じパスワードで検証に成功すること", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		ctx := context.Background()

		registered, err := store.Register(ctx, "alice", "s3cret-pass")
		if err != nil {
			t.Fatalf("Register()でエラーが発生: %v", err)
		}
		if registered.Username != "alice" {
			t.Errorf("Username = %q, want %q", registered.Username, "alice")
		}
		if registered.ID == "" {
			t.Error("IDが空")
		}

		verified, err := store.Verify(ctx, "alice", "s3cret-pass")
		if err != nil {
			t.Fatalf("Verify()でエラーが発生: %v", err)
		}
		if verified.ID != registered.ID {
			t.Errorf("ID = %q, want %q", verified.ID, registered.ID)
		}
	})

	t.Run("平文パスワードを保存しないこと", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		ctx := context.Background()

		if _, err := store.Register(ctx, "alice", "s3cret-pass"); err != nil {
			t.Fatalf("Register()でエラーが発生: %v", err)
		}

		var passwordHash string
		err := store.db.QueryRowContext(ctx,
			`SELECT password_hash FROM users WHERE username = ?`, "alice",
		).Scan(&passwordHash)
		if err != nil {
			t.Fatalf("password_hashの取得に失敗: %v", err)
		}
		if passwordHash == "s3cret-pass" {
			t.Error("パスワードが平文のまま保存されている")
		}
	})

	t.Run("重複ユーザー名の登録がErrDuplicateUsernameで失敗し二重登録されないこと", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		ctx := context.Background()

		if _, err := store.Register(ctx, "alice", "first-pass"); err != nil {
			t.Fatalf("Register()でエラーが発生: %v", err)
		}

		if _, err := store.Register(ctx, "alice", "second-pass"); !errors.Is(err, ErrDuplicateUsername) {
			t.Errorf("Register() error = %v, want ErrDuplicateUsername", err)
		}

		var count int
		if err := store.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE username = ?`, "alice",
		).Scan(&count); err != nil {
			t.Fatalf("件数の取得に失敗: %v", err)
		}
		if count != 1 {
			t.Errorf("レコード数 = %d, want 1", count)
		}
	})
}

// TestStoreVerify はパスワード検証を検証する。
func TestStoreVerify(t *testing.T) {
	t.Parallel()

	t.Run("誤ったパスワードでErrInvalidCredentialsを返すこと", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		ctx := context.Background()

		if _, err := store.Register(ctx, "alice", "correct-pass"); err != nil {
			t.Fatalf("Register()でエラーが発生: %v", err)
		}

		if _, err := store.Verify(ctx, "alice", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Verify() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("存在しないユーザーでErrInvalidCredentialsを返すこと", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)

		if _, err := store.Verify(context.Background(), "nobody", "any-pass"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Verify() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("ユーザー名は大文字小文字を区別すること", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		ctx := context.Background()

		if _, err := store.Register(ctx, "alice", "s3cret-pass"); err != nil {
			t.Fatalf("Register()でエラーが発生: %v", err)
		}

		if _, err := store.Verify(ctx, "Alice", "s3cret-pass"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Verify() error = %v, want ErrInvalidCredentials", err)
		}
	})
}

// TestStoreGetByUsername はユーザー検索を検証する。
func TestStoreGetByUsername(t *testing.T) {
	t.Parallel()

	t.Run("存在しないユーザーでErrUserNotFoundを返すこと", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)

		if _, err := store.GetByUsername(context.Background(), "nobody"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("GetByUsername() error = %v, want ErrUserNotFound", err)
		}
	})
}

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrDuplicateUsername は既に存在するユーザー名での登録を表す。
var ErrDuplicateUsername = errors.New("ユーザー名は既に登録されています")

// ErrInvalidCredentials はユーザー名またはパスワードの不一致を表す。
// ユーザー不在とパスワード不一致を呼び出し側から区別できないようにする。
var ErrInvalidCredentials = errors.New("ユーザー名またはパスワードが正しくありません")

// ErrUserNotFound は主体のユーザーが存在しないことを表す。
var ErrUserNotFound = errors.New("ユーザーが見つかりません")

// User はユーザーレコードを表す。パスワードハッシュは外部に公開しない。
type User struct {
	// ID はユーザーの一意識別子（UUID）。
	ID string `json:"id"`
	// Username はユーザー名。大文字小文字を区別した完全一致で扱う。
	Username string `json:"username"`
	// passwordHash はbcryptハッシュ。JSONには含めない。
	passwordHash string
}

// Store はユーザー資格情報の保存と検証を行う。
type Store struct {
	db *sql.DB
}

// NewStore は新しい資格情報ストアを生成する。
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Register は新しいユーザーを登録する。パスワードはbcryptでハッシュ化して
// 保存し、平文は保持しない。ユーザー名が既に存在する場合は
// ErrDuplicateUsernameを返す。一意性の判定はUNIQUE制約に委ねるため、
// 同時登録の競合でも二重登録は発生しない。
func (s *Store) Register(ctx context.Context, username, password string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}

	user := User{
		ID:           uuid.New().String(),
		Username:     username,
		passwordHash: string(hash),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash) VALUES (?, ?, ?)`,
		user.ID, user.Username, user.passwordHash,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return User{}, ErrDuplicateUsername
		}
		return User{}, fmt.Errorf("ユーザーの登録に失敗: %w", err)
	}
	return user, nil
}

// Verify はユーザー名とパスワードを検証し、一致した場合にユーザーを返す。
// ユーザーが存在しない場合もパスワードが一致しない場合も
// ErrInvalidCredentialsを返す。比較はbcryptの定数時間比較に委ねる。
func (s *Store) Verify(ctx context.Context, username, password string) (User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.passwordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByUsername はユーザー名でユーザーを検索する。
// 存在しない場合はErrUserNotFoundを返す。
func (s *Store) GetByUsername(ctx context.Context, username string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = ?`,
		username,
	).Scan(&user.ID, &user.Username, &user.passwordHash)
	if err == sql.ErrNoRows {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return user, nil
}

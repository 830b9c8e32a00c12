package activities

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/nao1215/schoolactivities/pkg/migration"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore はSQLiteに活動を保持するStore実装。
// 既定のDSN ":memory:" ではプロセス終了とともにデータは失われる。
type SQLiteStore struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore はSQLiteデータベースを開き、マイグレーションと初期データ投入を行う。
// 初期データは活動テーブルが空の場合のみ投入する。
func NewSQLiteStore(ctx context.Context, dsn string, seed []Activity) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	// :memory: は接続ごとに別のデータベースになるため接続を1本に固定する
	db.SetMaxOpenConns(1)

	if _, err := migration.Run(ctx, db, migrationsFS, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("マイグレーションに失敗: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.seed(ctx, seed); err != nil {
		db.Close()
		return nil, fmt.Errorf("初期データの投入に失敗: %w", err)
	}
	return s, nil
}

// Close はデータベース接続を閉じる。
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// seed は活動テーブルが空の場合に初期データを投入する。
func (s *SQLiteStore) seed(ctx context.Context, seed []Activity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities").Scan(&count); err != nil {
		return fmt.Errorf("活動件数の取得に失敗: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, a := range seed {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO activities (name, description, schedule, max_participants) VALUES (?, ?, ?, ?)",
			a.Name, a.Description, a.Schedule, a.MaxParticipants,
		); err != nil {
			return fmt.Errorf("活動 %q の投入に失敗: %w", a.Name, err)
		}
		for _, email := range a.Participants {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO participants (activity_name, email) VALUES (?, ?)",
				a.Name, email,
			); err != nil {
				return fmt.Errorf("参加者 %q の投入に失敗: %w", email, err)
			}
		}
	}
	return tx.Commit()
}

// List は全活動を返す。
func (s *SQLiteStore) List(ctx context.Context) (map[string]Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, description, schedule, max_participants FROM activities ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("活動一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]Activity)
	for rows.Next() {
		a := Activity{Participants: []string{}}
		if err := rows.Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants); err != nil {
			return nil, fmt.Errorf("活動の読み取りに失敗: %w", err)
		}
		result[a.Name] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("活動一覧の取得に失敗: %w", err)
	}

	prows, err := s.db.QueryContext(ctx,
		"SELECT activity_name, email FROM participants ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("参加者一覧の取得に失敗: %w", err)
	}
	defer func() { _ = prows.Close() }()

	for prows.Next() {
		var name, email string
		if err := prows.Scan(&name, &email); err != nil {
			return nil, fmt.Errorf("参加者の読み取りに失敗: %w", err)
		}
		a, ok := result[name]
		if !ok {
			continue
		}
		a.Participants = append(a.Participants, email)
		result[name] = a
	}
	if err := prows.Err(); err != nil {
		return nil, fmt.Errorf("参加者一覧の取得に失敗: %w", err)
	}
	return result, nil
}

// Get は指定された活動を返す。
func (s *SQLiteStore) Get(ctx context.Context, name string) (Activity, error) {
	a := Activity{Participants: []string{}}
	err := s.db.QueryRowContext(ctx,
		"SELECT name, description, schedule, max_participants FROM activities WHERE name = ?", name,
	).Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants)
	if errors.Is(err, sql.ErrNoRows) {
		return Activity{}, fmt.Errorf("活動 %q の取得に失敗: %w", name, ErrActivityNotFound)
	}
	if err != nil {
		return Activity{}, fmt.Errorf("活動 %q の取得に失敗: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT email FROM participants WHERE activity_name = ? ORDER BY id", name)
	if err != nil {
		return Activity{}, fmt.Errorf("参加者一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return Activity{}, fmt.Errorf("参加者の読み取りに失敗: %w", err)
		}
		a.Participants = append(a.Participants, email)
	}
	return a, rows.Err()
}

// Signup は活動の参加者にメールアドレスを追加する。
func (s *SQLiteStore) Signup(ctx context.Context, name, email string) error {
	return s.withParticipant(ctx, name, email, func(tx *sql.Tx, registered bool) error {
		if registered {
			return ErrAlreadySignedUp
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO participants (activity_name, email) VALUES (?, ?)", name, email)
		return err
	})
}

// Unregister は活動の参加者からメールアドレスを取り除く。
func (s *SQLiteStore) Unregister(ctx context.Context, name, email string) error {
	return s.withParticipant(ctx, name, email, func(tx *sql.Tx, registered bool) error {
		if !registered {
			return ErrNotRegistered
		}
		_, err := tx.ExecContext(ctx,
			"DELETE FROM participants WHERE activity_name = ? AND email = ?", name, email)
		return err
	})
}

// withParticipant は活動の存在と参加登録状態を確認したうえでfnをトランザクション内で実行する。
func (s *SQLiteStore) withParticipant(ctx context.Context, name, email string, fn func(tx *sql.Tx, registered bool) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM activities WHERE name = ?", name).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("活動 %q の更新に失敗: %w", name, ErrActivityNotFound)
	}
	if err != nil {
		return fmt.Errorf("活動 %q の取得に失敗: %w", name, err)
	}

	var registered int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM participants WHERE activity_name = ? AND email = ?", name, email,
	).Scan(&registered); err != nil {
		return fmt.Errorf("参加登録状態の取得に失敗: %w", err)
	}

	if err := fn(tx, registered > 0); err != nil {
		return fmt.Errorf("活動 %q の更新に失敗: %w", name, err)
	}
	return tx.Commit()
}

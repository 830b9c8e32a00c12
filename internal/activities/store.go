package activities

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrActivityNotFound は指定された活動が存在しないことを表す。
	ErrActivityNotFound = errors.New("activity not found")
	// ErrAlreadySignedUp はメールアドレスが既に参加登録済みであることを表す。
	ErrAlreadySignedUp = errors.New("student is already signed up")
	// ErrNotRegistered はメールアドレスが参加登録されていないことを表す。
	ErrNotRegistered = errors.New("student is not registered for this activity")
)

// Activity は課外活動1件分の情報を表す。
type Activity struct {
	// Name は活動名。活動一覧のキーとして使うためJSONには含めない。
	Name string `json:"-"`
	// Description は活動の説明。
	Description string `json:"description"`
	// Schedule は活動日時の表記。
	Schedule string `json:"schedule"`
	// MaxParticipants は定員。参加登録時には検査しない。
	MaxParticipants int `json:"max_participants"`
	// Participants は登録順に並んだ参加者のメールアドレス。
	Participants []string `json:"participants"`
}

// clone は参加者スライスを共有しないコピーを返す。
func (a Activity) clone() Activity {
	participants := make([]string, len(a.Participants))
	copy(participants, a.Participants)
	a.Participants = participants
	return a
}

// hasParticipant はメールアドレスが参加者に含まれているかを返す。
func (a Activity) hasParticipant(email string) bool {
	return slices.Contains(a.Participants, email)
}

// Store は活動と参加者の状態を管理する。
// 実装は返却する値を呼び出し側と共有してはならない。
type Store interface {
	// List は活動名をキーとした全活動を返す。
	List(ctx context.Context) (map[string]Activity, error)
	// Get は指定された活動を返す。存在しない場合はErrActivityNotFoundを返す。
	Get(ctx context.Context, name string) (Activity, error)
	// Signup は活動の参加者の末尾にメールアドレスを追加する。
	Signup(ctx context.Context, name, email string) error
	// Unregister は活動の参加者からメールアドレスを取り除く。
	Unregister(ctx context.Context, name, email string) error
}

const (
	// BackendMemory はインメモリのmapを使うStore実装を表す。
	BackendMemory = "memory"
	// BackendSQLite はSQLiteを使うStore実装を表す。
	BackendSQLite = "sqlite"
)

// OpenStore はバックエンド名に応じたStoreを初期データ付きで生成する。
// 返却されるcloseは呼び出し側が終了時に呼ぶ。
func OpenStore(ctx context.Context, backend, dsn string) (Store, func() error, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(DefaultActivities()), func() error { return nil }, nil
	case BackendSQLite:
		s, err := NewSQLiteStore(ctx, dsn, DefaultActivities())
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("未対応のストア種別です: %q", backend)
	}
}

package activities

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore はプロセス内のmapで活動を保持するStore実装。
type MemoryStore struct {
	// mu はactivitiesへのアクセスを直列化する。
	mu sync.RWMutex
	// activities は活動名をキーとした活動。
	activities map[string]*Activity
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore は初期データを複製して新しいMemoryStoreを生成する。
// 同名の活動が複数ある場合は後のものが優先される。
func NewMemoryStore(seed []Activity) *MemoryStore {
	activities := make(map[string]*Activity, len(seed))
	for _, a := range seed {
		c := a.clone()
		activities[a.Name] = &c
	}
	return &MemoryStore{activities: activities}
}

// List は全活動のコピーを返す。
func (s *MemoryStore) List(_ context.Context) (map[string]Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]Activity, len(s.activities))
	for name, a := range s.activities {
		result[name] = a.clone()
	}
	return result, nil
}

// Get は指定された活動のコピーを返す。
func (s *MemoryStore) Get(_ context.Context, name string) (Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.activities[name]
	if !ok {
		return Activity{}, fmt.Errorf("活動 %q の取得に失敗: %w", name, ErrActivityNotFound)
	}
	return a.clone(), nil
}

// Signup は活動の参加者にメールアドレスを追加する。
func (s *MemoryStore) Signup(_ context.Context, name, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[name]
	if !ok {
		return fmt.Errorf("活動 %q への参加登録に失敗: %w", name, ErrActivityNotFound)
	}
	if a.hasParticipant(email) {
		return fmt.Errorf("活動 %q への参加登録に失敗: %w", name, ErrAlreadySignedUp)
	}
	a.Participants = append(a.Participants, email)
	return nil
}

// Unregister は活動の参加者からメールアドレスを取り除く。
// 残りの参加者の順序は維持する。
func (s *MemoryStore) Unregister(_ context.Context, name, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[name]
	if !ok {
		return fmt.Errorf("活動 %q の登録解除に失敗: %w", name, ErrActivityNotFound)
	}
	for i, p := range a.Participants {
		if p == email {
			a.Participants = append(a.Participants[:i], a.Participants[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("活動 %q の登録解除に失敗: %w", name, ErrNotRegistered)
}

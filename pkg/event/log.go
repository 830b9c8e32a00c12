package event

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Log はイベントを追記順に保持するプロセス内のイベントログ。
// ゼロ値のまま使用できる。
type Log struct {
	mu     sync.RWMutex
	events []Event
	// versions はAggregateIDごとの最新バージョン。
	versions map[string]int64
	// now はテスト用に差し替え可能な現在時刻の取得関数。
	now func() time.Time
}

// NewLog は空のイベントログを生成する。
func NewLog() *Log {
	return &Log{}
}

// Append はイベントを生成してログに追記する。
// dataはJSON形式にシリアライズされ、Versionは同じAggregateIDの直前のイベントに続く番号になる。
func (l *Log) Append(aggregateID string, aggregateType AggregateType, eventType Type, data any) (Event, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("イベントデータのシリアライズに失敗: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.versions == nil {
		l.versions = make(map[string]int64)
	}
	now := time.Now
	if l.now != nil {
		now = l.now
	}

	l.versions[aggregateID]++
	e := Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Version:       l.versions[aggregateID],
		CreatedAt:     now().UTC(),
	}
	l.events = append(l.events, e)
	return e, nil
}

// ByAggregateID は指定されたAggregateIDのイベントを追記順に返す。
// 該当するイベントが無い場合は空スライスを返す。
func (l *Log) ByAggregateID(aggregateID string) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]Event, 0)
	for _, e := range l.events {
		if e.AggregateID == aggregateID {
			result = append(result, e)
		}
	}
	return result
}

// Len はログに保持されているイベントの件数を返す。
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// DecodeData はイベントのDataフィールドを指定された型にデシリアライズする。
func DecodeData[T any](e Event) (*T, error) {
	var data T
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, fmt.Errorf("イベントデータのデシリアライズに失敗: %w", err)
	}
	return &data, nil
}

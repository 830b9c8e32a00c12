// Package event は参加登録の状態変更を表すイベントとプロセス内のイベントログを提供する。
package event

import (
	"encoding/json"
	"time"
)

// AggregateType はイベントの対象となるエンティティの種類を表す。
type AggregateType string

// AggregateTypeActivity は課外活動エンティティを表す。
const AggregateTypeActivity AggregateType = "Activity"

// Type はイベントの種類を表す。
type Type string

const (
	// TypeParticipantSignedUp は参加者が活動に登録されたことを表す。
	TypeParticipantSignedUp Type = "ParticipantSignedUp"
	// TypeParticipantUnregistered は参加者が活動から登録解除されたことを表す。
	TypeParticipantUnregistered Type = "ParticipantUnregistered"
)

// Event は参加登録に関する不変のイベントレコードを表す。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// AggregateID は対象エンティティの識別子。活動の場合は活動名。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// Version はAggregate内でのイベントの順序番号。1から始まる。
	Version int64 `json:"version"`
	// CreatedAt はイベントが作成された日時（UTC）。
	CreatedAt time.Time `json:"created_at"`
}

// ParticipantData は参加登録・登録解除イベントのデータ。
type ParticipantData struct {
	// Email は参加者のメールアドレス。
	Email string `json:"email"`
}

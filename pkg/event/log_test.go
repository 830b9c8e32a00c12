package event

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestLogAppend はイベントの追記を検証する。
func TestLogAppend(t *testing.T) {
	t.Parallel()

	t.Run("イベントのフィールドが正しく設定されること", func(t *testing.T) {
		t.Parallel()

		fixed := time.Date(2026, 4, 1, 9, 0, 0, 0, time.FixedZone("JST", 9*60*60))
		l := &Log{now: func() time.Time { return fixed }}

		e, err := l.Append("Chess Club", AggregateTypeActivity, TypeParticipantSignedUp, ParticipantData{Email: "a@school.com"})
		if err != nil {
			t.Fatalf("Append()でエラーが発生: %v", err)
		}
		if _, err := uuid.Parse(e.ID); err != nil {
			t.Errorf("IDがUUID形式ではない: %q", e.ID)
		}
		if e.AggregateID != "Chess Club" {
			t.Errorf("AggregateID = %q, want %q", e.AggregateID, "Chess Club")
		}
		if e.AggregateType != AggregateTypeActivity {
			t.Errorf("AggregateType = %q, want %q", e.AggregateType, AggregateTypeActivity)
		}
		if e.EventType != TypeParticipantSignedUp {
			t.Errorf("EventType = %q, want %q", e.EventType, TypeParticipantSignedUp)
		}
		if string(e.Data) != `{"email":"a@school.com"}` {
			t.Errorf("Data = %s, want %s", e.Data, `{"email":"a@school.com"}`)
		}
		if e.Version != 1 {
			t.Errorf("Version = %d, want 1", e.Version)
		}
		if !e.CreatedAt.Equal(fixed) || e.CreatedAt.Location() != time.UTC {
			t.Errorf("CreatedAt = %v, want %v in UTC", e.CreatedAt, fixed)
		}
	})

	t.Run("バージョンがAggregateIDごとに採番されること", func(t *testing.T) {
		t.Parallel()

		l := NewLog()
		for _, id := range []string{"Art Club", "Art Club", "Drama Club", "Art Club"} {
			if _, err := l.Append(id, AggregateTypeActivity, TypeParticipantSignedUp, ParticipantData{}); err != nil {
				t.Fatalf("Append()でエラーが発生: %v", err)
			}
		}

		art := l.ByAggregateID("Art Club")
		if len(art) != 3 {
			t.Fatalf("Art Clubのイベント数 = %d, want 3", len(art))
		}
		for i, e := range art {
			if e.Version != int64(i+1) {
				t.Errorf("art[%d].Version = %d, want %d", i, e.Version, i+1)
			}
		}
		drama := l.ByAggregateID("Drama Club")
		if len(drama) != 1 || drama[0].Version != 1 {
			t.Errorf("Drama Clubのイベント = %+v, want version 1 のみ", drama)
		}
		if l.Len() != 4 {
			t.Errorf("Len() = %d, want 4", l.Len())
		}
	})

	t.Run("シリアライズできないデータはエラーになること", func(t *testing.T) {
		t.Parallel()

		l := NewLog()
		if _, err := l.Append("x", AggregateTypeActivity, TypeParticipantSignedUp, make(chan int)); err == nil {
			t.Error("チャネルのシリアライズでエラーが返るべき")
		}
		if l.Len() != 0 {
			t.Errorf("Len() = %d, want 0", l.Len())
		}
	})

	t.Run("並行に追記してもバージョンが重複しないこと", func(t *testing.T) {
		t.Parallel()

		var l Log
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = l.Append("Gym Class", AggregateTypeActivity, TypeParticipantSignedUp, ParticipantData{})
			}()
		}
		wg.Wait()

		seen := make(map[int64]bool)
		for _, e := range l.ByAggregateID("Gym Class") {
			if seen[e.Version] {
				t.Errorf("バージョン %d が重複している", e.Version)
			}
			seen[e.Version] = true
		}
		if len(seen) != 50 {
			t.Errorf("バージョン数 = %d, want 50", len(seen))
		}
	})
}

// TestLogByAggregateID は存在しないAggregateIDの取得を検証する。
func TestLogByAggregateID(t *testing.T) {
	t.Parallel()

	l := NewLog()
	got := l.ByAggregateID("Nonexistent Club")
	if got == nil {
		t.Fatal("ByAggregateID()はnilではなく空スライスを返すべき")
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

// TestDecodeData はイベントデータのデシリアライズを検証する。
func TestDecodeData(t *testing.T) {
	t.Parallel()

	t.Run("ParticipantDataに復元できること", func(t *testing.T) {
		t.Parallel()

		e := Event{Data: []byte(`{"email":"b@school.com"}`)}
		data, err := DecodeData[ParticipantData](e)
		if err != nil {
			t.Fatalf("DecodeData()でエラーが発生: %v", err)
		}
		if data.Email != "b@school.com" {
			t.Errorf("Email = %q, want %q", data.Email, "b@school.com")
		}
	})

	t.Run("不正なJSONはエラーになること", func(t *testing.T) {
		t.Parallel()

		e := Event{Data: []byte(`{invalid`)}
		if _, err := DecodeData[ParticipantData](e); err == nil {
			t.Error("不正なJSONでエラーが返るべき")
		}
	})
}

package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/schoolactivities/internal/activities"
	"github.com/nao1215/schoolactivities/internal/config"
	"github.com/nao1215/schoolactivities/pkg/event"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// startServer は実際の課外活動サーバーをhttptestで起動する。
func startServer(t *testing.T) string {
	t.Helper()

	cfg := config.Config{Port: "0", Store: activities.BackendMemory}
	s := activities.NewServer(cfg, activities.NewMemoryStore(activities.DefaultActivities()), event.NewLog())
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

// TestRun はサブコマンドの実行結果を検証する。
func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("listで活動一覧が出力されること", func(t *testing.T) {
		t.Parallel()
		base := startServer(t)

		var stdout, stderr bytes.Buffer
		if code := run(t.Context(), []string{"-url", base, "list"}, &stdout, &stderr); code != 0 {
			t.Fatalf("終了コード = %d, stderr=%s", code, stderr.String())
		}
		var got map[string]any
		if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
			t.Fatalf("出力のパースに失敗: %v", err)
		}
		if _, ok := got["Chess Club"]; !ok {
			t.Errorf("Chess Clubが出力に含まれていない: %s", stdout.String())
		}
	})

	t.Run("signupとunregisterのメッセージが出力されること", func(t *testing.T) {
		t.Parallel()
		base := startServer(t)

		var stdout, stderr bytes.Buffer
		if code := run(t.Context(), []string{"-url", base, "signup", "Basketball Team", "cli@school.com"}, &stdout, &stderr); code != 0 {
			t.Fatalf("signupの終了コード = %d, stderr=%s", code, stderr.String())
		}
		if code := run(t.Context(), []string{"-url", base, "unregister", "Basketball Team", "cli@school.com"}, &stdout, &stderr); code != 0 {
			t.Fatalf("unregisterの終了コード = %d, stderr=%s", code, stderr.String())
		}
		want := "Signed up cli@school.com for Basketball Team\nUnregistered cli@school.com from Basketball Team\n"
		if stdout.String() != want {
			t.Errorf("stdout = %q, want %q", stdout.String(), want)
		}
	})

	t.Run("サーバーのdetailがエラーとして出力されること", func(t *testing.T) {
		t.Parallel()
		base := startServer(t)

		var stdout, stderr bytes.Buffer
		code := run(t.Context(), []string{"-url", base, "signup", "Nonexistent Club", "a@school.com"}, &stdout, &stderr)
		if code != 1 {
			t.Errorf("終了コード = %d, want 1", code)
		}
		if !strings.Contains(stderr.String(), "(404): Activity not found") {
			t.Errorf("stderr = %q, want 404とdetailを含む", stderr.String())
		}
	})

	tests := []struct {
		name string
		args []string
	}{
		{name: "引数が無い場合", args: nil},
		{name: "不明なサブコマンド", args: []string{"remove"}},
		{name: "signupの引数不足", args: []string{"signup", "Chess Club"}},
		{name: "不明なフラグ", args: []string{"-unknown"}},
	}
	for _, tt := range tests {
		t.Run(tt.name+"は終了コード2になること", func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			if code := run(t.Context(), tt.args, &stdout, &stderr); code != 2 {
				t.Errorf("終了コード = %d, want 2", code)
			}
		})
	}
}

// 課外活動の参加登録サービスのエントリポイント。
// 固定の活動一覧に対して参加登録と登録解除を受け付ける。
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/schoolactivities/internal/activities"
	"github.com/nao1215/schoolactivities/internal/config"
	"github.com/nao1215/schoolactivities/pkg/event"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("課外活動サービスの起動に失敗: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := activities.OpenStore(ctx, cfg.Store, cfg.SQLiteDSN)
	if err != nil {
		return fmt.Errorf("ストアの初期化に失敗: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("ストアのクローズに失敗: %v", err)
		}
	}()

	server := activities.NewServer(cfg, store, event.NewLog())

	log.Printf("課外活動サービスを起動します: :%s (store=%s)", cfg.Port, cfg.Store)
	return server.Run(ctx)
}

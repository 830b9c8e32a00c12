package activities

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/schoolactivities/internal/config"
	"github.com/nao1215/schoolactivities/pkg/event"
	"github.com/nao1215/schoolactivities/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed static
var staticFiles embed.FS

// landingPath はルートパスからのリダイレクト先。
const landingPath = "/static/index.html"

// クライアントへ返すエラーメッセージ。
const (
	detailActivityNotFound = "Activity not found"
	detailAlreadySignedUp  = "Student is already signed up"
	detailNotRegistered    = "Student is not registered for this activity"
	detailEmailRequired    = "email query parameter is required"
	detailInternal         = "Internal server error"
)

// shutdownTimeout はRun終了時に処理中のリクエストを待つ最大時間。
const shutdownTimeout = 10 * time.Second

// Server は課外活動サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// store は活動と参加者を保持するストア。
	store Store
	// events は参加登録イベントのログ。
	events *event.Log
	// static は配信する静的ファイル。
	static fs.FS
}

// NewServer は新しい課外活動サーバーを生成する。
// storeとeventsは呼び出し側が所有し、サーバーは参照のみ保持する。
func NewServer(cfg config.Config, store Store, events *event.Log) *Server {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// embedしたディレクトリは必ず存在する
		panic(fmt.Sprintf("静的ファイルの読み込みに失敗: %v", err))
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		router: router,
		port:   cfg.Port,
		store:  store,
		events: events,
		static: static,
	}
	s.setupRoutes(cfg.EnableMetrics)

	return s
}

// Handler はサーバーのHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされるとグレースフルに停止する。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("サーバーを停止します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("サーバーの停止に失敗: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes(enableMetrics bool) {
	// ランディングページへのリダイレクト
	s.router.GET("/", s.handleRoot())
	// 静的ファイル
	s.router.GET("/static/*filepath", s.handleStatic())

	activities := s.router.Group("/activities")
	{
		// 活動一覧取得
		activities.GET("", s.handleList())
		// 参加登録
		activities.POST("/:name/signup", s.handleSignup())
		// 登録解除
		activities.DELETE("/:name/unregister", s.handleUnregister())
		// 参加登録イベント履歴取得
		activities.GET("/:name/events", s.handleListEvents())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "activities"})
	})

	if enableMetrics {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// handleRoot はランディングページへ307でリダイレクトするハンドラを返す。
func (s *Server) handleRoot() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, landingPath)
	}
}

// handleStatic はembedした静的ファイルを返すハンドラを返す。
// http.FileServerはindex.htmlへのリクエストをディレクトリへリダイレクトするため直接読み出す。
func (s *Server) handleStatic() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimPrefix(c.Param("filepath"), "/")
		if name == "" || strings.HasSuffix(name, "/") {
			name += "index.html"
		}
		if !fs.ValidPath(name) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
			return
		}

		data, err := fs.ReadFile(s.static, name)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
			return
		}

		contentType := mime.TypeByExtension(path.Ext(name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

// handleList は全活動を活動名をキーとしたJSONで返すハンドラを返す。
func (s *Server) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		activities, err := s.store.List(c.Request.Context())
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, activities)
	}
}

// handleSignup は参加登録を処理するハンドラを返す。
// 登録に成功するとParticipantSignedUpイベントを記録する。
func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		email, ok := s.requireEmail(c)
		if !ok {
			return
		}

		if err := s.store.Signup(c.Request.Context(), name, email); err != nil {
			s.writeError(c, err)
			return
		}

		signupsTotal.WithLabelValues(name).Inc()
		s.recordEvent(c, name, event.TypeParticipantSignedUp, email)

		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Signed up %s for %s", email, name)})
	}
}

// handleUnregister は登録解除を処理するハンドラを返す。
// 解除に成功するとParticipantUnregisteredイベントを記録する。
func (s *Server) handleUnregister() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		email, ok := s.requireEmail(c)
		if !ok {
			return
		}

		if err := s.store.Unregister(c.Request.Context(), name, email); err != nil {
			s.writeError(c, err)
			return
		}

		unregistrationsTotal.WithLabelValues(name).Inc()
		s.recordEvent(c, name, event.TypeParticipantUnregistered, email)

		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Unregistered %s from %s", email, name)})
	}
}

// handleListEvents は活動の参加登録イベントを追記順に返すハンドラを返す。
func (s *Server) handleListEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if _, err := s.store.Get(c.Request.Context(), name); err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, s.events.ByAggregateID(name))
	}
}

// requireEmail はクエリパラメータemailを取り出す。
// 未指定の場合は422を書き込みfalseを返す。
func (s *Server) requireEmail(c *gin.Context) (string, bool) {
	email := c.Query("email")
	if email == "" {
		requestErrorsTotal.WithLabelValues(reasonMissingEmail).Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": detailEmailRequired})
		return "", false
	}
	return email, true
}

// recordEvent はイベントログに参加登録イベントを追記する。
// 追記に失敗した場合はログに記録するが、リクエスト自体は成功として扱う。
func (s *Server) recordEvent(c *gin.Context, activity string, eventType event.Type, email string) {
	if _, err := s.events.Append(activity, event.AggregateTypeActivity, eventType, event.ParticipantData{Email: email}); err != nil {
		log.Printf("イベントの記録に失敗: request_id=%s, %v", middleware.GetRequestID(c), err)
	}
}

// writeError はストアのエラーをHTTPステータスとdetailに変換して書き込む。
func (s *Server) writeError(c *gin.Context, err error) {
	var (
		status int
		detail string
		reason string
	)
	switch {
	case errors.Is(err, ErrActivityNotFound):
		status, detail, reason = http.StatusNotFound, detailActivityNotFound, reasonNotFound
	case errors.Is(err, ErrAlreadySignedUp):
		status, detail, reason = http.StatusBadRequest, detailAlreadySignedUp, reasonAlreadySignedUp
	case errors.Is(err, ErrNotRegistered):
		status, detail, reason = http.StatusBadRequest, detailNotRegistered, reasonNotRegistered
	default:
		status, detail, reason = http.StatusInternalServerError, detailInternal, reasonInternal
		log.Printf("ストア操作エラー: request_id=%s, %v", middleware.GetRequestID(c), err)
	}

	requestErrorsTotal.WithLabelValues(reason).Inc()
	c.JSON(status, gin.H{"detail": detail})
}

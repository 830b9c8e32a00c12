package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// internalErrorDetail はパニック発生時にクライアントへ返すメッセージ。
const internalErrorDetail = "Internal server error"

// Recovery はパニックからの回復を行うGinミドルウェアを返す。
// パニック値をリクエストIDとともにログに出力し、500エラーを返す。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] request_id=%s %s %s: %v", GetRequestID(c), c.Request.Method, c.Request.URL.Path, r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"detail": internalErrorDetail,
				})
			}
		}()
		c.Next()
	}
}

// Package httpclient は課外活動サービスのJSON APIを呼び出すHTTPクライアントを提供する。
//
// activityctlコマンドやテストから使用する。2xx以外の応答は
// サーバーが返したdetailを含むStatusErrorとして返す。
package httpclient

// Package activities は課外活動の参加登録サービスの内部実装を提供する。
//
// 起動時に固定された活動の一覧を保持し、メールアドレスによる参加登録と
// 登録解除を受け付ける。活動の状態はStoreインターフェース越しに管理し、
// インメモリ実装とSQLite実装を差し替えられる。
//
// 主な機能:
//   - 活動一覧の取得
//   - 参加登録（重複登録は拒否）
//   - 登録解除（未登録者の解除は拒否）
//   - 参加イベント履歴の取得
package activities

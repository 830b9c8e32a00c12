// 課外活動サービスのコマンドラインクライアント。
//
// 使い方:
//
//	activityctl [-url URL] list
//	activityctl [-url URL] signup <activity> <email>
//	activityctl [-url URL] unregister <activity> <email>
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"

	"github.com/nao1215/schoolactivities/pkg/httpclient"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run はコマンドを実行し、終了コードを返す。
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("activityctl", flag.ContinueOnError)
	flags.SetOutput(stderr)
	baseURL := flags.String("url", envOr("ACTIVITIES_URL", "http://localhost:8080"), "課外活動サービスのベースURL")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	client := httpclient.New(*baseURL)
	rest := flags.Args()
	if len(rest) == 0 {
		fmt.Fprintln(stderr, "usage: activityctl [-url URL] list | signup <activity> <email> | unregister <activity> <email>")
		return 2
	}

	var err error
	switch rest[0] {
	case "list":
		err = list(ctx, client, stdout)
	case "signup", "unregister":
		if len(rest) != 3 {
			fmt.Fprintf(stderr, "usage: activityctl %s <activity> <email>\n", rest[0])
			return 2
		}
		err = mutate(ctx, client, rest[0], rest[1], rest[2], stdout)
	default:
		fmt.Fprintf(stderr, "不明なサブコマンドです: %s\n", rest[0])
		return 2
	}

	if err != nil {
		var se *httpclient.StatusError
		if errors.As(err, &se) {
			fmt.Fprintf(stderr, "エラー (%d): %s\n", se.StatusCode, se.Detail)
		} else {
			fmt.Fprintf(stderr, "エラー: %v\n", err)
		}
		return 1
	}
	return 0
}

// list は活動一覧をインデント付きJSONで出力する。
func list(ctx context.Context, client *httpclient.Client, stdout io.Writer) error {
	var activities map[string]json.RawMessage
	if err := client.GetJSON(ctx, "/activities", &activities); err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(activities)
}

// mutate は参加登録または登録解除を実行し、サーバーのメッセージを出力する。
func mutate(ctx context.Context, client *httpclient.Client, action, activity, email string, stdout io.Writer) error {
	path := "/activities/" + url.PathEscape(activity) + "/" + action + "?" + url.Values{"email": {email}}.Encode()

	var resp struct {
		Message string `json:"message"`
	}
	var err error
	if action == "signup" {
		err = client.PostJSON(ctx, path, nil, &resp)
	} else {
		err = client.DeleteJSON(ctx, path, &resp)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, resp.Message)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーを起動する（デフォルト）。
	CommandServe Command = "serve"
	// CommandWorker は期限切れセッションの掃除ジョブを起動する。
	CommandWorker Command = "worker"
	// CommandMigrate は埋め込みマイグレーションを適用する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のサーバーの/healthを確認する。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
	// CommandHelp は使い方を表示する。
	CommandHelp Command = "help"
)

// Usage はサブコマンドの一覧。
const Usage = `usage: skillmap [command]

commands:
  serve        start the API server (default)
  worker       purge expired sessions periodically
  migrate      apply database migrations
  healthcheck  GET /health on SERVER_PORT
  help         show this message
`

var commandsByArg = map[string]Command{
	"serve":       CommandServe,
	"worker":      CommandWorker,
	"migrate":     CommandMigrate,
	"healthcheck": CommandHealthcheck,
	"help":        CommandHelp,
	"-h":          CommandHelp,
	"--help":      CommandHelp,
}

// ParseCommand はコマンドライン引数の先頭からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}
	if cmd, ok := commandsByArg[args[0]]; ok {
		return cmd
	}
	return CommandServe
}

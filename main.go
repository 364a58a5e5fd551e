package main

import (
	"context"
	"os"

	"chatbot/cli"
)

func main() {
	app := cli.NewApp()
	err := cli.NewRootCmd(app).ExecuteContext(context.Background())
	// PersistentPostRun is skipped when a command fails
	app.Close()
	if err != nil {
		os.Exit(1)
	}
}

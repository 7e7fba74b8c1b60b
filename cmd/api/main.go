package main

import (
	"github.com/ilindan-dev/seq-chat-bridge/internal/app"
	"go.uber.org/fx"
)

// main is the entry point for the HTTP ingestion server.
func main() {
	fx.New(app.APIModule).Run()
}

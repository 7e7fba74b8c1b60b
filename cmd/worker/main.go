package main

import (
	"github.com/ilindan-dev/seq-chat-bridge/internal/app"
	"go.uber.org/fx"
)

// main is the entry point for the broker ingestion worker (RabbitMQ and Kafka).
func main() {
	fx.New(app.WorkerModule).Run()
}

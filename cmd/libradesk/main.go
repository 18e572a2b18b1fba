package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/libradesk/libradesk/internal/cli"
	"github.com/libradesk/libradesk/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		panic("load envs from .env: " + err.Error())
	}
	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.InfoLevel),
		config.WithWriteTimeout(time.Minute),
	)

	cli.Execute(cfg)
}

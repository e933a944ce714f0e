package main

import (
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/mattn/go-colorable"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Globals struct {
	LogLevel string `env:"LOG_LEVEL" enum:"debug,info,warn,error" default:"info" help:"Log level."`
}

type CLI struct {
	Globals
	Scan ScanCmd `cmd:"" default:"withargs" help:"Scans a Gnosis Safe's events and prints summary statistics."`
}

func main() {
	// Parse .env file.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatal(err)
	}

	// Parse CLI.
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("safe-stats"),
		kong.Description("Gathers statistics for a Gnosis Safe multisig."),
		kong.UsageOnError(),
		kong.Vars{
			"version": "0.0.1",
		},
	)

	// Setup logger.
	logLevel, err := zapcore.ParseLevel(cli.Globals.LogLevel)
	if err != nil {
		log.Fatal(fmt.Errorf("failed to parse log level: %w", err))
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(colorable.NewColorableStderr()),
		logLevel,
	))

	// Run the CLI.
	err = ctx.Run(logger, &cli.Globals)
	ctx.FatalIfErrorf(err)
}

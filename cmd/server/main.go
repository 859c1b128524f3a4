package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fleshka4/eth-mcp-server/internal/balance"
	"github.com/fleshka4/eth-mcp-server/internal/config"
	"github.com/fleshka4/eth-mcp-server/internal/ethnode"
	"github.com/fleshka4/eth-mcp-server/internal/mcpserver"
	"github.com/fleshka4/eth-mcp-server/internal/price"
	"github.com/fleshka4/eth-mcp-server/internal/swap"
	"github.com/fleshka4/eth-mcp-server/internal/tokens"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("config.Load: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("newLogger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	node, err := ethnode.Dial(cfg.RPCURL)
	if err != nil {
		logger.Fatal("ethnode.Dial", zap.Error(err))
	}

	swapSvc, err := swap.NewService(node, tokens.DefaultRegistry(), cfg.DefaultGasPriceWei, logger)
	if err != nil {
		logger.Fatal("swap.NewService", zap.Error(err))
	}
	balanceSvc, err := balance.NewService(node, logger)
	if err != nil {
		logger.Fatal("balance.NewService", zap.Error(err))
	}

	srv := mcpserver.New(swapSvc, balanceSvc, price.NewClient("", logger), cfg.RequestTimeout, logger)

	if cfg.ListenAddr == "" {
		err = srv.ServeStdio()
	} else {
		err = srv.ServeSSE(cfg.ListenAddr)
	}
	if err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}

// newLogger builds a production logger writing to stderr, keeping stdout
// free for the stdio protocol stream.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

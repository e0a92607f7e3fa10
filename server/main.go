package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/renojcpp/rawxfer/xfer"
	"github.com/sirupsen/logrus"
)

func main() {
	port := flag.Int("port", xfer.DefaultPort, "The port to listen on")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	logrus.SetOutput(os.Stderr)
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg := xfer.DefaultConfig()
	cfg.Port = *port
	if flag.NArg() == 1 {
		cfg.BufSize = xfer.ParseBufSize(flag.Arg(0))
	}
	logrus.Infof("server: buffer %d (min %d, max %d, default %d)",
		cfg.BufSize, xfer.MinBufSize, xfer.MaxBufSize, xfer.DefaultBufSize)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := xfer.NewListener(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Error("Error starting server")
		os.Exit(xfer.ExitCode(err))
	}

	if err := listener.Serve(ctx); err != nil {
		logrus.WithError(err).Error("Server stopped")
	}
	xfer.LogMetrics()
}

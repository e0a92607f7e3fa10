package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/renojcpp/rawxfer/xfer"
	"github.com/sirupsen/logrus"
)

func main() {
	port := flag.Int("port", xfer.DefaultPort, "The server port")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: client [-port N] [-v] hostname filename")
		flag.PrintDefaults()
	}
	flag.Parse()

	logrus.SetOutput(os.Stderr)
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	args, err := xfer.ParseClientArgs(flag.Args())
	if err != nil {
		flag.Usage()
		os.Exit(xfer.ExitCode(err))
	}

	connector := xfer.NewConnector(*port)
	if _, err := connector.Send(context.Background(), args.Host, args.Path); err != nil {
		fmt.Fprintf(os.Stderr, "client: %v\n", err)
		os.Exit(xfer.ExitCode(err))
	}
}

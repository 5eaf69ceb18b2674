package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"flashquiz-backend/internal/client"
	"flashquiz-backend/internal/logger"
	"flashquiz-backend/internal/quiz"
)

func main() {
	opts, err := loadOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(2)
	}

	mode := "production"
	if opts.Verbose {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Logger initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(opts.APIURL, opts.Timeout)
	reporter := quiz.NewAsyncReporter(api.Report, opts.Timeout, log)

	a := &app{
		api:      api,
		reporter: reporter,
		opts:     opts,
		in:       bufio.NewScanner(os.Stdin),
		out:      os.Stdout,
	}
	err = a.run(ctx)
	reporter.Wait()
	if err != nil {
		log.Error("quiz failed", "api_url", opts.APIURL, "error", err)
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}

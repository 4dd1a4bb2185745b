// seatmap is the terminal client for the theater booking service. It
// shows the live seat map of one performance, keeps it in sync with the
// server's push channel and submits bookings.
//
// Usage:
//
//	seatmap [--origin URL] [--layout FILE] [--log-file FILE]
//
// SEATMAP_ORIGIN, SEATMAP_LAYOUT and SEATMAP_LOG_FILE provide defaults, and
// a .env file in the working directory is loaded first when present.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/iliyamo/theater-seat-booking/internal/catalog"
	"github.com/iliyamo/theater-seat-booking/internal/client"
	"github.com/iliyamo/theater-seat-booking/internal/config"
	"github.com/iliyamo/theater-seat-booking/internal/session"
	"github.com/iliyamo/theater-seat-booking/internal/syncchan"
	"github.com/iliyamo/theater-seat-booking/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load() // a missing .env is fine
	cfg := config.LoadClient()

	flagSet := pflag.NewFlagSet("seatmap", pflag.ContinueOnError)
	flagSet.StringVar(&cfg.Origin, "origin", cfg.Origin, "origin of the booking server (http or https)")
	flagSet.StringVar(&cfg.LayoutPath, "layout", cfg.LayoutPath, "YAML seating layout (default: built-in theater)")
	flagSet.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "file receiving log output")
	flagSet.BoolVar(&cfg.Debug, "debug", cfg.Debug, "log ignored push messages")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	logFile, err := tea.LogToFile(cfg.LogFile, "seatmap")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := log.Default()

	layout, err := catalog.LoadLayout(cfg.LayoutPath)
	if err != nil {
		return err
	}
	cat, err := catalog.Generate(layout)
	if err != nil {
		return err
	}

	api, err := client.New(cfg.Origin)
	if err != nil {
		return err
	}
	pushURL, err := syncchan.PushURL(cfg.Origin)
	if err != nil {
		return err
	}
	channel := syncchan.New(pushURL, syncchan.WithLogger(logger), syncchan.WithDebug(cfg.Debug))
	defer channel.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := session.New(session.Config{
		Catalog: cat,
		Backend: api,
		Feed:    channel,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	program := tea.NewProgram(tui.New(sess), tea.WithAltScreen(), tea.WithContext(ctx))
	sess.SetObserver(tui.Forward(ctx, program))

	go func() {
		if err := sess.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Printf("seatmap: session ended: %v", err)
		}
	}()

	logger.Printf("seatmap: %d seats, server %s, push %s", cat.Len(), api.Origin(), pushURL)
	_, err = program.Run()
	stop()
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

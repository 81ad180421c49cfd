// gke-watch polls a gke-analyzer server for pods, diffs successive
// snapshots, and prints a notification line for every change.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/galgranov/gke-analyzer/internal/client/api"
	"github.com/galgranov/gke-analyzer/internal/client/listview"
	"github.com/galgranov/gke-analyzer/internal/client/notify"
	"github.com/galgranov/gke-analyzer/internal/client/podwatch"
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8080", "server base URL")
		user      = flag.String("user", "", "username or email")
		password  = flag.String("password", "", "password (or GKEWATCH_PASSWORD)")
		namespace = flag.String("namespace", "", "restrict to one namespace")
		interval  = flag.Duration("interval", 15*time.Second, "poll interval")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	pw := *password
	if pw == "" {
		pw = os.Getenv("GKEWATCH_PASSWORD")
	}
	if *user == "" || pw == "" {
		logger.Fatal("missing credentials: set -user and -password (or GKEWATCH_PASSWORD)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *baseURL, *user, pw, *namespace, *interval); err != nil {
		logger.Fatal("watch failed", zap.Error(err))
	}
}

func run(ctx context.Context, logger *zap.Logger, baseURL, user, password, namespace string, interval time.Duration) error {
	client := api.New(baseURL)

	session, err := client.Login(ctx, user, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	logger.Info("logged in", zap.String("username", session.User.Username))

	bus := notify.NewBus()
	events, cancel := bus.Subscribe()
	defer cancel()

	go func() {
		for n := range events {
			fmt.Printf("%s [%s] %s\n", n.Timestamp.Format(time.RFC3339), n.Severity, n.Message)
		}
	}()

	watcher := podwatch.NewWatcher(bus)
	view := listview.New(language.English)
	view.Sort(listview.FieldName)
	filter := api.PodFilter{Namespace: namespace}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		pods, err := client.ListPods(ctx, filter)
		if err != nil {
			logger.Warn("pod list failed", zap.Error(err))
		} else {
			watcher.Observe(view.Apply(pods))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

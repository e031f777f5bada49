package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ideadist.dev/cli/internal/interfaces/cli"
	"ideadist.dev/cli/internal/interfaces/di"
)

func main() {
	container := di.NewContainer(di.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		// Cancelling stops downloads and extraction; the cache discards partial work.
		container.GetLogger().LogWarning("Received shutdown signal, cancelling", nil)
		cancel()

		if err := container.Shutdown(ctx); err != nil {
			container.GetLogger().LogError(err, "Error during shutdown", nil)
		}
	}()

	cli.Execute(ctx, container.GetCLIContainer())
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	finddups "github.com/mattkeenan/finddups/pkg"
)

// setupSignalHandler returns a channel that is closed on the first SIGINT or
// SIGTERM. A second signal calls exit with the abort status straight away, for
// reads that cannot be interrupted (FIFOs, stalled network mounts).
func setupSignalHandler(exit func(int)) (<-chan struct{}, func()) {
	shutdown := make(chan struct{})
	done := make(chan struct{})

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			finddups.VerboseLog(1, "Received signal: %v", sig)
			close(shutdown)
		case <-done:
			return
		}

		select {
		case <-sigChan:
			exit(finddups.ExitAborted)
		case <-done:
		}
	}()

	stop := func() {
		signal.Stop(sigChan)
		close(done)
	}
	return shutdown, stop
}

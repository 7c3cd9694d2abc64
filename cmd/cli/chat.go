package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/techcorp/website/internal/chat"
	"github.com/techcorp/website/internal/stream"
)

func runChat(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	prompt := strings.Join(args, " ")

	store, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}

	sessionFlag, _ := cmd.Flags().GetString("session")
	if sessionFlag != "" {
		if _, ok := store.Session(sessionFlag); !ok {
			return fmt.Errorf("unknown session %s", sessionFlag)
		}

		store.SelectSession(sessionFlag)
	}

	client := stream.NewClient(cfg.RelayURL, newLogger())
	service := chat.NewService(store, client, newLogger())

	// Ctrl-C cancels the in-flight reply but keeps whatever streamed so far.
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	done := make(chan struct{})
	go func() {
		select {
		case <-interrupt:
			service.Cancel()
		case <-done:
		}
	}()

	service.SendMessage(prompt, func(chunk string) {
		fmt.Print(chunk)
	})
	close(done)

	fmt.Println()

	if message := store.Err(); message != "" {
		return errors.New(message)
	}

	return nil
}

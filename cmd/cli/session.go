package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage chat sessions",
	}

	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionNewCmd())
	cmd.AddCommand(newSessionShowCmd())
	cmd.AddCommand(newSessionDeleteCmd())

	return cmd
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List chat sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := openStore(cmd)
			if err != nil {
				return err
			}

			sessions := store.Sessions()
			if len(sessions) == 0 {
				fmt.Println("no sessions yet")
				return nil
			}

			currentID := store.CurrentSessionID()
			for _, s := range sessions {
				marker := " "
				if s.ID == currentID {
					marker = "*"
				}

				fmt.Printf("%s %s  %s  (%d messages, updated %s)\n",
					marker, s.ID, s.Title, len(s.Messages), s.UpdatedAt.Format("2006-01-02 15:04"))
			}

			return nil
		},
	}
}

func newSessionNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a fresh session and make it current",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := openStore(cmd)
			if err != nil {
				return err
			}

			fmt.Println(store.CreateSession())

			return nil
		},
	}
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Print a session transcript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(cmd)
			if err != nil {
				return err
			}

			sessionID := store.CurrentSessionID()
			if len(args) > 0 {
				sessionID = args[0]
			}
			if sessionID == "" {
				return fmt.Errorf("no current session, pass an id")
			}

			s, ok := store.Session(sessionID)
			if !ok {
				return fmt.Errorf("unknown session %s", sessionID)
			}

			fmt.Printf("%s (%s)\n", s.Title, s.ID)
			for _, msg := range s.Messages {
				fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
			}

			return nil
		},
	}
}

func newSessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(cmd)
			if err != nil {
				return err
			}

			if _, ok := store.Session(args[0]); !ok {
				return fmt.Errorf("unknown session %s", args[0])
			}

			store.DeleteSession(args[0])
			fmt.Println("deleted", args[0])

			return nil
		},
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var watchInterval time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 15*time.Second, "how often to print the synchronized state")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the sync layer and print the reconciled state as it changes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		s, err := makeStack(ctx)
		if err != nil {
			return err
		}
		defer s.close()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()

		printState(s)
		for {
			select {
			case <-sig:
				log.Info("shutting down")
				return nil
			case <-ticker.C:
				printState(s)
			}
		}
	},
}

func printState(s *stack) {
	selected, _ := s.workspaces.Selected()
	fmt.Printf("--- %s\n", time.Now().Format(time.RFC3339))
	fmt.Printf("realtime connected: %v\n", s.workspaces.Connected())
	fmt.Printf("unread notifications: %v\n", s.panel.UnreadCount())
	for _, ws := range s.workspaces.Workspaces() {
		marker := " "
		if ws.ID == selected {
			marker = "*"
		}
		fmt.Printf("%s %s (%s)\n", marker, ws.Name, ws.ID)
	}
	if starred := s.boards.Starred(); len(starred) > 0 {
		fmt.Printf("starred:")
		for _, b := range starred {
			fmt.Printf(" %s", b.Name)
		}
		fmt.Println()
	}
}

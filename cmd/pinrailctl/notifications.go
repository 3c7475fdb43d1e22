package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var readAll bool

func init() {
	readCmd.Flags().BoolVar(&readAll, "all", false, "mark every notification read")
	notificationsCmd.AddCommand(listCmd)
	notificationsCmd.AddCommand(readCmd)
	rootCmd.AddCommand(notificationsCmd)
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Inspect and update the notification panel.",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications with their read state.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := makeStack(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		// Opening the panel is always a foreground refresh.
		s.panel.Open(cmd.Context())

		for _, n := range s.panel.Notifications() {
			state := " "
			if !n.Read {
				state = "●"
			}
			fmt.Printf("%s %s  %s  %s\n", state, n.CreatedAt.Format("2006-01-02 15:04"), n.ID, n.Message)
		}
		fmt.Printf("%v unread\n", s.panel.UnreadCount())
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:   "read [notification-id]",
	Short: "Mark a notification (or all of them) read.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !readAll && len(args) != 1 {
			return errors.New("pass a notification ID or --all")
		}

		s, err := makeStack(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		s.panel.Open(cmd.Context())
		if readAll {
			s.panel.MarkAllRead(cmd.Context())
		} else {
			s.panel.MarkRead(cmd.Context(), args[0])
		}
		fmt.Printf("%v unread\n", s.panel.UnreadCount())
		return nil
	},
}

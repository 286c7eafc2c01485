package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ravel-chat/ravel/internal/chat"
	"github.com/ravel-chat/ravel/internal/client"
)

func NewLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against a homeserver and save the session record",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("server")
			if addr == "" {
				return fmt.Errorf("login requires --server")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			_, authAPI, err := dial(ctx, addr, nil)
			if err != nil {
				return err
			}
			sess, err := chat.RunLogin(ctx, authAPI)
			if err != nil {
				return err
			}
			path, err := sessionPath(cmd)
			if err != nil {
				return err
			}
			if err := client.WriteSessionFile(path, addr, *sess); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as user %d, session saved to %s\n", sess.UserID, path)
			return nil
		},
	}
	cmd.Flags().String("server", "", "homeserver address")
	return cmd
}

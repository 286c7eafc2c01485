package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ravel-chat/ravel/internal/chat"
	"github.com/ravel-chat/ravel/internal/client"
)

const AppName = "ravel"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Ravel - a modal terminal chat client",
		Long:          "Ravel is a modal terminal client for Harmony-style chat homeservers.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd)
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("session-file", "", "path to the session record (default ~/.config/ravel/session)")
	cmd.PersistentFlags().Bool("local", false, "run against an in-memory scratch homeserver")
	cmd.PersistentFlags().Bool("debug", false, "append debug logging to /tmp/ravel-debug.log")

	cmd.AddCommand(NewLoginCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd(Version).Execute()
}

func runChat(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	debug, _ := cmd.Flags().GetBool("debug")

	if local, _ := cmd.Flags().GetBool("local"); local {
		return runLocalChat(ctx, debug)
	}

	path, err := sessionPath(cmd)
	if err != nil {
		return err
	}
	addr, sess, err := client.ReadSessionFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no session record at %s: run `%s login` first", path, AppName)
		}
		return err
	}
	api, _, err := dial(ctx, addr, &sess)
	if err != nil {
		return err
	}
	return chat.Run(ctx, chat.Options{API: api, Session: sess, ServerName: addr, Debug: debug})
}

// runLocalChat spins up the in-memory homeserver, walks its canned login and
// drops into a seeded scratch guild. Useful for trying the client without a
// server, and for exercising the full stack by hand.
func runLocalChat(ctx context.Context, debug bool) error {
	local := client.NewLocal()
	local.Seed("scratch", "general", "random")
	sess, err := chat.RunLogin(ctx, local)
	if err != nil {
		return err
	}
	return chat.Run(ctx, chat.Options{API: local, Session: *sess, ServerName: "local", Debug: debug})
}

func sessionPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("session-file"); path != "" {
		return path, nil
	}
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(cfg, AppName, "session"), nil
}

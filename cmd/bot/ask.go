package main

import (
	"context"
	"fmt"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/chat-utility-bot/internal/command"
	"github.com/couchcryptid/chat-utility-bot/internal/config"
	"github.com/couchcryptid/chat-utility-bot/internal/observability"
)

func askCmd() *cobra.Command {
	var (
		userID  string
		options map[string]string
	)

	cmd := &cobra.Command{
		Use:   "ask <command> [text...]",
		Short: "Run one bot command from the terminal and print the reply",
		Long: `Run one bot command through the same router the Discord endpoint uses.

Trailing text fills the command's first option.

Examples:
  bot ask quote
  bot ask weather Paris --user 42 --opt save=true
  bot ask movie --opt mood=scared`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
			metrics := observability.NewMetrics()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.CommandTimeout)
			defer cancel()

			a, err := newApp(ctx, cfg, logger, metrics)
			if err != nil {
				return err
			}
			defer a.Close()

			auditCtx, stopAudit := context.WithCancel(context.WithoutCancel(ctx))
			auditDone := a.startAudit(auditCtx)
			defer func() {
				stopAudit()
				<-auditDone
			}()

			def, _ := a.router.Lookup(args[0])
			inv := buildInvocation(def, args, options, userID)
			res := a.router.Execute(ctx, inv)

			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return res.Err
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "cli", "user ID to run the command as")
	cmd.Flags().StringToStringVarP(&options, "opt", "o", nil, "command option as name=value (repeatable)")

	return cmd
}

// buildInvocation turns CLI arguments into an invocation. Trailing text is
// assigned to def's first option unless that option was given explicitly.
func buildInvocation(def command.Command, args []string, options map[string]string, userID string) command.Invocation {
	opts := make(map[string]string, len(options)+1)
	for k, v := range options {
		opts[k] = v
	}
	if len(args) > 1 && len(def.Options) > 0 {
		first := def.Options[0].Name
		if _, set := opts[first]; !set {
			opts[first] = strings.Join(args[1:], " ")
		}
	}
	return command.Invocation{
		Command: args[0],
		UserID:  userID,
		Source:  "cli",
		Options: opts,
	}
}

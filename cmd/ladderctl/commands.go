package main

import (
	"context"
	"os"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/scutta-ladder/internal/app"
	"github.com/riskibarqy/scutta-ladder/internal/config"
	"github.com/riskibarqy/scutta-ladder/internal/platform/logging"
	"github.com/riskibarqy/scutta-ladder/internal/usecase"
	"github.com/spf13/cobra"
)

// newRootCmd builds a fresh command tree so flag state never leaks between runs.
func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "ladderctl",
		Short: "Operate the scutta ladder without going through the HTTP API",
		Long: `ladderctl talks to the configured store directly, using the same
configuration (DB_DRIVER, DB_URL, CACHE_*) and services as the API server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if envFile != "" {
				return os.Setenv("DOTENV_PATH", envFile)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load instead of .env")

	root.AddCommand(
		newRegisterCmd(),
		newSubmitCmd(),
		newApproveCmd(),
		newPendingCmd(),
		newLeaderboardCmd(),
	)
	return root
}

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register NAME...",
		Short: "Register one or more players",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.PlayerService.Register(ctx, args)
				if err != nil {
					return err
				}
				return printJSON(cmd, registerView(result))
			})
		},
	}
}

func newSubmitCmd() *cobra.Command {
	var input usecase.SubmitMatchInput

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a pending match result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				m, err := a.MatchService.Submit(ctx, input)
				if err != nil {
					return err
				}
				return printJSON(cmd, toMatchView(m))
			})
		},
	}
	cmd.Flags().StringVar(&input.Winner, "winner", "", "winning player name")
	cmd.Flags().StringVar(&input.Loser, "loser", "", "losing player name")
	cmd.Flags().StringVar(&input.SetScore, "score", "", "set score, e.g. 3:1")
	_ = cmd.MarkFlagRequired("winner")
	_ = cmd.MarkFlagRequired("loser")
	_ = cmd.MarkFlagRequired("score")
	return cmd
}

func newApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve ID...",
		Short: "Approve pending matches; already approved ids are skipped",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.MatchService.Approve(ctx, ids)
				if err != nil {
					return err
				}
				return printJSON(cmd, approveView{
					Approved:    result.Approved(),
					ApprovedIDs: nonNil(result.ApprovedIDs),
					SkippedIDs:  nonNil(result.SkippedIDs),
				})
			})
		},
	}
}

func newPendingCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List matches waiting for approval, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				items, err := a.MatchService.ListPending(ctx, limit)
				if err != nil {
					return err
				}
				out := make([]matchView, 0, len(items))
				for _, m := range items {
					out = append(out, toMatchView(m))
				}
				return printJSON(cmd, out)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum matches to list (0 uses the default)")
	return cmd
}

func newLeaderboardCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard CATEGORY",
		Short: "Print the top players for wins, losses, win_rate, matches or opponents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				items, err := a.PlayerService.TopN(ctx, args[0], limit)
				if err != nil {
					return err
				}
				out := make([]playerView, 0, len(items))
				for _, p := range items {
					out = append(out, toPlayerView(p))
				}
				return printJSON(cmd, out)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of players (0 uses LEADERBOARD_SIZE)")
	return cmd
}

// withApp loads configuration, wires the services and releases them after fn.
// Logs go to stderr so stdout stays machine readable.
func withApp(cmd *cobra.Command, fn func(context.Context, *app.App) error) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	logger := logging.NewJSONWriter(cfg.LogLevel, cmd.ErrOrStderr()).With("service", "ladderctl")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, a.Close())
	}()

	return fn(ctx, a)
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, raw := range args {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.Newf("invalid match id %q", raw)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode output")
	}
	data = append(data, '\n')
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

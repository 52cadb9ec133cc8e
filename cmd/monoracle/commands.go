package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"monoracle-go/internal/config"
	"monoracle-go/internal/publish"
	"monoracle-go/internal/web3/provider"
	"monoracle-go/pkg/logger"
	"monoracle-go/pkg/monoracle"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

type fetchOptions struct {
	*rootOptions
	rpcURL  string
	chain   string
	timeout time.Duration
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "monoracle",
		Short:        "Read Monoracle data feed contracts",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"path to the JSON config file (default $"+config.EnvConfigPath+" or "+config.DefaultPath+")")

	cmd.AddCommand(newFetchCommand(opts), newChainsCommand(opts))
	return cmd
}

func newFetchCommand(root *rootOptions) *cobra.Command {
	opts := &fetchOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "fetch <contract-address>",
		Short: "Fetch the current record of a Monoracle contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.rpcURL, "rpc", "", "RPC endpoint URL, overrides --chain and the config")
	cmd.Flags().StringVar(&opts.chain, "chain", "", "chain name to resolve the RPC endpoint from")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "deadline for the whole fetch, 0 disables it")
	return cmd
}

func runFetch(cmd *cobra.Command, opts *fetchOptions, address string) error {
	cfg, err := loadConfig(opts.rootOptions)
	if err != nil {
		return err
	}
	if err := initLogger(cfg.Log); err != nil {
		return err
	}
	defer logger.Sync()

	rpcURL, err := resolveRPCURL(cfg, opts)
	if err != nil {
		return err
	}
	timeout := opts.timeout
	if timeout == 0 {
		timeout = cfg.Fetch.Timeout()
	}

	pub, err := publish.New(cfg.Publisher, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer pub.Close()

	requestID := uuid.NewString()
	ctx := monoracle.WithRequestID(cmd.Context(), requestID)

	rec, err := monoracle.Fetch(ctx, address,
		monoracle.WithRPCURL(rpcURL),
		monoracle.WithCallTimeout(timeout),
		monoracle.WithLogger(logger.Named("fetcher")),
	)
	if err != nil {
		return err
	}

	if err := pub.Publish(ctx, requestID, rec); err != nil {
		return err
	}
	logger.Named("cli").Info("record published",
		slog.String("request_id", requestID),
		slog.String("driver", cfg.Publisher.Driver),
	)
	return nil
}

func newChainsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List known chains and their RPC endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			registry, err := provider.NewRegistry(cfg.Web3)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Name", "RPC URL", "Description"})
			table.SetBorder(false)
			table.SetAutoWrapText(false)
			for _, name := range registry.Chains() {
				chain, _ := registry.Chain(name)
				label := name
				if name == registry.DefaultChain() {
					label += " (default)"
				}
				table.Append([]string{label, chain.RPCURL, chain.Description})
			}
			table.Render()
			return nil
		},
	}
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	if path := strings.TrimSpace(opts.configPath); path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

func initLogger(cfg config.LogConfig) error {
	return logger.Init(logger.Config{
		Level:       cfg.Level,
		Format:      cfg.Format,
		OutputPaths: cfg.OutputPaths,
		Rotation: logger.RotationConfig{
			MaxSizeMB:  cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAgeDays: cfg.MaxAgeDays,
		},
	})
}

// resolveRPCURL picks the endpoint in order: --rpc, --chain, web3.rpc_url and
// finally the configured default chain.
func resolveRPCURL(cfg *config.Config, opts *fetchOptions) (string, error) {
	if url := strings.TrimSpace(opts.rpcURL); url != "" {
		return url, nil
	}
	if strings.TrimSpace(opts.chain) == "" && strings.TrimSpace(cfg.Web3.RPCURL) != "" {
		return strings.TrimSpace(cfg.Web3.RPCURL), nil
	}
	registry, err := provider.NewRegistry(cfg.Web3)
	if err != nil {
		return "", err
	}
	url, err := registry.Resolve(opts.chain)
	if err != nil {
		return "", fmt.Errorf("resolve chain: %w", err)
	}
	return url, nil
}

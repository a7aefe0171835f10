package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/csvpress/csvpress/internal/pipeline"
	"github.com/csvpress/csvpress/pkg/config"
	"github.com/csvpress/csvpress/pkg/errors"
	"github.com/csvpress/csvpress/pkg/json"
	"github.com/csvpress/csvpress/pkg/logger"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	var (
		configFile string
		algorithm  string
		level      string
		workers    int
		logLevel   string
	)

	root := &cobra.Command{
		Use:   "csvpress",
		Short: "csvpress - lossless compression for low-entropy CSV files",
		Long: `csvpress compresses CSV files whose columns repeat themselves: few distinct
values, long runs, regular structure. Each column is encoded with the
strategy that exploits its redundancy best (run-length, dictionary, delta,
or verbatim), and the result is wrapped in a generic byte-compression
envelope. Decompression reproduces the original file byte for byte.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to YAML configuration file (optional)")
	root.PersistentFlags().StringVar(&algorithm, "algorithm", "", "Envelope compression algorithm (none, gzip, snappy, lz4, zstd, s2)")
	root.PersistentFlags().StringVar(&level, "level", "", "Envelope compression level (fastest, default, best)")
	root.PersistentFlags().IntVar(&workers, "workers", 0, "Number of concurrent column encoders (0 = all CPUs)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	loadConfig := func() (*config.Config, error) {
		cfg := config.DefaultConfig()
		if configFile != "" {
			if err := config.Load(configFile, cfg); err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to load configuration")
			}
		}
		if algorithm != "" {
			cfg.Container.Algorithm = algorithm
		}
		if level != "" {
			cfg.Container.Level = level
		}
		if workers > 0 {
			cfg.Performance.Workers = workers
		}
		if logLevel != "" {
			cfg.Observability.LogLevel = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid configuration")
		}
		if err := logger.Init(logger.Config{
			Level:    cfg.Observability.LogLevel,
			Encoding: cfg.Observability.LogEncoding,
		}); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to initialize logger")
		}
		return cfg, nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("csvpress v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "compress <input> <output>",
		Short: "Compress a CSV file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := withOperation(cmd.Context(), "compress", args[0])
			stats, err := pipeline.Compress(ctx, args[0], args[1], cfg)
			if err != nil {
				return err
			}
			fmt.Println("Compression completed.")
			fmt.Printf("Original file size:   %d bytes\n", stats.OriginalBytes)
			fmt.Printf("Compressed file size: %d bytes\n", stats.CompressedBytes)
			fmt.Printf("Compression ratio:    %.1f:1\n", stats.Ratio)
			fmt.Printf("Time elapsed:         %s\n", stats.Elapsed)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "decompress <input> <output>",
		Short: "Decompress a file produced by compress",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := withOperation(cmd.Context(), "decompress", args[0])
			stats, err := pipeline.Decompress(ctx, args[0], args[1], cfg)
			if err != nil {
				return err
			}
			fmt.Println("Decompression completed.")
			fmt.Printf("Time elapsed: %s\n", stats.Elapsed)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "inspect <input>",
		Short: "Print a JSON summary of a compressed file's header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			ctx := withOperation(cmd.Context(), "inspect", args[0])
			info, err := pipeline.Inspect(ctx, args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeInternal, "failed to render summary")
			}
			fmt.Println(string(out))
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error (%s): %v\n", errors.TypeOf(err), err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// withOperation tags the context so pipeline logging carries the running
// operation and input path.
func withOperation(ctx context.Context, op, input string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, logger.OperationKey, op)
	ctx = context.WithValue(ctx, logger.InputFileKey, input)
	return ctx
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootCmd = &cobra.Command{
		Use:   "amge",
		Short: "AMGe restriction builder",
		Long: `amge builds the restriction operator of one element-agglomeration
AMG coarsening step on a hypercube mesh, either once from the command line
or on demand over HTTP.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var logWriter io.Writer
			switch logFile {
			case "-":
				logWriter = os.Stdout
			case "":
				logWriter = zerolog.NewConsoleWriter(
					func(w *zerolog.ConsoleWriter) {
						w.Out = os.Stderr
						w.TimeFormat = "2006-01-02T15:04:05.000000000Z07:00"
					})
			default:
				w, err := os.OpenFile(logFile,
					os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o0644)
				if err != nil {
					return fmt.Errorf("cannot open log file: %w", err)
				}
				logWriter = w
			}
			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			logger = zerolog.New(logWriter).Level(level).
				With().Timestamp().Logger()
			zerolog.DefaultContextLogger = &logger
			return initConfig()
		},
	}
	cfgFile  string
	logFile  string
	logLevel string
	logger   zerolog.Logger
)

func Execute() {
	zerolog.TimeFieldFormat = "2006-01-02T15:04:05.000000000Z07:00"
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.amge.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"log file (- means stdout; default: colorized stderr)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"minimum log level")
}

// initConfig reads the config file and AMGE_* environment variables.
// Flags bound to viper keys take precedence over both.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("cannot find home directory: %w", err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".amge")
	}
	viper.SetEnvPrefix("amge")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	switch {
	case err == nil:
		logger.Debug().Str("file", viper.ConfigFileUsed()).Msg("using config file")
	case cfgFile == "":
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return fmt.Errorf("cannot read config: %w", err)
		}
	default:
		return fmt.Errorf("cannot read config %s: %w", cfgFile, err)
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/platinummonkey/flare/pkg/config"
	"github.com/platinummonkey/flare/pkg/observability"
)

// defaultDescriptor is used when a command is given no descriptor path
const defaultDescriptor = "flare.yaml"

// flagBindings maps flag names to viper keys. Only flags present on the
// executing command are bound.
var flagBindings = map[string]string{
	"log-level":       "log.level",
	"log-format":      "log.format",
	"project-name":    "project.name",
	"project-version": "project.version",
	"max-workers":     "engine.max_parallel_workers",
	"archive-dir":     "archive.dir",
	"s3-bucket":       "archive.s3_bucket",
	"debounce":        "watch.debounce",
	"metrics-addr":    "watch.metrics_addr",
}

// app carries state shared by every command of one root
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *logrus.Logger
}

// NewRootCmd creates the root flare command with all subcommands registered
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "flare",
		Short: "flare generates platform adapters for Minecraft plugins",
		Long: "flare reads a plugin descriptor and generates the manifests and entry-point\n" +
			"adapters that let one plugin load on Spigot, BungeeCord and Velocity.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "path to config file (default .flare.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")
	pf.String("project-name", "", "plugin name used when the descriptor has none")
	pf.String("project-version", "", "plugin version used when the descriptor has none")

	root.AddCommand(
		newGenerateCmd(a),
		newWatchCmd(a),
		newPlanCmd(a),
		newPlatformsCmd(),
		newVersionCmd(),
	)

	return root
}

// init resolves configuration with flag > env > file > defaults precedence
// and builds the logger
func (a *app) init(cmd *cobra.Command) error {
	config.SetDefaults(a.v)
	config.SetupEnv(a.v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	} else {
		a.v.SetConfigName(config.ConfigName)
		a.v.AddConfigPath(".")
		a.v.AddConfigPath("$HOME")
		// No config file is fine; parse or permission errors must surface.
		if err := a.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("reading config: %w", err)
			}
		}
	}

	for name, key := range flagBindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := a.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding %s flag: %w", name, err)
		}
	}

	cfg, err := config.FromViper(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = logger

	return nil
}

func descriptorPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultDescriptor
}

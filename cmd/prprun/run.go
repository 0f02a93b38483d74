package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/metalagman/prprun"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "PRPRUN"
	configFileName = ".prprun"
)

type runOptions struct {
	configFile string
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	formats := make([]string, 0, len(prprun.Formats()))
	for _, f := range prprun.Formats() {
		formats = append(formats, string(f))
	}

	cmd.Flags().String("prp", "", "PRP feature name, resolved to <root>/PRPs/<feature>.md")
	cmd.Flags().String("prp-path", "", "path to a PRP markdown file (overrides --prp)")
	cmd.Flags().String("root", ".", "project root; the agent runs here")
	cmd.Flags().String("model", prprun.DefaultExecutable, "agent CLI executable")
	cmd.Flags().Bool("interactive", false, "launch an interactive chat session")
	cmd.Flags().Bool("tty", false, "run the interactive session in a pseudo-terminal")
	cmd.Flags().String("output-format", string(prprun.FormatText),
		"output format for headless mode: "+strings.Join(formats, ", "))
	cmd.Flags().StringSlice("allowed-tools", nil, "tools granted to the agent (default: built-in list)")
	cmd.Flags().StringArray("extra-args", nil, "extra args to pass to the agent command")
	cmd.Flags().Int("max-turns", 0, "limit agent turns in headless mode (0 = agent default)")
	cmd.Flags().String("result-schema-file", "", "JSON schema the result document must satisfy")
	cmd.Flags().BoolP("verbose", "v", false, "log debug details to stderr")
	cmd.Flags().StringVar(&opts.configFile, "config", "", "config file (default .prprun.yaml in root or $HOME)")
}

func runPRP(cmd *cobra.Command, opts *runOptions) error {
	v, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), v.GetBool("verbose"))
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug().Str("file", used).Msg("loaded config")
	}

	cfg, err := buildAgentConfig(v)
	if err != nil {
		return err
	}

	prpPath, err := prprun.ResolvePRPPath(cfg.WorkDir, v.GetString("prp"), v.GetString("prp-path"))
	if err != nil {
		return err
	}

	prompt, err := prprun.ReadPrompt(prpPath)
	if err != nil {
		return err
	}

	logger.Debug().Str("prp", prpPath).Int("prompt_bytes", len(prompt)).Msg("composed prompt")

	relay, err := prprun.NewRelay(cfg)
	if err != nil {
		return err
	}

	return relay.Run(
		cmd.Context(),
		prompt,
		prprun.WithStdin(cmd.InOrStdin()),
		prprun.WithStdout(cmd.OutOrStdout()),
		prprun.WithStderr(cmd.ErrOrStderr()),
		prprun.WithLogger(logger),
	)
}

// loadConfig layers flags over PRPRUN_* environment variables over the
// optional config file.
func loadConfig(cmd *cobra.Command, opts *runOptions) (*viper.Viper, error) {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.configFile != "" {
		v.SetConfigFile(opts.configFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString("root"))
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return v, nil
}

func buildAgentConfig(v *viper.Viper) (prprun.AgentConfig, error) {
	format, err := prprun.ParseFormat(v.GetString("output-format"))
	if err != nil {
		return prprun.AgentConfig{}, err
	}

	cfg := prprun.AgentConfig{
		Cmd:          []string{v.GetString("model")},
		Interactive:  v.GetBool("interactive"),
		OutputFormat: format,
		AllowedTools: v.GetStringSlice("allowed-tools"),
		ExtraArgs:    v.GetStringSlice("extra-args"),
		MaxTurns:     v.GetInt("max-turns"),
		WorkDir:      v.GetString("root"),
		UseTTY:       v.GetBool("tty"),
	}

	if path := v.GetString("result-schema-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return prprun.AgentConfig{}, fmt.Errorf("read result schema file: %w", err)
		}

		cfg.ResultSchema = string(data)
	}

	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

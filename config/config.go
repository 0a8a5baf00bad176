package config

import (
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug          = "debug"
	ConfigBoardWidth     = "board-width"
	ConfigBoardHeight    = "board-height"
	ConfigConnectN       = "connect-n"
	ConfigDifficulty     = "difficulty"
	ConfigThreads        = "threads"
	ConfigAlphaBeta      = "alpha-beta"
	ConfigSearchLogPath  = "search-log-path"
	ConfigNatsURL        = "nats-url"
	ConfigBotChannel     = "bot-channel"
	ConfigRequestTimeout = "request-timeout"
	ConfigFile           = "config-file"
	ConfigCPUProfile     = "cpu-profile"
	ConfigMemProfile     = "mem-profile"
)

// Config wraps a viper instance. Values come from flags, then CONNECTN_*
// environment variables, then an optional YAML file, then defaults.
type Config struct {
	viper.Viper
	args []string
}

func (c *Config) Load(args []string) error {
	c.Viper = *viper.New()

	fs := pflag.NewFlagSet("connectn", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigBoardWidth, 7, "number of columns")
	fs.Int(ConfigBoardHeight, 6, "number of rows")
	fs.Int(ConfigConnectN, 4, "discs in a row needed to win")
	fs.Int(ConfigDifficulty, 4, "search depth in plies; 0 plays at random")
	fs.Int(ConfigThreads, 1, "root moves searched in parallel")
	fs.Bool(ConfigAlphaBeta, true, "use alpha-beta pruning")
	fs.String(ConfigSearchLogPath, "", "write a YAML log of every search to this file")
	fs.String(ConfigNatsURL, nats.DefaultURL, "the NATS server URL")
	fs.String(ConfigBotChannel, "connectn.bot", "NATS subject the move bot listens on")
	fs.Duration(ConfigRequestTimeout, 10*time.Second, "how long a bot request may take")
	fs.String(ConfigFile, "", "optional YAML config file")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	fs.String(ConfigMemProfile, "", "write a heap profile to this file on exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	c.SetEnvPrefix("connectn")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if cfgFile := c.GetString(ConfigFile); cfgFile != "" {
		c.SetConfigFile(cfgFile)
		c.SetConfigType("yaml")
		if err := c.ReadInConfig(); err != nil {
			return err
		}
	}
	return nil
}

// Args returns the positional arguments left after the flags.
func (c *Config) Args() []string {
	return c.args
}

// DefaultConfig returns a config with every key at its default.
func DefaultConfig() *Config {
	c := &Config{}
	// Parsing no arguments cannot fail.
	_ = c.Load(nil)
	return c
}

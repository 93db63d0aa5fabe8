package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lightspeedtech/lightspeed/internal/ailink/driver"
	"github.com/lightspeedtech/lightspeed/internal/appid"
	"github.com/lightspeedtech/lightspeed/internal/config"
	"github.com/lightspeedtech/lightspeed/internal/observability"
)

var (
	cfgFile   string
	envFile   string
	verbose   bool
	traceFile string

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:   appid.Get().BinaryName,
	Short: appid.Get().Description,
	Long: fmt.Sprintf(`%s - %s

Serves the site's /api/chat, /api/contact and /api/whatsapp endpoints.
Use the subcommands to run the server or exercise a service from the shell.`,
		appid.Get().BinaryName, appid.Get().Description),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Disable global telemetry early so config loading does not emit metrics
	// to stdout. serve initializes the real system.
	if sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: false}); err == nil {
		telemetry.SetGlobalSystem(sys)
	}

	cobra.OnInitialize(initConfig)

	identity := appid.Get()
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is ./config/%s.yaml or $HOME/.%s.yaml)", identity.ConfigName, identity.ConfigName))
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read (missing file is ignored)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	rootCmd.PersistentFlags().StringVar(&traceFile, "trace", "", "trace upstream model requests/responses to NDJSON file")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig loads the dotenv file, registers defaults and environment
// bindings, and reads the optional config file.
func initConfig() {
	identity := appid.Get()

	observability.InitCLILogger(identity.BinaryName, verbose)

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			observability.CLILogger.Warn("Failed to load env file", zap.String("file", envFile), zap.Error(err))
		}
	}

	if traceFile != "" {
		// Tracing lasts for the whole process; the file is closed on exit.
		if _, err := driver.EnableTracing(traceFile); err != nil {
			observability.CLILogger.Warn("Failed to enable tracing", zap.Error(err))
		} else {
			observability.CLILogger.Debug("Upstream tracing enabled", zap.String("file", traceFile))
		}
	}

	v := viper.GetViper()
	config.SetDefaults(v)
	if err := config.BindEnvironment(v, identity.EnvPrefix); err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Failed to bind environment", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(identity.ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "."+identity.ConfigName))
		}
	}

	if err := v.ReadInConfig(); err == nil {
		observability.CLILogger.Debug("Using config file", zap.String("path", v.ConfigFileUsed()))
	} else {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			observability.CLILogger.Debug("No config file found, using defaults and environment variables")
		case cfgFile != "":
			ExitWithCode(observability.CLILogger, foundry.ExitFileNotFound, "Failed to read config file", err)
		default:
			observability.CLILogger.Warn("Error reading config file", zap.Error(err))
		}
	}
}

// loadConfig decodes the current viper state. Commands call it after
// initConfig has run.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

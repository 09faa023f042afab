package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/theakshaypant/concertdb/internal/metrics"
	"github.com/theakshaypant/concertdb/internal/storage"
)

var (
	cfgFile string
	profile string
	store   *storage.Store
	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "concertdb",
	Short: "A terminal catalog of performers, venues and the concerts linking them",
	Long: `concertdb keeps track of performers, venues and scheduled concerts.

Run it without a subcommand (or with 'ui') for the interactive interface, or use
the subcommands to list, add and edit records from scripts.

The ENVIRONMENT variable selects the database file (concert_db_<env>.sqlite in
the data directory). Without it commands run against a throwaway in-memory
database.`,
	SilenceUsage:       true,
	Annotations:        map[string]string{tuiAnnotation: "true"},
	PersistentPreRunE:  initStore,
	PersistentPostRunE: closeStore,
	RunE:               runTUI,
}

func Execute() {
	err := rootCmd.Execute()
	if store != nil {
		_ = store.Close()
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (inherited by all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/concertdb/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "config profile to use (e.g., home, touring)")
	rootCmd.PersistentFlags().StringP("environment", "e", "", "named environment selecting the database file (overrides $ENVIRONMENT)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the database files")
	rootCmd.PersistentFlags().String("database-url", "", "database URL; postgres:// selects PostgreSQL")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file")
	rootCmd.PersistentFlags().String("metrics-file", "", "write prometheus metrics to this file on exit")
	rootCmd.PersistentFlags().Bool("sql-echo", false, "log every SQL statement (needs --log-file under the TUI)")

	viper.BindPFlag("environment", rootCmd.PersistentFlags().Lookup("environment"))
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("database_url", rootCmd.PersistentFlags().Lookup("database-url"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("metrics_file", rootCmd.PersistentFlags().Lookup("metrics-file"))
	viper.BindPFlag("sql_echo", rootCmd.PersistentFlags().Lookup("sql-echo"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "concertdb")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("CONCERTDB")
	viper.AutomaticEnv()
	viper.BindEnv("environment", "CONCERTDB_ENVIRONMENT", "ENVIRONMENT")
	viper.BindEnv("sql_echo", "CONCERTDB_SQL_ECHO", "SQL_ECHO")

	// Set defaults
	viper.SetDefault("data_dir", "~/.local/share/concertdb")
	viper.SetDefault("backup.driver", "dir")
	viper.SetDefault("backup.dir", "~/.local/share/concertdb/backups")
	viper.SetDefault("backup.prefix", "concertdb")
	viper.SetDefault("backup.folder", "concertdb")
	viper.SetDefault("credentials_file", "~/.config/concertdb/credentials.json")
	viper.SetDefault("token_file", "~/.config/concertdb/token.json")

	// Read config file if it exists
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	applyProfile()
}

// profileSettings lists the keys a profile may override.
var profileSettings = []string{
	"environment",
	"data_dir",
	"database_url",
	"log_file",
	"metrics_file",
	"sql_echo",
	"credentials_file",
	"token_file",
	"client_id",
	"tenant_id",
	"backup.driver",
	"backup.dir",
	"backup.prefix",
	"backup.folder",
}

// applyProfile merges profile-specific settings over defaults
func applyProfile() {
	activeProfile := profile
	if activeProfile == "" {
		activeProfile = viper.GetString("default_profile")
	}
	if activeProfile == "" {
		return
	}

	profileKey := "profiles." + activeProfile
	if !viper.IsSet(profileKey) {
		fmt.Fprintf(os.Stderr, "Warning: profile '%s' not found in config\n", activeProfile)
		return
	}

	fmt.Fprintf(os.Stderr, "Using profile: %s\n", activeProfile)

	// Override each setting if present in profile,
	// but only if the user hasn't explicitly set it via CLI flag.
	for _, key := range profileSettings {
		profileSettingKey := profileKey + "." + key
		if viper.IsSet(profileSettingKey) && !isFlagExplicitlySet(key) {
			viper.Set(key, viper.Get(profileSettingKey))
		}
	}
}

func isFlagExplicitlySet(viperKey string) bool {
	flagName := strings.ReplaceAll(viperKey, "_", "-")
	f := rootCmd.PersistentFlags().Lookup(flagName)

	return f != nil && f.Changed
}

// needsStore reports whether cmd works on the catalog.
func needsStore(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", "profile", "auth":
			return false
		}
	}
	return true
}

// tuiAnnotation marks commands that run the interactive interface.
const tuiAnnotation = "tui"

func isTUI(cmd *cobra.Command) bool {
	return cmd.Annotations[tuiAnnotation] == "true"
}

func storageConfig() storage.Config {
	return storage.Config{
		Environment: strings.TrimSpace(viper.GetString("environment")),
		DataDir:     expandPath(viper.GetString("data_dir")),
		DatabaseURL: viper.GetString("database_url"),
		Echo:        viper.GetBool("sql_echo"),
	}
}

func initStore(cmd *cobra.Command, args []string) error {
	if err := setupLogging(isTUI(cmd)); err != nil {
		return err
	}
	if !needsStore(cmd) {
		return nil
	}

	cfg := storageConfig()
	if isTUI(cmd) && cfg.DatabaseURL == "" && cfg.Environment == "" {
		return fmt.Errorf("ENVIRONMENT variable not set - required for loading")
	}

	s, err := storage.Open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.Location(), err)
	}
	store = s
	return nil
}

func closeStore(cmd *cobra.Command, args []string) error {
	if err := metrics.WriteTextfile(expandPath(viper.GetString("metrics_file"))); err != nil {
		slog.Warn("write metrics", "err", err)
	}
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	return err
}

// setupLogging routes slog to the log file when one is configured. Without
// one, CLI commands log warnings to stderr and the TUI logs nothing, since it
// owns the terminal.
func setupLogging(tui bool) error {
	level := slog.LevelInfo
	if viper.GetBool("sql_echo") {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var w io.Writer
	switch path := expandPath(viper.GetString("log_file")); {
	case path != "":
		f, err := openLogFile(path, tui)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logFile = f
		w = f
	case tui:
		w = io.Discard
	default:
		w = os.Stderr
		opts.Level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, opts)))
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

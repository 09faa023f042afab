package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage configuration profiles",
	Long: `Manage configuration profiles.

Profiles bundle an environment, a database and a backup target so you can
switch between, say, a personal catalog and a shared one with -p.`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show profile settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfileShow,
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileAdd,
}

var profileSetDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileSetDefault,
}

var profileEditCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Edit a profile's settings",
	Long: `Edit a profile's settings using flags.

Example:
  concertdb profile edit home --environment=production
  concertdb profile edit shared --database-url=postgres://db/concerts --backup-driver=s3`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileEdit,
}

// profileFlag maps a profile flag to its config key.
type profileFlag struct {
	flag  string
	key   string
	usage string
	bool  bool
}

var profileFlags = []profileFlag{
	{"environment", "environment", "named environment", false},
	{"data-dir", "data_dir", "directory holding the database files", false},
	{"database-url", "database_url", "database URL", false},
	{"log-file", "log_file", "log file", false},
	{"metrics-file", "metrics_file", "metrics textfile", false},
	{"sql-echo", "sql_echo", "log every SQL statement", true},
	{"credentials-file", "credentials_file", "Google OAuth client credentials", false},
	{"token-file", "token_file", "OAuth token file", false},
	{"client-id", "client_id", "Azure app client id", false},
	{"tenant-id", "tenant_id", "Azure tenant id", false},
	{"backup-driver", "backup.driver", "backup driver: dir, s3, gdrive, onedrive", false},
	{"backup-dir", "backup.dir", "directory for the dir backup driver", false},
	{"backup-prefix", "backup.prefix", "key prefix for backups", false},
	{"backup-folder", "backup.folder", "cloud folder for gdrive and onedrive", false},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileSetDefaultCmd)
	profileCmd.AddCommand(profileEditCmd)

	// Local flags shadow the root's persistent ones of the same name, so
	// --environment here edits the profile instead of selecting a database.
	for _, c := range []*cobra.Command{profileAddCmd, profileEditCmd} {
		for _, pf := range profileFlags {
			if pf.bool {
				c.Flags().Bool(pf.flag, false, pf.usage)
			} else {
				c.Flags().String(pf.flag, "", pf.usage)
			}
		}
	}
}

func runProfileList(cmd *cobra.Command, args []string) error {
	profiles := viper.GetStringMap("profiles")
	defaultProfile := viper.GetString("default_profile")

	if len(profiles) == 0 {
		fmt.Println("No profiles configured.")
		fmt.Println("\nAdd one with: concertdb profile add <name> --environment=<env>")
		return nil
	}

	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Available profiles:")
	fmt.Println("─────────────────────────────────────────────────")

	for _, name := range names {
		marker := "  "
		if name == defaultProfile {
			marker = "* "
		}
		fmt.Printf("%s%s\n", marker, name)
	}

	fmt.Println("─────────────────────────────────────────────────")
	if defaultProfile != "" {
		fmt.Printf("Default: %s\n", defaultProfile)
	}
	fmt.Println("\nUse 'concertdb profile show <name>' for details")

	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	var profileName string
	if len(args) > 0 {
		profileName = args[0]
	} else {
		profileName = viper.GetString("default_profile")
		if profileName == "" {
			return fmt.Errorf("no profile specified and no default profile set")
		}
	}

	profileKey := "profiles." + profileName
	if !viper.IsSet(profileKey) {
		return fmt.Errorf("profile '%s' not found", profileName)
	}

	fmt.Printf("Profile: %s\n", profileName)
	if profileName == viper.GetString("default_profile") {
		fmt.Println("(default)")
	}
	fmt.Println("─────────────────────────────────────────────────")

	sections := []struct {
		title string
		match func(key string) bool
	}{
		{"\n🗄️  Storage:", func(k string) bool {
			return k == "environment" || k == "data_dir" || k == "database_url" || k == "sql_echo"
		}},
		{"\n📝 Output:", func(k string) bool { return k == "log_file" || k == "metrics_file" }},
		{"\n💾 Backup:", func(k string) bool {
			switch k {
			case "credentials_file", "token_file", "client_id", "tenant_id":
				return true
			}
			return strings.HasPrefix(k, "backup.")
		}},
	}
	for _, sec := range sections {
		printed := false
		for _, pf := range profileFlags {
			if !sec.match(pf.key) || !viper.IsSet(profileKey+"."+pf.key) {
				continue
			}
			if !printed {
				fmt.Println(sec.title)
				printed = true
			}
			fmt.Printf("  %s: %v\n", pf.flag, viper.Get(profileKey+"."+pf.key))
		}
	}

	fmt.Println()
	return nil
}

// applyProfileFlags copies every changed flag into profile. Dotted keys
// become nested maps.
func applyProfileFlags(cmd *cobra.Command, profile map[string]interface{}) bool {
	changed := false
	for _, pf := range profileFlags {
		if !cmd.Flags().Changed(pf.flag) {
			continue
		}
		var val interface{}
		if pf.bool {
			val, _ = cmd.Flags().GetBool(pf.flag)
		} else {
			val, _ = cmd.Flags().GetString(pf.flag)
		}
		setNested(profile, strings.Split(pf.key, "."), val)
		changed = true
	}
	return changed
}

func setNested(m map[string]interface{}, path []string, val interface{}) {
	if len(path) == 1 {
		m[path[0]] = val
		return
	}
	child, ok := m[path[0]].(map[string]interface{})
	if !ok {
		child = make(map[string]interface{})
		m[path[0]] = child
	}
	setNested(child, path[1:], val)
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	profileKey := "profiles." + profileName
	if viper.IsSet(profileKey) {
		return fmt.Errorf("profile '%s' already exists. Use 'concertdb profile edit %s' to modify it", profileName, profileName)
	}

	profile := make(map[string]interface{})
	applyProfileFlags(cmd, profile)

	if err := saveProfileToConfig(profileName, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	fmt.Printf("✓ Profile '%s' created\n", profileName)
	fmt.Printf("\nUse it with: concertdb -p %s\n", profileName)
	fmt.Printf("Set as default: concertdb profile default %s\n", profileName)

	return nil
}

func runProfileSetDefault(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	profileKey := "profiles." + profileName
	if !viper.IsSet(profileKey) {
		return fmt.Errorf("profile '%s' not found", profileName)
	}

	if err := setDefaultProfileInConfig(profileName); err != nil {
		return fmt.Errorf("failed to set default profile: %w", err)
	}

	fmt.Printf("✓ Default profile set to '%s'\n", profileName)
	return nil
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	config, err := readConfigFile()
	if err != nil {
		return err
	}
	profiles, _ := config["profiles"].(map[string]interface{})
	profile, ok := profiles[profileName].(map[string]interface{})
	if !ok {
		return fmt.Errorf("profile '%s' not found. Use 'concertdb profile add %s' to create it", profileName, profileName)
	}

	if !applyProfileFlags(cmd, profile) {
		fmt.Println("No changes specified. Use flags to update settings:")
		fmt.Println("  concertdb profile edit", profileName, "--environment=production")
		return nil
	}

	if err := saveProfileToConfig(profileName, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	fmt.Printf("✓ Profile '%s' updated\n", profileName)
	return nil
}

// Config file manipulation functions

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "concertdb", "config.yaml")
}

func readConfigFile() (map[string]interface{}, error) {
	data, err := os.ReadFile(getConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]interface{}), nil
		}
		return nil, err
	}

	var config map[string]interface{}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if config == nil {
		config = make(map[string]interface{})
	}

	return config, nil
}

func writeConfigFile(config map[string]interface{}) error {
	configPath := getConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

func saveProfileToConfig(name string, profile map[string]interface{}) error {
	config, err := readConfigFile()
	if err != nil {
		return err
	}

	profiles, ok := config["profiles"].(map[string]interface{})
	if !ok {
		profiles = make(map[string]interface{})
	}

	profiles[name] = profile
	config["profiles"] = profiles

	return writeConfigFile(config)
}

func setDefaultProfileInConfig(name string) error {
	config, err := readConfigFile()
	if err != nil {
		return err
	}

	config["default_profile"] = name

	return writeConfigFile(config)
}

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/theakshaypant/concertdb/internal/backup"
	"github.com/theakshaypant/concertdb/internal/util"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Push, list and pull catalog backups",
	Long: `Copy the catalog to a backup store and back.

The driver is set with backup.driver in the config (or --driver):
  dir       a local directory (backup.dir)
  s3        an S3 or MinIO bucket (CONCERTDB_S3_* environment variables)
  gdrive    a Google Drive folder (run 'concertdb auth gdrive' first)
  onedrive  a OneDrive folder (run 'concertdb auth onedrive' first)

Backups are kept per environment under <backup.prefix>/<environment>/.`,
}

var backupPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload a backup of the catalog",
	Args:  cobra.NoArgs,
	RunE:  runBackupPush,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups of the current environment",
	Args:  cobra.NoArgs,
	RunE:  runBackupList,
}

var backupPullCmd = &cobra.Command{
	Use:   "pull [key]",
	Short: "Restore a backup (the newest when no key is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBackupPull,
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupPushCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupPullCmd)

	backupCmd.PersistentFlags().String("driver", "", "backup driver: dir, s3, gdrive or onedrive")
	viper.BindPFlag("backup.driver", backupCmd.PersistentFlags().Lookup("driver"))
	backupPullCmd.Flags().Bool("replace", false, "delete every existing record first")
}

func backupConfig() backup.Config {
	return backup.Config{
		Driver:          backup.Driver(viper.GetString("backup.driver")),
		Prefix:          viper.GetString("backup.prefix"),
		Dir:             expandPath(viper.GetString("backup.dir")),
		Folder:          viper.GetString("backup.folder"),
		CredentialsFile: expandPath(viper.GetString("credentials_file")),
		ClientID:        viper.GetString("client_id"),
		TenantID:        viper.GetString("tenant_id"),
		TokenFile:       expandPath(viper.GetString("token_file")),
	}
}

func openBackup(cmd *cobra.Command) (*backup.Service, backup.Config, error) {
	cfg := backupConfig()
	bs, err := backup.Open(cmd.Context(), cfg)
	if err != nil {
		return nil, cfg, fmt.Errorf("open %s backup store: %w", cfg.Driver, err)
	}
	return backup.NewService(bs, cfg.Prefix, storageConfig().Environment), cfg, nil
}

func runBackupPush(cmd *cobra.Command, args []string) error {
	svc, cfg, err := openBackup(cmd)
	if err != nil {
		return err
	}
	info, err := svc.Push(cmd.Context(), store)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Backup pushed to %s: %s (%d bytes)\n", cfg.Driver, info.Key, info.Size)
	return nil
}

func runBackupList(cmd *cobra.Command, args []string) error {
	svc, cfg, err := openBackup(cmd)
	if err != nil {
		return err
	}
	infos, err := svc.List(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("💾 Backups (%s):\n", cfg.Driver)
	fmt.Println(util.Rule(0))
	if len(infos) == 0 {
		fmt.Println("No backups found.")
		return nil
	}
	for _, info := range infos {
		key := info.Key
		if cfg.Driver == backup.DriverDir || cfg.Driver == "" {
			key = util.FileLink(filepath.Join(cfg.Dir, filepath.FromSlash(info.Key)), info.Key)
		}
		fmt.Printf("%s  %8d  %s\n", info.LastModified.Local().Format("2006-01-02 15:04"), info.Size, key)
	}
	fmt.Println(util.Rule(0))
	fmt.Printf("Total: %d backups\n", len(infos))
	return nil
}

func runBackupPull(cmd *cobra.Command, args []string) error {
	svc, _, err := openBackup(cmd)
	if err != nil {
		return err
	}
	replace, _ := cmd.Flags().GetBool("replace")

	var key string
	if len(args) > 0 {
		key = args[0]
	} else {
		latest, err := svc.Latest(cmd.Context())
		if err != nil {
			return err
		}
		key = latest.Key
	}

	n, err := svc.Pull(cmd.Context(), key, store, replace)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Restored %d records from %s into %s\n", n, key, store.Location())
	return nil
}

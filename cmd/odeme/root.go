package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/odemetakip/internal/config"
	"github.com/mmynk/odemetakip/internal/models"
	"github.com/mmynk/odemetakip/internal/storage"
	"github.com/mmynk/odemetakip/internal/storage/local"
	"github.com/mmynk/odemetakip/internal/storage/sqlite"
	"github.com/mmynk/odemetakip/internal/textnorm"
	"github.com/mmynk/odemetakip/pkg/logging"
)

// app holds the state shared by every subcommand.
type app struct {
	configFile string
	dbPath     string
	cachePath  string
	serverURL  string
	listRef    string
	verbose    bool

	cfg   *config.Config
	store storage.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "odeme",
		Short: "Track monthly athlete payments with Turkish free-text commands.",
		Long: `odeme keeps the monthly payment table of athlete lists.

Commands such as "Ali Veli ekim ayı ödendi" or "tüm ödenmedi" update the
table. Without --db the data lives in the local cache file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: search $HOME/.odemetakip, .odemetakip, .)")
	flags.StringVar(&a.dbPath, "db", "", "use this SQLite database instead of the local cache")
	flags.StringVar(&a.cachePath, "cache", "", "local cache file (default from config)")
	flags.StringVar(&a.serverURL, "server", "", "server URL for login and watch (default from config)")
	flags.StringVarP(&a.listRef, "list", "l", "", "list name or ID (default: first list)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(
		newInterpretCmd(),
		newListCmd(a),
		newAthleteCmd(a),
		newApplyCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newLoginCmd(a),
		newWatchCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	logging.SetupQuiet(a.verbose)

	if a.cachePath == "" {
		a.cachePath = cfg.Cache.Path
	}
	if a.serverURL == "" {
		a.serverURL = cfg.Remote.URL
	}
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// openStore opens the database given with --db, or the local cache.
func (a *app) openStore() (storage.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	if a.dbPath != "" {
		s, err := sqlite.New(a.dbPath)
		if err != nil {
			return nil, err
		}
		a.store = s
		return s, nil
	}

	cache, err := a.openCache()
	if err != nil {
		return nil, err
	}
	a.store = cache
	return cache, nil
}

func (a *app) openCache() (*local.Store, error) {
	if err := os.MkdirAll(filepath.Dir(a.cachePath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return local.Open(a.cachePath)
}

var errListNotFound = errors.New("list not found")

// resolveList returns the list chosen with --list, or the first list. Lists
// opened without an account have no owner.
func (a *app) resolveList(ctx context.Context, store storage.Store, ref string) (*models.List, error) {
	lists, err := store.ListLists(ctx, "")
	if err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		list := &models.List{Name: models.DefaultListName}
		if err := store.CreateList(ctx, list); err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}

	if ref == "" {
		return lists[0], nil
	}
	for _, l := range lists {
		if l.ID == ref || textnorm.Equal(l.Name, ref) {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", errListNotFound, ref)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

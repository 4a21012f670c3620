// file: cmd/root.go
// version: 2.0.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rxscribe/rxscribe/internal/cache"
	"github.com/rxscribe/rxscribe/internal/catalog"
	"github.com/rxscribe/rxscribe/internal/config"
	"github.com/rxscribe/rxscribe/internal/models"
	"github.com/rxscribe/rxscribe/internal/recognizer"
	"github.com/rxscribe/rxscribe/internal/search"
	"github.com/rxscribe/rxscribe/internal/server"
	"github.com/rxscribe/rxscribe/internal/watcher"
)

var cfgFile string
var databasePath string
var databaseType string
var catalogCSV string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rxscribe",
	Short: "Match handwritten medicine names against a catalog",
	Long: `RxScribe turns handwriting-recognition candidates into ranked medicine
matches. It serves a fuzzy search and recognition API over an imported
medicine catalog.`,
}

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import [csv-file]",
	Short: "Import a medicine catalog CSV",
	Long:  `Import (or re-import) the medicine catalog from a CSV export. The existing catalog is replaced.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.AppConfig.CatalogCSV
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("no catalog CSV specified (argument or --catalog)")
		}

		if err := catalog.InitializeStore(config.AppConfig.DatabaseType, config.AppConfig.DatabasePath); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer catalog.CloseStore()

		fmt.Printf("Using database: %s (%s)\n", config.AppConfig.DatabasePath, config.AppConfig.DatabaseType)

		if err := catalog.GlobalStore.Reset(); err != nil {
			return fmt.Errorf("failed to reset catalog: %w", err)
		}
		count, err := catalog.ImportCSV(catalog.GlobalStore, path, true)
		if err != nil {
			return fmt.Errorf("import error: %w", err)
		}

		fmt.Printf("Imported %d medicines from %s\n", count, path)
		return nil
	},
}

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the medicine catalog",
	Long:  `Run a one-off fuzzy search against the imported catalog and print the results.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := catalog.InitializeStore(config.AppConfig.DatabaseType, config.AppConfig.DatabasePath); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer catalog.CloseStore()

		retriever := search.NewRetriever(
			catalog.GlobalStore,
			cache.New[[]models.Medicine](config.AppConfig.SearchCacheTTL),
			retrieverOptions(),
		)

		results := retriever.Search(context.Background(), args[0])
		if len(results) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for i, m := range results {
			brand := ""
			if m.BrandName != nil {
				brand = " (" + *m.BrandName + ")"
			}
			fmt.Printf("%2d. %s%s - %s\n", i+1, m.Name, brand, m.ManufacturerName)
		}
		return nil
	},
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := catalog.InitializeStore(config.AppConfig.DatabaseType, config.AppConfig.DatabasePath); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer catalog.CloseStore()

		stats, err := catalog.GlobalStore.Stats()
		if err != nil {
			return fmt.Errorf("failed to gather statistics: %w", err)
		}

		fmt.Printf("Medicines:     %d\n", stats.TotalMedicines)
		fmt.Printf("Manufacturers: %d\n", stats.TotalManufacturers)
		fmt.Printf("Categories:    %d\n", stats.TotalCategories)
		fmt.Printf("Accuracy:      %d%%\n", stats.RecognitionAccuracy)
		return nil
	},
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recognition and search API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := catalog.InitializeStore(config.AppConfig.DatabaseType, config.AppConfig.DatabasePath); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer catalog.CloseStore()

		fmt.Printf("Using database: %s (%s)\n", config.AppConfig.DatabasePath, config.AppConfig.DatabaseType)

		// Fill config gaps from the YAML file next to the database.
		if err := config.LoadConfigFromFile(); err != nil {
			fmt.Printf("Warning: could not load config file: %v\n", err)
		}

		// Seed the catalog on first run if a CSV is configured.
		if config.AppConfig.CatalogCSV != "" {
			if count, err := catalog.GlobalStore.CountMedicines(); err == nil && count == 0 {
				fmt.Printf("Catalog empty, importing %s\n", config.AppConfig.CatalogCSV)
				if n, err := catalog.ImportCSV(catalog.GlobalStore, config.AppConfig.CatalogCSV, false); err != nil {
					fmt.Printf("Warning: catalog import failed: %v\n", err)
				} else {
					fmt.Printf("Imported %d medicines\n", n)
				}
			}
		}

		queryCache := cache.New[[]models.Medicine](config.AppConfig.SearchCacheTTL)
		retriever := search.NewRetriever(catalog.GlobalStore, queryCache, retrieverOptions())
		reconciler := search.NewReconciler(retriever, reconcilerOptions())

		var recog recognizer.Recognizer
		if config.AppConfig.EnableAIRecognition && config.AppConfig.OpenAIAPIKey != "" {
			recog = recognizer.NewOpenAIRecognizer(config.AppConfig.OpenAIAPIKey, true)
			fmt.Println("Using OpenAI handwriting recognizer")
		} else {
			recog = recognizer.NewStaticRecognizer()
			fmt.Println("Using static handwriting recognizer (AI recognition disabled)")
		}

		// Watch the catalog CSV and re-import on change.
		if config.AppConfig.WatchCatalog && config.AppConfig.CatalogCSV != "" {
			w := watcher.New(func(path string) {
				if err := catalog.GlobalStore.Reset(); err != nil {
					fmt.Printf("Warning: catalog reset failed: %v\n", err)
					return
				}
				if n, err := catalog.ImportCSV(catalog.GlobalStore, path, false); err != nil {
					fmt.Printf("Warning: catalog re-import failed: %v\n", err)
				} else {
					queryCache.InvalidateAll()
					fmt.Printf("Catalog reloaded: %d medicines\n", n)
				}
			}, 0)
			if err := w.Start(config.AppConfig.CatalogCSV); err != nil {
				fmt.Printf("Warning: catalog watcher failed to start: %v\n", err)
			} else {
				defer w.Stop()
				fmt.Printf("Watching catalog: %s\n", config.AppConfig.CatalogCSV)
			}
		}

		srv := server.NewServer(catalog.GlobalStore, retriever, reconciler, recog)
		cfg := server.GetDefaultServerConfig()
		cfg.Host = config.AppConfig.Host
		cfg.Port = strconv.Itoa(config.AppConfig.Port)

		// Override with command line flags if provided
		if port := cmd.Flag("port").Value.String(); cmd.Flag("port").Changed && port != "" {
			cfg.Port = port
		}
		if host := cmd.Flag("host").Value.String(); cmd.Flag("host").Changed && host != "" {
			cfg.Host = host
		}
		if rt := cmd.Flag("read-timeout").Value.String(); rt != "" {
			if d, err := time.ParseDuration(rt); err == nil {
				cfg.ReadTimeout = d
			}
		}
		if wt := cmd.Flag("write-timeout").Value.String(); wt != "" {
			if d, err := time.ParseDuration(wt); err == nil {
				cfg.WriteTimeout = d
			}
		}
		if it := cmd.Flag("idle-timeout").Value.String(); it != "" {
			if d, err := time.ParseDuration(it); err == nil {
				cfg.IdleTimeout = d
			}
		}

		return srv.Start(cfg)
	},
}

func retrieverOptions() search.Options {
	opts := search.DefaultOptions()
	if config.AppConfig.SearchResultMax > 0 {
		opts.ResultLimit = config.AppConfig.SearchResultMax
	}
	if config.AppConfig.SearchCacheTTL > 0 {
		opts.CacheTTL = config.AppConfig.SearchCacheTTL
	}
	return opts
}

func reconcilerOptions() search.ReconcilerOptions {
	opts := search.DefaultReconcilerOptions()
	if config.AppConfig.ScoreThreshold > 0 {
		opts.ScoreThreshold = config.AppConfig.ScoreThreshold
	}
	if config.AppConfig.MaxMatches > 0 {
		opts.MaxMatches = config.AppConfig.MaxMatches
	}
	if config.AppConfig.PerCandidateMax > 0 {
		opts.PerCandidateLimit = config.AppConfig.PerCandidateMax
	}
	return opts
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rxscribe.yaml)")
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "rxscribe.db", "path to the catalog database")
	rootCmd.PersistentFlags().StringVar(&databaseType, "db-type", "sqlite", "database type: sqlite (default) or pebble")
	rootCmd.PersistentFlags().StringVar(&catalogCSV, "catalog", "", "path to the medicine catalog CSV")

	viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("database_type", rootCmd.PersistentFlags().Lookup("db-type"))
	viper.BindPFlag("catalog_csv", rootCmd.PersistentFlags().Lookup("catalog"))

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)

	// Add serve command specific flags
	serveCmd.Flags().String("port", "8080", "port to run the API server on")
	serveCmd.Flags().String("host", "0.0.0.0", "host to bind the API server to")
	serveCmd.Flags().String("read-timeout", "15s", "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("write-timeout", "15s", "write timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("idle-timeout", "60s", "idle timeout (e.g. 60s, 2m)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rxscribe")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	// Ensure database directory exists
	if databasePath != "" {
		dbDir := filepath.Dir(databasePath)
		if dbDir != "." {
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				fmt.Printf("Error creating database directory: %v\n", err)
			}
		}
	}

	config.InitConfig()
}

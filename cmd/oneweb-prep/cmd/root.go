package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/mfenderov/oneweb-prep/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
	opts    config.Options
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "oneweb-prep <files>",
	Short: "Prepare product content exports for search",
	Long: `oneweb-prep reads product catalog exports (JSON), renders an HTML abstract for
every result, stores the source files as blobs and indexes one searchable section
per result. With --remove or --removeall it deletes what a previous run created.

Examples:
  # Index every export in a folder
  oneweb-prep 'data/*.json' --localpdfparser --category products

  # Index without uploading the source files
  oneweb-prep 'data/*.json' --localpdfparser --skipblobs

  # Remove the sections and blobs of one export
  oneweb-prep data/tax.json --localpdfparser --remove

  # Remove everything
  oneweb-prep 'data/*.json' --localpdfparser --removeall

Commands:
  search  Search the indexed sections
  serve   Start the MCP server for section retrieval`,
	Args:          cobra.ExactArgs(1),
	RunE:          runPrep,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Shared by the read-side commands.
	rootCmd.PersistentFlags().StringVar(&opts.SearchService, "searchservice", "", "search service address(es), comma separated")
	rootCmd.PersistentFlags().StringVar(&opts.Index, "index", "", "name of the search index")
	rootCmd.PersistentFlags().StringVar(&opts.SearchKey, "searchkey", "", "search service API key (default: ambient identity)")
	rootCmd.PersistentFlags().StringVar(&opts.TenantID, "tenantid", "", "identity profile used when no explicit key is given")

	flags := rootCmd.Flags()
	flags.StringVar(&opts.Category, "category", "", "value for the category field of every section")
	flags.BoolVar(&opts.SkipBlobs, "skipblobs", false, "skip uploading source files to blob storage")
	flags.StringVar(&opts.StorageAccount, "storageaccount", "", "blob storage account (access key id)")
	flags.StringVar(&opts.Container, "container", "", "blob container (bucket) name")
	flags.StringVar(&opts.StorageKey, "storagekey", "", "blob storage key (default: ambient identity)")
	flags.BoolVar(&opts.Remove, "remove", false, "remove the sections and blobs of the matched files")
	flags.BoolVar(&opts.RemoveAll, "removeall", false, "remove every section and blob")
	flags.BoolVar(&opts.LocalPDFParser, "localpdfparser", false, "use the local PDF parser instead of the form recognizer service")
	flags.StringVar(&opts.FormRecognizerService, "formrecognizerservice", "", "form recognizer service endpoint")
	flags.StringVar(&opts.FormRecognizerKey, "formrecognizerkey", "", "form recognizer key (default: ambient identity)")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/oneweb-prep")
		viper.AddConfigPath(".")
	}

	// ONEWEBPREP_ELASTICSEARCH_ADDRESSES -> elasticsearch.addresses
	viper.SetEnvPrefix("ONEWEBPREP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("elasticsearch.addresses", "ONEWEBPREP_ELASTICSEARCH_ADDRESSES")
	viper.BindEnv("elasticsearch.index", "ONEWEBPREP_ELASTICSEARCH_INDEX")
	viper.BindEnv("elasticsearch.api_key", "ONEWEBPREP_ELASTICSEARCH_API_KEY")
	viper.BindEnv("storage.endpoint", "ONEWEBPREP_STORAGE_ENDPOINT")
	viper.BindEnv("storage.bucket", "ONEWEBPREP_STORAGE_BUCKET")
	viper.BindEnv("storage.access_key_id", "ONEWEBPREP_STORAGE_ACCESS_KEY_ID")
	viper.BindEnv("storage.secret_key", "ONEWEBPREP_STORAGE_SECRET_KEY")
	viper.BindEnv("storage.use_ssl", "ONEWEBPREP_STORAGE_USE_SSL")
	viper.BindEnv("formrecognizer.endpoint", "ONEWEBPREP_FORMRECOGNIZER_ENDPOINT")
	viper.BindEnv("formrecognizer.key", "ONEWEBPREP_FORMRECOGNIZER_KEY")
	viper.BindEnv("identity.profile", "ONEWEBPREP_IDENTITY_PROFILE")
	viper.BindEnv("identity.username", "ONEWEBPREP_IDENTITY_USERNAME")
	viper.BindEnv("identity.password", "ONEWEBPREP_IDENTITY_PASSWORD")
	viper.BindEnv("indexing.batch_size", "ONEWEBPREP_INDEXING_BATCH_SIZE")
	viper.BindEnv("indexing.delete_delay", "ONEWEBPREP_INDEXING_DELETE_DELAY")
	viper.BindEnv("mcp.name", "ONEWEBPREP_MCP_NAME")
	viper.BindEnv("mcp.version", "ONEWEBPREP_MCP_VERSION")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	if addrs := os.Getenv("ONEWEBPREP_ELASTICSEARCH_ADDRESSES"); addrs != "" {
		cfg.Elasticsearch.Addresses = strings.Split(addrs, ",")
	}
}

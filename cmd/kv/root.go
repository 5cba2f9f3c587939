package kv

import (
	"github.com/gridkv/gridkv/cmd/util"
	"github.com/gridkv/gridkv/lib/store"
	"github.com/gridkv/gridkv/lib/store/rstore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	kvStore store.IStore

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:               "kv",
		Short:             "Perform key-value store operations",
		PersistentPreRunE: setupStore,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common store flags to the KV command
	util.SetupStoreFlags(KeyValueCommands)

	// The path flag addresses a sub-field inside the stored value
	KeyValueCommands.PersistentFlags().String("path", "", util.WrapString("Dotted path inside the stored value (e.g. opts.retries or items[0])"))

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(ensureCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(delAllCmd)
	KeyValueCommands.AddCommand(keysCmd)
	KeyValueCommands.AddCommand(reportCmd)
	KeyValueCommands.AddCommand(statsCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupStore builds the store from the configuration and hydrates it
func setupStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	logger := util.NewLogger()

	// Get codec and table factory
	cellCodec, err := util.GetCodec()
	if err != nil {
		return err
	}

	factory, err := util.GetTableFactory(logger)
	if err != nil {
		return err
	}

	// Create the store client
	kvStore, err = rstore.New(
		rstore.Config{
			Name:   viper.GetString("name"),
			Key:    viper.GetString("key-label"),
			Codec:  cellCodec,
			Logger: logger,
		},
		factory,
	)
	if err != nil {
		return err
	}

	// Hydrate the in-memory mirror
	return kvStore.Open(cmd.Context())
}

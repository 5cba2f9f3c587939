package kv

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gridkv/gridkv/cmd/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Long:  "Sets the value for a key. The value is parsed with the configured codec, values the codec cannot parse are stored as plain strings. With --path only the addressed sub-field of the stored value is replaced.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := parseValue(args[1])
			if err := kvStore.Set(cmd.Context(), key, viper.GetString("path"), value); err != nil {
				return err
			} else {
				fmt.Println("set successfully")
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if value, found, err := kvStore.Get(key, viper.GetString("path")); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v, value=%s\n", key, found, renderValue(value))
			}
			return nil
		},
	}
	ensureCmd = &cobra.Command{
		Use:   "ensure [key] [default]",
		Short: "Reads the value for a key, falling back to a default",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			def := parseValue(args[1])
			if value, err := kvStore.Ensure(key, viper.GetString("path"), def); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, value=%s\n", key, renderValue(value))
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Long:  "Deletes a key value pair together with its remote row. With --path only the addressed sub-field is removed from the stored value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := kvStore.Delete(cmd.Context(), key, viper.GetString("path")); err != nil {
				return err
			} else {
				fmt.Println("delete successfully")
			}
			return nil
		},
	}
	delAllCmd = &cobra.Command{
		Use:   "delall",
		Short: "Deletes all key value pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count := kvStore.Len()
			if err := kvStore.DeleteAll(cmd.Context()); err != nil {
				return err
			} else {
				fmt.Printf("deleted %d keys\n", count)
			}
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists all keys in row order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := kvStore.Keys()
			for _, key := range keys {
				fmt.Println(key)
			}
			fmt.Printf("%d keys\n", len(keys))
			return nil
		},
	}
	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Shows the hydration report of the store",
		Long:  "Shows how many remote rows were loaded into the mirror and which rows were skipped (empty rows, rows without a key, duplicate keys).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := kvStore.Report()
			if err != nil {
				return err
			}
			fmt.Printf("rows=%d, loaded=%d, skipped=%d\n", report.Rows, report.Loaded, len(report.Skipped))
			for _, skipped := range report.Skipped {
				fmt.Printf("  row %d: %s\n", skipped.Row, skipped.Reason)
			}
			return nil
		},
	}
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Prints store and transport metrics in Prometheus format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metrics.WritePrometheus(os.Stdout, false)
			return nil
		},
	}
)

// parseValue decodes a command line value with the configured codec. Values
// the codec cannot parse are kept as plain strings, matching the string
// passthrough of the store itself.
func parseValue(arg string) any {
	cellCodec, err := util.GetCodec()
	if err != nil {
		return arg
	}
	value, err := cellCodec.Decode(arg)
	if err != nil {
		return arg
	}
	return value
}

// renderValue formats a stored value for terminal output
func renderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "<nil>"
	case string:
		return v
	default:
		text, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(text)
	}
}

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ssargent/bptreedb/pkg/registry"
)

// putCmd represents the put command
var putCmd = &cobra.Command{
	Use:   "put <dataset> <key> <line>",
	Short: "Upsert a single (key, line) pair into a dataset",
	Long: `Upsert a single (key, line) pair into a dataset.

Example:
  bptreedb put widgets 42 "forty-two"`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := registryFromContext(cmd)
		if err != nil {
			fmt.Println(err)
			return
		}

		key, err := strconv.ParseInt(args[1], 10, 32)
		if err != nil {
			fmt.Printf("Error: key must be a signed 32-bit integer: %v\n", err)
			return
		}

		if _, err := reg.BulkInsert(args[0], []registry.KeyLine{{Key: int32(key), Line: args[2]}}); err != nil {
			fmt.Printf("Error inserting: %v\n", err)
			return
		}
		fmt.Println("ok")
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
}

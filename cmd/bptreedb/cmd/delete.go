package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <dataset> <key>",
	Short: "Delete a key from a dataset",
	Long: `Delete a key from a dataset.

Example:
  bptreedb delete widgets 42`,
	Args: cobra.ExactArgs(2),
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

		if err := reg.DeleteKey(args[0], int32(key)); err != nil {
			fmt.Printf("Error deleting: %v\n", err)
			return
		}
		fmt.Println("ok")
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

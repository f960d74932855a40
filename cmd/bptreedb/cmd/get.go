package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <dataset> <key>",
	Short: "Get the line stored for a key",
	Long: `Get the line stored for a key in a dataset.

Example:
  bptreedb get widgets 42`,
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

		line, ok, err := reg.Search(args[0], int32(key))
		if err != nil {
			fmt.Printf("Error searching: %v\n", err)
			return
		}
		if !ok {
			fmt.Println("not found")
			return
		}
		fmt.Println(line)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}

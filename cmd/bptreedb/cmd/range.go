package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// rangeCmd represents the range command
var rangeCmd = &cobra.Command{
	Use:   "range <dataset> <lo> <hi>",
	Short: "List every (key, line) pair with lo <= key <= hi",
	Long: `List every (key, line) pair with lo <= key <= hi.

Example:
  bptreedb range widgets 10 20`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := registryFromContext(cmd)
		if err != nil {
			fmt.Println(err)
			return
		}

		lo, err := strconv.ParseInt(args[1], 10, 32)
		if err != nil {
			fmt.Printf("Error: lo must be a signed 32-bit integer: %v\n", err)
			return
		}
		hi, err := strconv.ParseInt(args[2], 10, 32)
		if err != nil {
			fmt.Printf("Error: hi must be a signed 32-bit integer: %v\n", err)
			return
		}

		entries, err := reg.Range(args[0], int32(lo), int32(hi))
		if err != nil {
			fmt.Printf("Error ranging: %v\n", err)
			return
		}
		for _, e := range entries {
			fmt.Printf("%d\t%s\n", e.Key, e.Line)
		}
	},
}

func init() {
	rootCmd.AddCommand(rangeCmd)
}

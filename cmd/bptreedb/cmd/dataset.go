package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// createDatasetCmd represents the create-dataset command
var createDatasetCmd = &cobra.Command{
	Use:   "create-dataset <name>",
	Short: "Create a new dataset",
	Long: `Create a new dataset with its own B+ tree.

Example:
  bptreedb create-dataset widgets --order 32`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := registryFromContext(cmd)
		if err != nil {
			fmt.Println(err)
			return
		}
		order, _ := cmd.Flags().GetInt("order")

		if err := reg.Create(args[0], order); err != nil {
			fmt.Printf("Error creating dataset: %v\n", err)
			return
		}
		fmt.Printf("created dataset %q\n", args[0])
	},
}

// deleteDatasetCmd represents the delete-dataset command
var deleteDatasetCmd = &cobra.Command{
	Use:   "delete-dataset <name>",
	Short: "Delete a dataset and all its on-disk state",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := registryFromContext(cmd)
		if err != nil {
			fmt.Println(err)
			return
		}
		if err := reg.Delete(args[0]); err != nil {
			fmt.Printf("Error deleting dataset: %v\n", err)
			return
		}
		fmt.Printf("deleted dataset %q\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(createDatasetCmd)
	createDatasetCmd.Flags().Int("order", 32, "B+ tree order for the new dataset")
	rootCmd.AddCommand(deleteDatasetCmd)
}

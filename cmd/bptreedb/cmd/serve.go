/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/bptreedb/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the bptreedb REST API server.

Example:
  bptreedb serve --port=8080`,
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := registryFromContext(cmd)
		if err != nil {
			fmt.Println(err)
			return
		}
		port, _ := cmd.Flags().GetInt("port")

		if err := api.StartServer(reg, api.ServerConfig{Port: port}); err != nil {
			fmt.Printf("Error starting server: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
}

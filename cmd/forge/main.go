package main

import (
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/projectforge/forge/cli/chat"
	"github.com/projectforge/forge/cli/conversation"
	"github.com/projectforge/forge/internal/coach"
	"github.com/projectforge/forge/internal/configuration"
	"github.com/projectforge/forge/internal/debug"
)

var rootCmd = &cobra.Command{
	Use:     "forge",
	Short:   "A terminal client for the Project Forge writing coach",
	Version: "1.0",
}

func main() {
	configFilepath := configuration.DefaultPath
	if path := os.Getenv("FORGE_CONFIG"); path != "" {
		configFilepath = path
	}
	config, err := configuration.Parse(configFilepath)
	cobra.CheckErr(err)
	cobra.CheckErr(debug.SetOutput(config.DebugLogFile))

	log := debug.GetLogger()
	client, err := coach.New(
		config.APIBaseURL,
		coach.WithHTTPClient(&http.Client{Timeout: config.RequestTimeoutDuration()}),
		coach.WithLogger(log),
	)
	cobra.CheckErr(err)
	log.Info("starting", "api_base_url", client.BaseURL(), "args", os.Args[1:])

	rootCmd.AddCommand(chat.NewCmd(config, client))
	rootCmd.AddCommand(conversation.NewCmds(config, client)...)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

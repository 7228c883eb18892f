package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ConfigCmd manages the stored API URL and key.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the stored API settings",
	}

	cmd.AddCommand(configSetCmd())
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configClearCmd())

	return cmd
}

func configSetCmd() *cobra.Command {
	var apiKey, apiURL string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the API URL and/or key in the user config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" && apiURL == "" {
				return fmt.Errorf("nothing to set: pass --key and/or --url")
			}

			config, err := LoadGlobalConfig()
			if err != nil {
				return err
			}
			if config == nil {
				config = &GlobalConfig{}
			}
			if apiKey != "" {
				config.APIKey = apiKey
			}
			if apiURL != "" {
				config.APIURL = apiURL
			}
			if err := SaveGlobalConfig(config); err != nil {
				return err
			}

			path, _ := GetConfigPath()
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "key", "", "API key sent as a bearer token")
	cmd.Flags().StringVar(&apiURL, "url", "", "API base URL")

	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective API URL and whether a key is configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			// loads .env and rejects a malformed config file
			if _, err := NewAPIClientWithCmd(cmd); err != nil {
				return err
			}
			flagURL, _ := cmd.Flags().GetString("api-url")
			flagKey, _ := cmd.Flags().GetString("api-key")
			urlSource, url := ResolveAPIURL(flagURL)
			keySource, key := ResolveAPIKey(flagKey)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "API URL: %s (%s)\n", url, urlSource)
			if key == "" {
				fmt.Fprintln(out, "API key: not set")
				return nil
			}
			fmt.Fprintf(out, "API key: %s (%s)\n", maskKey(key), keySource)
			return nil
		},
	}
}

func configClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the user config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := DeleteGlobalConfig(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Config cleared")
			return nil
		},
	}
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

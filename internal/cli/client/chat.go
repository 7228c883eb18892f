package client

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ChatCmd asks a question about a document.
func ChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <document_id> <question...>",
		Short: "Ask a question about a document",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			body := map[string]string{
				"document_id": args[0],
				"question":    strings.Join(args[1:], " "),
			}
			var reply ChatReply
			if err := api.PostInto("/chat", body, &reply); err != nil {
				return fmt.Errorf("failed to chat: %w", err)
			}

			if outputJSON, _ := cmd.Flags().GetBool("output"); outputJSON {
				return printJSON(cmd.OutOrStdout(), reply)
			}
			renderChat(cmd.OutOrStdout(), &reply)
			return nil
		},
	}
}

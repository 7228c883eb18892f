package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// UploadCmd uploads a course document.
func UploadCmd() *cobra.Command {
	var build bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a course document",
		Long:  "Uploads a file (txt, md, csv, pdf, docx, ...) and prints its document ID. With --build the FAQ is generated right away.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			outputJSON, _ := cmd.Flags().GetBool("output")
			out := cmd.OutOrStdout()

			resp, err := api.Upload("/upload", args[0])
			if err != nil {
				return fmt.Errorf("failed to upload: %w", err)
			}
			var uploaded UploadResult
			if err := resp.decode(&uploaded); err != nil {
				return err
			}

			if !build {
				if outputJSON {
					return printJSON(out, uploaded)
				}
				fmt.Fprintf(out, "Uploaded %s as %s\n", uploaded.Filename, boldCyan(uploaded.DocumentID))
				return nil
			}

			var built BuildResult
			if err := api.PostInto("/documents/"+uploaded.DocumentID+"/build_faq", nil, &built); err != nil {
				return fmt.Errorf("failed to build faq: %w", err)
			}
			if outputJSON {
				return printJSON(out, built)
			}
			fmt.Fprintf(out, "Uploaded %s as %s\n", uploaded.Filename, boldCyan(uploaded.DocumentID))
			fmt.Fprintf(out, "Built FAQ %s with %d questions\n", boldCyan(built.FaqID), built.Count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&build, "build", false, "Build the FAQ after uploading")

	return cmd
}

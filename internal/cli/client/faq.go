package client

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

const jobPollInterval = 2 * time.Second

// FaqCmd groups the FAQ commands.
func FaqCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faq",
		Short: "Build, page through and extend FAQs",
	}

	cmd.AddCommand(faqBuildCmd())
	cmd.AddCommand(faqShowCmd())
	cmd.AddCommand(faqExtendCmd())
	cmd.AddCommand(faqJobCmd())

	return cmd
}

func faqBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build <document_id>",
		Short: "Generate the first page of questions for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			var built BuildResult
			if err := api.PostInto("/documents/"+url.PathEscape(args[0])+"/build_faq", nil, &built); err != nil {
				return fmt.Errorf("failed to build faq: %w", err)
			}

			if outputJSON, _ := cmd.Flags().GetBool("output"); outputJSON {
				return printJSON(cmd.OutOrStdout(), built)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Built FAQ %s with %d questions\n", boldCyan(built.FaqID), built.Count)
			return nil
		},
	}
}

func faqShowCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "show <faq_id>",
		Short: "Show one page of a FAQ",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			result, err := fetchPage(api, args[0], page, pageSize)
			if err != nil {
				return err
			}

			if outputJSON, _ := cmd.Flags().GetBool("output"); outputJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			renderFaqPage(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", 5, "Questions per page")

	return cmd
}

func fetchPage(api *APIClient, faqID string, page, pageSize int) (*FaqPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var result FaqPage
	if err := api.GetInto("/faq/"+url.PathEscape(faqID)+"?"+q.Encode(), &result); err != nil {
		return nil, fmt.Errorf("failed to get faq: %w", err)
	}
	return &result, nil
}

func faqExtendCmd() *cobra.Command {
	var wait bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "extend <faq_id>",
		Short: "Ask for more questions in the background",
		Long:  "Starts (or joins) an extension job. With --wait the command polls until the job finishes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			outputJSON, _ := cmd.Flags().GetBool("output")

			var started ExtendStarted
			if err := api.PostInto("/faq/"+url.PathEscape(args[0])+"/extend", nil, &started); err != nil {
				return fmt.Errorf("failed to extend faq: %w", err)
			}

			if !wait {
				if outputJSON {
					return printJSON(out, started)
				}
				msg := "Started"
				if started.AlreadyRunning {
					msg = "Already running"
				}
				fmt.Fprintf(out, "%s: job %s\n", msg, boldCyan(started.JobID))
				return nil
			}

			job, err := waitForJob(api, started.JobID, jobPollInterval, timeout)
			if err != nil {
				return err
			}
			if outputJSON {
				return printJSON(out, job)
			}
			renderJob(out, job)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait for the job to finish")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Maximum time to wait with --wait")

	return cmd
}

// waitForJob polls a job until it leaves the running state.
func waitForJob(api *APIClient, jobID string, interval, timeout time.Duration) (*ExtendJob, error) {
	deadline := time.Now().Add(timeout)
	for {
		job, err := fetchJob(api, jobID)
		if err != nil {
			return nil, err
		}
		if job.Status != "running" {
			return job, nil
		}
		if time.Now().After(deadline) {
			return job, fmt.Errorf("job %s still running after %s", jobID, timeout)
		}
		time.Sleep(interval)
	}
}

func fetchJob(api *APIClient, jobID string) (*ExtendJob, error) {
	var job ExtendJob
	if err := api.GetInto("/faq/jobs/"+url.PathEscape(jobID), &job); err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func faqJobCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "job <job_id>",
		Short: "Show the status of an extension job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			job, err := fetchJob(api, args[0])
			if err != nil {
				return err
			}

			if outputJSON, _ := cmd.Flags().GetBool("output"); outputJSON {
				return printJSON(cmd.OutOrStdout(), job)
			}
			renderJob(cmd.OutOrStdout(), job)
			return nil
		},
	}
}

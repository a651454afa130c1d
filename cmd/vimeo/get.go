package main

import (
	"fmt"

	"github.com/spf13/cobra"

	vimeo "github.com/videolib/vimeo-go"
)

func newGetCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "get PATH",
		Short: "Issue a GET request against the API and print the response",
		Long: `Issue a GET request against the API and print the JSON response.
With --query, print only the value at the given gjson path, e.g.:

  vimeo get /me --query metadata.connections.videos.total`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger()

			client, err := newSDKClient(logger)
			if err != nil {
				return err
			}

			resp, err := client.Request(cmd.Context(), vimeo.RequestOptions{Path: args[0]})
			if err != nil {
				return err
			}

			if query != "" {
				fmt.Fprintln(cmd.OutOrStdout(), resp.Get(query).String())
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(resp.Body))

			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "gjson path to extract from the response")

	return cmd
}

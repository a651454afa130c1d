package main

import (
	"context"
	"fmt"
	"os"

	"github.com/docker/go-units"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	vimeo "github.com/videolib/vimeo-go"
)

func newUploadCmd() *cobra.Command {
	var (
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger()

			client, err := newSDKClient(logger)
			if err != nil {
				return err
			}

			params := vimeo.Params{}
			if name != "" {
				params["name"] = name
			}

			if description != "" {
				params["description"] = description
			}

			handle, err := client.UploadFromPath(cmd.Context(), args[0], params, progressCallbacks())
			if err != nil {
				return err
			}

			return runTransfer(cmd.Context(), cmd, handle)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "video title")
	cmd.Flags().StringVar(&description, "description", "", "video description")

	return cmd
}

func newReplaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replace FILE VIDEO_URI",
		Short: "Replace the source media of an existing video",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger()

			client, err := newSDKClient(logger)
			if err != nil {
				return err
			}

			handle, err := client.ReplaceFromPath(cmd.Context(), args[0], args[1], vimeo.Params{}, progressCallbacks())
			if err != nil {
				return err
			}

			return runTransfer(cmd.Context(), cmd, handle)
		},
	}
}

// runTransfer starts the handle and prints the resulting video URI.
func runTransfer(ctx context.Context, cmd *cobra.Command, handle *vimeo.UploadHandle) error {
	statusf("Uploading %s to %s\n", units.HumanSize(float64(handle.Size())), handle.VideoURI())

	if err := handle.Start(ctx); err != nil {
		return err
	}

	if progressTTY() {
		// Terminate the \r progress line.
		fmt.Fprintln(os.Stderr)
	}

	fmt.Fprintln(cmd.OutOrStdout(), handle.VideoURI())

	return nil
}

// progressCallbacks renders transfer progress on stderr when it is a TTY.
// Terminal errors reach the caller through Start's return value, so OnError
// stays nil here.
func progressCallbacks() vimeo.UploadCallbacks {
	if !progressTTY() {
		return vimeo.UploadCallbacks{}
	}

	return vimeo.UploadCallbacks{
		OnProgress: func(sent, total int64) {
			fmt.Fprintf(os.Stderr, "\r%s / %s",
				units.HumanSize(float64(sent)), units.HumanSize(float64(total)))
		},
	}
}

func progressTTY() bool {
	return !flagQuiet && isatty.IsTerminal(os.Stderr.Fd())
}

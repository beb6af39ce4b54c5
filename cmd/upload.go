package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"dataroom-cli/cmd/api"
	"dataroom-cli/cmd/render"
	"dataroom-cli/cmd/session"
	"dataroom-cli/cmd/utils"

	"github.com/spf13/cobra"
)

var uploadWatch bool

var uploadCmd = &cobra.Command{
	Use:   "upload PATH",
	Short: "Upload a CSV or Excel file to the data room",
	Long: `Upload a CSV or Excel file (up to 10MB). The backend replaces any
dataset it already holds and starts a fresh conversation.

Examples:
  dataroom upload ./sales.csv

  # Re-upload whenever the file is saved
  dataroom upload ./sales.xlsx --watch`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := utils.ResolvePath(args[0])
		client := newAPIClient()
		out := cmd.OutOrStdout()

		if err := uploadOnce(cmd.Context(), client, path, out); err != nil {
			return err
		}
		if !uploadWatch {
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		OutputInfo("Watching %s for changes (Ctrl+C to stop)", path)
		return watchFile(ctx, path, func() {
			OutputInfo("%s changed, uploading again", path)
			if err := uploadOnce(ctx, client, path, out); err != nil {
				OutputError("%v", err)
			}
		})
	},
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadWatch, "watch", "w", false, "Upload again whenever the file changes")
	rootCmd.AddCommand(uploadCmd)
}

// uploadOnce validates and sends path, then prints the dataset panel.
func uploadOnce(ctx context.Context, client *api.Client, path string, w io.Writer) error {
	if err := session.ValidateUpload(path); err != nil {
		return err
	}
	resp, err := client.UploadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("upload error: %s", api.ErrorMessage(err))
	}
	if !resp.Success || resp.DataInfo == nil {
		reason := resp.Error
		if reason == "" {
			reason = "Unknown error"
		}
		return fmt.Errorf("upload failed: %s", reason)
	}
	OutputSuccess("File uploaded successfully! %d rows, %d columns.", resp.DataInfo.Rows, resp.DataInfo.Columns)
	fmt.Fprintln(w, render.DataInfo(resp.DataInfo, outputWidth()))
	return nil
}

package commands

import (
	"context"
	"fmt"

	"github.com/forgeworks-io/forge-client/pkg/forge"
	"github.com/spf13/cobra"
)

// NewArtifactsCommand creates the artifacts command group
func NewArtifactsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "artifacts",
		Aliases: []string{"artifact"},
		Short:   "Download job artifacts",
		Long:    "Resolve and download the artifacts a finished job produced",
	}

	cmd.AddCommand(newArtifactsDownloadCommand())

	return cmd
}

func newArtifactsDownloadCommand() *cobra.Command {
	var destDir string

	cmd := &cobra.Command{
		Use:   "download JOB_ID ARTIFACT_TYPE",
		Short: "Download one artifact of a job",
		Long:  "Resolve the signed URL for an artifact type and stream it to disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID := args[0]
			artifactType := forge.ArtifactType(args[1])

			forgeClient, err := CreateClient()
			if err != nil {
				return err
			}

			logger := NewConsoleLogger()

			progress := func(loaded, total int64) {
				if total > 0 {
					fmt.Printf("\rDownloading... %d/%d bytes (%.0f%%)",
						loaded, total, float64(loaded)/float64(total)*100)
				} else {
					fmt.Printf("\rDownloading... %d bytes", loaded)
				}
			}

			path, err := forgeClient.Artifacts().Download(
				context.Background(), jobID, artifactType, destDir, artifactNamer{}, progress)

			fmt.Println()

			if err != nil {
				return fmt.Errorf("failed to download artifact: %w", err)
			}

			logger.Ok("Saved " + path)

			return nil
		},
	}

	cmd.Flags().StringVarP(&destDir, "dir", "d", ".", "destination directory")

	return cmd
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"media-catalog/internal/mediatypes"
	"media-catalog/internal/startup"
)

func newThumbnailCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "thumbnail <path>",
		Short: "Render the thumbnail of a single file",
		Long: `Thumbnail encodes the preview the catalog would store for path and writes it
to the file given by -o, or to stdout when -o is "-".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if output == "-" && isTerminal(cmd.OutOrStdout()) {
				return errors.New("refusing to write image data to a terminal; use -o")
			}

			cfg, err := startup.LoadConfig()
			if err != nil {
				return err
			}
			transcoder, cleanup := setupMedia(cfg, filepath.Dir(path))
			defer cleanup()

			data, mimeType, err := transcoder.GenerateThumbnail(cmd.Context(), path, mediatypes.ClassifyPath(path))
			if err != nil {
				return err
			}

			if output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write thumbnail: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%s, %d bytes)\n", output, mimeType, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "thumbnail.jpg", `Output file, or "-" for stdout`)
	return cmd
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picklepete/icloudgo/internal/photos"
)

func newPhotosClient(ctx context.Context) (*photos.Client, error) {
	session, err := newSession(ctx)
	if err != nil {
		return nil, err
	}
	serviceRoot, err := session.ServiceURL("ckdatabasews")
	if err != nil {
		return nil, err
	}
	return photos.NewClient(ctx, session.Requester(), serviceRoot)
}

func newPhotosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "Browse the photo library's smart albums",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "albums",
		Short: "List smart albums with their asset counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := newPhotosClient(ctx)
			if err != nil {
				return err
			}

			for _, album := range client.Albums() {
				count, err := album.Count(ctx)
				if err != nil {
					fmt.Printf("%s\t(count unavailable: %v)\n", album.Name(), err)
					continue
				}
				fmt.Printf("%s\t%d\n", album.Name(), count)
			}
			return nil
		},
	})

	cmd.AddCommand(newPhotosListCmd())
	return cmd
}

func newPhotosListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list <album>",
		Short: "List the first assets of a smart album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := newPhotosClient(ctx)
			if err != nil {
				return err
			}

			album, err := client.Album(args[0])
			if err != nil {
				return err
			}
			assets, err := album.Photos(ctx, limit)
			if err != nil {
				return err
			}
			for _, asset := range assets {
				fmt.Printf("%s\t%dx%d\t%d bytes\t%s\n",
					asset.Filename, asset.Width, asset.Height, asset.Size,
					asset.Created.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 25, "Maximum number of assets to list")
	return cmd
}

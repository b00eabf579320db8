package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/picklepete/icloudgo/internal/drive"
)

func newDriveClient(ctx context.Context) (*drive.Client, error) {
	session, err := newSession(ctx)
	if err != nil {
		return nil, err
	}
	serviceRoot, err := session.ServiceURL("drivews")
	if err != nil {
		return nil, err
	}
	documentRoot, err := session.ServiceURL("docws")
	if err != nil {
		return nil, err
	}
	return drive.NewClient(session.Requester(), serviceRoot, documentRoot)
}

func newDriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drive",
		Short: "Browse iCloud Drive",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls [folder-id]",
		Short: "List a folder, defaulting to the drive root",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := newDriveClient(ctx)
			if err != nil {
				return err
			}

			var node *drive.Node
			if len(args) == 0 {
				node, err = client.Root(ctx)
			} else {
				node, err = client.GetNode(ctx, args[0])
			}
			if err != nil {
				return err
			}

			for _, item := range node.Items {
				if item.IsFolder() {
					fmt.Printf("%s/\t%s\n", item.Name, item.DrivewsID)
				} else {
					fmt.Printf("%s\t%d bytes\t%s\n", item.FullName(), item.Size, item.DrivewsID)
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "url <folder-id> <file-name>",
		Short: "Resolve the download URL of a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := newDriveClient(ctx)
			if err != nil {
				return err
			}

			folder, err := client.GetNode(ctx, args[0])
			if err != nil {
				return err
			}
			file := folder.Child(args[1])
			if file == nil {
				return fmt.Errorf("no file named %q in %s", args[1], folder.Name)
			}

			url, err := client.DownloadURL(ctx, file)
			if err != nil {
				return err
			}
			fmt.Println(url)
			return nil
		},
	})

	return cmd
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bellycard/apigee-cli/internal/api"
	"github.com/bellycard/apigee-cli/internal/constants"
	"github.com/bellycard/apigee-cli/internal/models"
	"github.com/bellycard/apigee-cli/internal/progress"
)

func newResourceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resource",
		Aliases: []string{"resources"},
		Short:   "Manage environment resource files",
		Long: `Manage JavaScript (and other) resource files stored in an Apigee environment.

Running "apigee resource" without a subcommand lists the environment's files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResourceList(cmd, "", "", false)
		},
	}

	cmd.AddCommand(newResourceListCmd())
	cmd.AddCommand(newResourceUploadCmd())
	cmd.AddCommand(newResourceDeleteCmd())

	return cmd
}

func newResourceListCmd() *cobra.Command {
	var name string
	var fileType string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resource files, or print one",
		Long: `List the resource files of the environment, or print the content of one file.

Examples:
  apigee resource list
  apigee resource list --name auth.js
  apigee resource list -e prod --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResourceList(cmd, name, fileType, asJSON)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Print the content of this resource file")
	cmd.Flags().StringVarP(&fileType, "type", "t", constants.DefaultResourceType, "Resource type used with --name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON (with --name: name, type and content)")

	return cmd
}

func runResourceList(cmd *cobra.Command, name, fileType string, asJSON bool) error {
	client, err := getAPIClient(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	p := newPrinter(cmd)
	ctx := GetContext()

	if name != "" {
		if fileType == "" {
			fileType = constants.DefaultResourceType
		}
		content, err := client.ReadResourceFile(ctx, name, fileType)
		if err != nil {
			return err
		}
		if asJSON {
			return p.JSON(models.ResourceFile{
				ResourceFileInfo: models.ResourceFileInfo{Name: name, Type: fileType},
				Content:          content,
			})
		}
		fmt.Fprint(p.out, content)
		if !strings.HasSuffix(content, "\n") {
			fmt.Fprintln(p.out)
		}
		return nil
	}

	files, err := client.ListResourceFiles(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		return p.JSON(files)
	}

	p.Header("Resource files for %s", client.Org())
	for _, f := range files {
		p.Success("  %s file - %s", f.Type, f.Name)
	}
	return nil
}

func newResourceUploadCmd() *cobra.Command {
	var folder string
	var suffix string
	var fileType string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload resource files from a folder",
		Long: `Upload files from a local folder as environment resource files.

Files whose names end with --name are selected (default: ` + constants.DefaultUploadSuffix + `).
Each file is created when the environment does not have it yet and
overwritten otherwise. Files are uploaded one at a time in name order.

Examples:
  apigee resource upload --folder ./resources
  apigee resource upload --folder ./resources --name auth.js
  apigee resource upload --folder ./py --name .py --type py`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := selectUploadFiles(folder, suffix)
			if err != nil {
				return err
			}

			client, err := getAPIClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return uploadResources(cmd, client, files, fileType)
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", "Folder containing the files to upload (required)")
	cmd.Flags().StringVarP(&suffix, "name", "n", "", "Upload only files whose names end with this (default: "+constants.DefaultUploadSuffix+")")
	cmd.Flags().StringVarP(&fileType, "type", "t", constants.DefaultResourceType, "Resource type")
	_ = cmd.MarkFlagRequired("folder")

	return cmd
}

// selectUploadFiles returns the regular files in folder whose names end with
// suffix, sorted by name.
func selectUploadFiles(folder, suffix string) ([]string, error) {
	if suffix == "" {
		suffix = constants.DefaultUploadSuffix
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		files = append(files, filepath.Join(folder, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files ending in %q found in %s", suffix, folder)
	}
	sort.Strings(files)
	return files, nil
}

func uploadResources(cmd *cobra.Command, client *api.Client, files []string, fileType string) error {
	p := newPrinter(cmd)
	ctx := GetContext()
	log := GetLogger()

	bar := progress.ForItems(len(files))
	bar.Start(int64(len(files)), "Uploading")
	defer bar.Finish()

	for i, path := range files {
		name := filepath.Base(path)
		bar.SetDescription(name)

		result, err := client.UploadResourceFile(ctx, name, fileType, path)
		if err != nil {
			bar.Error(err)
			return fmt.Errorf("failed to upload %s: %w", name, err)
		}

		switch result {
		case api.UploadCreated:
			p.Success("Creating resource for %s", name)
		case api.UploadOverwritten:
			p.Success("Overwriting current resource for %s", name)
		}
		log.Debug().Str("file", name).Str("result", result.String()).Msg("resource uploaded")
		bar.Update(int64(i + 1))
	}
	return nil
}

func newResourceDeleteCmd() *cobra.Command {
	var name string
	var fileType string
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a resource file",
		Long: `Delete a resource file from the environment after confirmation.

Examples:
  apigee resource delete --name auth.js
  apigee resource delete --name auth.js --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getAPIClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if !yes && !confirm(cmd, fmt.Sprintf("Are you sure you want to delete %s from %s?", name, client.Org())) {
				return nil
			}

			newPrinter(cmd).Danger("Deleting current resource for %s", name)
			return client.RemoveResourceFile(GetContext(), name, fileType)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Resource file name (required)")
	cmd.Flags().StringVarP(&fileType, "type", "t", constants.DefaultResourceType, "Resource type")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bellycard/apigee-cli/internal/api"
	"github.com/bellycard/apigee-cli/internal/models"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"kvm"},
		Short:   "Manage key value maps (config sets)",
		Long: `Manage the key value maps ("config sets") of an Apigee environment.

Running "apigee config" without a subcommand lists every map with its entries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(cmd, "", false)
		},
	}

	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigPushCmd())
	cmd.AddCommand(newConfigPullCmd())
	cmd.AddCommand(newConfigDeleteCmd())

	return cmd
}

func newConfigListCmd() *cobra.Command {
	var name string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List key value maps and their entries",
		Long: `List the key value maps of the environment with their entries, or a single map.

Examples:
  apigee config list
  apigee config list --name configuration
  apigee config list -e prod --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(cmd, name, asJSON)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Show only this map")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func runConfigList(cmd *cobra.Command, name string, asJSON bool) error {
	client, err := getAPIClient(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	p := newPrinter(cmd)
	ctx := GetContext()

	var maps []models.KeyValueMap
	if name != "" {
		m, err := client.ReadConfig(ctx, name)
		if err != nil {
			return err
		}
		maps = []models.KeyValueMap{*m}
	} else {
		if maps, err = client.ListConfigs(ctx); err != nil {
			return err
		}
	}

	if asJSON {
		if name != "" {
			return p.JSON(maps[0])
		}
		return p.JSON(maps)
	}

	p.Header("Config sets for %s (%s)", client.Org(), client.Environment())
	for _, m := range maps {
		p.Success("  %s", m.Name)
		for _, e := range m.Entries {
			p.Line("    %s: %s", e.Name, e.Value)
		}
	}
	return nil
}

func newConfigPushCmd() *cobra.Command {
	var name string
	var file string
	var yes bool

	cmd := &cobra.Command{
		Use:   "push [KEY=VALUE...]",
		Short: "Create or update a key value map",
		Long: `Create a key value map, or merge entries into an existing one.

Entries come from KEY=VALUE arguments and/or --file, a YAML or JSON document
holding either a mapping (key: value) or a list of {name, value} entries.
Arguments win over the file for the same key.

When the map exists, new keys are added and changed values are overwritten
after confirmation. Keys that are not given are left untouched.

Examples:
  apigee config push --name configuration api_host=example.com timeout=30
  apigee config push --name configuration --file configuration.yaml
  apigee config push --name configuration --file configuration.yaml --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := collectEntries(file, args)
			if err != nil {
				return err
			}

			client, err := getAPIClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return pushConfig(cmd, client, name, entries, yes)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Key value map name (required)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON file with entries")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Overwrite changed values without asking")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// collectEntries merges entries from file and KEY=VALUE args, args last.
func collectEntries(file string, args []string) ([]models.Entry, error) {
	var entries []models.Entry
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read entries file: %w", err)
		}
		if entries, err = models.ParseEntries(data); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
	}

	assigned, err := models.ParseAssignments(args)
	if err != nil {
		return nil, err
	}
	return append(entries, assigned...), nil
}

func pushConfig(cmd *cobra.Command, client *api.Client, name string, entries []models.Entry, yes bool) error {
	p := newPrinter(cmd)
	ctx := GetContext()

	current, err := client.ReadConfig(ctx, name)
	if api.IsNotFound(err) {
		// Later duplicates win, as they would in a merge.
		created := models.KeyValueMap{Name: name}
		created, _, _ = created.Merge(entries)

		if _, err := client.WriteConfig(ctx, name, created.Entries); err != nil {
			return err
		}
		p.Success("Creating config set %s", name)
		for _, e := range created.Entries {
			p.Line("  + %s", e.Name)
		}
		return nil
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return fmt.Errorf("no entries given for existing config set %s", name)
	}

	merged, added, changed := current.Merge(entries)
	if len(added) == 0 && len(changed) == 0 {
		p.Line("Config set %s is up to date", name)
		return nil
	}

	if len(changed) > 0 && !yes {
		for _, key := range changed {
			old, _ := current.Get(key)
			val, _ := merged.Get(key)
			p.Danger("  %s: %s -> %s", key, old, val)
		}
		if !confirm(cmd, fmt.Sprintf("Overwrite %d existing value(s) in %s?", len(changed), name)) {
			return nil
		}
	}

	if _, err := client.UpdateConfig(ctx, name, merged.Entries); err != nil {
		return err
	}
	p.Success("Updating config set %s", name)
	for _, key := range added {
		p.Line("  + %s", key)
	}
	for _, key := range changed {
		p.Line("  ~ %s", key)
	}
	return nil
}

func newConfigPullCmd() *cobra.Command {
	var name string
	var output string

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Write a key value map's entries as YAML",
		Long: `Write the entries of a key value map as a YAML mapping (key: value),
the same format "config push --file" reads.

Examples:
  apigee config pull --name configuration
  apigee config pull --name configuration --output configuration.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getAPIClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			m, err := client.ReadConfig(GetContext(), name)
			if err != nil {
				return err
			}
			data, err := models.MarshalEntries(m.Entries)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			newPrinter(cmd).Success("Wrote %d entries from %s to %s", len(m.Entries), name, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Key value map name (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newConfigDeleteCmd() *cobra.Command {
	var name string
	var entry string
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a key value map or one of its entries",
		Long: `Delete a whole key value map, or a single entry with --entry, after confirmation.

Examples:
  apigee config delete --name configuration --entry api_host
  apigee config delete --name configuration --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getAPIClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			p := newPrinter(cmd)
			ctx := GetContext()

			if entry != "" {
				if !yes && !confirm(cmd, fmt.Sprintf("Are you sure you want to delete %s from %s?", entry, name)) {
					return nil
				}
				p.Danger("Deleting %s from config set %s", entry, name)
				_, err := client.RemoveEntry(ctx, name, entry)
				return err
			}

			if !yes && !confirm(cmd, fmt.Sprintf("Are you sure you want to delete %s from %s?", name, client.Org())) {
				return nil
			}
			p.Danger("Deleting config set %s", name)
			_, err = client.RemoveConfig(ctx, name)
			return err
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Key value map name (required)")
	cmd.Flags().StringVar(&entry, "entry", "", "Delete only this entry")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

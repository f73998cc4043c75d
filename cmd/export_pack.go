package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/galeproject/gale/internal/exportpkg"
	"github.com/galeproject/gale/internal/profile"
)

var (
	exportPackName        string
	exportPackAuthor      string
	exportPackDescription string
	exportPackVersion     string
	exportPackWebsite     string
	exportPackReadme      string
	exportPackChangelog   string
	exportPackIcon        string
	exportPackCategories  []string
	exportPackInclude     []string
	exportPackNSFW        bool
	exportPackOutput      string
	exportPackUpload      bool
)

var exportPackCmd = &cobra.Command{
	Use:   "pack",
	Short: "Build (and optionally publish) a modpack from a profile",
	Long: `Build a Thunderstore modpack archive from a profile: every enabled
Thunderstore mod becomes a dependency of the pack, and the profile's
config files are bundled alongside the manifest, readme, and icon.

By default the archive is written to the path given with --output. With
--upload it is instead published to Thunderstore, which requires an API
token (see ` + "`gale auth login`" + `).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if !exportPackUpload && exportPackOutput == "" {
			return fmt.Errorf("either --output or --upload is required")
		}

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		mg, err := resolveGame(m, exportGame)
		if err != nil {
			return err
		}
		profileID, err := resolveProfile(mg, exportProfile)
		if err != nil {
			return err
		}

		readme, err := os.ReadFile(exportPackReadme)
		if err != nil {
			return fmt.Errorf("error reading readme: %w", err)
		}

		changelog := ""
		if exportPackChangelog != "" {
			data, err := os.ReadFile(exportPackChangelog)
			if err != nil {
				return fmt.Errorf("error reading changelog: %w", err)
			}
			changelog = string(data)
		}

		mods, err := m.QueryProfile(mg.GameSlug, profileID)
		if err != nil {
			return err
		}
		deps := make([]string, 0, len(mods))
		for _, mod := range mods {
			if mod.Variant == profile.VariantThunderstore && mod.Enabled {
				deps = append(deps, mod.Ident.String())
			}
		}

		packArgs := exportpkg.PublishArgs{
			Name:           exportPackName,
			Author:         exportPackAuthor,
			Description:    exportPackDescription,
			Website:        exportPackWebsite,
			Version:        exportPackVersion,
			Readme:         string(readme),
			Changelog:      changelog,
			IconPath:       exportPackIcon,
			Dependencies:   deps,
			Categories:     exportPackCategories,
			Communities:    []string{mg.GameSlug},
			HasNSFWContent: exportPackNSFW,
			IncludeFiles:   exportPackInclude,
		}

		archive, err := m.ExportPack(mg.GameSlug, profileID, packArgs)
		if err != nil {
			return fmt.Errorf("error building modpack: %w", err)
		}

		if exportPackOutput != "" {
			if err := os.WriteFile(exportPackOutput, archive, 0o644); err != nil {
				return fmt.Errorf("error writing modpack: %w", err)
			}
			fmt.Printf("Wrote modpack to %s (%d bytes)\n", exportPackOutput, len(archive))
		}

		if exportPackUpload {
			if err := m.UploadPack(ctx, packArgs, archive); err != nil {
				return fmt.Errorf("error publishing modpack: %w", err)
			}
			fmt.Printf("Published %s-%s %s\n", exportPackAuthor, exportPackName, exportPackVersion)
		}

		return nil
	},
}

func init() {
	exportCmd.AddCommand(exportPackCmd)

	exportPackCmd.Flags().StringVar(&exportPackName, "name", "", "Modpack name")
	exportPackCmd.Flags().StringVar(&exportPackAuthor, "author", "", "Thunderstore team name")
	exportPackCmd.Flags().StringVar(&exportPackDescription, "description", "", "Short description (max 250 characters)")
	exportPackCmd.Flags().StringVar(&exportPackVersion, "pack-version", "", "Modpack semver version, e.g. 1.0.0")
	exportPackCmd.Flags().StringVar(&exportPackWebsite, "website", "", "Optional website URL")
	exportPackCmd.Flags().StringVar(&exportPackReadme, "readme", "", "Path to the README.md to bundle")
	exportPackCmd.Flags().StringVar(&exportPackChangelog, "changelog", "", "Path to an optional CHANGELOG.md")
	exportPackCmd.Flags().StringVar(&exportPackIcon, "icon", "", "Path to the pack icon (re-encoded to 256x256 PNG)")
	exportPackCmd.Flags().StringSliceVar(&exportPackCategories, "category", nil, "Thunderstore category (repeatable; \"modpacks\" is always added)")
	exportPackCmd.Flags().StringSliceVar(&exportPackInclude, "include", nil, "Glob of profile files to bundle, e.g. \"BepInEx/config/**\" (repeatable)")
	exportPackCmd.Flags().BoolVar(&exportPackNSFW, "nsfw", false, "Mark the pack as containing NSFW content")
	exportPackCmd.Flags().StringVarP(&exportPackOutput, "output", "o", "", "Write the archive to this path")
	exportPackCmd.Flags().BoolVar(&exportPackUpload, "upload", false, "Publish the archive to Thunderstore")

	exportPackCmd.MarkFlagRequired("name")
	exportPackCmd.MarkFlagRequired("author")
	exportPackCmd.MarkFlagRequired("pack-version")
	exportPackCmd.MarkFlagRequired("readme")
	exportPackCmd.MarkFlagRequired("icon")
}

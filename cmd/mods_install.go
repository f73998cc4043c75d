package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/galeproject/gale/internal/queue"
)

var (
	modsInstallNoDeps   bool
	modsInstallDisabled bool
	modsInstallDryRun   bool
)

var modsInstallCmd = &cobra.Command{
	Use:   "install <owner-name[-version]>...",
	Short: "Install mods from Thunderstore into a profile",
	Long: `Install one or more mods into a profile. Mods are named by their
Thunderstore identity, either "Owner-Name" (latest version) or
"Owner-Name-1.2.3" (exact version).

Missing dependencies are resolved from the registry and installed first,
unless --no-deps is given. Already-downloaded versions are reused from the
package cache without touching the network.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		mg, err := resolveGame(m, modsGame)
		if err != nil {
			return err
		}
		profileID, err := resolveProfile(mg, modsProfile)
		if err != nil {
			return err
		}

		installs := make([]queue.ModInstall, 0, len(args))
		for _, spec := range args {
			inst, err := m.ResolveInstall(mg.GameSlug, spec)
			if err != nil {
				return err
			}
			inst.Enabled = !modsInstallDisabled
			installs = append(installs, inst)
		}

		if modsInstallDryRun {
			size, err := m.GetDownloadSize(mg.GameSlug, installs)
			if err != nil {
				return err
			}
			fmt.Printf("Would download %d bytes for %d mod(s)\n", size, len(installs))
			return nil
		}

		if viper.GetBool("offline") {
			if size, err := m.GetDownloadSize(mg.GameSlug, installs); err == nil && size > 0 {
				return fmt.Errorf("offline mode is enabled and %d bytes are not cached", size)
			}
		}

		events, err := m.Events(mg.GameSlug)
		if err != nil {
			return err
		}
		go renderInstallProgress(events)

		// An interrupt while the queue runs aborts the batch at
		// its next checkpoint and rolls back partial installs.
		go func() {
			<-ctx.Done()
			m.CancelInstall(mg.GameSlug)
		}()

		err = m.InstallMods(ctx, mg.GameSlug, profileID, installs,
			!modsInstallNoDeps, queue.PushOptions{SendProgress: true})
		if err != nil {
			return fmt.Errorf("error installing mods: %w", err)
		}

		fmt.Printf("Installed %d mod(s)\n", len(installs))

		return nil
	},
}

// renderInstallProgress consumes queue progress events and keeps a single
// status line updated until the queue hides itself.
func renderInstallProgress(events <-chan queue.Event) {
	var mods int
	var bytes int64
	task := queue.Task("")

	for ev := range events {
		switch ev.Kind {
		case queue.EventSetTask:
			task = ev.Task
		case queue.EventAddProgress:
			mods += ev.Mods
			bytes += ev.Bytes
		case queue.EventHide:
			fmt.Println()
			return
		case queue.EventError:
			fmt.Fprintf(os.Stderr, "\ninstall error: %v\n", ev.Err)
			continue
		default:
			continue
		}
		fmt.Printf("\r[%s] %d mod(s), %d bytes", task, mods, bytes)
	}
}

func init() {
	modsCmd.AddCommand(modsInstallCmd)

	modsInstallCmd.Flags().BoolVar(&modsInstallNoDeps, "no-deps", false,
		"Install only the named mods, without their dependencies")
	modsInstallCmd.Flags().BoolVar(&modsInstallDisabled, "disabled", false,
		"Install the mods in the disabled state")
	modsInstallCmd.Flags().BoolVarP(&modsInstallDryRun, "dry-run", "n", false,
		"Print the download size and exit without installing")
}

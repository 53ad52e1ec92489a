package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ducalex/odroid-go-firmware/internal/core"
	"github.com/ducalex/odroid-go-firmware/internal/progress"
)

var (
	installYes     bool
	installUtility string
)

// installCmd is ogfw install.
var installCmd = &cobra.Command{
	Use:   "install <firmware.fw>",
	Short: "Install an application from a .fw firmware file",
	Long: `Install parses a firmware file (magic header, description, tile,
part records, trailing CRC-32), verifies its checksum, and streams each
part's payload into flash at the current allocation frontier before
committing the partition table and appending the new app to the
registry.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := openImage()
		if err != nil {
			return err
		}
		defer dev.Close()

		table, registry, err := loadTableAndRegistry(dev)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open firmware file: %w", err)
		}
		defer f.Close()
		st, err := f.Stat()
		if err != nil {
			return err
		}

		opts := core.InstallOptions{
			Confirm: confirmPrompt(cmd),
		}
		if installUtility != "" {
			uf, err := os.Open(installUtility)
			if err != nil {
				return fmt.Errorf("open utility.bin: %w", err)
			}
			defer uf.Close()
			ust, err := uf.Stat()
			if err != nil {
				return err
			}
			opts.Utility = &core.UtilitySource{R: uf, Size: ust.Size()}
		}

		rep := progress.New(cmd.OutOrStdout())
		result, err := core.Install(dev, table, registry, f, st.Size(), rep.Func(), opts)
		if err != nil {
			if errors.Is(err, core.ErrInstallCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "install cancelled, no flash was modified")
				return nil
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "installed %q at 0x%06x-0x%06x (reboot required: %v)\n",
			result.App.DescriptionString(), result.App.StartOffset, result.App.EndOffset, result.RebootRequired)
		return nil
	},
}

// confirmPrompt builds the pre-install confirmation callback: skipped
// entirely with --yes, otherwise a y/N prompt on stdin.
func confirmPrompt(cmd *cobra.Command) core.ConfirmFunc {
	return func(description string, tile []byte) bool {
		if installYes {
			return true
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Install %q? [y/N] ", description)
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		line = strings.TrimSpace(strings.ToLower(line))
		return line == "y" || line == "yes"
	}
}

func init() {
	installCmd.Flags().BoolVarP(&installYes, "yes", "y", false, "skip the confirmation prompt")
	installCmd.Flags().StringVar(&installUtility, "utility", "", "path to an optional utility.bin passthrough partition")
	RootCmd.AddCommand(installCmd)
}

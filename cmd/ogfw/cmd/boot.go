package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ducalex/odroid-go-firmware/internal/core"
	"github.com/ducalex/odroid-go-firmware/internal/core/bootflag"
)

var bootCurrent bool

// bootCmd is ogfw boot, which selects which installed app the live
// partition table points at next. --current re-asserts whichever app the
// table already reflects without rewriting it, the menu-driven
// reassert-on-boot path.
var bootCmd = &cobra.Command{
	Use:   "boot [index]",
	Short: "Select which installed application boots next, or re-assert the current one",
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

		setter := fileOTASetter{}

		if bootCurrent {
			if len(args) != 0 {
				return fmt.Errorf("--current takes no index argument")
			}
			return core.BootCurrent(table, setter)
		}

		if len(args) != 1 {
			return fmt.Errorf("expected exactly one app index, or --current")
		}
		idx, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q: %w", args[0], err)
		}
		if idx < 0 || idx >= registry.Count() {
			return fmt.Errorf("no app at index %d", idx)
		}

		// A file-backed image has no live reload hook and no RTC
		// no-init SRAM to survive a reboot in, so the flag is scoped to
		// this process; a device-resident build wires a real
		// bootflag.NoInitStore and Rebooter here instead.
		flag := bootflag.New(&bootflag.MemStore{})
		if err := core.SelectAndBoot(table, registry.App(idx), setter, nil, flag, nil); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "selected app %d; reboot required to take effect\n", idx)
		return nil
	},
}

func init() {
	bootCmd.Flags().BoolVar(&bootCurrent, "current", false, "re-assert the live table's current app without rewriting it")
	RootCmd.AddCommand(bootCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/techcorp/website/internal/core"
)

func newPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change chat preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := openStore(cmd)
			if err != nil {
				return err
			}

			patch := core.PreferencesPatch{}
			changed := false

			if cmd.Flags().Changed("theme") {
				value, _ := cmd.Flags().GetString("theme")

				theme := core.Theme(value)
				if theme != core.ThemeLight && theme != core.ThemeDark {
					return fmt.Errorf("theme must be light or dark, got %q", value)
				}

				patch.Theme = &theme
				changed = true
			}

			if cmd.Flags().Changed("auto-scroll") {
				value, _ := cmd.Flags().GetBool("auto-scroll")
				patch.AutoScroll = &value
				changed = true
			}

			if changed {
				store.UpdatePreferences(patch)
			}

			prefs := store.Preferences()
			fmt.Println("theme:", prefs.Theme)
			fmt.Println("auto-scroll:", prefs.AutoScroll)

			return nil
		},
	}

	cmd.Flags().String("theme", "", "color theme (light or dark)")
	cmd.Flags().Bool("auto-scroll", true, "follow new messages")

	return cmd
}

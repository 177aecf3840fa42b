/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gocaptionframe/internal/config"
	"gocaptionframe/internal/fontpack"
	"gocaptionframe/internal/textlayout"
	"gocaptionframe/internal/version"
)

func (a *App) fontsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "List available faces and font presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "faces:")
			for _, n := range a.lib.Names() {
				fmt.Fprintf(out, "  %s\n", n)
			}
			fmt.Fprintln(out, "presets:")
			for _, n := range textlayout.ListPresets() {
				p, _ := textlayout.GetPreset(n)
				fmt.Fprintf(out, "  %-14s %s x%g\n", p.Name, p.Font.Face, p.Font.SizeFactor)
			}
			return nil
		},
	}
	cmd.AddCommand(a.fontsPackCommand(), a.fontsInstallCommand())
	return cmd
}

func (a *App) fontsPackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pack DIR ZIP",
		Short: "Bundle the fonts of a directory into a font pack",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := fontpack.Export(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "packed %d fonts into %s\n", n, args[1])
			return nil
		},
	}
}

func (a *App) fontsInstallCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "install ZIP",
		Short: "Install a font pack into the user font directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := dir
			if target == "" {
				d, err := config.FontDir()
				if err != nil {
					return err
				}
				target = d
			}
			n, err := fontpack.Install(args[0], target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "installed %d fonts into %s\n", n, target)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "target font directory (default: user font dir)")
	return cmd
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, version.String())
		},
	}
}

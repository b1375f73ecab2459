/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cmd

import (
	"errors"
	"fmt"
	"os"

	"curveeditor/internal/config"
	"curveeditor/internal/version"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	c.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path := a.configPath
				if path == "" {
					var err error
					if path, err = config.ConfigPath(); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration, after env overrides",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				data, err := yaml.Marshal(a.cfg)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if _, err := out.Write(data); err != nil {
					return err
				}
				for _, key := range []string{"view.validation", "view.cache_size", "logging.level", "logging.format", "logging.source", "logging.file"} {
					if env, ok := config.EnvOverrideFor(key); ok {
						fmt.Fprintf(out, "# %s overridden by %s\n", key, env)
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate <file>",
			Short: "Check a config file against the schema",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				if err := config.Validate(data); err != nil {
					var se *config.SchemaError
					if errors.As(err, &se) {
						for _, p := range se.Problems {
							fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
						}
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
				return nil
			},
		},
	)
	return c
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "curveeditor", version.String())
		},
	}
}

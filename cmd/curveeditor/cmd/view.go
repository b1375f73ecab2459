/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cmd

import (
	"fmt"
	"slices"

	"curveeditor/internal/transform"

	"github.com/spf13/cobra"
)

func newMapCmd(a *app) *cobra.Command {
	var inverse bool
	c := &cobra.Command{
		Use:   "map <x> <y>",
		Short: "Map a data point to screen space",
		Long: `Map a data-space point to screen space for the current view.
With --inverse the arguments are screen coordinates and the data point is printed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			xy, err := parseFloats(args)
			if err != nil {
				return err
			}
			t, err := a.editor.Transform(a.view.view())
			if err != nil {
				return err
			}
			label := "screen"
			conv := t.DataToScreen
			if inverse {
				label, conv = "data", t.ScreenToData
			}
			x, y, err := conv(xy[0], xy[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %g %g\n", label, x, y)
			return nil
		},
	}
	c.Flags().BoolVar(&inverse, "inverse", false, "map screen coordinates back to data space")
	return c
}

func newViewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the resolved view state and transform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := a.editor.Service()
			vs, err := svc.CreateViewState(a.view.view())
			if err != nil {
				return err
			}
			t, err := svc.CreateTransformFromViewState(vs)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "View state:")
			m := vs.ToMap()
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "  %s: %v\n", k, m[k])
			}
			fmt.Fprintln(out)

			printTransform(cmd, t)
			return nil
		},
	}
}

func printTransform(cmd *cobra.Command, t *transform.Transform) {
	out := cmd.OutOrStdout()
	p := t.Params()
	fmt.Fprintln(out, "Transform:")
	fmt.Fprintf(out, "  validation: %s\n", t.Mode())
	fmt.Fprintf(out, "  scale: %g\n", p.Scale)
	fmt.Fprintf(out, "  image scale: %g %g\n", p.ImageScaleX, p.ImageScaleY)
	fmt.Fprintf(out, "  center offset: %g %g\n", p.CenterOffsetX, p.CenterOffsetY)
	fmt.Fprintf(out, "  pan offset: %g %g\n", p.PanOffsetX, p.PanOffsetY)
	fmt.Fprintf(out, "  manual offset: %g %g\n", p.ManualOffsetX, p.ManualOffsetY)
	fmt.Fprintf(out, "  flip y: %t (display height %d)\n", p.FlipY, p.DisplayHeight)
	m := t.Affine()
	fmt.Fprintf(out, "  affine: [%g %g %g; %g %g %g]\n", m[0], m[1], m[2], m[3], m[4], m[5])
	fmt.Fprintf(out, "  hash: %s\n", t.StabilityHash())
}

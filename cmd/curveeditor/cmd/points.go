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
	"strings"

	"curveeditor/internal/spatial"

	"github.com/spf13/cobra"
)

func addPointFlag(c *cobra.Command, specs *[]string) {
	c.Flags().StringArrayVarP(specs, "point", "p", nil, `tracked point as "frame,x,y[,status]" (repeatable)`)
}

func newPickCmd(a *app) *cobra.Command {
	var (
		specs     []string
		threshold float64
	)
	c := &cobra.Command{
		Use:   "pick <screen-x> <screen-y>",
		Short: "Find the point nearest to a screen position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			xy, err := parseFloats(args)
			if err != nil {
				return err
			}
			points := parsePoints(specs)
			i, err := a.editor.Pick(a.view.view(), points, xy[0], xy[1], threshold)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if i < 0 {
				fmt.Fprintln(out, "hit: none")
				return nil
			}
			p, _ := points.Point(i)
			fmt.Fprintf(out, "hit: %d %s\n", i, formatPoint(p))
			return nil
		},
	}
	addPointFlag(c, &specs)
	c.Flags().Float64VarP(&threshold, "threshold", "t", 5, "pick radius in screen pixels")
	return c
}

func newSelectCmd(a *app) *cobra.Command {
	var specs []string
	c := &cobra.Command{
		Use:   "select <x1> <y1> <x2> <y2>",
		Short: "List the points inside a screen rectangle",
		Long:  "List the points whose screen position lies inside the rectangle, edges included. Corners may be given in any order.",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseFloats(args)
			if err != nil {
				return err
			}
			points := parsePoints(specs)
			sel, err := a.editor.Select(a.view.view(), points, r[0], r[1], r[2], r[3])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "selected: %d\n", len(sel))
			for _, i := range sel {
				p, _ := points.Point(i)
				fmt.Fprintf(out, "  %d %s\n", i, formatPoint(p))
			}
			return nil
		},
	}
	addPointFlag(c, &specs)
	return c
}

func newStatsCmd(a *app) *cobra.Command {
	var specs []string
	c := &cobra.Command{
		Use:   "stats",
		Short: "Index the points for the current view and print cache and grid statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := a.view.view()
			t, err := a.editor.Transform(v)
			if err != nil {
				return err
			}
			a.editor.Index().RebuildIndex(parsePoints(specs), v, t)
			st := a.editor.Stats()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Transform cache:")
			fmt.Fprintf(out, "  hits: %d\n", st.Cache.Hits)
			fmt.Fprintf(out, "  misses: %d\n", st.Cache.Misses)
			fmt.Fprintf(out, "  size: %d/%d\n", st.Cache.CurrentSize, st.Cache.MaxSize)
			fmt.Fprintf(out, "  hit rate: %.2f\n", st.Cache.HitRate)
			fmt.Fprintln(out, "Point index:")
			fmt.Fprintf(out, "  grid: %dx%d\n", st.Index.GridWidth, st.Index.GridHeight)
			fmt.Fprintf(out, "  cell: %.2fx%.2f\n", st.Index.CellWidth, st.Index.CellHeight)
			fmt.Fprintf(out, "  points: %d\n", st.Index.TotalPoints)
			fmt.Fprintf(out, "  occupied cells: %d/%d\n", st.Index.OccupiedCells, st.Index.TotalCells)
			fmt.Fprintf(out, "  avg points per cell: %.2f\n", st.Index.AvgPointsPerCell)
			fmt.Fprintf(out, "  rebuilds: %d\n", st.Index.Rebuilds)
			return nil
		},
	}
	addPointFlag(c, &specs)
	return c
}

func formatPoint(p spatial.Point) string {
	var b strings.Builder
	fmt.Fprintf(&b, "frame=%d x=%g y=%g", p.Frame, p.X, p.Y)
	if p.Status != spatial.StatusNone {
		fmt.Fprintf(&b, " status=%s", p.Status)
	}
	return b.String()
}

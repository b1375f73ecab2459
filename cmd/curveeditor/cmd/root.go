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
	"log/slog"
	"os"
	"strconv"
	"strings"

	"curveeditor/internal/config"
	"curveeditor/internal/editor"
	applog "curveeditor/internal/log"
	"curveeditor/internal/spatial"
	"curveeditor/internal/transform"
	"curveeditor/internal/version"

	"github.com/spf13/cobra"
)

// viewFlags describe the curve view every subcommand works against.
type viewFlags struct {
	width, height           int
	imageWidth, imageHeight int
	zoom                    float64
	panX, panY              float64
	manualX, manualY        float64
	flipY                   bool
	noScaleToImage          bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.IntVar(&f.width, "width", 800, "widget width in pixels")
	fs.IntVar(&f.height, "height", 600, "widget height in pixels")
	fs.IntVar(&f.imageWidth, "image-width", 1920, "image width in pixels")
	fs.IntVar(&f.imageHeight, "image-height", 1080, "image height in pixels")
	fs.Float64Var(&f.zoom, "zoom", 1, "zoom factor")
	fs.Float64Var(&f.panX, "pan-x", 0, "pan offset x in screen pixels")
	fs.Float64Var(&f.panY, "pan-y", 0, "pan offset y in screen pixels")
	fs.Float64Var(&f.manualX, "manual-x", 0, "manual offset x in screen pixels")
	fs.Float64Var(&f.manualY, "manual-y", 0, "manual offset y in screen pixels")
	fs.BoolVar(&f.flipY, "flip-y", false, "flip the y axis")
	fs.BoolVar(&f.noScaleToImage, "no-scale-to-image", false, "treat data as display pixels instead of image pixels")
}

func (f *viewFlags) view() transform.MapView {
	return transform.MapView{W: f.width, H: f.height, Attrs: map[string]any{
		transform.AttrZoomFactor:    f.zoom,
		transform.AttrOffsetX:       f.panX,
		transform.AttrOffsetY:       f.panY,
		transform.AttrManualXOffset: f.manualX,
		transform.AttrManualYOffset: f.manualY,
		transform.AttrFlipYAxis:     f.flipY,
		transform.AttrScaleToImage:  !f.noScaleToImage,
		transform.AttrImageWidth:    f.imageWidth,
		transform.AttrImageHeight:   f.imageHeight,
	}}
}

// app is the state shared by the command tree of one invocation.
type app struct {
	configPath string
	verbose    bool
	strict     bool
	view       viewFlags

	cfg    config.AppConfig
	editor *editor.Context
	log    *slog.Logger
}

// NewRootCmd builds the curveeditor command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "curveeditor",
		Short: "Curve editor view core: coordinate transforms and point picking",
		Long: `curveeditor exercises the view core of the curve editor from the command line:
  - mapping between data space and screen space for a given view
  - nearest-point picking and rectangle selection over tracked points
  - transform cache and spatial index statistics

Examples:
  curveeditor map 100 150 --zoom 2 --pan-x 20
  curveeditor pick 110 170 --point 1,100,150 --point 2,300,250
  curveeditor select 0 0 400 300 --point 1,50,50 --point 2,150,75
  curveeditor config show`,
		Version:           version.String(),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default is the per-user config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&a.strict, "strict", false, "strict validation of transforms and coordinates")
	a.view.register(root)

	root.AddCommand(
		newMapCmd(a),
		newViewCmd(a),
		newPickCmd(a),
		newSelectCmd(a),
		newStatsCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.strict {
		a.cfg.View.Validation = transform.Strict.String()
	}

	lo := a.cfg.Logging.LogOptions()
	if a.verbose {
		lo.Level = "debug"
	}
	lo.Console = cmd.ErrOrStderr()
	applog.Init(lo)
	a.log = applog.WithComponent("cli")

	a.editor = editor.New(a.cfg, nil)
	a.log.Debug("start",
		slog.String("cmd", cmd.Name()),
		slog.String("validation", a.editor.Validation().String()),
	)
	return nil
}

// parsePoints turns "frame,x,y[,status]" specs into legacy rows. Fields
// that do not parse as numbers are kept as strings so that malformed rows
// are skipped by the index instead of shifting the indices of the others.
func parsePoints(specs []string) spatial.LegacyPoints {
	rows := make(spatial.LegacyPoints, 0, len(specs))
	for _, s := range specs {
		fields := strings.Split(s, ",")
		row := make([]any, 0, len(fields))
		for i, f := range fields {
			f = strings.TrimSpace(f)
			if i < 3 {
				if v, err := strconv.ParseFloat(f, 64); err == nil {
					row = append(row, v)
					continue
				}
			}
			row = append(row, f)
		}
		rows = append(rows, row)
	}
	return rows
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, s := range args {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %q is not a number", i+1, s)
		}
		out[i] = v
	}
	return out, nil
}

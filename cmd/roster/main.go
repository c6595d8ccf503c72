// Command roster prints every unit type's movement envelope and checks
// ruleset files before they are deployed.
//
//	roster units [--radius 3] [--type knight]
//	roster check configs/*.json
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/warpgame/game/engine"
)

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "roster",
		Usage: "Inspect unit templates and rulesets",
		Commands: []*cli.Command{
			{
				Name:  "units",
				Usage: "Print movement envelopes",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "radius", Value: 3, Usage: "Squares shown around the origin"},
					&cli.IntFlag{Name: "board", Value: engine.DefaultBoardLength, Usage: "Board size the rays are built for"},
					&cli.StringSliceFlag{Name: "type", Usage: "Only these unit types"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					size := int(cmd.Int("board"))
					return printRoster(out, engine.DefaultRoster(size, size), int(cmd.Int("radius")), cmd.StringSlice("type"))
				},
			},
			{
				Name:      "check",
				Usage:     "Validate ruleset files",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Checked when no files are given", Sources: cli.EnvVars("CONFIG_DIR")},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fsys := afero.NewOsFs()
					paths := cmd.Args().Slice()
					if len(paths) == 0 {
						var err error
						paths, err = afero.Glob(fsys, filepath.Join(cmd.String("config-dir"), "*.json"))
						if err != nil {
							return err
						}
					}
					if failed := checkConfigs(out, fsys, paths); failed > 0 {
						return cli.Exit(fmt.Sprintf("%d of %d rulesets invalid", failed, len(paths)), 1)
					}
					return nil
				},
			},
		},
	}
}

// printRoster writes each template's cost, abilities and envelope.
func printRoster(w io.Writer, roster engine.Roster, radius int, only []string) error {
	types := roster.Types()
	if len(only) > 0 {
		types = types[:0]
		for _, name := range only {
			t, err := engine.ParseUnitType(name)
			if err != nil {
				return err
			}
			types = append(types, t)
		}
	}

	for _, t := range types {
		tmpl, err := roster.Template(t)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "== %s (cost %d", tmpl.Name, tmpl.Cost)
		if len(tmpl.Abilities) > 0 {
			fmt.Fprintf(w, ", abilities: %s", strings.Join(tmpl.Abilities, ", "))
		}
		if tmpl.Obstruction {
			fmt.Fprint(w, ", obstruction")
		}
		fmt.Fprintf(w, ", %d squares)\n", len(tmpl.Offsets()))
		fmt.Fprint(w, engine.RenderEnvelope(tmpl, radius))
		fmt.Fprintln(w)
	}
	return nil
}

// checkConfigs loads every ruleset and starts a game with it. It returns the
// number of files that failed.
func checkConfigs(w io.Writer, fsys afero.Fs, paths []string) int {
	failed := 0
	for _, path := range paths {
		cfg, err := engine.LoadGameConfig(fsys, path)
		if err == nil {
			_, err = engine.NewGame(cfg)
		}
		if err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(w, "ok   %s (%s, %dx%d, %d starting units)\n",
			path, cfg.Name, cfg.BoardLength, cfg.BoardHeight, len(cfg.StartingUnits))
	}
	return failed
}

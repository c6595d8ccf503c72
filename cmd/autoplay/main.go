// Command autoplay plays both sides of a session against a running server
// with a greedy bot. It is handy for smoke-testing rulesets and for filling
// the history of a session before an agent takes over.
//
//	autoplay --url http://localhost:8080 --config kings --max-turns 100
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/warpgame/game/engine"
	"github.com/wricardo/warpgame/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "Play a session with a greedy bot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL", Sources: cli.EnvVars("MCP_API_URL")},
			&cli.StringFlag{Name: "config", Usage: "Ruleset to play (server default when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.IntFlag{Name: "max-turns", Value: 200, Usage: "Stop after this many turns"},
			&cli.IntFlag{Name: "seed", Usage: "Random seed (time based when zero)"},
			&cli.DurationFlag{Name: "delay", Usage: "Pause between turns"},
			&cli.BoolFlag{Name: "keep-open", Usage: "Do not finish the game when the bot stops"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			level := "info"
			if cmd.Bool("v") {
				level = "debug"
			}
			logger := logging.New(os.Stderr, "text", level)

			seed := uint64(cmd.Int("seed"))
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}

			report, err := play(ctx, NewClient(cmd.String("url")), playOptions{
				ConfigID:  cmd.String("config"),
				SessionID: cmd.String("continue"),
				MaxTurns:  int(cmd.Int("max-turns")),
				Seed:      seed,
				Delay:     cmd.Duration("delay"),
				KeepOpen:  cmd.Bool("keep-open"),
			}, logger)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			fmt.Println(report)
			return nil
		},
	}
}

type playOptions struct {
	ConfigID  string
	SessionID string
	MaxTurns  int
	Seed      uint64
	Delay     time.Duration
	KeepOpen  bool
}

// Report summarises a finished run.
type Report struct {
	SessionID string
	Turns     int
	Moves     int
	Captures  int
	Deploys   int
	Winner    *engine.Color
	Finished  bool
}

func (r Report) String() string {
	result := "no winner"
	if r.Winner != nil {
		result = r.Winner.String() + " wins"
	}
	return fmt.Sprintf("session %s: %s after %d turns (%d moves, %d captures, %d deploys)",
		r.SessionID, result, r.Turns, r.Moves, r.Captures, r.Deploys)
}

func play(ctx context.Context, c *Client, opts playOptions, logger *slog.Logger) (*Report, error) {
	var (
		state *engine.State
		zone  int
	)
	if opts.SessionID != "" {
		info, err := c.Resume(ctx, opts.SessionID)
		if err != nil {
			return nil, err
		}
		state = info.GameState
		if info.GameConfig != nil {
			zone = info.GameConfig.StartZoneHeight
		}
		logger.Info("Session resumed", "session_id", info.ID, "turn", state.Turn)
	} else {
		info, err := c.CreateSession(ctx, opts.ConfigID)
		if err != nil {
			return nil, err
		}
		state = info.GameState
		if info.GameConfig != nil {
			zone = info.GameConfig.StartZoneHeight
		}
		logger.Info("Session created", "session_id", info.ID, "config", info.ConfigName,
			"board", fmt.Sprintf("%dx%d", state.BoardLength, state.BoardHeight))
	}

	bot := NewGreedy(opts.Seed, zone)
	report := &Report{SessionID: c.sessionID}

	for report.Turns < opts.MaxTurns && !state.Over {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if state.Phase == engine.MovePhase.String() {
			if choice, ok := bot.ChooseMove(state); ok {
				res, err := c.Move(ctx, choice.Unit, choice.To)
				if err != nil {
					return report, err
				}
				if res.Success {
					report.Moves++
					if choice.Capture {
						report.Captures++
					}
					logger.Debug("Move", "color", state.ActiveColor, "unit", choice.Unit, "to", choice.To, "capture", choice.Capture)
				} else {
					logger.Warn("Move rejected", "unit", choice.Unit, "to", choice.To, "message", res.Message)
				}
				state = res.State
			}
		}

		var err error
		if state, err = advanceTo(ctx, c, state, engine.DeployPhase); err != nil {
			return report, err
		}
		if choice, ok := bot.ChooseDeploy(state); ok {
			res, err := c.Deploy(ctx, choice.Type, choice.At)
			if err != nil {
				return report, err
			}
			if res.Success {
				report.Deploys++
				logger.Debug("Deploy", "color", state.ActiveColor, "type", choice.Type, "at", choice.At)
			}
			state = res.State
		}

		if loser, ok := Eliminated(state); ok {
			winner := loser.Opponent()
			report.Winner = &winner
			logger.Info("Side eliminated", "loser", loser, "turn", state.Turn)
			break
		}

		if state, err = advanceTo(ctx, c, state, engine.MovePhase); err != nil {
			return report, err
		}
		res, err := c.NextTurn(ctx)
		if err != nil {
			return report, err
		}
		state = res.State
		report.Turns++

		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}

	if !opts.KeepOpen && !state.Over {
		if _, err := c.Finish(ctx); err != nil {
			return report, err
		}
		report.Finished = true
	}
	return report, nil
}

// advanceTo steps through the phase cycle until the session is in want.
func advanceTo(ctx context.Context, c *Client, state *engine.State, want engine.Phase) (*engine.State, error) {
	for range 3 {
		if state.Phase == want.String() {
			return state, nil
		}
		res, err := c.NextPhase(ctx)
		if err != nil {
			return state, err
		}
		state = res.State
	}
	return state, fmt.Errorf("phase %q never reached", want)
}

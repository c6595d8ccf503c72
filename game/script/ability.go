package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/wricardo/warpgame/game/engine"
)

// ErrInvalidAction is returned when a script emits an action that cannot be
// decoded.
var ErrInvalidAction = errors.New("invalid script action")

// Limits bound a single script run.
type Limits struct {
	Timeout   time.Duration
	MaxAllocs int64
}

// DefaultLimits are applied when a loader is created without explicit limits.
var DefaultLimits = Limits{
	Timeout:   250 * time.Millisecond,
	MaxAllocs: 20000,
}

// allowedModules are the tengo stdlib modules scripts may import.
var allowedModules = []string{"math", "text", "enum"}

// Action is one board change requested by a script.
type Action struct {
	Op   string `mapstructure:"op" validate:"required,oneof=deploy take"`
	Type string `mapstructure:"type" validate:"required_if=Op deploy"`
	X    *int   `mapstructure:"x" validate:"required"`
	Y    *int   `mapstructure:"y" validate:"required"`

	unitType engine.UnitType
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Ability is an engine ability backed by a tengo script. The script sees the
// variables caster, args, active_color, board_length, board_height and board,
// and describes its effect by assigning an array of action maps to actions:
//
//	actions := [{op: "deploy", type: "barrier", x: 3, y: 4}, {op: "take", x: 5, y: 5}]
//
// Deploys ignore deploy rules and belong to the caster's color. The whole list
// is checked before anything is applied: one bad action rejects the script
// and leaves the game untouched. The ability succeeds when at least one
// action took effect.
type Ability struct {
	Name   string
	source []byte
	limits Limits
}

var _ engine.Ability = (*Ability)(nil)

// NewAbility compiles src once against placeholder inputs so syntax errors
// surface at load time.
func NewAbility(name string, src []byte, limits Limits) (*Ability, error) {
	a := &Ability{Name: name, source: src, limits: limits}
	s := a.newScript()
	if err := addInputs(s, placeholderInputs()); err != nil {
		return nil, err
	}
	if _, err := s.Compile(); err != nil {
		return nil, fmt.Errorf("compile ability %s: %w", name, err)
	}
	return a, nil
}

func (a *Ability) newScript() *tengo.Script {
	s := tengo.NewScript(a.source)
	s.SetImports(stdlib.GetModuleMap(allowedModules...))
	if a.limits.MaxAllocs > 0 {
		s.SetMaxAllocs(a.limits.MaxAllocs)
	}
	return s
}

// Apply runs the script and applies the actions it returns.
func (a *Ability) Apply(g *engine.Game, caster *engine.Unit, args engine.Args) (bool, error) {
	actions, err := a.Run(context.Background(), g, caster, args)
	if err != nil {
		return false, err
	}

	applied := false
	for _, act := range actions {
		ok, err := apply(g, caster, act)
		if err != nil {
			return applied, err
		}
		applied = applied || ok
	}
	return applied, nil
}

// Run executes the script and returns the decoded actions without applying
// them.
func (a *Ability) Run(ctx context.Context, g *engine.Game, caster *engine.Unit, args engine.Args) ([]Action, error) {
	if a.limits.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.limits.Timeout)
		defer cancel()
	}

	s := a.newScript()
	if err := addInputs(s, gameInputs(g, caster, args)); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrInvalidArguments, err)
	}
	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile ability %s: %w", a.Name, err)
	}
	if err := compiled.RunContext(ctx); err != nil {
		return nil, fmt.Errorf("run ability %s: %w", a.Name, err)
	}

	out := compiled.Get("actions")
	if out.IsUndefined() {
		return nil, nil
	}
	var actions []Action
	if err := mapstructure.WeakDecode(out.Value(), &actions); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAction, a.Name, err)
	}
	for i := range actions {
		if err := validate.Struct(&actions[i]); err != nil {
			return nil, fmt.Errorf("%w: %s: actions[%d]: %v", ErrInvalidAction, a.Name, i, err)
		}
		if err := check(g, &actions[i]); err != nil {
			return nil, fmt.Errorf("%w: %s: actions[%d]: %w", ErrInvalidAction, a.Name, i, err)
		}
	}
	return actions, nil
}

// check resolves the action's unit type and rejects squares off the board.
func check(g *engine.Game, act *Action) error {
	if !g.Board().InBounds(*act.X, *act.Y) {
		return fmt.Errorf("%w: (%d, %d) is off the board", engine.ErrInvalidArguments, *act.X, *act.Y)
	}
	if act.Op == "deploy" {
		t, err := engine.ParseUnitType(act.Type)
		if err != nil {
			return err
		}
		act.unitType = t
	}
	return nil
}

func apply(g *engine.Game, caster *engine.Unit, act Action) (bool, error) {
	switch act.Op {
	case "deploy":
		return g.Deploy(act.unitType, caster.Color, *act.X, *act.Y, false)
	case "take":
		return g.Take(*act.X, *act.Y), nil
	default:
		return false, fmt.Errorf("%w: unknown op %q", ErrInvalidAction, act.Op)
	}
}

func addInputs(s *tengo.Script, inputs map[string]any) error {
	for name, value := range inputs {
		if err := s.Add(name, value); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	return nil
}

func gameInputs(g *engine.Game, caster *engine.Unit, args engine.Args) map[string]any {
	tiles := g.Board().Tiles()
	board := make([]any, len(tiles))
	for y, row := range tiles {
		cells := make([]any, len(row))
		for x, t := range row {
			cells[x] = int(t)
		}
		board[y] = cells
	}

	return map[string]any{
		"caster": map[string]any{
			"id":    int(caster.ID),
			"type":  caster.Type.String(),
			"color": caster.Color.String(),
			"x":     caster.X,
			"y":     caster.Y,
		},
		"args":         map[string]any(args),
		"active_color": g.ActiveColor().String(),
		"board_length": g.Board().Length,
		"board_height": g.Board().Height,
		"board":        board,
	}
}

func placeholderInputs() map[string]any {
	return map[string]any{
		"caster":       map[string]any{},
		"args":         map[string]any{},
		"active_color": "",
		"board_length": 0,
		"board_height": 0,
		"board":        []any{},
	}
}

package engine

import (
	"fmt"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// Args are the loosely typed arguments an ability is invoked with.
type Args map[string]any

// Ability is an action a unit can take besides moving. Apply returns false
// for a rule violation and an error for malformed input.
type Ability interface {
	Apply(g *Game, caster *Unit, args Args) (bool, error)
}

// AbilityFunc adapts a function to the Ability interface.
type AbilityFunc func(g *Game, caster *Unit, args Args) (bool, error)

func (f AbilityFunc) Apply(g *Game, caster *Unit, args Args) (bool, error) {
	return f(g, caster, args)
}

// AbilityRegistry maps ability names to implementations. It may be shared by
// many games and updated while they run.
type AbilityRegistry struct {
	mu        sync.RWMutex
	abilities map[string]Ability
}

// NewAbilityRegistry returns an empty registry.
func NewAbilityRegistry() *AbilityRegistry {
	return &AbilityRegistry{abilities: make(map[string]Ability)}
}

// DefaultAbilities returns a registry holding the built-in abilities.
func DefaultAbilities() *AbilityRegistry {
	r := NewAbilityRegistry()
	r.Replace("barrier", AbilityFunc(barrierAbility))
	return r
}

// Register adds a new ability. Names must be unique.
func (r *AbilityRegistry) Register(name string, a Ability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.abilities[name]; ok {
		return fmt.Errorf("%w: %s", ErrAbilityExists, name)
	}
	r.abilities[name] = a
	return nil
}

// Replace adds or overwrites an ability.
func (r *AbilityRegistry) Replace(name string, a Ability) {
	r.mu.Lock()
	r.abilities[name] = a
	r.mu.Unlock()
}

// Unregister removes an ability. It reports whether the name was present.
func (r *AbilityRegistry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.abilities[name]
	delete(r.abilities, name)
	return ok
}

// Lookup returns the ability registered under name.
func (r *AbilityRegistry) Lookup(name string) (Ability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.abilities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAbilityNotFound, name)
	}
	return a, nil
}

// Names returns the registered names in sorted order.
func (r *AbilityRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.abilities))
	for name := range r.abilities {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// UseAbility makes unit id use the named ability. The ability must be
// registered and the unit must exist; otherwise an error is returned. A unit
// of the inactive color, or one whose template lacks the ability, is refused.
func (g *Game) UseAbility(id UnitID, name string, args Args) (bool, error) {
	ability, err := g.abilities.Lookup(name)
	if err != nil {
		return false, err
	}
	caster, err := g.Unit(id)
	if err != nil {
		return false, err
	}
	if g.over || caster.Color != g.active || !caster.template.HasAbility(name) {
		return false, nil
	}
	if args == nil {
		args = Args{}
	}
	return ability.Apply(g, caster, args)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeArgs decodes args into the struct pointed to by out and validates it
// against its `validate` tags.
func DecodeArgs(args Args, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(map[string]any(args)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

// BarrierParams are the arguments of the barrier ability.
type BarrierParams struct {
	X *int `mapstructure:"x" validate:"required"`
	Y *int `mapstructure:"y" validate:"required"`
}

// barrierAbility drops an obstruction for the caster's side, ignoring deploy
// rules. Whatever stands on the square is removed.
func barrierAbility(g *Game, caster *Unit, args Args) (bool, error) {
	var params BarrierParams
	if err := DecodeArgs(args, &params); err != nil {
		return false, err
	}
	return g.Deploy(Barrier, caster.Color, *params.X, *params.Y, false)
}

package sim

import (
	"fmt"
	"slices"
	"sort"
)

// Kind describes a process type: its display metadata, its parameter schema and
// how to build an instance from exactly len(Parameters) positional values.
type Kind struct {
	Name        string
	Description string
	// Label is a LaTeX rendering of the intensity, for display only.
	Label      string
	Dim        int
	Parameters []ModelParameter

	build1D      func(p []float64) (Process1D, error)
	build2D      func(p []float64) (Process2D, error)
	selfExciting bool
}

// SelfExciting reports whether instances of this kind are branching processes.
func (k Kind) SelfExciting() bool {
	return k.selfExciting
}

// New1D validates params and builds a temporal process.
func (k Kind) New1D(params ...float64) (Process1D, error) {
	if k.Dim != 1 {
		return nil, fmt.Errorf("%w: %s is a %dD process", ErrShapeMismatch, k.Name, k.Dim)
	}
	if err := ValidateParameters(k.Parameters, params); err != nil {
		return nil, fmt.Errorf("%s: %w", k.Name, err)
	}
	return k.build1D(params)
}

// New2D validates params and builds a spatial process.
func (k Kind) New2D(params ...float64) (Process2D, error) {
	if k.Dim != 2 {
		return nil, fmt.Errorf("%w: %s is a %dD process", ErrShapeMismatch, k.Name, k.Dim)
	}
	if err := ValidateParameters(k.Parameters, params); err != nil {
		return nil, fmt.Errorf("%s: %w", k.Name, err)
	}
	return k.build2D(params)
}

// Defaults returns the midpoint of every parameter range.
func (k Kind) Defaults() []float64 {
	out := make([]float64, len(k.Parameters))
	for i, p := range k.Parameters {
		out[i] = p.Midpoint()
	}
	return out
}

// Compose builds the self-exciting kind with the given background and trigger.
// Its schema is the background schema followed by the trigger schema, and New1D
// hands the first len(background.Parameters) values to the background.
func Compose(background, trigger Kind) (Kind, error) {
	if background.Dim != 1 || trigger.Dim != 1 {
		return Kind{}, fmt.Errorf("%w: self-exciting processes compose 1D kinds, got %dD background and %dD trigger",
			ErrShapeMismatch, background.Dim, trigger.Dim)
	}
	split := len(background.Parameters)
	return Kind{
		Name:        background.Name + "+" + trigger.Name,
		Description: fmt.Sprintf("self-exciting: %s background, %s trigger", background.Name, trigger.Name),
		Label:       `$\lambda (t) = \mu (t) + \sum_{t_k \leq t} g(t - t_k)$`,
		Dim:         1,
		Parameters:  append(slices.Clone(background.Parameters), trigger.Parameters...),
		build1D: func(p []float64) (Process1D, error) {
			bg, err := background.build1D(p[:split])
			if err != nil {
				return nil, fmt.Errorf("background: %w", err)
			}
			tr, err := trigger.build1D(p[split:])
			if err != nil {
				return nil, fmt.Errorf("trigger: %w", err)
			}
			return NewSelfExciting(bg, tr), nil
		},
		selfExciting: true,
	}, nil
}

// === Registry ===

var (
	KindHomogeneous = Kind{
		Name:        "homogeneous",
		Description: "homogeneous Poisson process",
		Label:       `$\lambda (t) = \lambda$`,
		Dim:         1,
		Parameters:  slices.Clone(homogeneous1DParams),
		build1D: func(p []float64) (Process1D, error) {
			return NewHomogeneous1D(p[0])
		},
	}

	KindPeriodic = Kind{
		Name:        "periodic",
		Description: "inhomogeneous Poisson process with periodic intensity",
		Label:       `$\lambda (t) = \alpha \cos^2{(2\omega \pi t)}$`,
		Dim:         1,
		Parameters:  slices.Clone(periodic1DParams),
		build1D: func(p []float64) (Process1D, error) {
			return NewPeriodic1D(p[0], p[1])
		},
	}

	KindExponentialDecay = Kind{
		Name:        "exponential-decay",
		Description: "inhomogeneous Poisson process with exponentially decaying intensity",
		Label:       `$\lambda (t) = \frac{a}{w}e^{-t/w}$`,
		Dim:         1,
		Parameters:  slices.Clone(exponentialDecayParams),
		build1D: func(p []float64) (Process1D, error) {
			return NewExponentialDecay1D(p[0], p[1])
		},
	}

	KindExponentialTrigger = Kind{
		Name:        "exponential-trigger",
		Description: "exponential kernel for self-exciting processes",
		Label:       `$\lambda (t) = \frac{a}{w}e^{-t/w}$`,
		Dim:         1,
		Parameters:  slices.Clone(exponentialTriggerParams),
		build1D: func(p []float64) (Process1D, error) {
			return NewExponentialTrigger(p[0], p[1])
		},
	}

	KindGammaTrigger = Kind{
		Name:        "gamma-trigger",
		Description: "gamma-shaped kernel for self-exciting processes",
		Label:       `$$a \frac{x^{b-1}e^{-x}}{\Gamma (b)}$$`,
		Dim:         1,
		Parameters:  slices.Clone(gammaTriggerParams),
		build1D: func(p []float64) (Process1D, error) {
			return NewGammaTrigger(p[0], p[1])
		},
	}

	KindHomogeneous2D = Kind{
		Name:        "homogeneous-2d",
		Description: "homogeneous Poisson process on a rectangle",
		Label:       `$\lambda (x, y) = \lambda$`,
		Dim:         2,
		Parameters:  slices.Clone(homogeneous2DParams),
		build2D: func(p []float64) (Process2D, error) {
			return NewHomogeneous2D(p[0])
		},
	}

	KindInhomogeneous2D = Kind{
		Name:        "inhomogeneous-2d",
		Description: "inhomogeneous Poisson process on a rectangle",
		Label:       `$\lambda (x, y) = a \cos^2{(2 b \pi x)} + c \sin^2{(2 d \pi y)}$`,
		Dim:         2,
		Parameters:  slices.Clone(inhomogeneous2DAParams),
		build2D: func(p []float64) (Process2D, error) {
			return NewInhomogeneous2DA(p[0], p[1], p[2], p[3])
		},
	}
)

// registry maps kind names to kinds. Self-exciting presets are added in init.
var registry = map[string]Kind{}

// presets are the named self-exciting pairings offered by default.
var presets = []struct {
	name                string
	background, trigger Kind
}{
	{"hawkes", KindHomogeneous, KindExponentialTrigger},
	{"sepp-gamma", KindHomogeneous, KindGammaTrigger},
	{"sepp-periodic", KindPeriodic, KindExponentialTrigger},
}

func init() {
	for _, k := range []Kind{
		KindHomogeneous, KindPeriodic, KindExponentialDecay, KindExponentialTrigger,
		KindGammaTrigger, KindHomogeneous2D, KindInhomogeneous2D,
	} {
		registry[k.Name] = k
	}
	for _, p := range presets {
		k, err := Compose(p.background, p.trigger)
		if err != nil {
			panic(err)
		}
		k.Name = p.name
		registry[k.Name] = k
	}
}

// LookupKind returns the registered kind with the given name. The returned
// Parameters slice is the caller's own.
func LookupKind(name string) (Kind, bool) {
	k, ok := registry[name]
	k.Parameters = slices.Clone(k.Parameters)
	return k, ok
}

// KindNames returns all registered kind names in sorted order.
func KindNames() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ResolveKind looks up name, or composes background and trigger when name is empty.
func ResolveKind(name, background, trigger string) (Kind, error) {
	if name != "" {
		if background != "" || trigger != "" {
			return Kind{}, fmt.Errorf("give either a process name or a background/trigger pair, not both")
		}
		k, ok := LookupKind(name)
		if !ok {
			return Kind{}, fmt.Errorf("unknown process %q; valid: %v", name, KindNames())
		}
		return k, nil
	}
	bg, ok := LookupKind(background)
	if !ok {
		return Kind{}, fmt.Errorf("unknown background process %q; valid: %v", background, KindNames())
	}
	tr, ok := LookupKind(trigger)
	if !ok {
		return Kind{}, fmt.Errorf("unknown trigger process %q; valid: %v", trigger, KindNames())
	}
	return Compose(bg, tr)
}

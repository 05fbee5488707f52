package benchy

// Registry collects benchmark entries for a program's main function:
//
//	var reg = benchy.NewRegistry("hashes")
//
//	func main() {
//		reg.Register("empty", 0, func(r *benchy.Run) { r.Run(func() {}) })
//		benchy.RegisterWith(reg, "sha256", sizes, benchSHA256)
//		reg.Run()
//	}
type Registry struct {
	name    string
	entries []entry
}

type entry struct {
	name string
	run  func(*Benchmark)
}

// NewRegistry returns an empty registry whose report is named name.
func NewRegistry(name string) *Registry {
	return &Registry{name: name}
}

func (r *Registry) Name() string { return r.name }

// Len returns the number of registered entries.
func (r *Registry) Len() int { return len(r.entries) }

// Names lists the registered entries in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Register adds an unparameterised benchmark.
func (r *Registry) Register(name string, iterations int, f func(*Run)) {
	r.entries = append(r.entries, entry{
		name: name,
		run: func(b *Benchmark) {
			b.Benchmark(name, iterations, f)
		},
	})
}

// RegisterWith adds a parameterised benchmark family.
func RegisterWith[T any](r *Registry, name string, params []Parameter[T], f func(*Run, T)) {
	r.entries = append(r.entries, entry{
		name: name,
		run: func(b *Benchmark) {
			BenchmarkWith(b, name, params, f)
		},
	})
}

// Run executes every entry on a benchmark built from the environment and
// prints the report.
func (r *Registry) Run(opts ...Option) *Benchmark {
	b := FromEnv(r.name, opts...)
	r.RunWith(b)
	return b
}

// RunWith executes every entry on b in registration order and calls Output.
func (r *Registry) RunWith(b *Benchmark) {
	for _, e := range r.entries {
		e.run(b)
	}
	b.Output()
}

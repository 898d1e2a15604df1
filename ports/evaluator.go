package ports

// Evaluator is the external expression-evaluation capability consumed by
// transform commands. The command core never interprets expressions itself;
// safety policy and language semantics live entirely behind this interface.
type Evaluator interface {
	// Validate checks an expression for syntax and safety without running it
	Validate(expression string) error
	// Evaluate computes an expression element-wise over the bound series,
	// each of length n, returning a series of length n.
	Evaluate(expression string, bindings map[string][]float64, n int) ([]float64, error)
}

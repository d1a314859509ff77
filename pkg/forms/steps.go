package forms

import "fmt"

// StepSet is an ordered list of schemas, one per wizard step. Every step
// validates at least the fields of the step before it.
type StepSet[F any] struct {
	steps []Schema[F]
}

// NewStepSet panics when steps is empty or a step drops a field of the
// previous one.
func NewStepSet[F any](steps ...Schema[F]) StepSet[F] {
	if len(steps) == 0 {
		panic("forms: step set needs at least one step")
	}

	for i := 1; i < len(steps); i++ {
		for _, field := range steps[i-1].fields {
			if !steps[i].Has(field) {
				panic(fmt.Sprintf("forms: step %d (%s) drops field %s of step %d",
					i+1, steps[i].name, field, i))
			}
		}
	}

	return StepSet[F]{steps: append([]Schema[F](nil), steps...)}
}

// Single wraps one schema as a one-step set.
func Single[F any](schema Schema[F]) StepSet[F] {
	return NewStepSet(schema)
}

func (s StepSet[F]) Len() int {
	return len(s.steps)
}

// Step returns the schema of step n, counting from 1.
func (s StepSet[F]) Step(n int) Schema[F] {
	if n < 1 || n > len(s.steps) {
		panic(fmt.Sprintf("forms: step %d out of range 1..%d", n, len(s.steps)))
	}

	return s.steps[n-1]
}

func (s StepSet[F]) Final() Schema[F] {
	return s.steps[len(s.steps)-1]
}

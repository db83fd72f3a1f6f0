package types

// ComponentMetadata defines the identifying information attached to every pipeline component.
// It is carried in log lines and sensor callbacks so that events can be attributed to a stage.
type ComponentMetadata struct {
	ID   string // Unique identifier for the component.
	Type string // Type of the component, e.g. "WIRE", "CONDITIONER", "TRAINER".
	Name string // Human-readable name for the component.
}

// Transformer maps an element to a new element of the same type, or fails.
// Wires apply transformers in the order they were connected.
type Transformer[T any] func(T) (T, error)

// Option defines a configuration option function applicable to any component T.
type Option[T any] func(T)

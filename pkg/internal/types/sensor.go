package types

// Sensor carries callback hooks invoked by components as elements move through them.
type Sensor[T any] interface {
	ConnectLogger(...Logger)

	// ConnectMeter attaches meters that the sensor keeps in step with element events.
	ConnectMeter(...Meter)

	GetComponentMetadata() ComponentMetadata

	RegisterOnStart(...func(ComponentMetadata))
	RegisterOnSubmit(...func(ComponentMetadata, T))
	RegisterOnElementProcessed(...func(ComponentMetadata, T))
	RegisterOnError(...func(ComponentMetadata, error, T))
	RegisterOnComplete(...func(ComponentMetadata))

	InvokeOnStart(ComponentMetadata)
	InvokeOnSubmit(ComponentMetadata, T)
	InvokeOnElementProcessed(ComponentMetadata, T)
	InvokeOnError(ComponentMetadata, error, T)
	InvokeOnComplete(ComponentMetadata)

	SetComponentMetadata(name string, id string)
}

package trainer

// State is the position of a training run in its lifecycle:
// Init -> (TrainEpoch -> ValidateEpoch)* -> Stopped.
type State int32

const (
	StateInit State = iota
	StateTrainEpoch
	StateValidateEpoch
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateTrainEpoch:
		return "train_epoch"
	case StateValidateEpoch:
		return "validate_epoch"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

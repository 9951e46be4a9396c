package workflow

// Trigger represents an event that can cause a phase transition
type Trigger string

const (
	TriggerNext     Trigger = "NEXT"
	TriggerPrevious Trigger = "PREVIOUS"
	TriggerSubmit   Trigger = "SUBMIT"
	TriggerSucceed  Trigger = "SUCCEED"
	TriggerFail     Trigger = "FAIL"
	TriggerDismiss  Trigger = "DISMISS"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

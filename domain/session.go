package domain

// Step is a stage of the add-reminder dialogue.
type Step int

const (
	StepNone Step = iota
	StepTitle
	StepDatePick
	StepDateManual
	StepTimePick
	StepTimeManual
)

// Session tracks one user's progress through the add-reminder dialogue.
// Sessions live only in memory: a restart discards them.
type Session struct {
	Step  Step
	Chat  ChatAddress
	Title string
	Date  string // YYYY-MM-DD, set after the date step
}

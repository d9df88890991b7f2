package service

// State names one phase of an import run's lifecycle.
type State string

const (
	StateIdle            State = "idle"
	StateAnalyzing       State = "analyzing"
	StateImporting       State = "importing"
	StateModuleCompleted State = "module_completed"
	StateCompleted       State = "completed"
	StateError           State = "error"
)

// ProgressEvent is delivered synchronously on the caller's goroutine as the
// run advances: Analyzing once, then Importing/ModuleCompleted per module,
// then Completed or Error. Callers needing cross-goroutine delivery marshal
// themselves.
type ProgressEvent struct {
	State  State
	Module Module
	// Result is set on ModuleCompleted events.
	Result *ModuleResult
	// Err is set on Error events.
	Err error
}

// ProgressFunc receives progress events. A nil callback is valid.
type ProgressFunc func(ProgressEvent)

func (f ProgressFunc) emit(ev ProgressEvent) {
	if f != nil {
		f(ev)
	}
}

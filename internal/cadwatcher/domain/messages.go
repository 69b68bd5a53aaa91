package domain

// FilesDiscoveredMsg is sent when the STEP scan completes
type FilesDiscoveredMsg struct {
	Files []StepFile
	Err   error
}

// RunLogMsg carries one streamed line from the running conversion
type RunLogMsg struct {
	Line LogLine
}

// RunFinishedMsg is sent once the conversion run has produced its result
type RunFinishedMsg struct {
	Result RunResult
}

// SettingsSavedMsg is sent after the settings form was persisted
type SettingsSavedMsg struct {
	Err error
}

// PublishedMsg is sent when exported GLBs were uploaded to object storage
type PublishedMsg struct {
	Keys []string
	Err  error
}

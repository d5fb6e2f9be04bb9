package service

// ProgressBroadcaster pushes report lifecycle events to subscribed
// WebSocket clients (avoids import cycle with the ws package)
type ProgressBroadcaster interface {
	BroadcastProgress(reportID string, stage string, payload interface{})
	DisconnectReport(reportID string)
}

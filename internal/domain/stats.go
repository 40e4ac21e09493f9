package domain

// Stats is a point-in-time view of the pipeline.
type Stats struct {
	Sessions     int   `json:"sessions"`
	QueuedKeys   int   `json:"queued_keys"`
	RunningTasks int   `json:"running_tasks"`
	InFlight     int   `json:"in_flight_artifacts"`
	DiskFiles    int   `json:"disk_files"`
	DiskBytes    int64 `json:"disk_bytes"`
}

package types

// ModelStatus joins a catalog entry with its host availability for GET /models.
type ModelStatus struct {
	Model
	// Host-assigned runtime model ID, when the host listing knows the model.
	// example: llama-3.2-1b-q4
	HostID string `json:"host_id,omitempty" example:"llama-3.2-1b-q4"`
	// Whether the model bytes already exist locally.
	// example: true
	IsDownloaded bool `json:"is_downloaded" example:"true"`
}

// ModelsResponse wraps the list returned by GET /models.
type ModelsResponse struct {
	Models []ModelStatus `json:"models"`
}

// LifecycleStateView is the JSON projection of the orchestrator state
// served by GET /state and the /events stream.
type LifecycleStateView struct {
	// Current stage: idle, checking, downloading, loading, ready, error.
	// example: downloading
	Stage string `json:"stage" example:"downloading"`
	// Display name of the model in flight (downloading/loading/ready).
	// example: Llama 3.2 1B (Q4)
	ModelName string `json:"model_name,omitempty" example:"Llama 3.2 1B (Q4)"`
	// Host-assigned ID of the ready model.
	// example: llama-3.2-1b-q4
	ModelID string `json:"model_id,omitempty" example:"llama-3.2-1b-q4"`
	// Download progress in [0,1]; only meaningful while downloading.
	// example: 0.42
	Progress float64 `json:"progress,omitempty" example:"0.42"`
	// Human-readable failure message; only set in the error stage.
	Error string `json:"error,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Current lifecycle stage.
	// example: ready
	State string `json:"state" example:"ready"`
	// Key of the currently loaded model, if any.
	// example: llama-3.2-1b-q4
	CurrentModelKey string `json:"current_model_key,omitempty" example:"llama-3.2-1b-q4"`
	// Host-assigned ID of the currently loaded model, if any.
	CurrentModelID string `json:"current_model_id,omitempty"`
	// Last failure message observed, if any.
	LastError string `json:"last_error,omitempty"`
	// Most recent resource snapshot, if one has been taken.
	Resources *ResourceSnapshot `json:"resources,omitempty"`
	// Total successful loads since start.
	// example: 3
	LoadsTotal uint64 `json:"loads_total" example:"3"`
	// Total load pipelines that exhausted their retries.
	// example: 1
	LoadFailuresTotal uint64 `json:"load_failures_total" example:"1"`
	// Total completed downloads since start.
	// example: 2
	DownloadsTotal uint64 `json:"downloads_total" example:"2"`
	// Total failed downloads since start.
	// example: 0
	DownloadFailuresTotal uint64 `json:"download_failures_total" example:"0"`
	// Uptime of the daemon in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// InitializeRequest is the body of POST /initialize.
type InitializeRequest struct {
	// Whether to run the full selection/download/load pipeline.
	// example: true
	AutoLoad bool `json:"auto_load" example:"true"`
}

// PreferencesRequest is the body of PUT /preferences. Nil fields are left
// unchanged.
type PreferencesRequest struct {
	PreferredModelKey *string `json:"preferred_model_key,omitempty"`
	AutoLoadEnabled   *bool   `json:"auto_load_enabled,omitempty"`
}

// RecommendationResponse is returned by GET /recommendation.
type RecommendationResponse struct {
	// Human-readable recommendation derived from the device tier.
	Recommendation string `json:"recommendation"`
	// Tier the recommendation was derived from.
	// example: medium
	DeviceTier DeviceTier `json:"device_tier" example:"medium"`
}

// UpgradeResponse is returned by GET /upgrade.
type UpgradeResponse struct {
	// Whether a higher-quality model could be loaded right now.
	// example: true
	Available bool `json:"available" example:"true"`
	// Key of the closest upgrade, when available.
	// example: qwen2.5-3b-q4
	BetterKey string `json:"better_key,omitempty" example:"qwen2.5-3b-q4"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: model not found: nosuch
	Error string `json:"error" example:"model not found: nosuch"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

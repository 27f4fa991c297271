package models

import "time"

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"v1.2.0" doc:"Application version"`
	GitCommit string `json:"git_commit" doc:"Git commit hash"`
	BuildDate string `json:"build_date" doc:"Build timestamp"`
	GoVersion string `json:"go_version" example:"go1.24.11" doc:"Go toolchain version"`
	Platform  string `json:"platform" example:"darwin/arm64" doc:"Target OS and architecture"`
}

type VersionResponse struct {
	Body VersionData
}

// Status models
type CameraData struct {
	DeviceID string `json:"device_id" example:"0x8020000005ac8514" doc:"Camera identifier extracted from the log"`
	Active   bool   `json:"active" doc:"Latest reported state"`
}

type BrokerData struct {
	Connected bool      `json:"connected" doc:"Whether the last connect attempt succeeded"`
	Reason    string    `json:"reason,omitempty" example:"not authorised" doc:"Failure reason when not connected"`
	Host      string    `json:"host" example:"futurehome-smarthub.local" doc:"Broker host"`
	User      string    `json:"user,omitempty" doc:"Broker user"`
	UpdatedAt time.Time `json:"updated_at" doc:"When the status last changed"`
}

type StatusData struct {
	OnAir            bool         `json:"on_air" doc:"Current on-air state"`
	State            string       `json:"state" example:"ON_AIR" doc:"State name"`
	Indicator        string       `json:"indicator" example:"🟢" doc:"Current indicator glyph"`
	Source           string       `json:"source,omitempty" example:"camera" doc:"What caused the last transition"`
	Since            time.Time    `json:"since" doc:"Time of the last transition"`
	Transitions      uint64       `json:"transitions" doc:"Number of transitions since start"`
	LastPublishError string       `json:"last_publish_error,omitempty" doc:"Error from the last publish, if it failed"`
	Cameras          []CameraData `json:"cameras" doc:"Every camera observed since start"`
	Broker           BrokerData   `json:"broker" doc:"Broker connection status"`
	Lines            uint64       `json:"lines" doc:"Log lines read"`
	Rule             string       `json:"rule,omitempty" example:"control-center" doc:"Active log match rule"`
}

type StatusResponse struct {
	Body StatusData
}

// Manual override models
type AirRequestData struct {
	OnAir bool `json:"on_air" doc:"Desired state"`
}

type AirRequest struct {
	Body AirRequestData
}

type AirData struct {
	OnAir   bool   `json:"on_air" doc:"State after the request"`
	State   string `json:"state" example:"ON_AIR" doc:"State name"`
	Changed bool   `json:"changed" doc:"Whether the request caused a transition"`
}

type AirResponse struct {
	Body AirData
}

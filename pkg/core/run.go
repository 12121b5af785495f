package core

import "time"

// Run identifies one generation run. ID is assigned by the storage backend
// when the run starts.
type Run struct {
	ID               uint      `json:"id"`
	Tag              string    `json:"tag"`
	StartTime        time.Time `json:"startTime"`
	Anchor           time.Time `json:"anchor"`
	NumSteps         int       `json:"numSteps"`
	SimulationHours  int       `json:"simulationHours"`
	GeneratorVersion string    `json:"generatorVersion"`
}

// UploadMetadata describes an exported run file for the ingest API.
type UploadMetadata struct {
	Tag             string `json:"tag"`
	Anchor          string `json:"anchor"`
	NumSteps        int    `json:"numSteps"`
	SimulationHours int    `json:"simulationHours"`
}

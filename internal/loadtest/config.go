// Package loadtest drives a running regatta service over HTTP: it creates a
// random regatta, submits its races concurrently and checks the served
// scoreboard against a local computation.
package loadtest

import "time"

// Config holds configuration for a load test run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Skippers   int           // Number of skippers to create
	Races      int           // Number of races to submit
	AbsentRate float64       // Chance that a skipper is DNS or DNF in a race
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Seed for the generated results
	OutputFile string        // Where to save the generated sheet, if set
	Live       bool          // Subscribe to the live feed while submitting
}

// Stats holds run statistics.
type Stats struct {
	SkippersCreated int
	RacesSubmitted  int
	RacesFailed     int
	Duplicates      int
	LiveUpdates     int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

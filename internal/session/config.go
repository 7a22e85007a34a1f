package session

import "encoding/json"

// Config is the debug-surface configuration, shaped as in SPEC_FULL.md
// §6. The DAP adapter builds it for each session with both flags
// enabled and DefaultTiming(); it is not read from the launch/attach
// arguments.
type Config struct {
	LogProtocol              bool
	EvalExprStartStopEnabled bool
	Timing                   Timing
}

// Timing holds every configurable delay/interval the orchestrator,
// polling engine and evaluation engine use. Field names follow
// SPEC_FULL.md §6; values are milliseconds, converted to time.Duration
// at the edges (session.go).
type Timing struct {
	PingIntervalMs                int
	PingStoppedIntervalMs         int
	PingDbgtgtIntervalMs          int
	ImmediatePingDelaysMs         []int
	StepInOutDelayMs              int
	VarFetchDelayMs               int
	CalcWaitingTimeMs             int
	EvalExprRetryDelaysMs         []int
	VariablesRequestRetryDelaysMs []int
}

// DefaultTiming matches the defaults named throughout SPEC_FULL.md §4.
func DefaultTiming() Timing {
	return Timing{
		PingIntervalMs:                400,
		PingStoppedIntervalMs:         800,
		PingDbgtgtIntervalMs:          1000,
		ImmediatePingDelaysMs:         []int{50, 100, 200},
		StepInOutDelayMs:              100,
		VarFetchDelayMs:               100,
		CalcWaitingTimeMs:             1500,
		EvalExprRetryDelaysMs:         []int{50, 100},
		VariablesRequestRetryDelaysMs: []int{50, 100},
	}
}

// LaunchArguments is the DAP launch/attach argument payload,
// unmarshalled from the request's raw JSON arguments.
type LaunchArguments struct {
	DebugServerHost string   `json:"debugServerHost"`
	DebugServerPort int      `json:"debugServerPort"`
	IBConnection    string   `json:"ibconnection"`
	InfoBaseAlias   string   `json:"infoBaseAlias"`
	InfoBase        string   `json:"infoBase"`
	DBUser          string   `json:"dbUser"`
	DBPwd           string   `json:"dbPwd"`
	RootProject     string   `json:"rootProject"`
	PlatformPath    string   `json:"platformPath"`
	PlatformVersion string   `json:"platformVersion"`
	AutoAttachTypes []string `json:"autoAttachTypes"`

	Request string `json:"request"` // "launch" or "attach"
}

// ParseLaunchArguments unmarshals a launch/attach request's raw
// arguments, filling InfoBaseAlias with the documented default.
func ParseLaunchArguments(raw json.RawMessage) (*LaunchArguments, error) {
	args := &LaunchArguments{InfoBaseAlias: "DefAlias"}
	if len(raw) == 0 {
		return args, nil
	}
	if err := json.Unmarshal(raw, args); err != nil {
		return nil, err
	}
	if args.InfoBaseAlias == "" {
		args.InfoBaseAlias = "DefAlias"
	}
	return args, nil
}

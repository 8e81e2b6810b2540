// internal/writer/builder.go
package writer

import (
	"errors"
	"time"

	cfg "github.com/tamzrod/mstore/internal/config"
	wmodbus "github.com/tamzrod/mstore/internal/writer/modbus"
)

// BuildPlan converts the status section into a Writer Plan.
// Assumes config has already passed validation and normalization.
func BuildPlan(sc *cfg.StatusConfig) (Plan, error) {
	if sc == nil {
		return Plan{}, nil
	}
	if sc.Endpoint == "" {
		return Plan{}, errors.New("writer: status.endpoint required")
	}

	return Plan{
		UnitID: sc.UnitID,
		Status: &StatusPlan{
			Endpoint:   sc.Endpoint,
			UnitID:     sc.UnitID,
			BaseSlot:   sc.BaseSlot,
			DeviceName: sc.DeviceName,
		},
	}, nil
}

// BuildEndpointClient opens the TCP client for the status endpoint.
func BuildEndpointClient(sc *cfg.StatusConfig) (*wmodbus.EndpointClient, error) {
	if sc == nil {
		return nil, errors.New("writer: status mirror not configured")
	}
	return wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: sc.Endpoint,
		Timeout:  time.Duration(sc.TimeoutMs) * time.Millisecond,
	})
}

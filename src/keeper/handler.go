package keeper

import (
	"context"
	"encoding/json"

	"github.com/api3dao/airkeeper/src/utils/config"
	"github.com/api3dao/airkeeper/src/utils/monitor"
)

const (
	MessagePspFinished = "PSP beacon update execution has finished"
	MessageRrpFinished = "RRP beacon update execution has finished"
)

// Response is the envelope returned to the scheduled environment
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type responseBody struct {
	Ok   bool         `json:"ok"`
	Data responseData `json:"data"`
}

type responseData struct {
	Message string `json:"message"`
}

func newResponse(message string) (response Response) {
	body, _ := json.Marshal(responseBody{
		Ok:   true,
		Data: responseData{Message: message},
	})
	return Response{
		StatusCode: 200,
		Body:       string(body),
	}
}

// HandlePsp runs one PSP update cycle. Configuration errors propagate up,
// everything else is handled per work unit inside the cycle.
// The event payload of the scheduled environment is opaque and unused.
func HandlePsp(ctx context.Context, config *config.Config, mon *monitor.Monitor, event interface{}) (response Response, err error) {
	coordinator, err := newCycleCoordinator(config, mon)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, config.Keeper.CycleTimeout)
	defer cancel()

	err = coordinator.RunPsp(ctx)
	if err != nil {
		return
	}

	return newResponse(MessagePspFinished), nil
}

// HandleRrp runs one RRP beacon keeper cycle
func HandleRrp(ctx context.Context, config *config.Config, mon *monitor.Monitor, event interface{}) (response Response, err error) {
	coordinator, err := newCycleCoordinator(config, mon)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, config.Keeper.CycleTimeout)
	defer cancel()

	err = coordinator.RunRrp(ctx)
	if err != nil {
		return
	}

	return newResponse(MessageRrpFinished), nil
}

// newCycleCoordinator loads both configuration documents fresh, merges and
// validates them, then builds the coordinator. The keeper keeps no state
// between invocations, every cycle starts from the documents.
func newCycleCoordinator(cfg *config.Config, mon *monitor.Monitor) (coordinator *Coordinator, err error) {
	node, err := config.LoadAirnode(cfg.Keeper.AirnodeConfigPath)
	if err != nil {
		return
	}

	keeper, err := config.LoadAirkeeper(cfg.Keeper.AirkeeperConfigPath)
	if err != nil {
		return
	}

	merged, err := config.Merge(node, keeper)
	if err != nil {
		return
	}

	err = merged.Validate()
	if err != nil {
		return
	}

	coordinator, err = NewCoordinator(cfg, merged)
	if err != nil {
		return
	}

	if mon != nil {
		coordinator.WithMonitor(mon)
	}
	return
}

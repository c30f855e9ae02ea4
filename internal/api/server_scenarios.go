package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/mpdee/fleetprobe/internal/scenario"
)

func registerScenarioHandlers(api huma.API, svc Service) {
	type scenarioListOutput struct {
		Body struct {
			Scenarios []scenario.Scenario `json:"scenarios"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-scenarios", Method: http.MethodGet, Path: "/api/v1/scenarios", Summary: "List loaded scenarios", Tags: []string{"Scenarios"}},
		func(ctx context.Context, input *struct{}) (*scenarioListOutput, error) {
			out := &scenarioListOutput{}
			out.Body.Scenarios = svc.ListScenarios()
			return out, nil
		})

	type scenarioIDInput struct {
		ID string `path:"id" doc:"Scenario ID"`
	}
	type scenarioOutput struct {
		Body scenario.Scenario
	}
	huma.Register(api, huma.Operation{OperationID: "get-scenario", Method: http.MethodGet, Path: "/api/v1/scenarios/{id}", Summary: "Get one scenario", Tags: []string{"Scenarios"}},
		func(ctx context.Context, input *scenarioIDInput) (*scenarioOutput, error) {
			sc, err := svc.GetScenario(input.ID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &scenarioOutput{}
			out.Body = sc
			return out, nil
		})
}

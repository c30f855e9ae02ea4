package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/mpdee/fleetprobe/internal/report"
)

func registerRunHandlers(api huma.API, svc Service) {
	type startRunInput struct {
		Body struct {
			Scenarios []string `json:"scenarios,omitempty" doc:"Scenario IDs to run. Empty runs the full suite."`
		}
	}
	type startRunOutput struct {
		Status int
		Body   report.RunSummary
	}
	huma.Register(api, huma.Operation{OperationID: "start-run", Method: http.MethodPost, Path: "/api/v1/runs", Summary: "Start a suite run", Tags: []string{"Runs"}},
		func(ctx context.Context, input *startRunInput) (*startRunOutput, error) {
			sum, err := svc.StartRun(ctx, input.Body.Scenarios)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &startRunOutput{Status: http.StatusAccepted}
			out.Body = sum
			return out, nil
		})

	type runListOutput struct {
		Body struct {
			Runs []report.RunSummary `json:"runs"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-runs", Method: http.MethodGet, Path: "/api/v1/runs", Summary: "List stored runs", Tags: []string{"Runs"}},
		func(ctx context.Context, input *struct{}) (*runListOutput, error) {
			runs, err := svc.ListRuns()
			if err != nil {
				return nil, mapErr(err)
			}
			out := &runListOutput{}
			out.Body.Runs = runs
			return out, nil
		})

	type runIDInput struct {
		RunID string `path:"run_id" doc:"Run ID"`
	}
	type runOutput struct {
		Body report.RunSummary
	}
	huma.Register(api, huma.Operation{OperationID: "get-run", Method: http.MethodGet, Path: "/api/v1/runs/{run_id}", Summary: "Get one stored run", Tags: []string{"Runs"}},
		func(ctx context.Context, input *runIDInput) (*runOutput, error) {
			sum, err := svc.GetRun(input.RunID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &runOutput{}
			out.Body = sum
			return out, nil
		})

	type deleteRunOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "delete-run", Method: http.MethodDelete, Path: "/api/v1/runs/{run_id}", Summary: "Delete one stored run", Tags: []string{"Runs"}},
		func(ctx context.Context, input *runIDInput) (*deleteRunOutput, error) {
			if err := svc.DeleteRun(input.RunID); err != nil {
				return nil, mapErr(err)
			}
			out := &deleteRunOutput{}
			out.Body.Status = "deleted"
			return out, nil
		})
}

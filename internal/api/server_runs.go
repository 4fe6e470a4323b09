package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/contribute_smoke/internal/controller"
	"github.com/dgnsrekt/contribute_smoke/internal/registry"
	"github.com/dgnsrekt/contribute_smoke/internal/scenario"
)

func registerRunHandlers(api huma.API, svc Service) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	type listScenariosOutput struct {
		Body struct {
			Scenarios []scenario.Scenario `json:"scenarios"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-scenarios", Method: http.MethodGet, Path: "/api/v1/scenarios", Summary: "List smoke scenarios", Tags: []string{"Scenarios"}},
		func(ctx context.Context, input *struct{}) (*listScenariosOutput, error) {
			out := &listScenariosOutput{}
			out.Body.Scenarios = svc.ListScenarios(ctx)
			if out.Body.Scenarios == nil {
				out.Body.Scenarios = []scenario.Scenario{}
			}
			return out, nil
		})

	type registryOutput struct {
		Body *registry.Registry
	}
	huma.Register(api, huma.Operation{OperationID: "get-registry", Method: http.MethodGet, Path: "/api/v1/registry", Summary: "Get locators and expected destinations", Tags: []string{"Scenarios"}},
		func(ctx context.Context, input *struct{}) (*registryOutput, error) {
			return &registryOutput{Body: svc.Registry(ctx)}, nil
		})

	type startRunInput struct {
		Body struct {
			Scenarios   []string `json:"scenarios,omitempty" doc:"Scenario names to run. Omit to run all." example:"[\"footer-section\"]"`
			Tags        []string `json:"tags,omitempty" doc:"Only run scenarios carrying one of these tags" example:"[\"nondestructive\"]"`
			ExcludeTags []string `json:"exclude_tags,omitempty" doc:"Skip scenarios carrying one of these tags" example:"[\"link_check\"]"`
		}
	}
	type runOutput struct {
		Body controller.RunState
	}
	huma.Register(api, huma.Operation{OperationID: "start-run", Method: http.MethodPost, Path: "/api/v1/runs", Summary: "Start a smoke run", Description: "Starts a run in the background. Only one run may be in progress; a second request returns 409.", DefaultStatus: http.StatusAccepted, Tags: []string{"Runs"}},
		func(ctx context.Context, input *startRunInput) (*runOutput, error) {
			state, err := svc.StartRun(ctx, scenario.Filter{
				Names:       input.Body.Scenarios,
				Tags:        input.Body.Tags,
				ExcludeTags: input.Body.ExcludeTags,
			})
			if err != nil {
				return nil, mapErr(err)
			}
			return &runOutput{Body: state}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-latest-run", Method: http.MethodGet, Path: "/api/v1/runs/latest", Summary: "Get the current or most recent run", Tags: []string{"Runs"}},
		func(ctx context.Context, input *struct{}) (*runOutput, error) {
			state, err := svc.LatestRun(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &runOutput{Body: state}, nil
		})
}

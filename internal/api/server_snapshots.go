package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/contribute_smoke/internal/snapshot"
)

func registerSnapshotHandlers(api huma.API, svc Service) {
	type listSnapshotsInput struct {
		Scenario string `query:"scenario" doc:"Only list screenshots of this scenario"`
	}
	type listSnapshotsOutput struct {
		Body struct {
			Snapshots []snapshot.ScreenshotMeta `json:"snapshots"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-snapshots", Method: http.MethodGet, Path: "/api/v1/snapshots", Summary: "List failure screenshots", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *listSnapshotsInput) (*listSnapshotsOutput, error) {
			metas, err := svc.ListSnapshots(ctx, input.Scenario)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listSnapshotsOutput{}
			out.Body.Snapshots = metas
			if out.Body.Snapshots == nil {
				out.Body.Snapshots = []snapshot.ScreenshotMeta{}
			}
			return out, nil
		})

	type snapshotIDInput struct {
		SnapshotID string `path:"snapshot_id"`
	}
	type getSnapshotOutput struct {
		Body snapshot.ScreenshotMeta
	}
	huma.Register(api, huma.Operation{OperationID: "get-snapshot", Method: http.MethodGet, Path: "/api/v1/snapshots/{snapshot_id}", Summary: "Get screenshot metadata", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *snapshotIDInput) (*getSnapshotOutput, error) {
			meta, err := svc.GetSnapshot(ctx, input.SnapshotID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &getSnapshotOutput{Body: meta}, nil
		})

	type deleteSnapshotOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "delete-snapshot", Method: http.MethodDelete, Path: "/api/v1/snapshots/{snapshot_id}", Summary: "Delete screenshot", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *snapshotIDInput) (*deleteSnapshotOutput, error) {
			if err := svc.DeleteSnapshot(ctx, input.SnapshotID); err != nil {
				return nil, mapErr(err)
			}
			out := &deleteSnapshotOutput{}
			out.Body.Status = "deleted"
			return out, nil
		})

	type snapshotImageOutput struct {
		ContentType string `header:"Content-Type"`
		Body        []byte
	}
	huma.Register(api, huma.Operation{
		OperationID: "get-snapshot-image",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshots/{snapshot_id}/image",
		Summary:     "Get screenshot image",
		Tags:        []string{"Snapshots"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Screenshot image",
				Content: map[string]*huma.MediaType{
					"image/png": {
						Schema: &huma.Schema{Type: "string", Format: "binary"},
					},
				},
			},
		},
	}, func(ctx context.Context, input *snapshotIDInput) (*snapshotImageOutput, error) {
		data, format, err := svc.ReadSnapshotImage(ctx, input.SnapshotID)
		if err != nil {
			return nil, mapErr(err)
		}
		ct := "image/png"
		if format == "jpeg" {
			ct = "image/jpeg"
		}
		return &snapshotImageOutput{ContentType: ct, Body: data}, nil
	})
}

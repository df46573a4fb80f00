package enginesdk

import (
	"context"

	"github.com/imroc/req/v3"
)

const (
	v1SyncStatus   = "/api/v1/sync/status"
	v1SyncRun      = "/api/v1/sync/run"
	v1SyncStop     = "/api/v1/sync/stop"
	v1SyncContinue = "/api/v1/sync/continue"
	v1SyncResolve  = "/api/v1/sync/resolve"
)

// SyncAPI drives the engine's sync pipeline. Run, Continue and Resolve are
// long requests, they return once the pipeline settles on a terminal status.
type SyncAPI struct {
	client *req.Client
}

func newSyncAPI(client *req.Client) *SyncAPI {
	return &SyncAPI{
		client: client,
	}
}

func (s *SyncAPI) Status(ctx context.Context) (resp *SyncStatusResponse, err error) {
	res, err := s.client.R().
		SetContext(ctx).
		SetSuccessResult(&resp).
		Get(v1SyncStatus)

	if err := handleAPIError(res, err, "sync status"); err != nil {
		return nil, err
	}

	return resp, nil
}

func (s *SyncAPI) Run(ctx context.Context, params *SyncRequest) (resp *SyncOpResponse, err error) {
	if params == nil {
		params = &SyncRequest{}
	}

	res, err := s.client.R().
		SetContext(ctx).
		SetBody(params).
		SetSuccessResult(&resp).
		Post(v1SyncRun)

	if err := handleAPIError(res, err, "sync run"); err != nil {
		return nil, err
	}

	return resp, nil
}

func (s *SyncAPI) Stop(ctx context.Context) (resp *SyncOpResponse, err error) {
	res, err := s.client.R().
		SetContext(ctx).
		SetSuccessResult(&resp).
		Post(v1SyncStop)

	if err := handleAPIError(res, err, "sync stop"); err != nil {
		return nil, err
	}

	return resp, nil
}

// Continue resumes a conflicted pipeline after the user finished reviewing,
// pushing the reviewed payload through.
func (s *SyncAPI) Continue(ctx context.Context) (resp *SyncOpResponse, err error) {
	res, err := s.client.R().
		SetContext(ctx).
		SetSuccessResult(&resp).
		Post(v1SyncContinue)

	if err := handleAPIError(res, err, "sync continue"); err != nil {
		return nil, err
	}

	return resp, nil
}

// Resolve asks the engine to settle all pending conflicts with its default
// strategy and bring the pipeline back to idle.
func (s *SyncAPI) Resolve(ctx context.Context) (resp *SyncOpResponse, err error) {
	res, err := s.client.R().
		SetContext(ctx).
		SetSuccessResult(&resp).
		Post(v1SyncResolve)

	if err := handleAPIError(res, err, "sync resolve"); err != nil {
		return nil, err
	}

	return resp, nil
}

package projects

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pkg/errors"

	"github.com/mihira-vl/launcher/apiclient"
)

// Service fetches project data through the authorized request pipeline.
type Service struct {
	api *apiclient.Client
}

func NewService(api *apiclient.Client) (*Service, error) {
	if api == nil {
		return nil, errors.New("[projects.NewService] api client is required")
	}
	return &Service{api: api}, nil
}

// ListMine returns the projects the authenticated user is a member of.
func (s *Service) ListMine(ctx context.Context) ([]Project, error) {
	var items []Project
	if err := s.api.GetJSON(ctx, "auth/me/projects", nil, &items); err != nil {
		return nil, errors.Wrap(err, "[Service.ListMine]")
	}
	return items, nil
}

// ListSequences returns the sequences of a project.
func (s *Service) ListSequences(ctx context.Context, projectID string) ([]Sequence, error) {
	path := fmt.Sprintf("projects/%s/sequences", url.PathEscape(projectID))
	var items []Sequence
	if err := s.api.GetJSON(ctx, path, nil, &items); err != nil {
		return nil, errors.Wrap(err, "[Service.ListSequences]")
	}
	return items, nil
}

// ListShots returns the shots of a sequence.
func (s *Service) ListShots(ctx context.Context, projectID, sequenceID string) ([]Shot, error) {
	path := fmt.Sprintf("projects/%s/sequences/%s/shots", url.PathEscape(projectID), url.PathEscape(sequenceID))
	var items []Shot
	if err := s.api.GetJSON(ctx, path, nil, &items); err != nil {
		return nil, errors.Wrap(err, "[Service.ListShots]")
	}
	return items, nil
}

package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	arcgisDomain "github.com/geocrest/gateway/internal/arcgis/domain"
	apperrors "github.com/geocrest/gateway/internal/errors"
	"github.com/geocrest/gateway/internal/rest"
)

// Job polling defaults.
const (
	DefaultUpdateDelay     = time.Second
	DefaultMaxPollDuration = 30 * time.Minute
)

// GPServer is a hydrated geoprocessing service.
type GPServer struct {
	base
	Info arcgisDomain.GPServerInfo

	updateDelay     time.Duration
	maxPollDuration time.Duration
	logger          *slog.Logger
}

func newGPServer(ctx context.Context, f *Factory, b base) (arcgisDomain.Service, error) {
	info, err := rest.Hydrate[arcgisDomain.GPServerInfo](ctx, b.client, b.target(b.endpoint(), nil), b.options()...)
	if err != nil {
		return nil, err
	}
	return &GPServer{
		base:            b,
		Info:            info,
		updateDelay:     f.updateDelay,
		maxPollDuration: f.maxPollDuration,
		logger:          f.logger,
	}, nil
}

// WithToken returns a copy of the service that authenticates with token.
func (s *GPServer) WithToken(token string) arcgisDomain.Service {
	clone := *s
	clone.token = token
	return &clone
}

// Task hydrates the named task. The name must be listed by the service.
func (s *GPServer) Task(ctx context.Context, name string) (*GPTask, error) {
	listed := ""
	for _, task := range s.Info.Tasks {
		if strings.EqualFold(task, name) {
			listed = task
			break
		}
	}
	if listed == "" {
		return nil, apperrors.Wrapf(arcgisDomain.ErrTaskNotFound, "%q on %s", name, s.name)
	}

	taskBase := s.base
	taskBase.url = s.endpoint(listed)

	info, err := rest.Hydrate[arcgisDomain.GPTaskInfo](ctx, s.client, taskBase.target(taskBase.url, nil), s.options()...)
	if err != nil {
		return nil, err
	}

	return &GPTask{
		base:            taskBase,
		Info:            info,
		updateDelay:     s.updateDelay,
		maxPollDuration: s.maxPollDuration,
		logger:          s.logger,
	}, nil
}

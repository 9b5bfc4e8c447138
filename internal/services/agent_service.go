package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"homznspace/backend/internal/apperr"
	"homznspace/backend/internal/auth"
	"homznspace/backend/internal/models"
	"homznspace/backend/internal/store"
)

// IAgentService is the admin side of the agent approval workflow.
// An agent moves Pending -> Approved, or is deleted on rejection. There is no way back.
type IAgentService interface {
	ListPending(ctx context.Context, p auth.Principal) ([]models.Agent, error)
	Approve(ctx context.Context, p auth.Principal, agentID string) (*models.Agent, error)
	Reject(ctx context.Context, p auth.Principal, agentID string) error
}

type agentService struct {
	agents   store.IAgentStore
	notifier INotifier
}

func NewAgentService(agents store.IAgentStore, notifier INotifier) IAgentService {
	return &agentService{agents: agents, notifier: notifier}
}

func requireAdmin(p auth.Principal) error {
	if !p.IsAdmin() {
		return apperr.Forbidden("admin access required")
	}
	return nil
}

func (s *agentService) ListPending(ctx context.Context, p auth.Principal) ([]models.Agent, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	return s.agents.ListPending(ctx)
}

func (s *agentService) Approve(ctx context.Context, p auth.Principal, agentID string) (*models.Agent, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	id, err := models.ParseID(agentID)
	if err != nil {
		return nil, apperr.NotFound("agent not found")
	}
	agent, changed, err := s.agents.Approve(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("agent not found")
	}
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("agent_id", id.Hex()).Logger()
	if !changed {
		logger.Info().Msg("agent already approved")
		return agent, nil
	}
	logger.Info().Msg("agent approved")
	s.notifier.AgentApproved(ctx, agent)
	return agent, nil
}

func (s *agentService) Reject(ctx context.Context, p auth.Principal, agentID string) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	id, err := models.ParseID(agentID)
	if err != nil {
		return apperr.NotFound("agent not found")
	}
	if err := s.agents.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("agent not found")
		}
		return err
	}
	zerolog.Ctx(ctx).Info().Str("agent_id", id.Hex()).Msg("agent rejected and removed")
	return nil
}

package services

import (
	"context"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portsrepo "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// roleProviderService resolves actors from the user table through a small TTL cache,
// so a role change takes effect after at most one TTL.
type roleProviderService struct {
	BaseService
	userRepo portsrepo.UserReader
	cache    *expirable.LRU[string, domain.Actor]
}

// NewRoleProviderService creates a role provider caching at most size actors for ttl.
func NewRoleProviderService(userRepo portsrepo.UserReader, size int, ttl time.Duration) portssvc.RoleProviderSvc {
	return &roleProviderService{
		userRepo: userRepo,
		cache:    expirable.NewLRU[string, domain.Actor](size, nil, ttl),
	}
}

func (s *roleProviderService) ResolveActor(ctx context.Context, userID string) (domain.Actor, error) {
	if actor, ok := s.cache.Get(userID); ok {
		return actor, nil
	}
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return domain.Actor{}, err
	}
	actor := user.Actor()
	s.cache.Add(userID, actor)
	return actor, nil
}

func (s *roleProviderService) Invalidate(userID string) {
	s.cache.Remove(userID)
}

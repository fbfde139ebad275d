package service_test

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/andredale-lab/One-Coffee/internal/feed"
	"github.com/andredale-lab/One-Coffee/internal/models"
	"github.com/andredale-lab/One-Coffee/internal/repository"
	"github.com/andredale-lab/One-Coffee/internal/service"
)

type env struct {
	mem    *repository.Memory
	broker *feed.Broker
	convs  *service.ConversationService
	msgs   *service.MessageService
	invs   *service.InvitationService
	profs  *service.ProfileService
}

func newEnv() *env {
	mem := repository.NewMemory()
	broker := feed.NewBroker(16)
	log := zap.NewNop().Sugar()
	return &env{
		mem:    mem,
		broker: broker,
		convs:  service.NewConversationService(mem.Profiles(), mem.Conversations(), mem.Messages(), log),
		msgs:   service.NewMessageService(mem.Conversations(), mem.Messages(), broker, nil, nil, log),
		invs:   service.NewInvitationService(mem.Profiles(), mem.Invitations(), log),
		profs:  service.NewProfileService(mem.Profiles(), log),
	}
}

func (e *env) addProfile(id, name string) {
	_ = e.mem.Profiles().Upsert(context.Background(), &models.Profile{
		ID:        id,
		Email:     id + "@example.com",
		FullName:  name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
}

package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhq/gestor/internal/billing/domain"
	clientdomain "github.com/gestorhq/gestor/internal/client/domain"
	"github.com/gestorhq/gestor/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	ClientRepo clientdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	clientRepo clientdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("billing.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		clientRepo: p.ClientRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateBillingRequest) (domain.RecurringBilling, error) {
	clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
	if err != nil || clientID == 0 {
		return domain.RecurringBilling{}, domain.ErrInvalidClient
	}
	client, err := s.clientRepo.FindByID(ctx, s.db, clientID)
	if err != nil {
		return domain.RecurringBilling{}, err
	}
	if client == nil {
		return domain.RecurringBilling{}, domain.ErrInvalidClient
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.RecurringBilling{}, domain.ErrInvalidDescription
	}
	if req.Amount.IsNegative() || req.Amount.IsZero() {
		return domain.RecurringBilling{}, domain.ErrInvalidAmount
	}
	if req.DueDay < 1 || req.DueDay > 31 {
		return domain.RecurringBilling{}, domain.ErrInvalidDueDay
	}

	installments := req.Installments
	if installments <= 0 {
		installments = 1
	}
	current := req.CurrentInstallment
	if current <= 0 {
		current = 1
	}
	if current > installments {
		return domain.RecurringBilling{}, domain.ErrInvalidInstallments
	}

	now := s.clock.Now().UTC()
	billing := domain.RecurringBilling{
		ID:                 s.genID.Generate(),
		ClientID:           clientID,
		Description:        description,
		Amount:             req.Amount,
		DueDay:             req.DueDay,
		Status:             domain.BillingStatusPending,
		Installments:       installments,
		CurrentInstallment: current,
		PaymentMethod:      strings.TrimSpace(req.PaymentMethod),
		Metadata:           datatypes.JSONMap{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Insert(ctx, s.db, &billing); err != nil {
		return domain.RecurringBilling{}, err
	}

	return billing, nil
}

func (s *Service) List(ctx context.Context, req domain.ListBillingRequest) (domain.ListBillingResponse, error) {
	status := domain.BillingStatus(strings.TrimSpace(req.Status))
	if status == "" {
		status = domain.BillingStatusPending
	}
	if !domain.ValidStatus(status) {
		return domain.ListBillingResponse{}, domain.ErrInvalidStatus
	}

	billings, err := s.repo.ListByStatus(ctx, s.db, status)
	if err != nil {
		return domain.ListBillingResponse{}, err
	}

	return domain.ListBillingResponse{Billings: billings}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.BillingStatus) error {
	billingID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || billingID == 0 {
		return domain.ErrInvalidID
	}
	if !domain.ValidStatus(status) {
		return domain.ErrInvalidStatus
	}

	updated, err := s.repo.UpdateStatus(ctx, s.db, billingID, status)
	if err != nil {
		return err
	}
	if !updated {
		return domain.ErrNotFound
	}
	return nil
}

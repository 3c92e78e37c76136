package app

import (
	"context"
	"fmt"

	"github.com/outreachworks/crm-bridge/config"
	"github.com/outreachworks/crm-bridge/crm"
	"github.com/outreachworks/crm-bridge/middleware"
	"github.com/outreachworks/crm-bridge/models"
	"github.com/outreachworks/crm-bridge/repositories"
	"github.com/outreachworks/crm-bridge/repositories/postgres"
	"github.com/outreachworks/crm-bridge/services/contact"
	"github.com/outreachworks/crm-bridge/services/event"
	"github.com/outreachworks/crm-bridge/services/survey"
	"go.uber.org/zap"
)

// ContactRequestPipeline is the handler-facing surface of the contact request
// service; an interface so handler tests can stub it
type ContactRequestPipeline interface {
	Handle(ctx context.Context, account *models.Account, payload contact.Payload) (int, any)
}

// EventPipeline is the handler-facing surface of the event service
type EventPipeline interface {
	Handle(ctx context.Context, account *models.Account, payload event.Payload) (int, any)
	List(ctx context.Context, account *models.Account) (int, any)
}

// Dependencies holds all application dependencies. This is the central wiring
// point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger
	DB     *postgres.DB

	// Repositories
	Accounts        repositories.AccountRepository
	ContactRequests repositories.ContactRequestRepository
	Events          repositories.EventRepository

	// CRM access
	CRMClients crm.Factory
	OAuth      *crm.OAuth

	// Pipelines
	ContactRequestService ContactRequestPipeline
	EventService          EventPipeline

	// Middleware
	AccountMiddleware *middleware.AccountMiddleware
}

// NewDependencies creates and wires up all application dependencies. The
// database connection is supervised: transient connect failures retry a
// bounded number of times before an error makes it out of here.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	db, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	deps := &Dependencies{
		Config:          cfg,
		Logger:          logger,
		DB:              db,
		Accounts:        postgres.NewAccountRepository(db, logger),
		ContactRequests: postgres.NewContactRequestRepository(db, logger),
		Events:          postgres.NewEventRepository(db, logger),
	}

	deps.CRMClients = crm.NewHTTPFactory(crm.Config{
		Protocol: cfg.CRM.Protocol,
		Domain:   cfg.CRM.Domain,
		Timeout:  cfg.CRM.Timeout,
	}, logger)

	deps.OAuth = crm.NewOAuth(crm.OAuthConfig{
		Protocol:     cfg.CRM.Protocol,
		Domain:       cfg.CRM.Domain,
		ClientID:     cfg.CRM.ClientID,
		ClientSecret: cfg.CRM.ClientSecret,
		AppBaseURL:   cfg.CRM.AppBaseURL,
		Timeout:      cfg.CRM.Timeout,
	}, logger)

	recorder := survey.NewRecorder(deps.ContactRequests, survey.Settings{
		SurveyID:          cfg.CRM.SurveyID,
		CommentQuestionID: cfg.CRM.SurveyCommentQuestionID,
	}, logger)

	deps.ContactRequestService = contact.NewService(
		deps.ContactRequests,
		deps.CRMClients,
		contact.NewMatcher(logger),
		recorder,
		contact.Settings{
			CampaignTag:   cfg.CRM.CampaignTag,
			PointPersonID: cfg.CRM.PointPersonID,
		},
		logger,
	)

	deps.EventService = event.NewService(
		deps.Events,
		deps.CRMClients,
		event.Settings{CalendarID: cfg.CRM.CalendarID},
		logger,
	)

	deps.AccountMiddleware = middleware.NewAccountMiddleware(deps.Accounts, logger)

	logger.Info("all dependencies initialized")
	return deps, nil
}

// Close releases everything the dependencies hold open
func (d *Dependencies) Close() {
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

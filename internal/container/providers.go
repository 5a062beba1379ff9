package container

import (
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/dispatcher"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/port"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/service"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/config"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/email"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/repository"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/worker"
	"github.com/AymenZahed/pgsm-internship-management-sub002/pkg/database"
	"github.com/AymenZahed/pgsm-internship-management-sub002/pkg/utils"
	"go.uber.org/zap"
)

// ProvideDatabase opens the database connection.
func ProvideDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*database.DB, error) {
	return database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
}

// ProvideRepositories builds all repositories on one connection.
func ProvideRepositories(db *database.DB, logger *zap.Logger) *RepositoryBundle {
	return &RepositoryBundle{
		Offer:        repository.NewOfferRepository(db, logger),
		Application:  repository.NewApplicationRepository(db, logger),
		History:      repository.NewHistoryRepository(db, logger),
		Internship:   repository.NewInternshipRepository(db, logger),
		Attendance:   repository.NewAttendanceRepository(db, logger),
		Logbook:      repository.NewLogbookRepository(db, logger),
		Evaluation:   repository.NewEvaluationRepository(db, logger),
		Notification: repository.NewNotificationRepository(db, logger),
		Preference:   repository.NewPreferenceRepository(db, logger),
		Service:      repository.NewServiceRepository(db, logger),
	}
}

// ProvideDispatcher builds the event dispatcher.
func ProvideDispatcher(logger *zap.Logger) dispatcher.Dispatcher {
	return dispatcher.NewDispatcher(utils.NewKVLogger(logger))
}

// ServiceDeps carries the dependencies for building the service bundle.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Dispatcher dispatcher.Dispatcher
	Emails     port.EmailEnqueuer
	Logger     *zap.Logger
}

// ProvideServices builds all application services.
func ProvideServices(deps *ServiceDeps) *ServiceBundle {
	logger := utils.NewKVLogger(deps.Logger)
	repos := deps.Repos

	return &ServiceBundle{
		Offer: service.NewOfferService(repos.Offer, repos.Application, logger),
		Application: service.NewApplicationService(
			repos.Application,
			repos.Offer,
			repos.History,
			repos.Internship,
			deps.TxManager,
			deps.Dispatcher,
			logger,
		),
		Internship: service.NewInternshipService(
			repos.Internship,
			repos.Application,
			repos.Offer,
			deps.TxManager,
			logger,
		),
		Attendance: service.NewAttendanceService(
			repos.Attendance,
			repos.Internship,
			repos.Service,
			deps.TxManager,
			deps.Dispatcher,
			logger,
		),
		Logbook: service.NewLogbookService(
			repos.Logbook,
			repos.Internship,
			deps.Dispatcher,
			logger,
		),
		Evaluation: service.NewEvaluationService(
			repos.Evaluation,
			repos.Internship,
			repos.Service,
			deps.Dispatcher,
			logger,
		),
		Notification: service.NewNotificationService(
			repos.Notification,
			repos.Preference,
			deps.Emails,
			logger,
		),
	}
}

// WorkerDeps carries the dependencies for building the background workers.
type WorkerDeps struct {
	Internships port.InternshipRepository
	EmailCfg    *config.EmailConfig
	Scheduler   *config.SchedulerConfig
	Logger      *zap.Logger
}

// ProvideWorkers builds the email dispatcher and the status refresher.
func ProvideWorkers(deps *WorkerDeps) (*worker.EmailDispatcher, *worker.StatusRefresher) {
	sender := email.NewSender(email.Config{
		Enabled:  deps.EmailCfg.Enabled,
		Host:     deps.EmailCfg.Host,
		Port:     deps.EmailCfg.Port,
		Username: deps.EmailCfg.Username,
		Password: deps.EmailCfg.Password,
		From:     deps.EmailCfg.From,
	}, email.NullResolver(), deps.Logger)

	emailDispatcher := worker.NewEmailDispatcher(sender, deps.EmailCfg.QueueSize, deps.Logger)
	refresher := worker.NewStatusRefresher(deps.Internships, deps.Scheduler.RefreshInterval, deps.Logger)

	return emailDispatcher, refresher
}

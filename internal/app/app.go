package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/haeun-dev/manito/internal/config"
	"github.com/haeun-dev/manito/internal/domain/anonymity"
	"github.com/haeun-dev/manito/internal/domain/assignment"
	"github.com/haeun-dev/manito/internal/domain/cycle"
	"github.com/haeun-dev/manito/internal/domain/member"
	"github.com/haeun-dev/manito/internal/domain/mission"
	"github.com/haeun-dev/manito/internal/domain/pairing"
	"github.com/haeun-dev/manito/internal/infrastructure/account/dasom"
	cacherepo "github.com/haeun-dev/manito/internal/infrastructure/repository/cache"
	"github.com/haeun-dev/manito/internal/infrastructure/repository/memory"
	"github.com/haeun-dev/manito/internal/infrastructure/repository/postgres"
	"github.com/haeun-dev/manito/internal/interfaces/httpapi"
	basecache "github.com/haeun-dev/manito/internal/platform/cache"
	idgen "github.com/haeun-dev/manito/internal/platform/id"
	"github.com/haeun-dev/manito/internal/platform/logging"
	"github.com/haeun-dev/manito/internal/usecase"

	_ "github.com/lib/pq"
)

type repositories struct {
	directory   member.Directory
	pairings    pairing.Repository
	templates   mission.TemplateRepository
	quotas      mission.QuotaRepository
	assignments assignment.Repository
	snapshots   anonymity.Repository
}

// NewHTTPServer wires repositories, services and the HTTP router from
// config. The returned cleanup releases the database handle when the
// postgres driver is selected.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	calendar, err := cycle.NewCalendar(cfg.ServiceStartDate, cfg.Timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("build cycle calendar: %w", err)
	}

	repos, cleanup, err := buildRepositories(cfg, calendar)
	if err != nil {
		return nil, nil, err
	}

	if cfg.CacheEnabled {
		repos.templates = cacherepo.NewTemplateRepository(repos.templates, basecache.NewStore(cfg.CacheTTL))
	}

	dasomClient := dasom.NewClient(dasom.ClientConfig{
		BaseURL:         cfg.DasomBaseURL,
		IntrospectPath:  cfg.DasomIntrospectPath,
		AdminKey:        cfg.DasomAdminKey,
		Timeout:         cfg.DasomTimeout,
		CacheTTL:        cfg.DasomCacheTTL,
		CacheMaxEntries: cfg.DasomCacheMaxEntries,
		Logger:          logger,
	})
	// The postgres driver always pairs with dasom; config rejects the
	// combination where neither can serve account lookups.
	if cfg.DasomEnabled {
		repos.directory = dasomClient
	}

	missionSvc := usecase.NewMissionService(
		repos.directory,
		repos.pairings,
		repos.templates,
		repos.quotas,
		repos.assignments,
		calendar,
		idgen.NewRandomGenerator(),
		logger,
	)
	manitoSvc := usecase.NewManitoService(repos.directory, repos.pairings, calendar, logger)
	anonymitySvc := usecase.NewAnonymityService(repos.directory, repos.snapshots, calendar, logger)

	handler := httpapi.NewHandler(missionSvc, manitoSvc, anonymitySvc, logger)
	router := httpapi.NewRouter(handler, dasomClient, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func buildRepositories(cfg config.Config, calendar cycle.Calendar) (repositories, func() error, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openDB(cfg)
		if err != nil {
			return repositories{}, nil, err
		}
		return repositories{
			pairings:    postgres.NewPairingRepository(db),
			templates:   postgres.NewTemplateRepository(db),
			quotas:      postgres.NewQuotaRepository(db),
			assignments: postgres.NewAssignmentRepository(db),
			snapshots:   postgres.NewSnapshotRepository(db),
		}, db.Close, nil
	default:
		return seededMemoryRepositories(calendar), func() error { return nil }, nil
	}
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// seededMemoryRepositories backs the dev driver with the dasom-13 fixture
// so the API is usable without postgres or a pairing batch.
func seededMemoryRepositories(calendar cycle.Calendar) repositories {
	week := calendar.WeekOf(time.Now())

	directory := memory.NewDirectory()
	directory.AddGroup(memory.GroupIDDasom13)
	for _, userID := range memory.SeedMembers() {
		directory.AddUser(userID)
		directory.AddMember(memory.GroupIDDasom13, userID)
	}

	pairingRepo := memory.NewPairingRepository()
	for _, item := range memory.SeedPairings(week, time.Now()) {
		pairingRepo.Put(item)
	}
	templateRepo := memory.NewTemplateRepository()
	for _, item := range memory.SeedTemplates() {
		templateRepo.Put(item)
	}
	quotaRepo := memory.NewQuotaRepository()
	for _, item := range memory.SeedQuotas(week) {
		quotaRepo.Put(item)
	}

	return repositories{
		directory:   directory,
		pairings:    pairingRepo,
		templates:   templateRepo,
		quotas:      quotaRepo,
		assignments: memory.NewAssignmentRepository(),
		snapshots:   memory.NewSnapshotRepository(),
	}
}

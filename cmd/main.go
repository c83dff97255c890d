package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	addAdminNotesHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/add_admin_notes"
	cancelAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_appointment"
	completeAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/complete_appointment"
	confirmAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/confirm_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment"
	getAppointmentHistoryHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment_history"
	getAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_availability"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_available_slots"
	listAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_appointments"
	rescheduleAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/reschedule_appointment"
	updateAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_availability"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	userServiceClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/userservice"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	availabilityService "github.com/m04kA/SMC-AppointmentService/internal/service/availability"
	createAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	rescheduleAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/worker"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/keylock"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to TOML config")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from %s", *configPath)

	location, err := cfg.Scheduling.Location()
	if err != nil {
		log.Fatal("Invalid clinic timezone: %v", err)
	}

	// Метрики. *metrics.Metrics == nil безопасен: все методы становятся no-op
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Справочник пользователей (с кэшем ролей в Redis, если включен)
	var users userServiceClient.Directory = userServiceClient.NewClient(
		cfg.UserService.URL,
		time.Duration(cfg.UserService.Timeout)*time.Second,
		log,
	)
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is unavailable at %s, role cache will fall through: %v", cfg.Redis.Addr, err)
		}
		cancel()

		users = userServiceClient.NewCachedClient(
			users,
			userServiceClient.NewRedisRoleCache(redisClient, cfg.Redis.KeyPrefix),
			time.Duration(cfg.Redis.RoleCacheTTL)*time.Second,
			log,
		)
		log.Info("User role cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.RoleCacheTTL)
	}
	log.Info("UserService client initialized (url=%s, timeout=%ds)", cfg.UserService.URL, cfg.UserService.Timeout)

	// Репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	availabilityRepository := availabilityRepo.NewRepository(wrappedDB)

	// Блокировки по врачу и пациенту внутри процесса
	locker := keylock.New()

	// Сервисы
	appointmentSvc := appointmentsService.NewService(
		appointmentRepository,
		users,
		txMgr,
		metricsCollector,
		appointmentsService.Settings{
			Location:    location,
			NoShowGrace: cfg.Scheduling.NoShowGrace(),
		},
		log,
	)
	availabilitySvc := availabilityService.NewService(
		availabilityRepository,
		users,
		txMgr,
		log,
	)

	// Use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		availabilityRepository,
		users,
		txMgr,
		locker,
		metricsCollector,
		createAppointmentUC.Settings{
			LeadTime: cfg.Scheduling.LeadTime(),
			Location: location,
		},
		log,
	)
	rescheduleAppointmentUseCase := rescheduleAppointmentUC.NewUseCase(
		appointmentRepository,
		users,
		txMgr,
		locker,
		metricsCollector,
		rescheduleAppointmentUC.Settings{
			LeadTime: cfg.Scheduling.LeadTime(),
			Location: location,
		},
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		appointmentRepository,
		availabilityRepository,
		location,
		log,
	)

	// Handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, location, log)
	getAvailability := getAvailabilityHandler.NewHandler(availabilitySvc, log)
	updateAvailability := updateAvailabilityHandler.NewHandler(availabilitySvc, log)
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, location, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(rescheduleAppointmentUseCase, location, log)
	listAppointments := listAppointmentsHandler.NewHandler(appointmentSvc, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	getAppointmentHistory := getAppointmentHistoryHandler.NewHandler(appointmentSvc, log)
	confirmAppointment := confirmAppointmentHandler.NewHandler(appointmentSvc, log)
	completeAppointment := completeAppointmentHandler.NewHandler(appointmentSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	addAdminNotes := addAdminNotesHandler.NewHandler(appointmentSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			cfg.RateLimit.RequestsPerSecond,
			cfg.RateLimit.Burst,
			time.Duration(cfg.RateLimit.IdleTTL)*time.Second,
		)
		api.Use(limiter.Limit)
		log.Info("Rate limiter enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты врача на дату
	api.HandleFunc("/doctors/{doctorId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Расписание врача
	api.HandleFunc("/doctors/{doctorId}/availability", getAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Расписание ---
	protected.HandleFunc("/doctors/{doctorId}/availability", updateAvailability.Handle).Methods(http.MethodPut)

	// --- Записи ---
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}/history", getAppointmentHistory.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}/confirm", confirmAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{id}/complete", completeAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{id}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{id}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{id}/notes", addAdminNotes.Handle).Methods(http.MethodPatch)

	// Фоновая отметка неявок
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	if cfg.Scheduling.SweepIntervalSeconds > 0 {
		noShowWorker := worker.NewNoShowWorker(appointmentSvc, cfg.Scheduling.SweepInterval(), log)
		go func() {
			defer close(workerDone)
			noShowWorker.Run(workerCtx)
		}()
	} else {
		close(workerDone)
		log.Info("No-show sweep disabled")
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	stopWorker()
	<-workerDone

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bhms-data/internal/config"
	"bhms-data/internal/database"
	httpapi "bhms-data/internal/http"
	"bhms-data/internal/logger"
	"bhms-data/internal/repository"
	"bhms-data/internal/service"
	"bhms-data/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "bhms-data")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Redis（可选）：连不上时对账单缓存自动退化为直接查库
	var kv store.KV
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Warn("Redis unavailable, statement cache disabled", zap.Error(err))
		_ = redisClient.Close()
		redisClient = nil
	} else {
		kv = store.NewRedisKV(redisClient)
	}

	// 仓储：优先 Postgres；DB 未就绪时退化为内存实现支持本地联测
	var (
		db            *sql.DB
		roomsRepo     repository.RoomsRepository
		boardersRepo  repository.BoardersRepository
		ledgerRepo    repository.LedgerRepository
		guardiansRepo repository.GuardiansRepository
		bookingsRepo  repository.BookingsRepository
		staffRepo     repository.StaffRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for bhms-data")
		} else {
			log.Warn("DB enabled but connection failed, falling back to in-memory store", zap.Error(err))
		}
	}
	if db != nil {
		roomsRepo = repository.NewPostgresRoomsRepository(db)
		boardersRepo = repository.NewPostgresBoardersRepository(db)
		ledgerRepo = repository.NewPostgresLedgerRepository(db)
		guardiansRepo = repository.NewPostgresGuardiansRepository(db)
		bookingsRepo = repository.NewPostgresBookingsRepository(db)
		staffRepo = repository.NewPostgresStaffRepository(db)
	} else {
		mem := repository.NewMemoryStore()
		roomsRepo = mem
		boardersRepo = mem
		ledgerRepo = mem
		guardiansRepo = mem
		bookingsRepo = mem
		staffRepo = mem
	}

	receipts := service.NewReceiptClient(cfg.Receipt, log)
	if receipts != nil {
		log.Info("payment receipt webhook enabled", zap.String("url", cfg.Receipt.WebhookURL))
	}

	ledgerSvc := service.NewLedgerService(ledgerRepo, kv, receipts, log)
	boarderSvc := service.NewBoarderService(boardersRepo, guardiansRepo, ledgerSvc, log)
	roomSvc := service.NewRoomService(roomsRepo, log)
	bookingSvc := service.NewBookingService(bookingsRepo, roomsRepo, log)
	reportSvc := service.NewReportService(ledgerRepo, log)
	staffSvc := service.NewStaffService(staffRepo, log)

	router := httpapi.NewRouter(log)
	router.RegisterRoutes(
		httpapi.NewRoomHandler(roomSvc, log),
		httpapi.NewBoarderHandler(boarderSvc, log),
		httpapi.NewLedgerHandler(ledgerSvc, log),
		httpapi.NewBookingHandler(bookingSvc, log),
		httpapi.NewReportHandler(reportSvc, log),
		httpapi.NewStaffHandler(staffSvc, log),
	)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case <-errCh:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}

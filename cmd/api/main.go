package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/simha10/SAMS-sub000/internal/config"
	appHTTP "github.com/simha10/SAMS-sub000/internal/handler/http"
	"github.com/simha10/SAMS-sub000/internal/pkg/clock"
	"github.com/simha10/SAMS-sub000/internal/pkg/database"
	"github.com/simha10/SAMS-sub000/internal/pkg/email"
	"github.com/simha10/SAMS-sub000/internal/pkg/jwt"
	"github.com/simha10/SAMS-sub000/internal/pkg/trigger"
	"github.com/simha10/SAMS-sub000/internal/repository/postgresql"
	attendanceService "github.com/simha10/SAMS-sub000/internal/service/attendance"
	"github.com/simha10/SAMS-sub000/internal/service/jobs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Fatal("Invalid timezone: ", cfg.App.Timezone)
	}
	clk := clock.NewReal(loc)

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn, database.PoolOptions{
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	officeRepo := postgresql.NewOfficeRepository(db)
	userRepo := postgresql.NewUserRepository(db)
	jobRunRepo := postgresql.NewJobRunRepository(db)

	jwtService := jwt.NewService(cfg.JWT)
	notifier := email.NewNotifier(cfg.SMTP)

	triggerVerifier, err := trigger.NewVerifier(context.Background(), cfg.Trigger)
	if err != nil {
		log.Fatal("Failed to initialize trigger verifier: ", err)
	}

	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		officeRepo,
		clk,
		attendanceService.Windows{
			WindowStartMinute: cfg.Attendance.WindowStartMinute,
			WindowEndMinute:   cfg.Attendance.WindowEndMinute,
			OfficeStartMinute: cfg.Attendance.OfficeStartMinute,
			OfficeEndMinute:   cfg.Attendance.OfficeEndMinute,
		},
	)

	runner := jobs.NewRunner(db, jobRunRepo, clk)
	attendanceJobs := jobs.NewAttendanceJobs(runner, attendanceRepo, userRepo, cfg.Attendance.CutoffMinute)
	notifyJobs := jobs.NewNotifyJobs(runner, attendanceRepo, userRepo, notifier, cfg.SMTP.ReportRecipient)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	jobsHandler := appHTTP.NewJobsHandler(attendanceJobs, notifyJobs)

	router := appHTTP.NewRouter(cfg, jwtService, triggerVerifier, attendanceHandler, jobsHandler)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Println("Server starting on", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("Server error: ", err)
	}
}

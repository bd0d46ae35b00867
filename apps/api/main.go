package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"os"

	echoapi "github.com/alrowad/institute/apps/api/echo"
	"github.com/alrowad/institute/core"
	"github.com/alrowad/institute/core/payment"
	"github.com/alrowad/institute/core/settings"
	"github.com/alrowad/institute/core/student"
	"github.com/alrowad/institute/core/subject"
	"github.com/alrowad/institute/core/teacher"
	"github.com/alrowad/institute/core/user"
	"github.com/alrowad/institute/core/withdrawal"
	emailsvc "github.com/alrowad/institute/services/email"
	logsvc "github.com/alrowad/institute/services/logger"
	"github.com/alrowad/institute/storage/database"
	sqlxrepos "github.com/alrowad/institute/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.Conf

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()
	sdb := sqlxrepos.NewDB(db, conf.Database.Engine)

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	userRepo := sqlxrepos.NewUserRepository(sdb)
	studentRepo := sqlxrepos.NewStudentRepository(sdb)
	paymentRepo := sqlxrepos.NewPaymentRepository(sdb)
	subjectRepo := sqlxrepos.NewSubjectRepository(sdb)
	teacherRepo := sqlxrepos.NewTeacherRepository(sdb)
	withdrawalRepo := sqlxrepos.NewWithdrawalRepository(sdb)
	settingsRepo := sqlxrepos.NewSettingsRepository(sdb)

	settingsSvc := settings.NewService(settingsRepo, conf.Institute.DefaultSubjectCost)
	settingsSvc.RegisterPurge("students", studentRepo.PurgeStudents)
	settingsSvc.RegisterPurge("payments", paymentRepo.PurgePayments)
	settingsSvc.RegisterPurge("subjects", subjectRepo.PurgeSubjects)
	settingsSvc.RegisterPurge("teachers", teacherRepo.PurgeTeachers)
	settingsSvc.RegisterPurge("withdrawals", withdrawalRepo.PurgeWithdrawals)

	userSvc := user.NewService(userRepo, mailSvc)
	subjectSvc := subject.NewService(subjectRepo, settingsSvc)
	studentSvc := student.NewService(studentRepo, subjectSvc, logger)
	paymentSvc := payment.NewService(paymentRepo, studentSvc, mailSvc, settingsSvc, conf.DefaultFromEmail)
	teacherSvc := teacher.NewService(teacherRepo)
	withdrawalSvc := withdrawal.NewService(withdrawalRepo)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(&echoapi.Options{
		Address:       conf.Server.Address(),
		Logger:        logger,
		UserSvc:       userSvc,
		StudentSvc:    studentSvc,
		PaymentSvc:    paymentSvc,
		SubjectSvc:    subjectSvc,
		TeacherSvc:    teacherSvc,
		WithdrawalSvc: withdrawalSvc,
		SettingsSvc:   settingsSvc,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

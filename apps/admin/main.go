package main

import (
	"log"
	"os"

	"github.com/alrowad/institute/core"
	"github.com/alrowad/institute/core/settings"
	"github.com/alrowad/institute/storage/database"
	sqlxrepos "github.com/alrowad/institute/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.Conf

	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())
	sdb := sqlxrepos.NewDB(db, conf.Database.Engine)

	studentRepo := sqlxrepos.NewStudentRepository(sdb)
	paymentRepo := sqlxrepos.NewPaymentRepository(sdb)
	subjectRepo := sqlxrepos.NewSubjectRepository(sdb)
	teacherRepo := sqlxrepos.NewTeacherRepository(sdb)
	withdrawalRepo := sqlxrepos.NewWithdrawalRepository(sdb)

	settingsSvc := settings.NewService(sqlxrepos.NewSettingsRepository(sdb), conf.Institute.DefaultSubjectCost)
	settingsSvc.RegisterPurge("students", studentRepo.PurgeStudents)
	settingsSvc.RegisterPurge("payments", paymentRepo.PurgePayments)
	settingsSvc.RegisterPurge("subjects", subjectRepo.PurgeSubjects)
	settingsSvc.RegisterPurge("teachers", teacherRepo.PurgeTeachers)
	settingsSvc.RegisterPurge("withdrawals", withdrawalRepo.PurgeWithdrawals)

	cli := commandLine{
		db:          db,
		usrRepo:     sqlxrepos.NewUserRepository(sdb),
		settingsSvc: settingsSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

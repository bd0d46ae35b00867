package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/alrowad/institute/core"
	"github.com/alrowad/institute/core/user"
)

// RollbarLogger reports through Rollbar and mirrors every entry to the
// wrapped standard logger so local logs stay complete when reporting is
// disabled.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// report forwards the entry to Rollbar and the standard logger. A
// user.User among the args attributes the event to that person; only the
// first one is used, the rest are forwarded as extras.
func (l *RollbarLogger) report(level, msg string, args []interface{}) {
	extras := make([]interface{}, 0, len(args)+1)
	extras = append(extras, msg)
	attributed := false
	for _, arg := range args {
		if usr, ok := arg.(user.User); ok && !attributed {
			rollbar.SetPerson(usr.ID, usr.Username, usr.Email)
			attributed = true
			continue
		}
		extras = append(extras, arg)
	}
	if !attributed {
		rollbar.ClearPerson()
	}
	rollbar.Log(level, extras...)

	l.std.Println(msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) { l.report(rollbar.DEBUG, msg, args) }

func (l *RollbarLogger) Info(msg string, args ...interface{}) { l.report(rollbar.INFO, msg, args) }

func (l *RollbarLogger) Warn(msg string, args ...interface{}) { l.report(rollbar.WARN, msg, args) }

func (l *RollbarLogger) Error(msg string, args ...interface{}) { l.report(rollbar.ERR, msg, args) }

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(rollbar.CRIT, msg, args)
	l.std.Fatal(msg)
}

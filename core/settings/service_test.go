package settings_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/alrowad/institute/core"
	"github.com/alrowad/institute/core/settings"
	inmemdb "github.com/alrowad/institute/storage/database/inmem"
)

func newService(t *testing.T) *settings.Service {
	t.Helper()
	return settings.NewService(inmemdb.NewSettingsRepository(inmemdb.NewDB()), 300000)
}

func TestServiceGetDefaults(t *testing.T) {
	svc := newService(t)

	s, err := svc.Get()
	if err != nil {
		t.Fatalf("Get() failed, %v", err)
	}
	if s.DefaultSubjectCost != 300000 {
		t.Errorf("Get() default cost = %d, want 300000", s.DefaultSubjectCost)
	}
	if !s.PaymentNotifications {
		t.Error("Get() notifications must default to enabled")
	}
}

func TestServiceCodeRotation(t *testing.T) {
	svc := newService(t)

	if err := svc.Seed("s3cret"); err != nil {
		t.Fatalf("Seed() failed, %v", err)
	}
	if err := svc.CheckCode("s3cret"); err != nil {
		t.Errorf("CheckCode() failed, %v", err)
	}
	if err := svc.CheckCode("wrong"); !errors.Is(err, settings.ErrBadCode) {
		t.Errorf("CheckCode() error = %v, want %v", err, settings.ErrBadCode)
	}

	// rotating requires the current code
	_, err := svc.Update(settings.UpdateSettings{CurrentCode: "wrong", NewCode: "n3wc0de"})
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Update() error = %v, want ValidationError", err)
	}

	if _, err = svc.Update(settings.UpdateSettings{CurrentCode: "s3cret", NewCode: "n3wc0de"}); err != nil {
		t.Fatalf("Update() failed, %v", err)
	}
	if err = svc.CheckCode("n3wc0de"); err != nil {
		t.Errorf("CheckCode() failed after rotation, %v", err)
	}
	if err = svc.CheckCode("s3cret"); !errors.Is(err, settings.ErrBadCode) {
		t.Error("the old code must stop working after rotation")
	}
}

func TestServiceCheckCodeUnseeded(t *testing.T) {
	svc := newService(t)

	if err := svc.CheckCode("anything"); !errors.Is(err, settings.ErrBadCode) {
		t.Errorf("CheckCode() error = %v, want %v", err, settings.ErrBadCode)
	}
}

func TestServiceUpdatePrefs(t *testing.T) {
	svc := newService(t)

	off := false
	s, err := svc.Update(settings.UpdateSettings{DefaultSubjectCost: 250000, PaymentNotifications: &off})
	if err != nil {
		t.Fatalf("Update() failed, %v", err)
	}
	if s.DefaultSubjectCost != 250000 {
		t.Errorf("Update() cost = %d, want 250000", s.DefaultSubjectCost)
	}
	if svc.DefaultSubjectCost() != 250000 {
		t.Errorf("DefaultSubjectCost() = %d, want 250000", svc.DefaultSubjectCost())
	}
	if svc.PaymentNotificationsEnabled() {
		t.Error("PaymentNotificationsEnabled() must report the saved preference")
	}
}

func TestServicePurge(t *testing.T) {
	svc := newService(t)
	if err := svc.Seed("s3cret"); err != nil {
		t.Fatalf("Seed() failed, %v", err)
	}

	purged := make([]string, 0)
	svc.RegisterPurge("students", func() error { purged = append(purged, "students"); return nil })
	svc.RegisterPurge("payments", func() error { purged = append(purged, "payments"); return nil })

	if got, want := svc.PurgeTables(), []string{"payments", "students"}; !reflect.DeepEqual(got, want) {
		t.Errorf("PurgeTables() = %v, want %v", got, want)
	}

	if err := svc.Purge("students", "wrong"); err == nil {
		t.Error("Purge() with a bad code must fail")
	}
	if err := svc.Purge("nope", "s3cret"); err == nil {
		t.Error("Purge() of an unknown table must fail")
	}
	if err := svc.Purge("students", "s3cret"); err != nil {
		t.Fatalf("Purge() failed, %v", err)
	}
	if !reflect.DeepEqual(purged, []string{"students"}) {
		t.Errorf("purged = %v, want [students]", purged)
	}
}

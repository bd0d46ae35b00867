package subject_test

import (
	"errors"
	"testing"

	"github.com/alrowad/institute/core"
	"github.com/alrowad/institute/core/subject"
	inmemdb "github.com/alrowad/institute/storage/database/inmem"
)

type stubCoster struct{ cost int }

func (c stubCoster) DefaultSubjectCost() int { return c.cost }

func newService(t *testing.T) *subject.Service {
	t.Helper()
	repo := inmemdb.NewSubjectRepository(inmemdb.NewDB())
	return subject.NewService(repo, stubCoster{cost: 300000})
}

func TestServiceCreateDefaultCost(t *testing.T) {
	svc := newService(t)

	s, err := svc.Create(subject.NewSubject{Name: "Arabic", Teacher: "Mr. Jawad"})
	if err != nil {
		t.Fatalf("Create() failed, %v", err)
	}
	if s.Cost != 300000 {
		t.Errorf("Create() cost = %d, want the settings default 300000", s.Cost)
	}
}

func TestServiceUpdate(t *testing.T) {
	svc := newService(t)

	s, err := svc.Create(subject.NewSubject{Name: "English", Teacher: "Mrs. Rand", Cost: 400000})
	if err != nil {
		t.Fatalf("Create() failed, %v", err)
	}

	// fields omitted from the update keep their stored values
	updated, err := svc.Update(s.ID, subject.UpdateSubject{Cost: 450000})
	if err != nil {
		t.Fatalf("Update() failed, %v", err)
	}
	if updated.Cost != 450000 {
		t.Errorf("Update() cost = %d, want 450000", updated.Cost)
	}
	if updated.Name != s.Name || updated.Teacher != s.Teacher {
		t.Errorf("Update() cleared omitted fields: %+v", updated)
	}
	if !updated.CreatedAt.Equal(s.CreatedAt) {
		t.Error("Update() must preserve CreatedAt")
	}
}

func TestServiceUpdateTakenName(t *testing.T) {
	svc := newService(t)

	if _, err := svc.Create(subject.NewSubject{Name: "History", Teacher: "Mr. Faris", Cost: 250000}); err != nil {
		t.Fatalf("Create() failed, %v", err)
	}
	s, err := svc.Create(subject.NewSubject{Name: "Geography", Teacher: "Mr. Faris", Cost: 250000})
	if err != nil {
		t.Fatalf("Create() failed, %v", err)
	}

	_, err = svc.Update(s.ID, subject.UpdateSubject{Name: "History"})
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Update() error = %v, want ValidationError", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "name" {
		t.Errorf("Update() fields = %+v, want name", vErr.Fields)
	}
}

package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mediconnect/api/internal/domain/access"
	"github.com/mediconnect/api/internal/domain/identity"
)

// -- Mocks --

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*Record
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*Record)}
}

func (m *mockDoctorRepo) Create(_ context.Context, r *Record) error {
	r.ID = uuid.New()
	m.doctors[r.ID] = r
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	r, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *mockDoctorRepo) GetByIdentityID(_ context.Context, identityID string) (*Record, error) {
	for _, r := range m.doctors {
		if r.IdentityID == identityID {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockDoctorRepo) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*Record, error) {
	result := make(map[uuid.UUID]*Record)
	for _, id := range ids {
		if r, ok := m.doctors[id]; ok {
			result[id] = r
		}
	}
	return result, nil
}

func (m *mockDoctorRepo) List(_ context.Context, limit, offset int) ([]*Record, int, error) {
	var all []*Record
	for _, r := range m.doctors {
		all = append(all, r)
	}
	return all, len(all), nil
}

func (m *mockDoctorRepo) Update(_ context.Context, r *Record) error {
	if _, ok := m.doctors[r.ID]; !ok {
		return ErrNotFound
	}
	m.doctors[r.ID] = r
	return nil
}

type mockProfiles struct {
	profiles map[string]*identity.Profile
	getCalls int
}

func (m *mockProfiles) GetMap(_ context.Context, ids []string) (map[string]*identity.Profile, error) {
	m.getCalls++
	result := make(map[string]*identity.Profile)
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

type mockRoles struct {
	assigned map[string]access.Role
}

func (m *mockRoles) Assign(_ context.Context, identityID string, role access.Role) error {
	if m.assigned == nil {
		m.assigned = make(map[string]access.Role)
	}
	m.assigned[identityID] = role
	return nil
}

func newTestService(repo *mockDoctorRepo, profiles *mockProfiles, roles *mockRoles) *Service {
	return NewService(repo, profiles, roles, nil, zerolog.Nop())
}

func TestService_Directory_JoinsProfiles(t *testing.T) {
	repo := newMockDoctorRepo()
	_ = repo.Create(context.Background(), &Record{IdentityID: "doc-1", Specialization: "Cardiology"})
	_ = repo.Create(context.Background(), &Record{IdentityID: "doc-2", Specialization: "Dermatology"})

	profiles := &mockProfiles{profiles: map[string]*identity.Profile{
		"doc-1": {IdentityID: "doc-1", FullName: "Dr. Rao"},
	}}
	svc := newTestService(repo, profiles, &mockRoles{})

	entries, total, err := svc.Directory(context.Background(), 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(entries) != 2 {
		t.Fatalf("got %d entries (total %d), want 2", len(entries), total)
	}
	if profiles.getCalls != 1 {
		t.Errorf("profile fetch ran %d times, want 1 batched call", profiles.getCalls)
	}

	byIdentity := make(map[string]*DirectoryEntry)
	for _, e := range entries {
		byIdentity[e.IdentityID] = e
	}
	if byIdentity["doc-1"].Profile.FullName != "Dr. Rao" {
		t.Errorf("doc-1 profile = %+v", byIdentity["doc-1"].Profile)
	}
	if byIdentity["doc-2"].Profile.FullName != "Unknown" {
		t.Errorf("missing profile should be Unknown placeholder, got %+v", byIdentity["doc-2"].Profile)
	}
}

func TestService_Provision(t *testing.T) {
	repo := newMockDoctorRepo()
	roles := &mockRoles{}
	svc := newTestService(repo, &mockProfiles{}, roles)

	rec, err := svc.Provision(context.Background(), ProvisionInput{
		IdentityID:      "doc-9",
		Specialization:  "Neurology",
		ExperienceYears: 5,
		ConsultationFee: 500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID == uuid.Nil {
		t.Error("record was not assigned an ID")
	}
	if roles.assigned["doc-9"] != access.RoleDoctor {
		t.Errorf("doctor role not assigned: %+v", roles.assigned)
	}
}

func TestService_Provision_Validation(t *testing.T) {
	svc := newTestService(newMockDoctorRepo(), &mockProfiles{}, &mockRoles{})

	cases := []ProvisionInput{
		{Specialization: "Neurology"},                                          // missing identity
		{IdentityID: "x"},                                                      // missing specialization
		{IdentityID: "x", Specialization: "N", ExperienceYears: -1},            // negative years
		{IdentityID: "x", Specialization: "N", ConsultationFee: -10},           // negative fee
	}
	for i, in := range cases {
		if _, err := svc.Provision(context.Background(), in); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestService_Update_EditsDescriptiveFields(t *testing.T) {
	repo := newMockDoctorRepo()
	_ = repo.Create(context.Background(), &Record{IdentityID: "doc-1", Specialization: "Cardiology"})
	var id uuid.UUID
	for _, r := range repo.doctors {
		id = r.ID
	}
	svc := newTestService(repo, &mockProfiles{}, &mockRoles{})

	rec, err := svc.Update(context.Background(), id, UpdateInput{
		Specialization: "Oncology", ExperienceYears: 12, ConsultationFee: 900,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Specialization != "Oncology" {
		t.Errorf("specialization = %q", rec.Specialization)
	}
	if rec.IdentityID != "doc-1" {
		t.Errorf("identity linkage changed: %q", rec.IdentityID)
	}
}

func TestService_UpdateAs_OwnerAndAdmin(t *testing.T) {
	repo := newMockDoctorRepo()
	_ = repo.Create(context.Background(), &Record{IdentityID: "doc-1", Specialization: "Cardiology"})
	var id uuid.UUID
	for _, r := range repo.doctors {
		id = r.ID
	}
	svc := newTestService(repo, &mockProfiles{}, &mockRoles{})

	rec, err := svc.UpdateAs(context.Background(), "doc-1", access.RoleDoctor, id, UpdateInput{
		Specialization: "Oncology",
	})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if rec.Specialization != "Oncology" {
		t.Errorf("specialization = %q", rec.Specialization)
	}

	if _, err := svc.UpdateAs(context.Background(), "admin-1", access.RoleAdmin, id, UpdateInput{
		Specialization: "Neurology",
	}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestService_UpdateAs_OtherDoctorForbidden(t *testing.T) {
	repo := newMockDoctorRepo()
	_ = repo.Create(context.Background(), &Record{IdentityID: "doc-1", Specialization: "Cardiology"})
	var id uuid.UUID
	for _, r := range repo.doctors {
		id = r.ID
	}
	svc := newTestService(repo, &mockProfiles{}, &mockRoles{})

	if _, err := svc.UpdateAs(context.Background(), "doc-2", access.RoleDoctor, id, UpdateInput{
		Specialization: "Oncology",
	}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	rec, _ := repo.GetByID(context.Background(), id)
	if rec.Specialization != "Cardiology" {
		t.Errorf("forbidden update wrote through: %q", rec.Specialization)
	}
}

func TestService_Get_UnknownDoctor(t *testing.T) {
	svc := newTestService(newMockDoctorRepo(), &mockProfiles{}, &mockRoles{})

	if _, err := svc.Get(context.Background(), uuid.New()); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

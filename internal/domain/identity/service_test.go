package identity

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// -- Mock Repository --

type mockProfileRepo struct {
	profiles map[string]*Profile
	getCalls int
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*Profile)}
}

func (m *mockProfileRepo) GetByIdentityID(_ context.Context, id string) (*Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProfileRepo) GetByIdentityIDs(_ context.Context, ids []string) (map[string]*Profile, error) {
	m.getCalls++
	result := make(map[string]*Profile)
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (m *mockProfileRepo) Upsert(_ context.Context, p *Profile) error {
	cp := *p
	cp.UpdatedAt = time.Now()
	m.profiles[p.IdentityID] = &cp
	return nil
}

func TestService_Update(t *testing.T) {
	repo := newMockProfileRepo()
	svc := NewService(repo, zerolog.Nop())

	p, err := svc.Update(context.Background(), "user-1", UpdateInput{
		FullName: "Asha",
		Age:      34,
		Gender:   "female",
		Phone:    "9876543210",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.FullName != "Asha" || p.Age != 34 {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestService_Update_NegativeAge(t *testing.T) {
	svc := NewService(newMockProfileRepo(), zerolog.Nop())

	if _, err := svc.Update(context.Background(), "user-1", UpdateInput{Age: -1}); err == nil {
		t.Fatal("expected error for negative age")
	}
}

func TestService_SetContactDetails_CreatesProfile(t *testing.T) {
	repo := newMockProfileRepo()
	svc := NewService(repo, zerolog.Nop())

	err := svc.SetContactDetails(context.Background(), "user-1", ContactDetails{
		FullName: "Ravi", Age: 40, Gender: "male", Phone: "111",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.profiles["user-1"].FullName != "Ravi" {
		t.Errorf("profile not created: %+v", repo.profiles["user-1"])
	}
}

func TestService_SetContactDetails_PreservesAvatar(t *testing.T) {
	repo := newMockProfileRepo()
	repo.profiles["user-1"] = &Profile{
		IdentityID: "user-1", FullName: "Old Name", AvatarURL: "https://cdn/a.png",
	}
	svc := NewService(repo, zerolog.Nop())

	err := svc.SetContactDetails(context.Background(), "user-1", ContactDetails{
		FullName: "New Name", Age: 30, Gender: "female", Phone: "222",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := repo.profiles["user-1"]
	if got.FullName != "New Name" {
		t.Errorf("full name not updated: %q", got.FullName)
	}
	if got.AvatarURL != "https://cdn/a.png" {
		t.Errorf("avatar was clobbered: %q", got.AvatarURL)
	}
}

func TestService_GetMap_Dedupes(t *testing.T) {
	repo := newMockProfileRepo()
	repo.profiles["a"] = &Profile{IdentityID: "a", FullName: "A"}
	svc := NewService(repo, zerolog.Nop())

	got, err := svc.GetMap(context.Background(), []string{"a", "a", "", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got["a"] == nil {
		t.Errorf("unexpected result: %+v", got)
	}
	if repo.getCalls != 1 {
		t.Errorf("batched fetch ran %d times, want 1", repo.getCalls)
	}
}

func TestUnknownProfile(t *testing.T) {
	p := UnknownProfile("x")
	if p.FullName != "Unknown" || p.Gender != "Unknown" || p.Age != 0 || p.Phone != "" {
		t.Errorf("unexpected placeholder: %+v", p)
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"radius-admin/internal/audit"
	"radius-admin/internal/bucketing"
	"radius-admin/internal/config"
	"radius-admin/internal/hashing"
	"radius-admin/internal/models"
	"radius-admin/internal/repository/postgres"
)

type fakeSubscriberStore struct {
	creds   map[string]*models.Credential
	groups  map[string][]string
	entries map[string]int
}

func newFakeSubscriberStore() *fakeSubscriberStore {
	return &fakeSubscriberStore{
		creds:   make(map[string]*models.Credential),
		groups:  make(map[string][]string),
		entries: make(map[string]int),
	}
}

func (s *fakeSubscriberStore) Create(ctx context.Context, cred *models.Credential) error {
	if _, ok := s.creds[cred.Username]; ok {
		return postgres.ErrSubscriberExists
	}
	copied := *cred
	s.creds[cred.Username] = &copied
	return nil
}

func (s *fakeSubscriberStore) List(ctx context.Context) ([]models.Subscriber, error) {
	var out []models.Subscriber
	for username := range s.creds {
		out = append(out, models.Subscriber{Username: username, EntryCount: s.entryCount(username)})
	}
	return out, nil
}

func (s *fakeSubscriberStore) entryCount(username string) int {
	if n, ok := s.entries[username]; ok {
		return n
	}
	if _, ok := s.creds[username]; ok {
		return 1
	}
	return 0
}

func (s *fakeSubscriberStore) CountEntries(ctx context.Context, username string) (int, error) {
	return s.entryCount(username), nil
}

func (s *fakeSubscriberStore) GetCredential(ctx context.Context, username string) (*models.Credential, error) {
	cred, ok := s.creds[username]
	if !ok {
		return nil, postgres.ErrSubscriberNotFound
	}
	copied := *cred
	return &copied, nil
}

func (s *fakeSubscriberStore) Groups(ctx context.Context, username string) ([]string, error) {
	return s.groups[username], nil
}

func (s *fakeSubscriberStore) UpdatePassword(ctx context.Context, username string, kind models.CredentialKind, value string) error {
	cred, ok := s.creds[username]
	if !ok {
		return postgres.ErrSubscriberNotFound
	}
	cred.Attribute = kind
	cred.Value = value
	return nil
}

func (s *fakeSubscriberStore) Delete(ctx context.Context, username string) error {
	if _, ok := s.creds[username]; !ok {
		return postgres.ErrSubscriberNotFound
	}
	delete(s.creds, username)
	delete(s.groups, username)
	return nil
}

func (s *fakeSubscriberStore) CountSubscribers(ctx context.Context) (int, error) {
	return len(s.creds), nil
}

func (s *fakeSubscriberStore) CountGroups(ctx context.Context) (int, error) {
	seen := map[string]bool{}
	for _, groups := range s.groups {
		for _, g := range groups {
			seen[g] = true
		}
	}
	return len(seen), nil
}

func newSubscriberFixture() (*SubscriberService, *fakeSubscriberStore, *memorySink) {
	store := newFakeSubscriberStore()
	sink := &memorySink{}
	recorder := audit.NewRecorder(bucketing.NewManager(&config.Config{
		Bucketing: config.BucketingConfig{EventBuckets: 16},
	}), sink)
	return NewSubscriberService(store, recorder), store, sink
}

func TestCreateSubscriberCleartext(t *testing.T) {
	svc, store, sink := newSubscriberFixture()

	req := CreateSubscriberRequest{
		Username:        "jdoe",
		Password:        "Str0ng!pass",
		PasswordConfirm: "Str0ng!pass",
	}
	if err := svc.Create(context.Background(), req, "alice", "192.0.2.10"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cred := store.creds["jdoe"]
	if cred == nil {
		t.Fatal("credential not stored")
	}
	if cred.Attribute != models.CredentialCleartext {
		t.Fatalf("attribute = %s, want Cleartext-Password", cred.Attribute)
	}
	if cred.Value != "Str0ng!pass" {
		t.Fatal("cleartext value mismatch")
	}

	if len(sink.records) != 1 || sink.records[0].Action != models.ActionUserCreated {
		t.Fatalf("expected one user_created audit record, got %v", sink.records)
	}
	if strings.Contains(sink.records[0].Details, "Str0ng!pass") {
		t.Fatal("plaintext password leaked into the audit trail")
	}
}

func TestCreateSubscriberNTHash(t *testing.T) {
	svc, store, _ := newSubscriberFixture()

	req := CreateSubscriberRequest{
		Username:        "jdoe",
		Password:        "Str0ng!pass",
		PasswordConfirm: "Str0ng!pass",
		UseNTHash:       true,
	}
	if err := svc.Create(context.Background(), req, "alice", "192.0.2.10"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cred := store.creds["jdoe"]
	if cred.Attribute != models.CredentialNTHash {
		t.Fatalf("attribute = %s, want NT-Password", cred.Attribute)
	}
	if want := hashing.NTPasswordHash("Str0ng!pass"); cred.Value != want {
		t.Fatalf("stored value = %s, want NT hash %s", cred.Value, want)
	}
}

func TestCreateSubscriberValidation(t *testing.T) {
	svc, _, _ := newSubscriberFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateSubscriberRequest
	}{
		{"short username", CreateSubscriberRequest{Username: "jd", Password: "Str0ng!pass", PasswordConfirm: "Str0ng!pass"}},
		{"illegal characters", CreateSubscriberRequest{Username: "j doe;", Password: "Str0ng!pass", PasswordConfirm: "Str0ng!pass"}},
		{"weak password", CreateSubscriberRequest{Username: "jdoe", Password: "password", PasswordConfirm: "password"}},
		{"no digit", CreateSubscriberRequest{Username: "jdoe", Password: "Password!", PasswordConfirm: "Password!"}},
		{"confirmation mismatch", CreateSubscriberRequest{Username: "jdoe", Password: "Str0ng!pass", PasswordConfirm: "Other1!pass"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.Create(ctx, tc.req, "alice", "192.0.2.10"); !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("got %v, want ErrValidationFailed", err)
			}
		})
	}
}

func TestCreateSubscriberDuplicate(t *testing.T) {
	svc, _, _ := newSubscriberFixture()
	ctx := context.Background()

	req := CreateSubscriberRequest{
		Username:        "jdoe",
		Password:        "Str0ng!pass",
		PasswordConfirm: "Str0ng!pass",
	}
	if err := svc.Create(ctx, req, "alice", "192.0.2.10"); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if err := svc.Create(ctx, req, "alice", "192.0.2.10"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate Create: got %v, want ErrAlreadyExists", err)
	}
}

func TestGetSubscriberEntryCount(t *testing.T) {
	svc, store, _ := newSubscriberFixture()
	ctx := context.Background()

	create := CreateSubscriberRequest{
		Username:        "jdoe",
		Password:        "Str0ng!pass",
		PasswordConfirm: "Str0ng!pass",
	}
	if err := svc.Create(ctx, create, "alice", "192.0.2.10"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	store.entries["jdoe"] = 3
	store.groups["jdoe"] = []string{"gold", "vpn"}

	sub, err := svc.Get(ctx, "jdoe")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sub.EntryCount != 3 {
		t.Fatalf("EntryCount = %d, want 3", sub.EntryCount)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].EntryCount != sub.EntryCount {
		t.Fatalf("List reports %d entries, Get reports %d", list[0].EntryCount, sub.EntryCount)
	}
}

func TestChangePassword(t *testing.T) {
	svc, store, _ := newSubscriberFixture()
	ctx := context.Background()

	create := CreateSubscriberRequest{
		Username:        "jdoe",
		Password:        "Str0ng!pass",
		PasswordConfirm: "Str0ng!pass",
	}
	if err := svc.Create(ctx, create, "alice", "192.0.2.10"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	wrong := ChangePasswordRequest{
		Username:           "jdoe",
		CurrentPassword:    "not-it",
		NewPassword:        "N3w!passwd",
		NewPasswordConfirm: "N3w!passwd",
	}
	if err := svc.ChangePassword(ctx, wrong, "alice", "192.0.2.10"); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("wrong current password: got %v, want ErrValidationFailed", err)
	}

	right := ChangePasswordRequest{
		Username:           "jdoe",
		CurrentPassword:    "Str0ng!pass",
		NewPassword:        "N3w!passwd",
		NewPasswordConfirm: "N3w!passwd",
		UseNTHash:          true,
	}
	if err := svc.ChangePassword(ctx, right, "alice", "192.0.2.10"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	cred := store.creds["jdoe"]
	if cred.Attribute != models.CredentialNTHash {
		t.Fatalf("attribute = %s, want NT-Password after switch", cred.Attribute)
	}
	if want := hashing.NTPasswordHash("N3w!passwd"); cred.Value != want {
		t.Fatal("stored value is not the NT hash of the new password")
	}
}

func TestDeleteSubscriber(t *testing.T) {
	svc, store, sink := newSubscriberFixture()
	ctx := context.Background()

	if err := svc.Delete(ctx, "ghost", "alice", "192.0.2.10"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleting unknown subscriber: got %v, want ErrNotFound", err)
	}

	create := CreateSubscriberRequest{
		Username:        "jdoe",
		Password:        "Str0ng!pass",
		PasswordConfirm: "Str0ng!pass",
	}
	if err := svc.Create(ctx, create, "alice", "192.0.2.10"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, "jdoe", "alice", "192.0.2.10"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.creds["jdoe"]; ok {
		t.Fatal("credential still present after delete")
	}

	last := sink.records[len(sink.records)-1]
	if last.Action != models.ActionUserDeleted || last.Target != "jdoe" {
		t.Fatalf("last audit record = %s/%s, want user_deleted/jdoe", last.Action, last.Target)
	}
}

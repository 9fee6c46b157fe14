package domain

import (
	"testing"
	"time"
)

func TestProfileUpdateApply(t *testing.T) {
	base := Profile{
		ID:                     "p1",
		Email:                  "old@example.com",
		FullName:               "Old Name",
		EmailConfirmationToken: "tok",
	}
	email := "new@example.com"
	confirmed := true
	cleared := ""
	bday := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)

	got := ProfileUpdate{
		Email:                  &email,
		IsEmailConfirmed:       &confirmed,
		EmailConfirmationToken: &cleared,
		Birthday:               &bday,
	}.Apply(base)

	if got.Email != email || !got.IsEmailConfirmed || got.EmailConfirmationToken != "" || !got.Birthday.Equal(bday) {
		t.Fatalf("unexpected profile after apply: %+v", got)
	}
	if got.FullName != "Old Name" {
		t.Fatalf("expected untouched full name, got %q", got.FullName)
	}
	if base.Email != "old@example.com" || base.EmailConfirmationToken != "tok" {
		t.Fatalf("apply must not mutate the source profile")
	}
}

func TestProfileUpdateEmpty(t *testing.T) {
	if !(ProfileUpdate{}).Empty() {
		t.Fatalf("expected zero update to be empty")
	}
	deactivated := true
	if (ProfileUpdate{IsDeactivated: &deactivated}).Empty() {
		t.Fatalf("expected update with a field to be non-empty")
	}
}

func TestSucceeded(t *testing.T) {
	tests := []struct {
		name    string
		reasons []FailureReason
		want    bool
	}{
		{name: "none only", reasons: []FailureReason{FailureNone}, want: true},
		{name: "empty", reasons: nil, want: false},
		{name: "duplicate", reasons: []FailureReason{FailureDuplicateEmail}, want: false},
		{name: "none plus other", reasons: []FailureReason{FailureNone, FailureUnknown}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Succeeded(tt.reasons); got != tt.want {
				t.Fatalf("expected %t got %t", tt.want, got)
			}
		})
	}
}

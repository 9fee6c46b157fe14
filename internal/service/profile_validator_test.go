package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"profile-auth/internal/domain"
)

func validInput() NewProfileInput {
	return NewProfileInput{
		Email:    "new@example.com",
		Password: "P@ssw0rd",
		FullName: "New User",
		Birthday: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestProfileValidator_Evaluate(t *testing.T) {
	v := ProfileValidator{}

	cases := []struct {
		name     string
		input    func() NewProfileInput
		existing *domain.Profile
		want     []domain.FailureReason
	}{
		{
			name:  "new email",
			input: validInput,
			want:  []domain.FailureReason{domain.FailureNone},
		},
		{
			name:     "confirmed active duplicate",
			input:    validInput,
			existing: &domain.Profile{IsEmailConfirmed: true},
			want:     []domain.FailureReason{domain.FailureDuplicateEmail},
		},
		{
			name:     "unconfirmed duplicate",
			input:    validInput,
			existing: &domain.Profile{},
			want:     []domain.FailureReason{domain.FailureDuplicateEmail, domain.FailureUnconfirmedEmail},
		},
		{
			name:     "inactive confirmed duplicate",
			input:    validInput,
			existing: &domain.Profile{IsEmailConfirmed: true, IsDeactivated: true},
			want:     []domain.FailureReason{domain.FailureDuplicateEmail, domain.FailureInactiveProfile},
		},
		{
			name:     "inactive unconfirmed duplicate",
			input:    validInput,
			existing: &domain.Profile{IsDeactivated: true},
			want: []domain.FailureReason{
				domain.FailureDuplicateEmail,
				domain.FailureInactiveProfile,
				domain.FailureUnconfirmedEmail,
			},
		},
		{
			name: "missing field wins over duplicate",
			input: func() NewProfileInput {
				in := validInput()
				in.FullName = "   "
				return in
			},
			existing: &domain.Profile{IsDeactivated: true},
			want:     []domain.FailureReason{domain.FailureMissingRequired},
		},
		{
			name: "missing birthday",
			input: func() NewProfileInput {
				in := validInput()
				in.Birthday = time.Time{}
				return in
			},
			want: []domain.FailureReason{domain.FailureMissingRequired},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, v.Evaluate(tc.input(), tc.existing))
		})
	}
}

func TestProfileValidator_RequiredErrors(t *testing.T) {
	v := ProfileValidator{}
	assert.NoError(t, v.RequiredErrors(validInput()))

	in := validInput()
	in.Email = ""
	in.Password = ""
	assert.Error(t, v.RequiredErrors(in))
}

func TestProfileValidator_UpdateErrors(t *testing.T) {
	v := ProfileValidator{}
	blank := "  "
	name := "Someone"
	zero := time.Time{}

	assert.NoError(t, v.UpdateErrors(UpdateProfileInput{}))
	assert.NoError(t, v.UpdateErrors(UpdateProfileInput{FullName: &name}))
	assert.Error(t, v.UpdateErrors(UpdateProfileInput{Email: &blank}))
	assert.Error(t, v.UpdateErrors(UpdateProfileInput{Birthday: &zero}))
}

func TestProfileValidator_PasswordByteLimit(t *testing.T) {
	v := ProfileValidator{}

	in := validInput()
	in.Password = strings.Repeat("a", 72)
	assert.NoError(t, v.RequiredErrors(in))

	in.Password = strings.Repeat("a", 80)
	assert.Error(t, v.RequiredErrors(in))
	assert.Equal(t, []domain.FailureReason{domain.FailureMissingRequired}, v.Evaluate(in, nil))

	// 36 runes de 3 bytes: 108 bytes.
	in.Password = strings.Repeat("€", 36)
	assert.Error(t, v.RequiredErrors(in))

	long := strings.Repeat("a", 80)
	assert.Error(t, v.UpdateErrors(UpdateProfileInput{Password: &long}))
}

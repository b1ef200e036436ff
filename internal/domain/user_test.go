package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"9876543210":       "+919876543210",
		"+91 98765 43210":  "+919876543210",
		"(987) 654-3210":   "+919876543210",
		"919876543210":     "+919876543210",
		"+1 (555) 0100200": "+9115550100200",
		"":                 "",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got := NormalizePhone(in)
			assert.Equal(t, want, got)
			assert.Equal(t, got, NormalizePhone(got), "normalization must be idempotent")
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
}

func TestRegistrationParamsValidate(t *testing.T) {
	valid := RegistrationParams{
		Username:  "Striker_9",
		Email:     "Player@Example.com",
		Phone:     "9876543210",
		Password:  "s3cretpass",
		FirstName: "Sunil",
		UserType:  UserTypePlayer,
	}

	t.Run("valid", func(t *testing.T) {
		p := valid.Normalize()
		assert.Equal(t, "striker_9", p.Username)
		assert.Equal(t, "player@example.com", p.Email)
		assert.Equal(t, "+919876543210", p.Phone)
		assert.False(t, p.Validate(valid.Phone).HasErrors())
	})

	tests := []struct {
		name   string
		mutate func(p *RegistrationParams)
		field  string
	}{
		{"reserved username", func(p *RegistrationParams) { p.Username = "Admin" }, "username"},
		{"short username", func(p *RegistrationParams) { p.Username = "abc" }, "username"},
		{"long username", func(p *RegistrationParams) { p.Username = "abcdefghijklm" }, "username"},
		{"bad username chars", func(p *RegistrationParams) { p.Username = "bad.name" }, "username"},
		{"bad email", func(p *RegistrationParams) { p.Email = "not-an-email" }, "email"},
		{"blank phone", func(p *RegistrationParams) { p.Phone = "" }, "phone"},
		{"letters in phone", func(p *RegistrationParams) { p.Phone = "98765abc10" }, "phone"},
		{"short phone", func(p *RegistrationParams) { p.Phone = "12345" }, "phone"},
		{"short password", func(p *RegistrationParams) { p.Password = "short" }, "password"},
		{"password over bcrypt limit", func(p *RegistrationParams) { p.Password = strings.Repeat("a", 100) }, "password"},
		{"blank first name", func(p *RegistrationParams) { p.FirstName = "  " }, "first_name"},
		{"unknown user type", func(p *RegistrationParams) { p.UserType = "fan" }, "user_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := valid
			tt.mutate(&raw)
			verr := raw.Normalize().Validate(raw.Phone)
			require.True(t, verr.HasErrors())
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestUserIsVerified(t *testing.T) {
	u := &User{ID: 7, Email: "a@b.com", Phone: "+919876543210"}

	assert.False(t, u.IsVerified(nil, ContactEmail), "no contact means unverified")

	contacts := []UserContact{
		{UserID: 7, ContactType: ContactEmail, Value: "a@b.com", Verified: true},
		{UserID: 7, ContactType: ContactPhone, Value: "+919876543210", Verified: false},
	}
	assert.True(t, u.IsVerified(contacts, ContactEmail))
	assert.False(t, u.IsVerified(contacts, ContactPhone))

	u.Email = "new@b.com"
	assert.False(t, u.IsVerified(contacts, ContactEmail), "a changed address needs a new verification")
}

func TestUserPassword(t *testing.T) {
	u := &User{}
	require.Error(t, u.HashPassword("short"))
	require.NoError(t, u.HashPassword("longenough"))
	assert.NotEqual(t, "longenough", u.Password)
	assert.NoError(t, u.ValidatePassword("longenough"))
	assert.Error(t, u.ValidatePassword("wrong-password"))
}

func TestMaskPII(t *testing.T) {
	assert.Equal(t, "+919****", MaskPII("+919876543210"))
	assert.Equal(t, "ab****", MaskPII("ab"))
}

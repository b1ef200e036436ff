package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func rawFields(t *testing.T, v map[string]any) map[string]json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestNewProfileForUser(t *testing.T) {
	for _, ut := range []UserType{UserTypePlayer, UserTypeCoach, UserTypeClub} {
		t.Run(string(ut), func(t *testing.T) {
			u := &User{ID: 3, FirstName: "Mohun", LastName: "Bagan", UserType: ut}
			p, err := NewProfileForUser(u)
			require.NoError(t, err)
			assert.Equal(t, ProfileType(ut), p.Type)
			assert.Equal(t, ProfileType(ut), p.Variant().ProfileType())
			assert.Equal(t, uint(3), p.UserID)
			assert.Equal(t, "Mohun Bagan", p.DisplayName)
			assert.Equal(t, DefaultCountry, p.LocationCountry)
			assert.Equal(t, "public", p.PrivacySettings.ProfileVisibility)
			assert.NoError(t, p.Validate(profileNow))
		})
	}

	club, _ := NewProfileForUser(&User{FirstName: "Kerala", LastName: "Blasters", UserType: UserTypeClub})
	assert.Equal(t, "Kerala Blasters", club.Club.ClubName)

	coach, _ := NewProfileForUser(&User{FirstName: "Igor", UserType: UserTypeCoach})
	assert.Equal(t, "INR", coach.Coach.Currency)

	_, err := NewProfileForUser(&User{FirstName: "X", UserType: "fan"})
	assert.Error(t, err)
}

func TestProfileApplyWhitelist(t *testing.T) {
	p, err := NewProfileForUser(&User{ID: 1, FirstName: "Sunil", UserType: UserTypePlayer})
	require.NoError(t, err)

	err = p.Apply(rawFields(t, map[string]any{
		"bio":            "Forward",
		"height_cm":      172.5,
		"preferred_foot": "right",
		"hourly_rate":    500, // coach field, dropped
		"club_name":      "Nope",
		"type":           "coach",
		"user_id":        99,
		"achievement_entries": []map[string]any{
			{"name": "Golden Boot", "year": 2019},
		},
	}), profileNow)
	require.NoError(t, err)

	assert.Equal(t, "Forward", p.Bio)
	require.NotNil(t, p.Player.HeightCm)
	assert.Equal(t, 172.5, *p.Player.HeightCm)
	assert.Equal(t, "right", p.Player.PreferredFoot)
	assert.Nil(t, p.Coach.HourlyRate)
	assert.Empty(t, p.Club.ClubName)
	assert.Equal(t, ProfileTypePlayer, p.Type)
	assert.Equal(t, uint(1), p.UserID)
	require.Len(t, p.Player.AchievementEntries, 1)
	assert.Equal(t, "Golden Boot", p.Player.AchievementEntries[0].Name)
}

func TestProfileValidation(t *testing.T) {
	tests := []struct {
		name     string
		userType UserType
		fields   map[string]any
		field    string
	}{
		{"bio too long", UserTypePlayer, map[string]any{"bio": string(make([]byte, BioMaxLength+1))}, "bio"},
		{"bad gender", UserTypePlayer, map[string]any{"gender": "robot"}, "gender"},
		{"future birth date", UserTypePlayer, map[string]any{"date_of_birth": "2030-01-01"}, "date_of_birth"},
		{"bad website", UserTypeCoach, map[string]any{"website_url": "ftp://example.com"}, "website_url"},
		{"height out of range", UserTypePlayer, map[string]any{"height_cm": 300}, "height_cm"},
		{"entry without name", UserTypePlayer, map[string]any{"training_camp_entries": []map[string]any{{"year": 2010}}}, "training_camp_entries"},
		{"entry year out of range", UserTypePlayer, map[string]any{"achievement_entries": []map[string]any{{"name": "Cup", "year": 1899}}}, "achievement_entries"},
		{"negative experience", UserTypeCoach, map[string]any{"experience_years": -1}, "experience_years"},
		{"zero hourly rate", UserTypeCoach, map[string]any{"hourly_rate": 0}, "hourly_rate"},
		{"bad currency", UserTypeCoach, map[string]any{"currency": "GBP"}, "currency"},
		{"blank club name", UserTypeClub, map[string]any{"club_name": " "}, "club_name"},
		{"club founded in future", UserTypeClub, map[string]any{"establishment_year": 2026}, "establishment_year"},
		{"club founded too early", UserTypeClub, map[string]any{"establishment_year": 1800}, "establishment_year"},
		{"wrong json shape", UserTypePlayer, map[string]any{"key_strengths": "speed"}, "key_strengths"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProfileForUser(&User{ID: 1, FirstName: "A", UserType: tt.userType})
			require.NoError(t, err)
			err = p.Apply(rawFields(t, tt.fields), profileNow)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestProfileEntriesLimit(t *testing.T) {
	p, _ := NewProfileForUser(&User{ID: 1, FirstName: "A", UserType: UserTypePlayer})
	entries := make([]map[string]any, EntryMaxItems+1)
	for i := range entries {
		entries[i] = map[string]any{"name": "entry"}
	}
	err := p.Apply(rawFields(t, map[string]any{"achievement_entries": entries}), profileNow)
	assert.Error(t, err)

	err = p.Apply(rawFields(t, map[string]any{"achievement_entries": entries[:EntryMaxItems]}), profileNow)
	assert.NoError(t, err)
}

func TestCompletionPercentage(t *testing.T) {
	p, _ := NewProfileForUser(&User{ID: 1, FirstName: "A", UserType: UserTypePlayer})
	// first_name only: 1 of 9
	assert.Equal(t, 11, p.CompletionPercentage(false))

	require.NoError(t, p.Apply(rawFields(t, map[string]any{
		"bio":            "b",
		"date_of_birth":  "2000-01-01",
		"location_city":  "Kochi",
		"location_state": "Kerala",
		"height_cm":      170,
		"weight_kg":      65,
		"availability":   "available",
	}), profileNow))
	assert.Equal(t, 89, p.CompletionPercentage(false))
	assert.Equal(t, 100, p.CompletionPercentage(true))

	club, _ := NewProfileForUser(&User{ID: 2, FirstName: "Club", UserType: UserTypeClub})
	// first_name and club_name: 2 of 9
	assert.Equal(t, 22, club.CompletionPercentage(false))
}

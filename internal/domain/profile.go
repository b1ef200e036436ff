// File: internal/domain/profile.go
package domain

import (
	"encoding/json"
	"math"
	"net/mail"
	"net/url"
	"strings"
	"time"
)

// ProfileType is the discriminator of the profile table. It always equals
// the owning user's UserType and never changes after creation.
type ProfileType string

const (
	ProfileTypePlayer ProfileType = "player"
	ProfileTypeCoach  ProfileType = "coach"
	ProfileTypeClub   ProfileType = "club"
)

const (
	BioMaxLength       = 5000
	EntryMaxItems      = 100
	EntryStringMax     = 255
	EntryYearMin       = 1900
	EntryYearMax       = 2100
	ClubNameMaxLength  = 200
	DefaultCountry     = "India"
	DefaultCurrency    = "INR"
	dateOfBirthLayout  = "2006-01-02"
	minEstablishedYear = 1800
)

var (
	genders         = []string{"male", "female", "other", "prefer_not_to_say"}
	preferredFeet   = []string{"left", "right", "both"}
	playingStatuses = []string{"amateur", "semi_professional", "professional"}
	availabilities  = []string{"available", "busy", "unavailable"}
	currencies      = []string{"INR", "USD", "EUR"}
	clubTypes       = []string{"academy", "club", "training_center", "school"}
	visibilities    = []string{"public", "connections", "private"}
	messagePerms    = []string{"everyone", "connections", "nobody"}
)

// ProfileEntry is one structured item of an achievements, education or
// training camp list.
type ProfileEntry struct {
	Name        string `json:"name"`
	Year        *int   `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
}

type FitnessTest struct {
	Name     string `json:"name"`
	Result   string `json:"result,omitempty"`
	TestedOn string `json:"tested_on,omitempty"`
}

type PrivacySettings struct {
	ProfileVisibility  string `json:"profile_visibility"`
	MessagePermissions string `json:"message_permissions"`
	ShowEmail          bool   `json:"show_email"`
	ShowPhone          bool   `json:"show_phone"`
	ShowLocation       bool   `json:"show_location"`
}

func DefaultPrivacySettings() PrivacySettings {
	return PrivacySettings{
		ProfileVisibility:  "public",
		MessagePermissions: "connections",
		ShowLocation:       true,
	}
}

// Variant is the closed set of profile payloads: *PlayerFields,
// *CoachFields and *ClubFields.
type Variant interface {
	ProfileType() ProfileType
	permitted() map[string]any
	validate(verr *ValidationError, now time.Time)
	completionFields() []bool
}

type PlayerFields struct {
	HeightCm                 *float64       `json:"height_cm"`
	WeightKg                 *float64       `json:"weight_kg"`
	PreferredFoot            string         `json:"preferred_foot" gorm:"size:10"`
	PlayingStatus            string         `json:"playing_status" gorm:"size:30"`
	Availability             string         `json:"availability" gorm:"size:20"`
	AchievementEntries       []ProfileEntry `json:"achievement_entries" gorm:"serializer:json;type:text"`
	AcademicEducationEntries []ProfileEntry `json:"academic_education_entries" gorm:"serializer:json;type:text"`
	TrainingCampEntries      []ProfileEntry `json:"training_camp_entries" gorm:"serializer:json;type:text"`
	KeyStrengths             []string       `json:"key_strengths" gorm:"serializer:json;type:text"`
	FitnessTests             []FitnessTest  `json:"fitness_tests" gorm:"serializer:json;type:text"`
}

type CoachFields struct {
	ExperienceYears    *int           `json:"experience_years"`
	HourlyRate         *float64       `json:"hourly_rate"`
	Currency           string         `json:"currency" gorm:"size:3"`
	Certifications     []string       `json:"certifications" gorm:"serializer:json;type:text"`
	CoachingPhilosophy string         `json:"coaching_philosophy" gorm:"type:text"`
	AvailableForHire   bool           `json:"available_for_hire"`
	CoachingHistory    []ProfileEntry `json:"coaching_history" gorm:"serializer:json;type:text"`
}

type ClubFields struct {
	ClubName          string   `json:"club_name" gorm:"size:200"`
	ClubType          string   `json:"club_type" gorm:"size:30"`
	EstablishmentYear *int     `json:"establishment_year"`
	ContactEmail      string   `json:"contact_email" gorm:"size:255"`
	ContactPerson     string   `json:"contact_person" gorm:"size:255"`
	ContactPhone      string   `json:"contact_phone" gorm:"size:20"`
	Address           string   `json:"address" gorm:"type:text"`
	Facilities        []string `json:"facilities" gorm:"serializer:json;type:text"`
	ProgramsOffered   []string `json:"programs_offered" gorm:"serializer:json;type:text"`
}

// Profile is stored in a single table discriminated by Type. Only the
// payload matching Type is meaningful; see Variant.
type Profile struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          uint            `json:"user_id" gorm:"uniqueIndex;not null"`
	Type            ProfileType     `json:"type" gorm:"size:10;not null;index"`
	FirstName       string          `json:"first_name" gorm:"size:100"`
	LastName        string          `json:"last_name" gorm:"size:100"`
	DisplayName     string          `json:"display_name" gorm:"size:200"`
	Bio             string          `json:"bio" gorm:"type:text"`
	DateOfBirth     string          `json:"date_of_birth" gorm:"size:10"`
	Gender          string          `json:"gender" gorm:"size:20"`
	LocationCity    string          `json:"location_city" gorm:"size:100"`
	LocationState   string          `json:"location_state" gorm:"size:100"`
	LocationCountry string          `json:"location_country" gorm:"size:100"`
	WebsiteURL      string          `json:"website_url" gorm:"size:500"`
	InstagramURL    string          `json:"instagram_url" gorm:"size:500"`
	YoutubeURL      string          `json:"youtube_url" gorm:"size:500"`
	PrivacySettings PrivacySettings `json:"privacy_settings" gorm:"serializer:json;type:text"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Player PlayerFields `json:"-" gorm:"embedded"`
	Coach  CoachFields  `json:"-" gorm:"embedded"`
	Club   ClubFields   `json:"-" gorm:"embedded"`
}

// NewProfileForUser builds the profile variant selected by the user's type,
// pre-filled from the user. The user must already have an ID.
func NewProfileForUser(u *User) (*Profile, error) {
	p := &Profile{
		UserID:          u.ID,
		Type:            ProfileType(u.UserType),
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		DisplayName:     u.DisplayName(),
		LocationCountry: DefaultCountry,
		PrivacySettings: DefaultPrivacySettings(),
	}
	switch p.Type {
	case ProfileTypePlayer:
	case ProfileTypeCoach:
		p.Coach.Currency = DefaultCurrency
	case ProfileTypeClub:
		p.Club.ClubName = u.DisplayName()
	default:
		verr := NewValidationError()
		verr.Add("user_type", "must be one of player, coach, club")
		return nil, verr
	}
	return p, nil
}

// Variant returns the payload matching the discriminator.
func (p *Profile) Variant() Variant {
	switch p.Type {
	case ProfileTypePlayer:
		return &p.Player
	case ProfileTypeCoach:
		return &p.Coach
	case ProfileTypeClub:
		return &p.Club
	}
	return nil
}

func (p *Profile) basePermitted() map[string]any {
	return map[string]any{
		"first_name":       &p.FirstName,
		"last_name":        &p.LastName,
		"display_name":     &p.DisplayName,
		"bio":              &p.Bio,
		"date_of_birth":    &p.DateOfBirth,
		"gender":           &p.Gender,
		"location_city":    &p.LocationCity,
		"location_state":   &p.LocationState,
		"location_country": &p.LocationCountry,
		"website_url":      &p.WebsiteURL,
		"instagram_url":    &p.InstagramURL,
		"youtube_url":      &p.YoutubeURL,
		"privacy_settings": &p.PrivacySettings,
	}
}

// PermittedFields lists the update keys accepted for this profile.
func (p *Profile) PermittedFields() []string {
	var keys []string
	for k := range p.basePermitted() {
		keys = append(keys, k)
	}
	if v := p.Variant(); v != nil {
		for k := range v.permitted() {
			keys = append(keys, k)
		}
	}
	return keys
}

// Apply copies the whitelisted keys of fields onto the profile and
// validates the result. Keys outside the whitelist are dropped.
func (p *Profile) Apply(fields map[string]json.RawMessage, now time.Time) error {
	targets := p.basePermitted()
	if v := p.Variant(); v != nil {
		for k, t := range v.permitted() {
			targets[k] = t
		}
	}

	verr := NewValidationError()
	for key, raw := range fields {
		target, ok := targets[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, target); err != nil {
			verr.Add(key, "is invalid")
		}
	}
	if verr.HasErrors() {
		return verr
	}
	return p.Validate(now)
}

// Validate checks the shared fields and the active variant.
func (p *Profile) Validate(now time.Time) error {
	verr := NewValidationError()

	p.FirstName = strings.TrimSpace(p.FirstName)
	if len(p.FirstName) > NameMaxLength {
		verr.Add("first_name", "is too long (maximum is 100 characters)")
	}
	if len(p.LastName) > NameMaxLength {
		verr.Add("last_name", "is too long (maximum is 100 characters)")
	}
	if len(p.DisplayName) > 200 {
		verr.Add("display_name", "is too long (maximum is 200 characters)")
	}
	if len(p.Bio) > BioMaxLength {
		verr.Add("bio", "is too long (maximum is 5000 characters)")
	}
	if p.DateOfBirth != "" {
		dob, err := time.Parse(dateOfBirthLayout, p.DateOfBirth)
		if err != nil {
			verr.Add("date_of_birth", "must be a date in YYYY-MM-DD format")
		} else if !dob.Before(now) {
			verr.Add("date_of_birth", "must be in the past")
		}
	}
	checkInclusion(verr, "gender", p.Gender, genders)
	for field, value := range map[string]string{
		"website_url":   p.WebsiteURL,
		"instagram_url": p.InstagramURL,
		"youtube_url":   p.YoutubeURL,
	} {
		if value != "" && !isHTTPURL(value) {
			verr.Add(field, "must be a valid http or https URL")
		}
	}
	checkInclusion(verr, "privacy_settings.profile_visibility", p.PrivacySettings.ProfileVisibility, visibilities)
	checkInclusion(verr, "privacy_settings.message_permissions", p.PrivacySettings.MessagePermissions, messagePerms)

	v := p.Variant()
	if v == nil {
		verr.Add("type", "is invalid")
	} else {
		v.validate(verr, now)
	}
	return verr.OrNil()
}

// CompletionPercentage is the rounded share of filled completion fields.
// hasSport counts as one field.
func (p *Profile) CompletionPercentage(hasSport bool) int {
	filled := []bool{
		p.FirstName != "",
		p.Bio != "",
		p.DateOfBirth != "",
		p.LocationCity != "",
		p.LocationState != "",
		hasSport,
	}
	if v := p.Variant(); v != nil {
		filled = append(filled, v.completionFields()...)
	}
	n := 0
	for _, f := range filled {
		if f {
			n++
		}
	}
	return int(math.Round(float64(n) * 100 / float64(len(filled))))
}

func (f *PlayerFields) ProfileType() ProfileType { return ProfileTypePlayer }

func (f *PlayerFields) permitted() map[string]any {
	return map[string]any{
		"height_cm":                  &f.HeightCm,
		"weight_kg":                  &f.WeightKg,
		"preferred_foot":             &f.PreferredFoot,
		"playing_status":             &f.PlayingStatus,
		"availability":               &f.Availability,
		"achievement_entries":        &f.AchievementEntries,
		"academic_education_entries": &f.AcademicEducationEntries,
		"training_camp_entries":      &f.TrainingCampEntries,
		"key_strengths":              &f.KeyStrengths,
		"fitness_tests":              &f.FitnessTests,
	}
}

func (f *PlayerFields) validate(verr *ValidationError, _ time.Time) {
	if f.HeightCm != nil && (*f.HeightCm <= 0 || *f.HeightCm >= 300) {
		verr.Add("height_cm", "must be greater than 0 and less than 300")
	}
	if f.WeightKg != nil && (*f.WeightKg <= 0 || *f.WeightKg >= 300) {
		verr.Add("weight_kg", "must be greater than 0 and less than 300")
	}
	checkInclusion(verr, "preferred_foot", f.PreferredFoot, preferredFeet)
	checkInclusion(verr, "playing_status", f.PlayingStatus, playingStatuses)
	checkInclusion(verr, "availability", f.Availability, availabilities)
	checkEntries(verr, "achievement_entries", f.AchievementEntries)
	checkEntries(verr, "academic_education_entries", f.AcademicEducationEntries)
	checkEntries(verr, "training_camp_entries", f.TrainingCampEntries)
	checkStrings(verr, "key_strengths", f.KeyStrengths)

	if len(f.FitnessTests) > EntryMaxItems {
		verr.Add("fitness_tests", "has too many entries (maximum is 100)")
	}
	for _, t := range f.FitnessTests {
		if strings.TrimSpace(t.Name) == "" {
			verr.Add("fitness_tests", "name can't be blank")
			break
		}
		if len(t.Name) > EntryStringMax || len(t.Result) > EntryStringMax || len(t.TestedOn) > EntryStringMax {
			verr.Add("fitness_tests", "values must be at most 255 characters")
			break
		}
	}
}

func (f *PlayerFields) completionFields() []bool {
	return []bool{f.HeightCm != nil, f.WeightKg != nil, f.Availability != ""}
}

func (f *CoachFields) ProfileType() ProfileType { return ProfileTypeCoach }

func (f *CoachFields) permitted() map[string]any {
	return map[string]any{
		"experience_years":    &f.ExperienceYears,
		"hourly_rate":         &f.HourlyRate,
		"currency":            &f.Currency,
		"certifications":      &f.Certifications,
		"coaching_philosophy": &f.CoachingPhilosophy,
		"available_for_hire":  &f.AvailableForHire,
		"coaching_history":    &f.CoachingHistory,
	}
}

func (f *CoachFields) validate(verr *ValidationError, _ time.Time) {
	if f.ExperienceYears != nil && *f.ExperienceYears < 0 {
		verr.Add("experience_years", "must be greater than or equal to 0")
	}
	if f.HourlyRate != nil && *f.HourlyRate <= 0 {
		verr.Add("hourly_rate", "must be greater than 0")
	}
	checkInclusion(verr, "currency", f.Currency, currencies)
	checkStrings(verr, "certifications", f.Certifications)
	checkEntries(verr, "coaching_history", f.CoachingHistory)
}

func (f *CoachFields) completionFields() []bool {
	return []bool{f.ExperienceYears != nil, f.HourlyRate != nil}
}

func (f *ClubFields) ProfileType() ProfileType { return ProfileTypeClub }

func (f *ClubFields) permitted() map[string]any {
	return map[string]any{
		"club_name":          &f.ClubName,
		"club_type":          &f.ClubType,
		"establishment_year": &f.EstablishmentYear,
		"contact_email":      &f.ContactEmail,
		"contact_person":     &f.ContactPerson,
		"contact_phone":      &f.ContactPhone,
		"address":            &f.Address,
		"facilities":         &f.Facilities,
		"programs_offered":   &f.ProgramsOffered,
	}
}

func (f *ClubFields) validate(verr *ValidationError, now time.Time) {
	f.ClubName = strings.TrimSpace(f.ClubName)
	if f.ClubName == "" {
		verr.Add("club_name", "can't be blank")
	} else if len(f.ClubName) > ClubNameMaxLength {
		verr.Add("club_name", "is too long (maximum is 200 characters)")
	}
	checkInclusion(verr, "club_type", f.ClubType, clubTypes)
	if f.EstablishmentYear != nil && (*f.EstablishmentYear <= minEstablishedYear || *f.EstablishmentYear > now.Year()) {
		verr.Add("establishment_year", "must be after 1800 and not in the future")
	}
	if f.ContactEmail != "" {
		if addr, err := mail.ParseAddress(f.ContactEmail); err != nil || addr.Address != f.ContactEmail {
			verr.Add("contact_email", "is invalid")
		}
	}
	checkStrings(verr, "facilities", f.Facilities)
	checkStrings(verr, "programs_offered", f.ProgramsOffered)
}

func (f *ClubFields) completionFields() []bool {
	return []bool{f.ClubName != "", f.ClubType != "", f.EstablishmentYear != nil}
}

func checkInclusion(verr *ValidationError, field, value string, allowed []string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	verr.Add(field, "must be one of "+strings.Join(allowed, ", "))
}

func checkEntries(verr *ValidationError, field string, entries []ProfileEntry) {
	if len(entries) > EntryMaxItems {
		verr.Add(field, "has too many entries (maximum is 100)")
		return
	}
	for _, e := range entries {
		switch {
		case strings.TrimSpace(e.Name) == "":
			verr.Add(field, "name can't be blank")
		case len(e.Name) > EntryStringMax:
			verr.Add(field, "name is too long (maximum is 255 characters)")
		case e.Year != nil && (*e.Year < EntryYearMin || *e.Year > EntryYearMax):
			verr.Add(field, "year must be between 1900 and 2100")
		case len(e.Description) > EntryStringMax:
			verr.Add(field, "description is too long (maximum is 255 characters)")
		default:
			continue
		}
		return
	}
}

func checkStrings(verr *ValidationError, field string, values []string) {
	if len(values) > EntryMaxItems {
		verr.Add(field, "has too many entries (maximum is 100)")
		return
	}
	for _, v := range values {
		if len(v) > EntryStringMax {
			verr.Add(field, "values must be at most 255 characters")
			return
		}
	}
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

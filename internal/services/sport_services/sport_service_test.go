package sport_services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/repository/sport"
	"github.com/iyunix/go-linksports/internal/services"
	"github.com/iyunix/go-linksports/internal/testutil"
)

func details(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestSportService_Taxonomy(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewSportService(sport.NewGormSportRepository(db), &services.NoOpLogger{})
	ctx := context.Background()

	cricket := &domain.Sport{Name: "  cricket ", Category: "Team", Active: true}
	require.NoError(t, svc.CreateSport(ctx, cricket))
	assert.Equal(t, "Cricket", cricket.Name)

	err := svc.CreateSport(ctx, &domain.Sport{Name: "CRICKET", Active: true})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")

	require.NoError(t, svc.CreateSport(ctx, &domain.Sport{Name: "Chess", Category: "Mind", Active: true}))

	role := &domain.SportAttribute{Key: "Role", Label: "Role", FieldType: domain.FieldSelect, Options: []string{"Batter", "Bowler", " "}}
	require.NoError(t, svc.CreateAttribute(ctx, role, []uint{cricket.ID}))
	assert.Equal(t, "role", role.Key)
	assert.Equal(t, []string{"Batter", "Bowler"}, role.Options)

	err = svc.CreateAttribute(ctx, &domain.SportAttribute{Key: "hand", Label: "Hand", FieldType: domain.FieldMultiSelect}, nil)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "options")

	got, err := svc.GetSport(ctx, cricket.ID)
	require.NoError(t, err)
	require.Len(t, got.Attributes, 1)
	assert.Equal(t, "role", got.Attributes[0].Key)

	require.NoError(t, svc.AttachAttribute(ctx, cricket.ID, role.ID))

	list, err := svc.ListSports(ctx, "", "cri")
	require.NoError(t, err)
	require.Len(t, list, 1)

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mind", "Team"}, categories)
}

func TestSportService_UserSportDetails(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewSportService(sport.NewGormSportRepository(db), &services.NoOpLogger{})
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "allround", domain.UserTypePlayer)
	other := testutil.CreateUser(t, db, "someone", domain.UserTypePlayer)

	cricket := &domain.Sport{Name: "Cricket", Active: true}
	require.NoError(t, svc.CreateSport(ctx, cricket))
	require.NoError(t, svc.CreateAttribute(ctx, &domain.SportAttribute{
		Key: "role", Label: "Role", FieldType: domain.FieldSelect, Options: []string{"Batter", "Bowler"},
	}, []uint{cricket.ID}))
	require.NoError(t, svc.CreateAttribute(ctx, &domain.SportAttribute{
		Key: "formats", Label: "Formats", FieldType: domain.FieldMultiSelect, Options: []string{"T20", "ODI", "Test"},
	}, []uint{cricket.ID}))

	_, err := svc.AddUserSport(ctx, u.ID, UserSportInput{SportID: cricket.ID, Details: details(t, `{"role":"Keeper"}`)})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "details")

	_, err = svc.AddUserSport(ctx, u.ID, UserSportInput{SportID: cricket.ID, Details: details(t, `{"nickname":"x"}`)})
	require.ErrorAs(t, err, &verr)

	_, err = svc.AddUserSport(ctx, u.ID, UserSportInput{SportID: 999})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "sport_id")

	primary := true
	us, err := svc.AddUserSport(ctx, u.ID, UserSportInput{
		SportID: cricket.ID,
		Primary: &primary,
		Details: details(t, `{"role":"Bowler","formats":["T20","Test"]}`),
	})
	require.NoError(t, err)
	assert.True(t, us.Primary)

	_, err = svc.AddUserSport(ctx, u.ID, UserSportInput{SportID: cricket.ID})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "sport_id")

	years := 4
	updated, err := svc.UpdateUserSport(ctx, u.ID, us.ID, UserSportInput{YearsExperience: &years})
	require.NoError(t, err)
	assert.Equal(t, 4, *updated.YearsExperience)
	assert.Equal(t, "Bowler", updated.Details["role"])

	_, err = svc.UpdateUserSport(ctx, other.ID, us.ID, UserSportInput{YearsExperience: &years})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteUserSport(ctx, other.ID, us.ID), domain.ErrNotFound)

	list, err := svc.ListUserSports(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Sport)
	assert.Equal(t, "Cricket", list[0].Sport.Name)

	require.NoError(t, svc.DeleteUserSport(ctx, u.ID, us.ID))
	list, err = svc.ListUserSports(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

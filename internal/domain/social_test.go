package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionTransition(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Connection{RequesterID: 1, AddresseeID: 2, Status: ConnectionPending}

	assert.True(t, c.Involves(1))
	assert.True(t, c.Involves(2))
	assert.False(t, c.Involves(3))
	assert.Equal(t, uint(2), c.OtherParty(1))
	assert.Equal(t, uint(1), c.OtherParty(2))

	c.Transition(ConnectionAccepted, 2, now)
	require.NotNil(t, c.ConnectedAt)
	assert.Equal(t, now, *c.ConnectedAt)

	c.Transition(ConnectionBlocked, 1, now)
	require.NotNil(t, c.BlockedByID)
	assert.Equal(t, uint(1), *c.BlockedByID)

	c.Transition(ConnectionPending, 1, now)
	assert.Nil(t, c.BlockedByID)
	assert.False(t, ConnectionStatus("friends").Valid())
}

func TestPostValidateAndVisibility(t *testing.T) {
	p := &Post{UserID: 1, Content: "  hello  "}
	require.NoError(t, p.Validate())
	assert.Equal(t, "hello", p.Content)
	assert.Equal(t, VisibilityPublic, p.Visibility)

	long := &Post{Content: strings.Repeat("a", PostContentMaxLength+1)}
	assert.Error(t, long.Validate())

	bad := &Post{Content: "x", Visibility: "friends"}
	assert.Error(t, bad.Validate())

	p.Visibility = VisibilityConnections
	assert.True(t, p.VisibleTo(1, false))
	assert.True(t, p.VisibleTo(2, true))
	assert.False(t, p.VisibleTo(2, false))

	p.Visibility = VisibilityPrivate
	assert.True(t, p.VisibleTo(1, false))
	assert.False(t, p.VisibleTo(2, true))

	c := &Comment{Content: strings.Repeat("b", CommentContentMaxLength+1)}
	assert.Error(t, c.Validate())
}

func TestSportValidation(t *testing.T) {
	s := &Sport{Name: "  table   TENNIS "}
	require.NoError(t, s.Validate())
	assert.Equal(t, "Table Tennis", s.Name)

	a := &SportAttribute{Key: "Position", Label: "Position", FieldType: FieldSelect, Options: []string{" ", ""}}
	err := a.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "options")
	assert.Equal(t, "position", a.Key)
}

func TestUserSportDetails(t *testing.T) {
	attrs := []SportAttribute{
		{Key: "position", FieldType: FieldSelect, Options: []string{"Goalkeeper", "Striker"}},
		{Key: "skills", FieldType: FieldMultiSelect, Options: []string{"Dribbling", "Heading"}},
		{Key: "club", FieldType: FieldString},
	}

	ok := &UserSport{Details: map[string]any{
		"position": "Striker",
		"skills":   []any{"Dribbling"},
		"club":     "Bengaluru FC",
	}}
	assert.NoError(t, ok.Validate(attrs))

	cases := map[string]map[string]any{
		"unknown key":       {"shoe_size": "9"},
		"select not option": {"position": "Winger"},
		"multi not a list":  {"skills": "Dribbling"},
		"multi bad item":    {"skills": []any{"Passing"}},
		"string wrong type": {"club": 12.0},
		"string too long":   {"club": strings.Repeat("c", 256)},
	}
	for name, details := range cases {
		t.Run(name, func(t *testing.T) {
			us := &UserSport{Details: details}
			assert.Error(t, us.Validate(attrs))
		})
	}

	neg := -1
	assert.Error(t, (&UserSport{YearsExperience: &neg}).Validate(attrs))
}

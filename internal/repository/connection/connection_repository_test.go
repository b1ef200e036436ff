package connection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/testutil"
)

func TestFindBetweenIsSymmetric(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormConnectionRepository(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "usera", domain.UserTypePlayer)
	b := testutil.CreateUser(t, db, "userb", domain.UserTypeCoach)
	c := testutil.CreateUser(t, db, "userc", domain.UserTypeClub)

	conn := &domain.Connection{RequesterID: a.ID, AddresseeID: b.ID, Status: domain.ConnectionPending}
	require.NoError(t, repo.Create(ctx, conn))

	ab, err := repo.FindBetween(ctx, a.ID, b.ID)
	require.NoError(t, err)
	ba, err := repo.FindBetween(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, conn.ID, ab.ID)
	assert.Equal(t, ab.ID, ba.ID)

	_, err = repo.FindBetween(ctx, a.ID, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.Create(ctx, &domain.Connection{RequesterID: a.ID, AddresseeID: b.ID, Status: domain.ConnectionPending})
	assert.ErrorIs(t, err, ErrDuplicateConnection)
}

func TestAcceptedConnections(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormConnectionRepository(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "hub", domain.UserTypePlayer)
	b := testutil.CreateUser(t, db, "spoke1", domain.UserTypePlayer)
	c := testutil.CreateUser(t, db, "spoke2", domain.UserTypePlayer)

	accepted := &domain.Connection{RequesterID: b.ID, AddresseeID: a.ID, Status: domain.ConnectionPending}
	require.NoError(t, repo.Create(ctx, accepted))
	accepted.Transition(domain.ConnectionAccepted, a.ID, time.Now())
	require.NoError(t, repo.UpdateStatus(ctx, accepted))

	pending := &domain.Connection{RequesterID: c.ID, AddresseeID: a.ID, Status: domain.ConnectionPending}
	require.NoError(t, repo.Create(ctx, pending))

	ids, err := repo.ConnectedUserIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, ids)

	list, err := repo.ListAccepted(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Requester)
	assert.Equal(t, "spoke1", list[0].Requester.Username)
	assert.NotNil(t, list[0].ConnectedAt)

	requests, err := repo.ListPendingFor(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, pending.ID, requests[0].ID)

	require.NoError(t, repo.Delete(ctx, pending.ID))
	assert.ErrorIs(t, repo.Delete(ctx, pending.ID), ErrConnectionNotFound)
}

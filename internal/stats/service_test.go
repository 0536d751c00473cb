package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	users      int
	requests   RequestCounts
	funding    int64
	fundingErr error
}

func (s stubRepo) CountUsers(context.Context) (int, error) { return s.users, nil }

func (s stubRepo) CountRequests(context.Context) (RequestCounts, error) { return s.requests, nil }

func (s stubRepo) TotalFunding(context.Context) (int64, error) { return s.funding, s.fundingErr }

func TestOverviewAggregates(t *testing.T) {
	svc := NewService(stubRepo{
		users:    42,
		requests: RequestCounts{Total: 10, Pending: 4, InProgress: 3, Completed: 2, Cancelled: 1},
		funding:  1500,
	})

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, overview.TotalUsers)
	assert.Equal(t, 10, overview.Requests.Total)
	assert.Equal(t, int64(1500), overview.TotalFunding)
	assert.Equal(t, "$1,500", overview.DisplayTotalFunding)
}

func TestOverviewFailsAsAWhole(t *testing.T) {
	svc := NewService(stubRepo{fundingErr: errors.New("connection reset")})

	_, err := svc.Overview(context.Background())
	assert.Error(t, err)
}

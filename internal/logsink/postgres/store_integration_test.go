//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"gatepass/internal/logsink"
	"gatepass/internal/logsink/postgres"
	"gatepass/pkg/testutil/containers"
)

type StoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *postgres.Store
}

func (s *StoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = postgres.New(s.pg.DB)
}

func (s *StoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "log_rows"))
}

func (s *StoreSuite) TestAppendThenReadAllInInsertionOrder() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, logsink.Visits, logsink.Row{"t1", "Ana", "4B", "Luis", "entry", ""}))
	s.Require().NoError(s.store.Append(ctx, logsink.Employees, logsink.Row{"t2", "Marta", "PB", "https://x/ine.png"}))
	s.Require().NoError(s.store.Append(ctx, logsink.Visits, logsink.Row{"t3", "Ana", "4B", "Luis", "exit", "ABC123"}))

	rows, err := s.store.ReadAll(ctx, logsink.Visits)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal(logsink.Row{"t1", "Ana", "4B", "Luis", "entry", ""}, rows[0])
	s.Equal("exit", rows[1][4])

	employees, err := s.store.ReadAll(ctx, logsink.Employees)
	s.Require().NoError(err)
	s.Len(employees, 1)
}

func (s *StoreSuite) TestReadAllOfEmptyTable() {
	rows, err := s.store.ReadAll(context.Background(), logsink.Visits)
	s.Require().NoError(err)
	s.Empty(rows)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

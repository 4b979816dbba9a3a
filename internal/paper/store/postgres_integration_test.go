//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"confpaper/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	suite.Run(t, &StoreSuite{newStore: func(t *testing.T) paperStore {
		if err := pg.Truncate(context.Background()); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return NewPostgres(pg.DB)
	}})
}

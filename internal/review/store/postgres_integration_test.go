//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	paperstore "confpaper/internal/paper/store"
	"confpaper/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	suite.Run(t, &StoreSuite{newBackend: func(t *testing.T) backend {
		if err := pg.Truncate(context.Background()); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return backend{store: NewPostgres(pg.DB), seedPaper: paperstore.NewPostgres(pg.DB).Create}
	}})
}

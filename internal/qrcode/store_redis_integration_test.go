//go:build integration

package qrcode_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"boxtribute/internal/qrcode"
	id "boxtribute/pkg/domain"
	"boxtribute/pkg/platform/sentinel"
	"boxtribute/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *qrcode.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = qrcode.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestCreateAndLoad() {
	ctx := context.Background()
	code := qrcode.QRCode{
		ID:        id.NewQRCodeID(),
		CreatedOn: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.store.Create(ctx, code))

	loaded, err := s.store.ByID(ctx, code.ID)
	s.Require().NoError(err)
	s.Equal(code.ID, loaded.ID)
	s.True(loaded.CreatedOn.Equal(code.CreatedOn))
	s.False(loaded.IsLinked())
}

func (s *RedisStoreSuite) TestCreateDuplicate() {
	ctx := context.Background()
	code := qrcode.QRCode{ID: id.NewQRCodeID(), CreatedOn: time.Now()}
	s.Require().NoError(s.store.Create(ctx, code))

	err := s.store.Create(ctx, code)
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrConflict))
}

func (s *RedisStoreSuite) TestCreatePreLinked() {
	ctx := context.Background()
	code := qrcode.QRCode{ID: id.NewQRCodeID(), BoxID: 42, CreatedOn: time.Now()}
	s.Require().NoError(s.store.Create(ctx, code))

	loaded, err := s.store.ByID(ctx, code.ID)
	s.Require().NoError(err)
	s.True(loaded.IsLinked())
	s.Equal(id.BoxID(42), loaded.BoxID)
}

func (s *RedisStoreSuite) TestByIDNotFound() {
	_, err := s.store.ByID(context.Background(), id.NewQRCodeID())
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *RedisStoreSuite) TestLink() {
	ctx := context.Background()
	code := qrcode.QRCode{ID: id.NewQRCodeID(), CreatedOn: time.Now()}
	s.Require().NoError(s.store.Create(ctx, code))

	s.Require().NoError(s.store.Link(ctx, code.ID, 42))

	loaded, err := s.store.ByID(ctx, code.ID)
	s.Require().NoError(err)
	s.Equal(id.BoxID(42), loaded.BoxID)

	err = s.store.Link(ctx, code.ID, 43)
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrConflict))
}

func (s *RedisStoreSuite) TestLinkUnknownSticker() {
	err := s.store.Link(context.Background(), id.NewQRCodeID(), 42)
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

// Concurrent link attempts against one sticker must yield exactly one
// winner; everyone else gets a conflict.
func (s *RedisStoreSuite) TestLinkConcurrent() {
	ctx := context.Background()
	code := qrcode.QRCode{ID: id.NewQRCodeID(), CreatedOn: time.Now()}
	s.Require().NoError(s.store.Create(ctx, code))

	const attempts = 20
	var wins, conflicts atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(boxID id.BoxID) {
			defer wg.Done()
			err := s.store.Link(ctx, code.ID, boxID)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			}
		}(id.BoxID(i + 1))
	}
	wg.Wait()

	s.Equal(int64(1), wins.Load())
	s.Equal(int64(attempts-1), conflicts.Load())

	loaded, err := s.store.ByID(ctx, code.ID)
	s.Require().NoError(err)
	s.True(loaded.IsLinked())
}

package qrcode

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	id "boxtribute/pkg/domain"
	"boxtribute/pkg/platform/sentinel"
)

// RedisStore keeps QR codes in Redis under one hash per sticker. Linking
// relies on HSETNX so that concurrent link attempts have exactly one winner.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(qrID id.QRCodeID) string {
	return "qr:" + qrID.String()
}

func (s *RedisStore) Create(ctx context.Context, code QRCode) error {
	ok, err := s.client.HSetNX(ctx, key(code.ID), "created_on", code.CreatedOn.Format(time.RFC3339Nano)).Result()
	if err != nil {
		return fmt.Errorf("create qr code: %w", err)
	}
	if !ok {
		return fmt.Errorf("qr code %s: %w", code.ID, sentinel.ErrConflict)
	}
	if code.IsLinked() {
		if err := s.client.HSet(ctx, key(code.ID), "box_id", int64(code.BoxID)).Err(); err != nil {
			return fmt.Errorf("create qr code link: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) ByID(ctx context.Context, qrID id.QRCodeID) (*QRCode, error) {
	fields, err := s.client.HGetAll(ctx, key(qrID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get qr code: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("qr code %s: %w", qrID, sentinel.ErrNotFound)
	}
	code := &QRCode{ID: qrID}
	if raw, ok := fields["created_on"]; ok {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			code.CreatedOn = t
		}
	}
	if raw, ok := fields["box_id"]; ok {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			code.BoxID = id.BoxID(n)
		}
	}
	return code, nil
}

func (s *RedisStore) Link(ctx context.Context, qrID id.QRCodeID, boxID id.BoxID) error {
	exists, err := s.client.Exists(ctx, key(qrID)).Result()
	if err != nil {
		return fmt.Errorf("check qr code: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("qr code %s: %w", qrID, sentinel.ErrNotFound)
	}
	ok, err := s.client.HSetNX(ctx, key(qrID), "box_id", int64(boxID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("link qr code: %w", err)
	}
	if !ok {
		return fmt.Errorf("qr code %s already linked: %w", qrID, sentinel.ErrConflict)
	}
	return nil
}

package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/rs/zerolog"

	"k3l.io/go-amge/pkg/util"
)

// NamedRestrictions stores completed builds by ID.
type NamedRestrictions struct {
	util.SyncMap[string, *Restriction]
}

// Add stores r under a new random ID.
func (nrs *NamedRestrictions) Add(
	ctx context.Context, r *Restriction,
) (id string, err error) {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()
	for {
		id, err = RandomID(ctx)
		if err != nil {
			return "", err
		}
		if _, loaded := nrs.LoadOrStore(id, r); !loaded {
			return id, nil
		}
	}
}

// RandomID returns a random URL-safe ID.
// It retries with backoff if the system random source fails.
func RandomID(ctx context.Context) (id string, err error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	buf := make([]byte, 18)
	delay := 125 * time.Millisecond
	for _, err = rand.Read(buf); err != nil; _, err = rand.Read(buf) {
		zerolog.Ctx(ctx).Err(err).Msg("cannot create random ID")
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

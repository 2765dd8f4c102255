package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"lr-validation-backend/pkg/id"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

func buildKey(method, path, operatorID, requestID string) string {
	return "idemp:lr:" + strings.ToLower(method) + ":" + path + ":" + operatorID + ":" + requestID
}

// validReqID accepts a lowercase RFC 4122 UUID (versions 1-5) or 32-char lowercase hex.
func validReqID(s string) bool {
	s = strings.TrimSpace(s)
	if id.IsID32(s) {
		return true
	}
	if len(s) != 36 || s != strings.ToLower(s) {
		return false
	}
	u, err := uuid.Parse(s)
	if err != nil || u.Variant() != uuid.RFC4122 {
		return false
	}
	return u.Version() >= 1 && u.Version() <= 5
}

// parseRequestAt accepts:
//   - epoch seconds (e.g., "1736123456")
//   - epoch milliseconds (e.g., "1736123456789")
//   - RFC3339 / RFC3339Nano **with timezone** (e.g., "2025-09-05T10:00:00+07:00" or "...Z")
//
// Naive local timestamps **without** timezone are rejected.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 { // ms
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

// ---- Redis helpers ----
func provisionalSet(ctx context.Context, rdb redis.Cmdable, key string, entry idempEntry) (bool, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return false, eris.Wrap(err, "marshal idempotency entry")
	}
	ok, err := rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
	return ok, eris.Wrap(err, "idempotency setnx")
}

func loadEntry(ctx context.Context, rdb redis.Cmdable, key string) (idempEntry, error) {
	var e idempEntry
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, eris.Wrapf(err, "idempotency get %s", key)
	}
	if err := json.Unmarshal(v, &e); err != nil {
		return e, eris.Wrapf(err, "decode idempotency entry %s", key)
	}
	return e, nil
}

func saveFinal(ctx context.Context, rdb redis.Cmdable, key string, entry idempEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return eris.Wrap(err, "marshal idempotency entry")
	}
	return eris.Wrap(rdb.Set(ctx, key, payload, ttl).Err(), "idempotency set")
}

func release(ctx context.Context, rdb redis.Cmdable, key string) error {
	return eris.Wrap(rdb.Del(ctx, key).Err(), "idempotency del")
}

package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rangemedical/clinic-ops/pkg/logging"
)

// Cache stores assembled portal payloads in Redis keyed by access token.
// A per-patient token set lets a tracker mutation drop every cached view of
// that patient at once.
type Cache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

func NewCache(redisClient *redis.Client, ttl time.Duration, logger *logging.Logger) *Cache {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Cache{redis: redisClient, ttl: ttl, logger: logger}
}

func (c *Cache) payloadKey(token string) string {
	return fmt.Sprintf("portal:payload:%s", token)
}

func (c *Cache) patientKey(patientID string) string {
	return fmt.Sprintf("portal:tokens:%s", patientID)
}

// Get returns the cached payload for a token, or nil on miss. Cache errors
// degrade to a miss.
func (c *Cache) Get(ctx context.Context, token string) *Payload {
	if c == nil || c.redis == nil {
		return nil
	}
	data, err := c.redis.Get(ctx, c.payloadKey(token)).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		c.logger.Error("portal cache get failed", "error", err)
		return nil
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		c.logger.Error("portal cache unmarshal failed", "error", err)
		return nil
	}
	return &p
}

// Set caches the payload and records the token against its patient.
func (c *Cache) Set(ctx context.Context, token, patientID string, p *Payload) {
	if c == nil || c.redis == nil || p == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		c.logger.Error("portal cache marshal failed", "error", err)
		return
	}
	if err := c.redis.Set(ctx, c.payloadKey(token), data, c.ttl).Err(); err != nil {
		c.logger.Error("portal cache set failed", "error", err)
		return
	}
	if patientID != "" {
		c.redis.SAdd(ctx, c.patientKey(patientID), token)
		c.redis.Expire(ctx, c.patientKey(patientID), c.ttl)
	}
}

// InvalidatePatient drops every cached payload for the patient's tokens.
func (c *Cache) InvalidatePatient(ctx context.Context, patientID string) {
	if c == nil || c.redis == nil || patientID == "" {
		return
	}
	tokens, err := c.redis.SMembers(ctx, c.patientKey(patientID)).Result()
	if err != nil {
		c.logger.Error("portal cache invalidate failed", "patient_id", patientID, "error", err)
		return
	}
	for _, token := range tokens {
		c.redis.Del(ctx, c.payloadKey(token))
	}
	c.redis.Del(ctx, c.patientKey(patientID))
}

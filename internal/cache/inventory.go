package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix          = "user:%d"
	MythologyKeyPrefix     = "mythology:%s"
	MythologyByIDKeyPrefix = "mythology:id:%d"
	AlliancesKeyPrefix     = "mythology:%d:alliances"
)

const (
	UserTTL      = 5 * time.Minute
	MythologyTTL = 10 * time.Minute
	AlliancesTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func MythologyKey(slug string) string {
	return fmt.Sprintf(MythologyKeyPrefix, slug)
}

func MythologyByIDKey(id uint) string {
	return fmt.Sprintf(MythologyByIDKeyPrefix, id)
}

func AlliancesKey(mythologyID uint) string {
	return fmt.Sprintf(AlliancesKeyPrefix, mythologyID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateMythology(ctx context.Context, id uint, slug string) {
	Invalidate(ctx, MythologyByIDKey(id))
	Invalidate(ctx, MythologyKey(slug))
}

// InvalidateAlliances drops the cached alliance list for both worlds of a
// newly materialized or retyped relationship.
func InvalidateAlliances(ctx context.Context, mythology1ID, mythology2ID uint) {
	Invalidate(ctx, AlliancesKey(mythology1ID))
	Invalidate(ctx, AlliancesKey(mythology2ID))
}

// internal/service/order/infrastructure/adapter/user_http_adapter.go
package adapter

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"atlas/internal/pkg/httpclient"
	"atlas/internal/pkg/logger"
	"atlas/internal/pkg/redis"
	"atlas/internal/service/order/domain/port"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// UserServiceName is the logical name the resolver maps to a base URL.
const UserServiceName = "user-service"

const userCacheTTL = 5 * time.Minute

// UserHTTPAdapter implements port.UserService. A 200 means the user exists,
// any other client status means absent. Positive answers are cached (users
// are never un-created in this system) and concurrent lookups for the same
// user collapse into one request.
type UserHTTPAdapter struct {
	client *httpclient.Client
	cache  *redis.Client
	group  singleflight.Group
}

var _ port.UserService = (*UserHTTPAdapter)(nil)

// NewUserHTTPAdapter builds the adapter; cache may be nil.
func NewUserHTTPAdapter(client *httpclient.Client, cache *redis.Client) *UserHTTPAdapter {
	return &UserHTTPAdapter{client: client, cache: cache}
}

func (a *UserHTTPAdapter) Exists(ctx context.Context, userID int64, token string) (bool, error) {
	key := "user:exists:" + strconv.FormatInt(userID, 10)

	if a.cache != nil {
		if _, found, err := a.cache.GetString(ctx, key); err == nil && found {
			return true, nil
		}
	}

	v, err, _ := a.group.Do(key, func() (interface{}, error) {
		resp, err := a.client.DoJSON(ctx, http.MethodGet, UserServiceName, "/"+strconv.FormatInt(userID, 10), token, nil)
		if err != nil {
			return false, errors.Wrapf(err, "lookup user %d", userID)
		}
		return resp.StatusCode == http.StatusOK, nil
	})
	if err != nil {
		return false, err
	}

	exists := v.(bool)
	if exists && a.cache != nil {
		if err := a.cache.SetString(ctx, key, "1", userCacheTTL); err != nil {
			logger.Ctx(ctx).Debug().Err(err).Int64("user_id", userID).Msg("user cache write failed")
		}
	}
	return exists, nil
}

package metric

import (
	"context"
	"time"

	"racbot/src-bot/api"
	"racbot/src-bot/utils"
)

func ping(as *utils.AppState) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), as.Config.MetricCollectionInterval)
	defer cancel()
	start := time.Now()
	if _, err := as.API.Call(ctx, api.Request{Endpoint: api.UtilityPing}); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

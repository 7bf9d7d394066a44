package nodeapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	retry "github.com/avast/retry-go"
	"github.com/fystack/radixium/pkg/apperr"
	"github.com/fystack/radixium/pkg/logger"
)

const (
	probeAttempts = 3
	probeDelay    = 500 * time.Millisecond
)

// PickNode probes the candidate endpoints in order and returns a client for
// the first one that answers a networkId query. Candidates that also serve
// a different network than expected (when expectedNetworkID > 0) are
// skipped.
func PickNode(ctx context.Context, urls []string, expectedNetworkID int, opts ...Option) (*Client, error) {
	if len(urls) == 0 {
		return nil, apperr.Errorf(apperr.KindGetNode, "no node candidates configured")
	}

	var errs []error
	for _, url := range urls {
		client := New(url, opts...)

		var networkID int
		err := retry.Do(
			func() error {
				var probeErr error
				networkID, probeErr = client.NetworkID(ctx)
				return probeErr
			},
			retry.Attempts(probeAttempts),
			retry.Delay(probeDelay),
			retry.Context(ctx),
			retry.LastErrorOnly(true),
		)
		if err != nil {
			logger.Warn("Node candidate unreachable", "url", url, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", url, err))
			continue
		}
		if expectedNetworkID > 0 && networkID != expectedNetworkID {
			logger.Warn("Node serves wrong network, skipping",
				"url", url, "networkID", networkID, "expected", expectedNetworkID)
			errs = append(errs, fmt.Errorf("%s: network %d, expected %d", url, networkID, expectedNetworkID))
			continue
		}

		logger.Info("Selected node", "url", url, "networkID", networkID)
		return client, nil
	}
	return nil, apperr.Wrap(apperr.KindGetNode, errors.Join(errs...))
}

package fetcher

import (
	"context"
	"errors"
	"net"

	"github.com/pagemine/pagemine/internal/model"
)

// Classify maps a fetch error to a crawl error kind.
// Timeouts (deadline exceeded, net timeouts) are distinguished from other
// network failures because they often indicate a slow rather than broken
// target.
func Classify(err error) model.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.KindTimeout
	}

	return model.KindNetwork
}

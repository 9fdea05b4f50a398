package cas

import (
	"context"
	"time"

	"github.com/grindlemire/graft"
	"go.trai.ch/slicecache/internal/adapters/fetch"
	"go.trai.ch/slicecache/internal/adapters/logger"
	"go.trai.ch/slicecache/internal/core/domain"
	"go.trai.ch/slicecache/internal/core/ports"
)

// NodeID is the unique identifier for the cache index opener Graft node.
const NodeID graft.ID = "adapter.cache_index"

var _ ports.IndexOpener = (*Opener)(nil)

// Opener opens indexes that share one fetcher and logger.
type Opener struct {
	fetcher ports.BundleFetcher
	logger  ports.Logger
}

// timeoutSetter is implemented by fetchers with a configurable request timeout.
type timeoutSetter interface {
	SetTimeout(timeout time.Duration)
}

// concurrencySetter is implemented by fetchers that bound their own fan-out.
type concurrencySetter interface {
	SetConcurrency(limit int)
}

// NewOpener creates an Opener.
func NewOpener(fetcher ports.BundleFetcher, logger ports.Logger) *Opener {
	return &Opener{fetcher: fetcher, logger: logger}
}

// Open implements ports.IndexOpener.
func (o *Opener) Open(settings *domain.Settings) (ports.CacheIndex, error) {
	if ts, ok := o.fetcher.(timeoutSetter); ok {
		ts.SetTimeout(settings.HTTPTimeout)
	}
	if cs, ok := o.fetcher.(concurrencySetter); ok {
		cs.SetConcurrency(settings.Concurrency)
	}
	ix, err := Open(settings.CacheDir, o.fetcher, o.logger, settings.Concurrency)
	if err != nil {
		return nil, err
	}
	return ix, nil
}

func init() {
	graft.Register(graft.Node[ports.IndexOpener]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fetch.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.IndexOpener, error) {
			fetcher, err := graft.Dep[ports.BundleFetcher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewOpener(fetcher, log), nil
		},
	})
}

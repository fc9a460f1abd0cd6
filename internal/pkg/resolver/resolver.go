// Package resolver orchestrates the asynchronous resolution of the visitor ID
// and its synchronization with the platform advertising ID.
//
// The resolution and sync outcomes are handed off between the scheduler
// goroutines and the polling caller through two futures. VisitorID never
// blocks: it polls the resolution future and opportunistically re-drives
// failed cycles.
package resolver

import (
	"context"

	"github.com/sasha-s/go-deadlock"

	"github.com/mcvid/mcvid/internal/pkg/api/identityapi"
	"github.com/mcvid/mcvid/internal/pkg/future"
	"github.com/mcvid/mcvid/internal/pkg/log"
	"github.com/mcvid/mcvid/internal/pkg/schedule"
	"github.com/mcvid/mcvid/internal/pkg/store"
	"github.com/mcvid/mcvid/internal/pkg/utils/errors"
)

// DefaultIntegrationCode identifies the device advertising ID namespace.
const DefaultIntegrationCode = "DSID_20914"

// Client is the protocol client contract, see the identityapi package.
type Client interface {
	FetchVisitorID(ctx context.Context) (string, error)
	SyncIdentity(ctx context.Context, visitorID, integrationCode, customerID string, authState identityapi.AuthState) error
}

// AdvertisingIDProvider reads the platform advertising identifier.
// It may be slow and it may fail. An empty value means the identifier
// is not available or the user has limited tracking.
type AdvertisingIDProvider interface {
	AdvertisingID(ctx context.Context) (string, error)
}

// ErrorListener is invoked for every handled error, on the goroutine that
// detected it. Do not do heavy work in it, it can block scheduled tasks,
// and do not call back into the resolver.
type ErrorListener func(err error)

type dependencies interface {
	Logger() log.Logger
	Scheduler() *schedule.Scheduler
	IdentityClient() Client
	Store() store.Store
	AdvertisingIDProvider() AdvertisingIDProvider
}

// Resolver resolves and syncs the visitor ID without ever blocking the caller.
type Resolver struct {
	ctx             context.Context
	logger          log.Logger
	scheduler       *schedule.Scheduler
	client          Client
	store           store.Store
	advertising     AdvertisingIDProvider
	integrationCode string

	// pollLock serializes VisitorID/Start callers, so a future reset and the
	// following resubmission are atomic even with concurrent polling.
	pollLock   *deadlock.Mutex
	started    bool
	resolution *future.SettableFuture[string]
	sync       *future.SettableFuture[bool]
	// syncLock guards sync future reset + resubmission, the sync task can be
	// submitted from a scheduler goroutine and from a polling caller.
	syncLock *deadlock.Mutex

	listenerLock *deadlock.Mutex
	listener     ErrorListener
}

type Option func(*Resolver)

// WithIntegrationCode overrides the integration code sent with sync requests.
func WithIntegrationCode(code string) Option {
	return func(r *Resolver) {
		r.integrationCode = code
	}
}

// New creates the resolver and submits the first resolution task.
// Use NewStopped if the caller wants to control the start.
func New(ctx context.Context, d dependencies, opts ...Option) *Resolver {
	r := NewStopped(ctx, d, opts...)
	r.Start()
	return r
}

// NewStopped creates the resolver without submitting anything.
func NewStopped(ctx context.Context, d dependencies, opts ...Option) *Resolver {
	r := &Resolver{
		ctx:             ctx,
		logger:          d.Logger(),
		scheduler:       d.Scheduler(),
		client:          d.IdentityClient(),
		store:           d.Store(),
		advertising:     d.AdvertisingIDProvider(),
		integrationCode: DefaultIntegrationCode,
		pollLock:        &deadlock.Mutex{},
		resolution:      future.New[string](),
		sync:            future.New[bool](),
		syncLock:        &deadlock.Mutex{},
		listenerLock:    &deadlock.Mutex{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start submits the resolution task, repeated calls are no-ops.
func (r *Resolver) Start() {
	r.pollLock.Lock()
	defer r.pollLock.Unlock()
	if r.started {
		return
	}
	r.started = true
	schedule.Submit(r.ctx, r.scheduler, r.resolveTask, r.resolution, r.resolution.Generation())
}

// SetErrorListener registers the error callback, it replaces any previous one.
func (r *Resolver) SetErrorListener(listener ErrorListener) {
	r.listenerLock.Lock()
	defer r.listenerLock.Unlock()
	r.listener = listener
}

// VisitorID returns the resolved visitor ID, or an empty string if it is not
// available yet or cannot be resolved at all. It never blocks.
//
// If the last resolution cycle ended with an error, the error is reported and
// a fresh cycle is submitted, exactly once per observed error. The same
// applies to the sync future, without affecting the returned value.
func (r *Resolver) VisitorID() string {
	r.pollLock.Lock()
	defer r.pollLock.Unlock()

	value, err, done := r.resolution.Value()
	if !done {
		return ""
	}

	if err != nil {
		r.handleError(errors.PrefixError(err, "cannot resolve visitor ID, retrying"))
		generation := r.resolution.Reset()
		schedule.Submit(r.ctx, r.scheduler, r.resolveTask, r.resolution, generation)
		return ""
	}

	// An empty value is terminal, the service rejected the request,
	// no identifier is available and no retry will help.
	if value == "" {
		return ""
	}

	// Only to perform a sync retry if needed, the result is not awaited.
	if _, syncErr, syncDone := r.sync.Value(); syncDone && syncErr != nil {
		r.handleError(errors.PrefixError(syncErr, "cannot sync visitor ID, retrying"))
		r.submitSync(value)
	}

	return value
}

// resolveTask loads the visitor ID from the store or fetches it from the
// service, and submits the dependent sync task on success.
func (r *Resolver) resolveTask(ctx context.Context) (string, error) {
	// A store failure is a cache miss, never a reason to retry
	cached, err := r.store.Get()
	if err != nil {
		r.handleError(errors.PrefixError(err, "cannot read visitor ID from the store, ignored"))
	} else if cached != "" {
		r.submitSync(cached)
		return cached, nil
	}

	visitorID, err := r.client.FetchVisitorID(ctx)
	if err != nil {
		if identityapi.IsBadInput(err) {
			// Terminal, resolution succeeds with no value
			r.handleError(errors.PrefixError(err, "cannot get visitor ID from the service, giving up"))
			return "", nil
		}
		r.handleError(errors.PrefixError(err, "cannot get visitor ID from the service"))
		return "", err
	}

	// Best effort persistence
	if err := r.store.Set(visitorID); err != nil {
		r.handleError(errors.PrefixError(err, "cannot store visitor ID, ignored"))
	}

	r.submitSync(visitorID)
	return visitorID, nil
}

// syncTask links the visitor ID with the current advertising ID if possible
// and required. It resolves to true if the IDs are synced, and to false if
// the sync is intentionally skipped, the advertising ID is not available or
// the service rejected the request.
func (r *Resolver) syncTask(visitorID string) schedule.Operation[bool] {
	return func(ctx context.Context) (bool, error) {
		advertisingID, err := r.advertising.AdvertisingID(ctx)
		if err != nil {
			r.handleError(errors.PrefixError(err, "cannot read advertising ID, ignored"))
			advertisingID = ""
		}
		if advertisingID == "" {
			return false, nil
		}

		previous, err := r.store.SyncedAdvertisingID()
		if err != nil {
			r.handleError(errors.PrefixError(err, "cannot read previous synced advertising ID, ignored"))
			previous = ""
		}
		if advertisingID == previous {
			return true, nil
		}

		if err := r.client.SyncIdentity(ctx, visitorID, r.integrationCode, advertisingID, identityapi.AuthStateUnknown); err != nil {
			if identityapi.IsBadInput(err) {
				r.handleError(errors.PrefixError(err, "cannot sync visitor ID, giving up"))
				return false, nil
			}
			r.handleError(errors.PrefixError(err, "cannot sync visitor ID"))
			return false, err
		}

		// Best effort persistence
		if err := r.store.SetSyncedAdvertisingID(advertisingID); err != nil {
			r.handleError(errors.PrefixError(err, "cannot store advertising ID, ignored"))
		}

		return true, nil
	}
}

// submitSync starts a new sync cycle for the visitor ID.
func (r *Resolver) submitSync(visitorID string) {
	r.syncLock.Lock()
	defer r.syncLock.Unlock()
	generation := r.sync.Reset()
	schedule.Submit(r.ctx, r.scheduler, r.syncTask(visitorID), r.sync, generation)
}

// handleError logs the error and invokes the listener on the current goroutine.
func (r *Resolver) handleError(err error) {
	r.logger.Debugf("%s", err.Error())

	r.listenerLock.Lock()
	listener := r.listener
	r.listenerLock.Unlock()

	if listener != nil {
		listener(err)
	}
}

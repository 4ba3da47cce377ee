package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tOgg1/herald/internal/feed"
	"github.com/tOgg1/herald/internal/logging"
	"github.com/tOgg1/herald/internal/model"
	"github.com/tOgg1/herald/internal/notify"
)

// ErrLookup indicates an enrichment lookup could not complete; the
// affected notification is skipped for that update only.
var ErrLookup = errors.New("engine: enrichment lookup failed")

// Getter is the request/response slice of the feed client used for
// queue and map enrichment.
type Getter interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
}

// InvitationReconciler consumes full invitation snapshots. Absence
// from a snapshot is the only removal signal, so each update is diffed
// against the previously seen id set.
type InvitationReconciler struct {
	feed  Getter
	icons IconResolver
	sink  notify.Sink
	log   zerolog.Logger

	mu       sync.Mutex
	previous map[string]struct{}
}

// NewInvitationReconciler creates a reconciler with an empty snapshot
// cursor.
func NewInvitationReconciler(getter Getter, icons IconResolver, sink notify.Sink) *InvitationReconciler {
	return &InvitationReconciler{
		feed:     getter,
		icons:    icons,
		sink:     sink,
		log:      logging.Component("invitations"),
		previous: make(map[string]struct{}),
	}
}

// Apply reconciles one snapshot. Ids present before but absent now are
// hidden; the cursor is replaced wholesale; every invitation in the
// snapshot is then shown or hidden on its own merits. The two phases
// operate on disjoint id sets by construction.
func (r *InvitationReconciler) Apply(ctx context.Context, invitations []model.Invitation) {
	current := make(map[string]struct{}, len(invitations))
	for _, inv := range invitations {
		current[inv.ID] = struct{}{}
	}

	r.mu.Lock()
	var removed []string
	for id := range r.previous {
		if _, ok := current[id]; !ok {
			removed = append(removed, id)
		}
	}
	r.previous = current
	r.mu.Unlock()

	sort.Strings(removed)
	for _, id := range removed {
		r.sink.HideInvitation(id)
	}

	for _, inv := range invitations {
		if !inv.Displayable() {
			// Hiding a never-shown invite is a sink-side no-op.
			r.sink.HideInvitation(inv.ID)
			continue
		}
		if err := r.show(ctx, inv); err != nil {
			r.log.Debug().Err(err).Str("invitation_id", inv.ID).Msg("skipping notification")
		}
	}
}

// show enriches a displayable invitation and emits its notification.
// The map lookup depends on the queue lookup's result.
func (r *InvitationReconciler) show(ctx context.Context, inv model.Invitation) error {
	qdata, err := r.feed.Get(ctx, feed.QueuePath(inv.GameConfig.QueueID))
	if err != nil {
		return fmt.Errorf("%w: queue %d: %v", ErrLookup, inv.GameConfig.QueueID, err)
	}
	queue, err := model.ParseQueue(qdata)
	if err != nil {
		return fmt.Errorf("%w: queue %d: %v", ErrLookup, inv.GameConfig.QueueID, err)
	}

	mdata, err := r.feed.Get(ctx, feed.MapPath(queue.MapID))
	if err != nil {
		return fmt.Errorf("%w: map %d: %v", ErrLookup, queue.MapID, err)
	}
	gameMap, err := model.ParseGameMap(mdata)
	if err != nil {
		return fmt.Errorf("%w: map %d: %v", ErrLookup, queue.MapID, err)
	}

	iconPath, err := r.icons.ResolveIconPath(ctx, inv.FromName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLookup, err)
	}

	label := fmt.Sprintf("%s - %s", gameMap.Name, queue.ShortName)
	r.sink.ShowInvitation(inv.ID, iconPath, inv.FromName, label)
	return nil
}

package audit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"radius-admin/internal/bucketing"
	"radius-admin/internal/models"
	"radius-admin/internal/util"
)

// Sink receives finished audit records. Implementations must never
// mutate the record.
type Sink interface {
	Name() string
	Write(ctx context.Context, rec *models.AuditRecord) error
}

// Reader queries stored audit records, newest first.
type Reader interface {
	Query(ctx context.Context, f Filter) ([]models.AuditRecord, error)
}

// Searcher runs free-text search over audit records.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.AuditRecord, error)
}

// Filter narrows an audit query. Zero values mean "no constraint".
type Filter struct {
	Action models.AuditAction
	Status models.AuditStatus
	Actor  string
	From   time.Time
	To     time.Time
	Limit  int
}

// Entry is what callers hand to Record. The recorder fills in ID,
// timestamp and bucket.
type Entry struct {
	Actor    string
	Action   models.AuditAction
	Target   string
	ClientIP string
	Status   models.AuditStatus
	Details  string
}

// Recorder fans audit entries out to every configured sink. Recording
// never blocks or fails the action being audited: sink errors are
// logged and swallowed.
type Recorder struct {
	sinks   []Sink
	buckets *bucketing.Manager
	now     func() time.Time
}

func NewRecorder(buckets *bucketing.Manager, sinks ...Sink) *Recorder {
	return &Recorder{
		sinks:   sinks,
		buckets: buckets,
		now:     time.Now,
	}
}

// Record builds the audit record and writes it to all sinks. It has no
// error return on purpose: a failed audit write must not undo a login
// or a subscriber change that already happened.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if !e.Action.Valid() {
		util.Error("Dropping audit entry with unknown action",
			zap.String("action", string(e.Action)),
			zap.String("actor", e.Actor))
		return
	}
	if !e.Status.Valid() {
		e.Status = models.StatusInfo
	}

	rec := &models.AuditRecord{
		ID:          uuid.New(),
		Timestamp:   r.now().UTC(),
		Actor:       e.Actor,
		Action:      e.Action,
		Target:      e.Target,
		ClientIP:    e.ClientIP,
		Status:      e.Status,
		Details:     e.Details,
		EventBucket: r.buckets.EventBucket(e.Actor),
	}

	for _, sink := range r.sinks {
		if err := sink.Write(ctx, rec); err != nil {
			util.Error("Audit sink write failed",
				zap.String("sink", sink.Name()),
				zap.String("action", string(rec.Action)),
				zap.Error(err))
		}
	}
}

// secretKeys are detail keys whose values never reach the trail.
var secretKeys = map[string]bool{
	"password":         true,
	"new_password":     true,
	"current_password": true,
	"secret":           true,
	"radius_secret":    true,
	"token":            true,
}

// Details builds a "k=v k=v" detail string from key/value pairs,
// masking any secret-bearing key. An odd trailing key is dropped.
func Details(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		key, value := pairs[i], pairs[i+1]
		if secretKeys[strings.ToLower(key)] {
			value = "[redacted]"
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(value)
	}
	return b.String()
}

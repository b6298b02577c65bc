package webhook

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	graphmap "github.com/reoring/graphmap"
	"github.com/reoring/graphmap/node"
)

// ObjectUser is the notification object whose changes carry their verb next
// to the value instead of inside it.
const ObjectUser = "user"

// Notification is the body of a webhook delivery.
type Notification struct {
	Object  string                `graph:"object"`
	Entries graphmap.List[*Entry] `graph:"entry"`
}

// Entry groups the changes of one object id.
type Entry struct {
	ID        string                        `graph:"id"`
	UID       string                        `graph:"uid"`
	RawTime   node.Value                    `graph:"time"`
	Time      time.Time                     `graph:"-"`
	Changes   graphmap.List[*Change]        `graph:"changes"`
	Messaging graphmap.List[*MessagingItem] `graph:"messaging"`
}

func (e *Entry) MappingCompleted() error {
	e.Time = graphTime(e.RawTime)
	return nil
}

// Change is one field change. Value is filled by the Resolver from RawValue.
type Change struct {
	Field    string      `graph:"field"`
	Verb     string      `graph:"verb"`
	RawValue node.Value  `graph:"value"`
	Value    ChangeValue `graph:"-"`
	// Err is the mapping failure of a registered shape. Value then holds a
	// FallbackValue with the raw payload.
	Err error `graph:"-"`
}

// Participant is the sender or recipient of a messaging item.
type Participant struct {
	ID      string `graph:"id"`
	UserRef string `graph:"user_ref"`
}

// MessagingItem is a Messenger platform event. Event bodies stay raw; which
// one is set tells the event type.
type MessagingItem struct {
	Sender    Participant `graph:"sender"`
	Recipient Participant `graph:"recipient"`
	Timestamp int64       `graph:"timestamp"`
	Time      time.Time   `graph:"-"`
	Message   node.Value  `graph:"message"`
	Postback  node.Value  `graph:"postback"`
	Delivery  node.Value  `graph:"delivery"`
	Read      node.Value  `graph:"read"`
	Reaction  node.Value  `graph:"reaction"`
	Optin     node.Value  `graph:"optin"`
	Referral  node.Value  `graph:"referral"`
}

func (m *MessagingItem) MappingCompleted() error {
	if m.Timestamp != 0 {
		m.Time = time.UnixMilli(m.Timestamp).UTC()
	}
	return nil
}

// ParseNotification parses data with the resolver's mapper and resolves the
// value of every change.
func (r *Resolver) ParseNotification(data []byte) (*Notification, error) {
	var n Notification
	if err := r.mapper.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	// per-change failures stay on Change.Err
	_ = r.ResolveAll(&n)
	return &n, nil
}

// ResolveAll fills Change.Value for every change of n. For the user object the
// change's own verb is passed as the contextual verb. A change that fails to
// map gets a FallbackValue and its rebased error in Change.Err; the rest of
// the notification is still resolved. The returned error joins those
// per-change errors.
func (r *Resolver) ResolveAll(n *Notification) error {
	var errs []error
	for i, e := range n.Entries.All() {
		if e == nil {
			continue
		}
		for j, ch := range e.Changes.All() {
			if ch == nil {
				continue
			}
			var contextual string
			if n.Object == ObjectUser {
				contextual = ch.Verb
			}
			cv, err := r.Resolve(ch.Field, ch.RawValue, contextual)
			if err != nil {
				ch.Err = rebase(err, "entry["+strconv.Itoa(i)+"].changes["+strconv.Itoa(j)+"].value")
				errs = append(errs, ch.Err)
				key := DiscriminatorKey(ch.Field, ch.RawValue, contextual)
				r.log.Warn("change did not map, using fallback", slog.String("key", key), slog.Any("err", ch.Err))
				cv = &FallbackValue{ChangeMeta: ChangeMeta{key: key}, Raw: ch.RawValue}
			}
			ch.Value = cv
		}
	}
	return errors.Join(errs...)
}

// ParseNotification uses a Resolver with default options.
func ParseNotification(data []byte) (*Notification, error) {
	return defaultResolver().ParseNotification(data)
}

// rebase prefixes the path of a mapping error with the location of the value
// inside the notification.
func rebase(err error, prefix string) error {
	e, ok := graphmap.AsError(err)
	if !ok {
		return err
	}
	out := *e
	switch {
	case e.Path == "":
		out.Path = prefix
	case strings.HasPrefix(e.Path, "["):
		out.Path = prefix + e.Path
	default:
		out.Path = prefix + "." + e.Path
	}
	return &out
}

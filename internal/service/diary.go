package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/saadjs/kcal-sync/internal/model"
)

// ErrEntryNotFound is returned when an entry id is not among today's entries.
var ErrEntryNotFound = errors.New("entry not found in today's diary")

// Ledger is the part of the reconciliation controller the diary drives.
// *reconcile.Controller satisfies it.
type Ledger interface {
	AddEntry(e model.Entry)
	ApplyDeletion(e model.Entry)
	Entries() []model.Entry
	Refresh(ctx context.Context) error
}

// EntryWriter persists diary writes. *backend.Client satisfies it.
type EntryWriter interface {
	CreateEntry(ctx context.Context, e model.Entry) error
	DeleteEntry(ctx context.Context, id int64) error
}

// Diary applies writes to the ledger first and then to the server. When the
// server write fails the ledger is refreshed from server truth and the write
// error is returned.
type Diary struct {
	Ledger Ledger
	Writer EntryWriter
	User   string
	Logger logrus.FieldLogger
	Now    func() time.Time
}

func (d *Diary) logger() logrus.FieldLogger {
	if d.Logger == nil {
		return logrus.StandardLogger()
	}
	return d.Logger
}

// Log records e optimistically and persists it. The returned entry carries
// the LocalID, user and timestamps that were filled in.
func (d *Diary) Log(ctx context.Context, e model.Entry) (model.Entry, error) {
	e.Name = strings.TrimSpace(e.Name)
	if e.UserID == "" {
		e.UserID = d.User
	}
	if e.LocalID == "" {
		e.LocalID = model.NewLocalEntryID()
	}
	if e.ConsumedAt.IsZero() {
		if d.Now != nil {
			e.ConsumedAt = d.Now()
		} else {
			e.ConsumedAt = time.Now()
		}
	}
	if e.Meal == "" {
		e.Meal = model.MealSnack
	}
	if err := e.Validate(); err != nil {
		return model.Entry{}, err
	}

	d.Ledger.AddEntry(e)
	if err := d.Writer.CreateEntry(ctx, e); err != nil {
		d.resync(ctx, "log", err)
		return e, fmt.Errorf("save entry %q: %w", e.Name, err)
	}
	return e, nil
}

// Delete removes today's entry with server id id.
func (d *Diary) Delete(ctx context.Context, id int64) (model.Entry, error) {
	if id <= 0 {
		return model.Entry{}, fmt.Errorf("entry id must be > 0")
	}
	var target *model.Entry
	for _, e := range d.Ledger.Entries() {
		if e.ID == id {
			e := e
			target = &e
			break
		}
	}
	if target == nil {
		return model.Entry{}, fmt.Errorf("entry %d: %w", id, ErrEntryNotFound)
	}

	d.Ledger.ApplyDeletion(*target)
	if err := d.Writer.DeleteEntry(ctx, id); err != nil {
		d.resync(ctx, "delete", err)
		return *target, fmt.Errorf("delete entry %d: %w", id, err)
	}
	return *target, nil
}

func (d *Diary) resync(ctx context.Context, op string, cause error) {
	log := d.logger().WithError(cause).WithField("op", op)
	log.Warn("write failed, refreshing from server")
	if err := d.Ledger.Refresh(ctx); err != nil {
		log.WithField("refresh_error", err.Error()).Error("refresh after failed write also failed")
	}
}

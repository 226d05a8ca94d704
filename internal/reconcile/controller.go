// Package reconcile brings the local day ledger in line with the server's
// daily record, creating the record on first access.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/saadjs/kcal-sync/internal/backend"
	"github.com/saadjs/kcal-sync/internal/ledger"
	"github.com/saadjs/kcal-sync/internal/metrics"
	"github.com/saadjs/kcal-sync/internal/model"
)

type State int

const (
	Idle State = iota
	Loading
	CreatePending
	Ready
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case CreatePending:
		return "create_pending"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNotLoaded is returned by Refresh before the first Load.
var ErrNotLoaded = errors.New("daily summary has not been loaded")

// Backend is the slice of the REST client the controller needs.
type Backend interface {
	GetDailyLog(ctx context.Context, user, date string) (backend.DailyLog, error)
	CreateDailyLog(ctx context.Context, user, date string) (backend.DailyLog, error)
	ListEntries(ctx context.Context, user, date string) ([]model.Entry, error)
}

// GoalSource supplies locally stored goal overrides.
type GoalSource interface {
	GoalOverrides(ctx context.Context) (model.GoalOverrides, error)
}

type Options struct {
	User string
	// Goals may be nil.
	Goals GoalSource
	// KeepStaleOnError keeps the last known-good summary, marked stale,
	// instead of resetting it when a reconciliation fails.
	KeepStaleOnError bool
	// Now defaults to time.Now. Its calendar date is "today".
	Now    func() time.Time
	Logger logrus.FieldLogger
}

// Controller owns the ledger for today. All methods are safe for concurrent
// use; at most one reconciliation runs at a time.
type Controller struct {
	backend Backend
	opts    Options
	log     logrus.FieldLogger

	mu      sync.Mutex
	state   State
	day     string
	ledger  *ledger.Ledger
	lastErr error
}

func New(b Backend, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	day := opts.Now().Format(model.DateLayout)
	return &Controller{
		backend: b,
		opts:    opts,
		log:     log.WithField("user", opts.User),
		day:     day,
		ledger:  ledger.New(day),
	}
}

// Load fetches today's record, creating it when the server has none. It is a
// no-op while another reconciliation is in flight.
func (c *Controller) Load(ctx context.Context) error {
	return c.run(ctx, false)
}

// Refresh is Load plus a re-fetch of today's entries, which replace the local
// list. Optimistic changes whose writes the server has not seen are lost.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	idle := c.state == Idle
	c.mu.Unlock()
	if idle {
		return ErrNotLoaded
	}
	return c.run(ctx, true)
}

func (c *Controller) run(ctx context.Context, withEntries bool) error {
	c.mu.Lock()
	if c.state == Loading || c.state == CreatePending {
		c.mu.Unlock()
		metrics.RecordReconciliation("skipped")
		return nil
	}
	today := c.opts.Now().Format(model.DateLayout)
	if today != c.day {
		c.log.WithFields(logrus.Fields{"from": c.day, "to": today}).Info("day rolled over")
		c.day = today
		c.ledger.Reset(today)
	}
	c.state = Loading
	c.mu.Unlock()

	log := c.log.WithField("date", today)
	dl, created, err := c.fetchOrCreate(ctx, today)
	if err != nil {
		return c.fail(today, err)
	}
	var entries []model.Entry
	if withEntries {
		entries, err = c.backend.ListEntries(ctx, c.opts.User, today)
		if err != nil {
			return c.fail(today, fmt.Errorf("list entries for %s: %w", today, err))
		}
		if entries == nil {
			entries = []model.Entry{}
		}
	}
	goals := c.goalOverrides(ctx)

	c.mu.Lock()
	c.ledger.Replace(summaryFromLog(dl, today, goals), entries)
	c.state = Ready
	c.lastErr = nil
	c.mu.Unlock()

	outcome := "ready"
	if created {
		outcome = "created"
	}
	metrics.RecordReconciliation(outcome)
	log.WithFields(logrus.Fields{"daily_log_id": dl.ID, "created": created}).Debug("daily record reconciled")
	return nil
}

func (c *Controller) fetchOrCreate(ctx context.Context, day string) (backend.DailyLog, bool, error) {
	dl, err := c.backend.GetDailyLog(ctx, c.opts.User, day)
	if err == nil {
		return dl, false, nil
	}
	if !backend.IsNotFound(err) {
		return backend.DailyLog{}, false, fmt.Errorf("fetch daily log for %s: %w", day, err)
	}

	c.mu.Lock()
	c.state = CreatePending
	c.mu.Unlock()

	dl, err = c.backend.CreateDailyLog(ctx, c.opts.User, day)
	if err != nil {
		return backend.DailyLog{}, false, fmt.Errorf("create daily log for %s: %w", day, err)
	}
	return dl, true, nil
}

func (c *Controller) fail(day string, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	known := c.ledger.Summary().DailyLogID != nil
	if c.opts.KeepStaleOnError && known {
		c.ledger.MarkStale(true)
	} else {
		c.ledger.Reset(day)
	}
	c.state = Error
	c.lastErr = err
	metrics.RecordReconciliation("error")
	c.log.WithError(err).WithFields(logrus.Fields{
		"date": day,
		"kind": backend.KindOf(err).String(),
	}).Warn("reconciliation failed")
	return err
}

func (c *Controller) goalOverrides(ctx context.Context) model.GoalOverrides {
	if c.opts.Goals == nil {
		return model.GoalOverrides{}
	}
	goals, err := c.opts.Goals.GoalOverrides(ctx)
	if err != nil {
		c.log.WithError(err).Warn("could not read goal overrides, using server goals")
		return model.GoalOverrides{}
	}
	return goals
}

func summaryFromLog(dl backend.DailyLog, day string, goals model.GoalOverrides) model.DailySummary {
	id := dl.ID
	s := model.DailySummary{
		Date:           day,
		DailyLogID:     &id,
		CaloriesEaten:  dl.Calories,
		CaloriesGoal:   dl.CaloriesGoal,
		CaloriesBurned: dl.CaloriesBurned,
		CarbsG:         dl.CarbsG,
		CarbsGoalG:     dl.CarbsGoalG,
		ProteinG:       dl.ProteinG,
		ProteinGoalG:   dl.ProteinGoalG,
		FatG:           dl.FatG,
		FatGoalG:       dl.FatGoalG,
		FiberG:         dl.FiberG,
		IronMg:         dl.IronMg,
		CalciumMg:      dl.CalciumMg,
		PotassiumMg:    dl.PotassiumMg,
		VitaminAUg:     dl.VitaminAUg,
		VitaminB12Ug:   dl.VitaminB12Ug,
		FolateUg:       dl.FolateUg,
		VitaminCMg:     dl.VitaminCMg,
		AlcoholG:       dl.AlcoholG,
		StandardDrinks: dl.StandardDrinks,
		CaffeineMg:     dl.CaffeineMg,
		WaterMl:        dl.WaterMl,
		WaterGoalMl:    dl.WaterGoalMl,
	}
	if v, ok := goals.Calories.Get(); ok {
		s.CaloriesGoal = int(v + 0.5)
	}
	if v, ok := goals.CarbsG.Get(); ok {
		s.CarbsGoalG = v
	}
	if v, ok := goals.ProteinG.Get(); ok {
		s.ProteinGoalG = v
	}
	if v, ok := goals.FatG.Get(); ok {
		s.FatGoalG = v
	}
	if v, ok := goals.WaterMl.Get(); ok {
		s.WaterGoalMl = v
	}
	return s
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Summary() model.DailySummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Summary()
}

func (c *Controller) Entries() []model.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Entries()
}

// LastError is the failure behind the Error state, or nil.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Day is the date the ledger currently describes.
func (c *Controller) Day() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.day
}

func (c *Controller) ApplyAddition(d model.Delta) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ledger.ApplyAddition(d)
}

// AddEntry records an optimistic entry and its contribution.
func (c *Controller) AddEntry(e model.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ledger.AddEntry(e)
}

// ApplyDeletion subtracts e and drops it from the entry list.
func (c *Controller) ApplyDeletion(e model.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ledger.ApplyDeletion(e)
}

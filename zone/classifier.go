package zone

import "time"

// Transition describes a change of state between two consecutive ticks.
type Transition struct {
	From      State
	To        State
	Message   string
	Emoji     string
	Intensity float64
	Time      time.Time
}

// Observer receives transitions.
type Observer func(Transition)

// Subscription identifies a registered observer.
type Subscription int

type subscriber struct {
	id Subscription
	fn Observer
}

// Classifier tracks the current state across ticks and notifies
// subscribers, in registration order, whenever it changes. It is not safe
// for concurrent use.
type Classifier struct {
	cfg     Config
	name    string
	current State
	prev    State

	subs   []subscriber
	nextID Subscription
}

func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg.Normalize()}
}

// SetConfig replaces the configuration; it applies from the next Update.
func (c *Classifier) SetConfig(cfg Config) {
	c.cfg = cfg.Normalize()
}

func (c *Classifier) Config() Config { return c.cfg }

// SetName sets the display name used in transition messages.
func (c *Classifier) SetName(name string) {
	c.name = name
}

func (c *Classifier) Current() State  { return c.current }
func (c *Classifier) Previous() State { return c.prev }

// Subscribe registers fn and returns a handle for Unsubscribe.
func (c *Classifier) Subscribe(fn Observer) Subscription {
	c.nextID++
	c.subs = append(c.subs, subscriber{id: c.nextID, fn: fn})
	return c.nextID
}

func (c *Classifier) Unsubscribe(id Subscription) {
	for i, s := range c.subs {
		if s.id == id {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

// Update classifies v. When the state differs from the previous tick the
// transition is delivered to every subscriber and returned with ok=true.
func (c *Classifier) Update(v float64, now time.Time) (tr Transition, ok bool) {
	next := Classify(v, c.cfg)
	c.prev = c.current
	if next == c.current {
		return Transition{}, false
	}
	c.current = next

	msg, emoji := Message(next, c.name)
	tr = Transition{
		From:      c.prev,
		To:        next,
		Message:   msg,
		Emoji:     emoji,
		Intensity: v,
		Time:      now,
	}
	for _, s := range c.subs {
		s.fn(tr)
	}
	return tr, true
}

// Reset returns to Silent without notifying subscribers.
func (c *Classifier) Reset() {
	c.current, c.prev = Silent, Silent
}

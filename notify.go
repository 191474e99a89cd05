package main

import "time"

type Notification struct {
	ID      int
	Title   string
	Message string
	Glyph   string
	Created time.Time

	// Leaving is set once the notification has started its exit; it is
	// removed when the grace period after LeaveAt is over.
	Leaving bool
	LeaveAt time.Time
}

// NotificationCenter queues toast notifications. Each one lives for ttl,
// then fades for grace before it is dropped. Dismiss starts the fade early.
type NotificationCenter struct {
	items  []Notification
	nextID int
	ttl    time.Duration
	grace  time.Duration
	now    func() time.Time
}

func NewNotificationCenter(ttl, grace time.Duration) *NotificationCenter {
	if ttl <= 0 {
		ttl = notificationTTL
	}
	return &NotificationCenter{ttl: ttl, grace: grace, now: time.Now}
}

func (c *NotificationCenter) Emit(title, message, glyph string) Notification {
	n := Notification{
		ID:      c.nextID,
		Title:   title,
		Message: message,
		Glyph:   glyph,
		Created: c.now(),
	}
	c.nextID++
	c.items = append(c.items, n)
	return n
}

func (c *NotificationCenter) Dismiss(id int) bool {
	for i := range c.items {
		if c.items[i].ID == id && !c.items[i].Leaving {
			c.items[i].Leaving = true
			c.items[i].LeaveAt = c.now()
			return true
		}
	}
	return false
}

// DismissLatest dismisses the newest notification still showing.
func (c *NotificationCenter) DismissLatest() bool {
	for i := len(c.items) - 1; i >= 0; i-- {
		if !c.items[i].Leaving {
			return c.Dismiss(c.items[i].ID)
		}
	}
	return false
}

// Expire advances the lifecycle to now and reports whether anything changed.
func (c *NotificationCenter) Expire(now time.Time) bool {
	changed := false
	kept := c.items[:0]
	for _, n := range c.items {
		if !n.Leaving && !now.Before(n.Created.Add(c.ttl)) {
			n.Leaving = true
			n.LeaveAt = n.Created.Add(c.ttl)
			changed = true
		}
		if n.Leaving && !now.Before(n.LeaveAt.Add(c.grace)) {
			changed = true
			continue
		}
		kept = append(kept, n)
	}
	c.items = kept
	return changed
}

func (c *NotificationCenter) Active() []Notification {
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

func (c *NotificationCenter) Len() int {
	return len(c.items)
}

// Tooltip is the hover card shown for an element.
type Tooltip struct {
	visible bool
	Element Element
	Body    string
	X, Y    int
}

func (t *Tooltip) Show(el Element, x, y int) {
	t.visible = true
	t.Element = el
	t.Body = DescribeElement(el.Name)
	t.X, t.Y = x, y
}

func (t *Tooltip) Hide() {
	t.visible = false
}

func (t *Tooltip) Visible() bool {
	return t.visible
}

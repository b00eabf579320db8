package reminders

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/picklepete/icloudgo/internal/icloud"
)

// Collection is one reminder list.
type Collection struct {
	GUID      string `json:"guid"`
	Title     string `json:"title"`
	Ctag      string `json:"ctag,omitempty"`
	Order     int    `json:"order,omitempty"`
	Color     string `json:"color,omitempty"`
	Completed int    `json:"completedCount,omitempty"`
}

// Reminder is one entry of a reminder list. Due is the wire date list: a
// packed date integer followed by year, month, day, hour, and minute.
type Reminder struct {
	GUID        string `json:"guid"`
	PGUID       string `json:"pGuid"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Due         []int  `json:"dueDate,omitempty"`
	Priority    int    `json:"priority,omitempty"`
	Completed   bool   `json:"completed,omitempty"`
}

// DueTime converts the due date list into a time.Time in the given
// location, zero when no due date is set.
func (r *Reminder) DueTime(loc *time.Location) time.Time {
	if len(r.Due) < 6 {
		return time.Time{}
	}
	return time.Date(r.Due[1], time.Month(r.Due[2]), r.Due[3], r.Due[4], r.Due[5], 0, 0, loc)
}

// Client provides access to the reminders web service.
type Client struct {
	requester icloud.Requester
	endpoint  string
	timezone  string

	collections []Collection
	byList      map[string][]Reminder
}

// NewClient creates a client for the given reminders service root.
func NewClient(requester icloud.Requester, serviceRoot, timezone string) (*Client, error) {
	if serviceRoot == "" {
		return nil, fmt.Errorf("serviceRoot cannot be empty")
	}
	if timezone == "" {
		timezone = time.Local.String()
	}
	return &Client{
		requester: requester,
		endpoint:  serviceRoot + "/rd",
		timezone:  timezone,
	}, nil
}

func (c *Client) baseParams() url.Values {
	return url.Values{
		"lang":          {"en-us"},
		"usertz":        {c.timezone},
		"clientVersion": {"4.0"},
	}
}

// Refresh fetches all collections and their reminders.
func (c *Client) Refresh(ctx context.Context) error {
	resp, err := c.requester.Get(ctx, c.endpoint+"/startup", c.baseParams())
	if err != nil {
		return fmt.Errorf("failed to fetch reminders: %w", err)
	}

	var payload struct {
		Collections []Collection `json:"Collections"`
		Reminders   []Reminder   `json:"Reminders"`
	}
	if err := resp.JSON(&payload); err != nil {
		return err
	}

	c.collections = payload.Collections
	c.byList = make(map[string][]Reminder)
	for _, reminder := range payload.Reminders {
		c.byList[reminder.PGUID] = append(c.byList[reminder.PGUID], reminder)
	}
	return nil
}

// Collections returns the reminder lists from the last refresh.
func (c *Client) Collections() []Collection {
	return c.collections
}

// Reminders returns the entries of one collection from the last refresh.
func (c *Client) Reminders(collectionGUID string) []Reminder {
	return c.byList[collectionGUID]
}

// Add creates a reminder. The collection title selects the target list;
// an unknown or empty title files the reminder into the default tasks
// list. A nil due time creates a reminder without a due date.
func (c *Client) Add(ctx context.Context, title, description, collectionTitle string, due *time.Time) error {
	pGUID := "tasks"
	for _, collection := range c.collections {
		if collection.Title == collectionTitle {
			pGUID = collection.GUID
			break
		}
	}

	var dueDates []int
	if due != nil {
		packed, err := strconv.Atoi(fmt.Sprintf("%d%d%d", due.Year(), int(due.Month()), due.Day()))
		if err != nil {
			return fmt.Errorf("failed to encode due date: %w", err)
		}
		dueDates = []int{packed, due.Year(), int(due.Month()), due.Day(), due.Hour(), due.Minute()}
	}

	body := map[string]any{
		"Reminders": map[string]any{
			"title":               title,
			"description":         description,
			"pGuid":               pGUID,
			"etag":                nil,
			"order":               nil,
			"priority":            0,
			"recurrence":          nil,
			"alarms":              []any{},
			"startDate":           nil,
			"startDateTz":         nil,
			"startDateIsAllDay":   false,
			"completedDate":       nil,
			"dueDate":             dueDates,
			"dueDateIsAllDay":     false,
			"lastModifiedDate":    nil,
			"createdDate":         nil,
			"isFamily":            nil,
			"createdDateExtended": time.Now().UnixMilli(),
			"guid":                uuid.NewString(),
		},
		"ClientState": map[string]any{
			"Collections": c.collections,
		},
	}

	_, err := c.requester.Post(ctx, c.endpoint+"/reminders/tasks", c.baseParams(), body)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

package reminders

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picklepete/icloudgo/internal/icloud"
)

type fakeRequester struct {
	responses map[string]string
	posts     map[string]any
}

func (f *fakeRequester) Get(ctx context.Context, endpoint string, params url.Values) (*icloud.Response, error) {
	return f.respond(endpoint)
}

func (f *fakeRequester) Post(ctx context.Context, endpoint string, params url.Values, body any) (*icloud.Response, error) {
	if f.posts == nil {
		f.posts = make(map[string]any)
	}
	for suffix := range f.responses {
		if strings.HasSuffix(endpoint, suffix) {
			f.posts[suffix] = body
		}
	}
	return f.respond(endpoint)
}

func (f *fakeRequester) respond(endpoint string) (*icloud.Response, error) {
	for suffix, body := range f.responses {
		if strings.HasSuffix(endpoint, suffix) {
			return &icloud.Response{StatusCode: 200, Body: []byte(body)}, nil
		}
	}
	return nil, fmt.Errorf("unexpected endpoint: %s", endpoint)
}

const startupFixture = `{
	"Collections": [
		{"guid": "col-1", "title": "Shopping", "ctag": "c1"},
		{"guid": "col-2", "title": "Work", "ctag": "c2"}
	],
	"Reminders": [
		{"guid": "rem-1", "pGuid": "col-1", "title": "Milk"},
		{"guid": "rem-2", "pGuid": "col-1", "title": "Bread", "dueDate": [2018719, 2018, 7, 19, 9, 0]},
		{"guid": "rem-3", "pGuid": "col-2", "title": "Report"}
	]
}`

func newTestClient(t *testing.T) (*Client, *fakeRequester) {
	t.Helper()

	f := &fakeRequester{responses: map[string]string{
		"/rd/startup":         startupFixture,
		"/rd/reminders/tasks": `{}`,
	}}
	c, err := NewClient(f, "https://p10-remindersws.icloud.com", "UTC")
	require.NoError(t, err)
	require.NoError(t, c.Refresh(context.Background()))
	return c, f
}

func TestRefreshGroupsByCollection(t *testing.T) {
	c, _ := newTestClient(t)

	require.Len(t, c.Collections(), 2)
	assert.Len(t, c.Reminders("col-1"), 2)
	assert.Len(t, c.Reminders("col-2"), 1)
	assert.Empty(t, c.Reminders("unknown"))

	due := c.Reminders("col-1")[1].DueTime(time.UTC)
	assert.Equal(t, time.Date(2018, 7, 19, 9, 0, 0, 0, time.UTC), due)
}

func TestAddTargetsNamedCollection(t *testing.T) {
	c, f := newTestClient(t)

	due := time.Date(2018, 7, 19, 9, 0, 0, 0, time.UTC)
	require.NoError(t, c.Add(context.Background(), "Call dentist", "ask about Friday", "Work", &due))

	body := f.posts["/rd/reminders/tasks"].(map[string]any)
	reminder := body["Reminders"].(map[string]any)
	assert.Equal(t, "Call dentist", reminder["title"])
	assert.Equal(t, "col-2", reminder["pGuid"])
	assert.Equal(t, []int{2018719, 2018, 7, 19, 9, 0}, reminder["dueDate"])
	assert.NotEmpty(t, reminder["guid"])
}

func TestAddFallsBackToTasksList(t *testing.T) {
	c, f := newTestClient(t)

	require.NoError(t, c.Add(context.Background(), "Loose end", "", "No Such List", nil))

	reminder := f.posts["/rd/reminders/tasks"].(map[string]any)["Reminders"].(map[string]any)
	assert.Equal(t, "tasks", reminder["pGuid"])
	assert.Nil(t, reminder["dueDate"])
}

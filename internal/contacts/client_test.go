package contacts

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/picklepete/icloudgo/internal/icloud"
)

type fakeRequester struct {
	responses map[string]string
	params    map[string]url.Values
}

func (f *fakeRequester) Get(ctx context.Context, endpoint string, params url.Values) (*icloud.Response, error) {
	if f.params == nil {
		f.params = make(map[string]url.Values)
	}
	for suffix, body := range f.responses {
		if strings.HasSuffix(endpoint, suffix) {
			f.params[suffix] = params
			return &icloud.Response{StatusCode: 200, Body: []byte(body)}, nil
		}
	}
	return nil, fmt.Errorf("unexpected endpoint: %s", endpoint)
}

func (f *fakeRequester) Post(ctx context.Context, endpoint string, params url.Values, body any) (*icloud.Response, error) {
	return f.Get(ctx, endpoint, params)
}

func TestAll(t *testing.T) {
	f := &fakeRequester{responses: map[string]string{
		"/co/startup": `{
			"prefToken": "pref-1",
			"syncToken": "sync-1",
			"contacts": []
		}`,
		"/co/contacts": `{
			"contacts": [
				{
					"contactId": "c-1",
					"firstName": "Ada",
					"lastName": "Lovelace",
					"phones": [{"field": "+44123", "label": "MOBILE"}],
					"emailAddresses": [{"field": "ada@example.com"}],
					"birthday": "1815-12-10"
				},
				{"contactId": "c-2", "companyName": "Acme Inc"}
			]
		}`,
	}}
	c, err := NewClient(f, "https://p10-contactsws.icloud.com")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	contacts, err := c.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("got %d contacts, want 2", len(contacts))
	}

	if got := contacts[0].DisplayName(); got != "Ada Lovelace" {
		t.Errorf("DisplayName() = %q, want Ada Lovelace", got)
	}
	if got := contacts[1].DisplayName(); got != "Acme Inc" {
		t.Errorf("DisplayName() = %q, want Acme Inc", got)
	}
	if len(contacts[0].Phones) != 1 || contacts[0].Phones[0].Field != "+44123" {
		t.Errorf("unexpected phones: %+v", contacts[0].Phones)
	}

	// Untyped fields stay reachable through the raw payload.
	if contacts[0].Raw["birthday"] != "1815-12-10" {
		t.Errorf("Raw[birthday] = %v", contacts[0].Raw["birthday"])
	}

	// The second call must carry the tokens from startup.
	params := f.params["/co/contacts"]
	if params.Get("prefToken") != "pref-1" || params.Get("syncToken") != "sync-1" {
		t.Errorf("sync tokens not forwarded: %v", params)
	}
	if params.Get("order") != "last,first" {
		t.Errorf("order param = %q", params.Get("order"))
	}
}

package contacts

import "encoding/json"

// Phone is one phone number entry of a contact.
type Phone struct {
	Field string `json:"field"`
	Label string `json:"label,omitempty"`
}

// Email is one email address entry of a contact.
type Email struct {
	Field string `json:"field"`
	Label string `json:"label,omitempty"`
}

// Contact is one address book entry. Raw holds the complete payload for
// fields the typed record does not cover.
type Contact struct {
	ContactID   string
	FirstName   string
	LastName    string
	CompanyName string
	Phones      []Phone
	Emails      []Email
	Raw         map[string]any
}

// UnmarshalJSON fills the typed fields and keeps the full payload in Raw.
func (c *Contact) UnmarshalJSON(data []byte) error {
	var fields struct {
		ContactID   string  `json:"contactId"`
		FirstName   string  `json:"firstName"`
		LastName    string  `json:"lastName"`
		CompanyName string  `json:"companyName"`
		Phones      []Phone `json:"phones"`
		Emails      []Email `json:"emailAddresses"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.ContactID = fields.ContactID
	c.FirstName = fields.FirstName
	c.LastName = fields.LastName
	c.CompanyName = fields.CompanyName
	c.Phones = fields.Phones
	c.Emails = fields.Emails
	c.Raw = raw
	return nil
}

// DisplayName returns "First Last", falling back to the company name for
// contacts without a person name.
func (c *Contact) DisplayName() string {
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.LastName != "":
		return c.LastName
	case c.FirstName != "":
		return c.FirstName
	default:
		return c.CompanyName
	}
}

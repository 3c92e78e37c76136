package contact

// Payload is a submitted contact request: a person profile plus a free-text note
type Payload struct {
	Person PersonParams `json:"person"`
	Notes  string       `json:"notes"`
}

// PersonParams is the as-submitted person. ID is optional; when absent the
// pipeline tries to match the email against the CRM before choosing create
// vs. update.
type PersonParams struct {
	ID              *int64  `json:"id"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email"`
	Phone           *string `json:"phone"`
	Mobile          *string `json:"mobile"`
	WorkPhoneNumber *string `json:"work_phone_number"`
}

// The create and update payloads are deliberately distinct types: the CRM is
// sent the identity fields only on create. Updates carry just the campaign
// tag, the point person and whichever optional phone fields were submitted.

type personCreate struct {
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email"`
	Phone           *string `json:"phone,omitempty"`
	Mobile          *string `json:"mobile,omitempty"`
	WorkPhoneNumber *string `json:"work_phone_number,omitempty"`
	Tags            []string `json:"tags"`
	ParentID        int64    `json:"parent_id"`
}

type personUpdate struct {
	Tags            []string `json:"tags"`
	ParentID        int64    `json:"parent_id"`
	Phone           *string  `json:"phone,omitempty"`
	Mobile          *string  `json:"mobile,omitempty"`
	WorkPhoneNumber *string  `json:"work_phone_number,omitempty"`
}

type personCreateEnvelope struct {
	Person personCreate `json:"person"`
}

type personUpdateEnvelope struct {
	Person personUpdate `json:"person"`
}

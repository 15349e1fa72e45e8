package validate

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"petlink/pkg/domain"
)

// Field names, matching the JSON field each rule guards.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldRole        = "role"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStartDate   = "start_date"
	FieldEndDate     = "end_date"
	FieldStatus      = "status"
	FieldPrice       = "price"
	FieldContent     = "content"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError collects every violated field of a form. It is never sent
// to the server.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

type collector map[string]string

func (c collector) add(field, msg string) {
	if _, exists := c[field]; !exists {
		c[field] = msg
	}
}

func (c collector) err() error {
	if len(c) == 0 {
		return nil
	}
	return &ValidationError{Fields: map[string]string(c)}
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// Registration checks a sign-up form. All fields are checked.
func Registration(username, email, password string, role domain.UserRole) error {
	c := collector{}
	checkUsername(c, username)
	checkEmail(c, email)
	checkPassword(c, password)
	checkRole(c, role)
	return c.err()
}

// Profile checks a profile edit. An empty password means "keep current".
func Profile(username, email string, role domain.UserRole, password string) error {
	c := collector{}
	checkUsername(c, username)
	checkEmail(c, email)
	checkRole(c, role)
	if strings.TrimSpace(password) != "" {
		checkPassword(c, password)
	}
	return c.err()
}

func checkUsername(c collector, username string) {
	if n := length(username); n < 3 || n > 50 {
		c.add(FieldUsername, "Username must be between 3 and 50 characters.")
	}
}

func checkEmail(c collector, email string) {
	if !emailPattern.MatchString(email) {
		c.add(FieldEmail, "Please enter a valid email address.")
	}
}

func checkPassword(c collector, password string) {
	if n := length(password); n < 8 || n > 128 {
		c.add(FieldPassword, "Password must be between 8 and 128 characters.")
	}
}

func checkRole(c collector, role domain.UserRole) {
	if !role.Valid() {
		c.add(FieldRole, "Role must be either 'owner' or 'petsitter'.")
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// CanonicalLayout is the instant format sent to the server.
const CanonicalLayout = "2006-01-02T15:04:05.000Z"

// ParseDate accepts the date inputs a user may type. Zone-less values are
// read in loc.
func ParseDate(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CanonicalDate renders value as a UTC instant with millisecond precision.
func CanonicalDate(value string, loc *time.Location) (string, bool) {
	t, ok := ParseDate(value, loc)
	if !ok {
		return "", false
	}
	return t.UTC().Format(CanonicalLayout), true
}

// OrderDraft checks an order form. withStatus enables the status rule used
// by edits.
func OrderDraft(d domain.OrderDraft, withStatus bool, loc *time.Location) error {
	c := collector{}
	if n := length(d.Title); d.Title == "" || n < 3 || n > 100 {
		c.add(FieldTitle, "Title must be between 3 and 100 characters.")
	}
	if length(d.Description) > 1000 {
		c.add(FieldDescription, "Description cannot exceed 1000 characters.")
	}

	var start, end time.Time
	var startOK, endOK bool
	if strings.TrimSpace(d.StartDate) == "" {
		c.add(FieldStartDate, "Start date is required.")
	} else if start, startOK = ParseDate(d.StartDate, loc); !startOK {
		c.add(FieldStartDate, "Start date is not a valid date.")
	}
	if strings.TrimSpace(d.EndDate) == "" {
		c.add(FieldEndDate, "End date is required.")
	} else if end, endOK = ParseDate(d.EndDate, loc); !endOK {
		c.add(FieldEndDate, "End date is not a valid date.")
	}
	if startOK && endOK && !end.After(start) {
		c.add(FieldEndDate, "End date must be after start date.")
	}

	if withStatus && !d.Status.Valid() {
		c.add(FieldStatus, "Invalid status selected.")
	}
	return c.err()
}

// Price checks that a proposal price is a positive decimal.
func Price(p domain.Price) error {
	c := collector{}
	if v, ok := p.Float(); !ok || v <= 0 {
		c.add(FieldPrice, "Price must be greater than zero.")
	}
	return c.err()
}

// ProposalPatch checks the fields present in a proposal update.
func ProposalPatch(patch domain.ProposalPatch) error {
	c := collector{}
	if patch.Price != nil {
		if v, ok := patch.Price.Float(); !ok || v <= 0 {
			c.add(FieldPrice, "Price must be greater than zero.")
		}
	}
	if patch.Status != nil && !patch.Status.Valid() {
		c.add(FieldStatus, "Invalid status selected.")
	}
	return c.err()
}

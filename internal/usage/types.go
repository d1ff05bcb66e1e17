package usage

import "time"

// Credentials are held only for the duration of a login call.
type Credentials struct {
	Username string `yaml:"username" json:"-"`
	Password string `yaml:"password" json:"-"`
}

func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}

// Reading is one metered observation for the end of a billing sub-period.
type Reading struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

func (r Reading) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// BillingPeriod maps an offset from the most recent period onto the
// selector the portal expects. Start is the first day of the calendar month
// the period is labelled with.
type BillingPeriod struct {
	Offset int       `json:"offset"`
	Label  string    `json:"label"`
	Start  time.Time `json:"start"`
}

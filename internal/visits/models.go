package visits

// Sentinel values stored when a dimension cannot be derived.
const (
	UnknownDomain  = "unknown"
	UnknownCountry = "XX"
)

// Visit is one tracked page view in the append-only event log. Rows are
// never updated or deleted; all dashboard statistics are recomputed from
// this table on demand.
type Visit struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	URL       string `gorm:"column:url"`
	Referrer  string
	UserAgent string
	IP        string `gorm:"column:ip"`
	Country   string
	Domain    string
	SessionID string
	// Timestamp is defaulted by the store (CURRENT_TIMESTAMP, UTC text)
	// and kept as a string so comparisons match the stored form.
	Timestamp string
}

// TableName pins the raw table name used by the schema manager and the
// aggregation queries.
func (Visit) TableName() string {
	return "visits"
}

package arkham

import (
	"context"
	"time"
)

// Provider defines the intelligence-API surface the scanner needs. Concrete
// adapters (the hosted REST API, fixtures in tests) satisfy this interface.
type Provider interface {
	// LookupEntity returns any curated entity/label attached to an address.
	// Both names may be empty when the address is unknown to the database.
	LookupEntity(ctx context.Context, address, chain string) (EntityInfo, error)

	// Transfers lists transfer records matching the query, already
	// normalized from the API's response shapes into one flat slice.
	Transfers(ctx context.Context, q TransferQuery) ([]Transfer, error)

	// History returns the address's portfolio history points for the chain.
	// Unlike Transfers this is not subject to the small result cap, so it is
	// used as the deep-history fallback for high-frequency wallets.
	History(ctx context.Context, address, chain string) ([]HistoryPoint, error)
}

// EntityInfo is the entity/label pair from the intelligence database.
type EntityInfo struct {
	EntityName string
	LabelName  string
}

// Transfer is one transfer record. Time is the zero value when the record
// carried no usable timestamp; callers must treat such records as unordered.
type Transfer struct {
	From       string
	To         string
	FromEntity string
	FromLabel  string
	Time       time.Time
}

// HistoryPoint is one point of an address's portfolio history.
type HistoryPoint struct {
	Time time.Time
}

// TransferQuery selects transfers by exactly one of From, To or Base (all
// transfers touching the address in either direction).
type TransferQuery struct {
	Chain   string
	From    string
	To      string
	Base    string
	Limit   int
	SortKey string // defaults to "time"
	SortDir string // defaults to "asc"
}

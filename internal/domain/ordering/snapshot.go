package ordering

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotSource identifies how a snapshot's manufacturer cost was obtained
type SnapshotSource string

const (
	// SnapshotSourceDatabase means the cost came from the supplier price list
	SnapshotSourceDatabase SnapshotSource = "database"

	// SnapshotSourceCalculated means the cost was derived by the pricing engine
	SnapshotSourceCalculated SnapshotSource = "calculated"

	// SnapshotSourceCalculatedLegacy means the cost was estimated for a line
	// that predates snapshotting (60% of the customer price)
	SnapshotSourceCalculatedLegacy SnapshotSource = "calculated_legacy"
)

// LegacyCostRatio is the manufacturer-cost estimate applied to lines without
// a captured snapshot: 60% of the customer price.
var LegacyCostRatio = decimal.NewFromFloat(0.6)

// ManufacturerPrice is the wholesale side of a price snapshot
type ManufacturerPrice struct {
	UnitCost   decimal.Decimal `json:"unitCost"`
	FabricCode string          `json:"fabricCode,omitempty"`
	Source     SnapshotSource  `json:"source"`
}

// MarginDetail records how the customer price was derived from the cost
type MarginDetail struct {
	Type       string          `json:"type,omitempty"`
	Value      decimal.Decimal `json:"value"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// OptionCharge is a per-unit add-on (motor, remote, valance, bottom rail,
// roller type, solar) included in a snapshot's customer price
type OptionCharge struct {
	Type             string          `json:"type"`
	Name             string          `json:"name,omitempty"`
	Price            decimal.Decimal `json:"price"`
	ManufacturerCost decimal.Decimal `json:"manufacturerCost"`
}

// AccessoryCharge is an accessory priced once per order line, not per unit
type AccessoryCharge struct {
	Name             string          `json:"name"`
	Code             string          `json:"code,omitempty"`
	Price            decimal.Decimal `json:"price"`
	ManufacturerCost decimal.Decimal `json:"manufacturerCost"`
	Quantity         int             `json:"quantity,omitempty"`
}

// CustomerPrice is the retail side of a price snapshot
type CustomerPrice struct {
	UnitPrice            decimal.Decimal   `json:"unitPrice"`
	LineTotal            decimal.Decimal   `json:"lineTotal"`
	OptionsTotal         decimal.Decimal   `json:"optionsTotal"`
	OptionsBreakdown     []OptionCharge    `json:"optionsBreakdown,omitempty"`
	AccessoriesTotal     decimal.Decimal   `json:"accessoriesTotal"`
	AccessoriesBreakdown []AccessoryCharge `json:"accessoriesBreakdown,omitempty"`
}

// PriceSnapshot is an immutable price breakdown captured when a line was
// priced. Once captured, customerPrice.unitPrice is the only price trusted
// for money math; nothing downstream recomputes it from catalog state.
type PriceSnapshot struct {
	CapturedAt        time.Time         `json:"capturedAt"`
	ManufacturerPrice ManufacturerPrice `json:"manufacturerPrice"`
	Margin            MarginDetail      `json:"margin"`
	CustomerPrice     CustomerPrice     `json:"customerPrice"`
}

// Age returns how long ago the snapshot was captured
func (s *PriceSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.CapturedAt)
}

// IsExpired checks whether the snapshot is older than maxAge
func (s *PriceSnapshot) IsExpired(now time.Time, maxAge time.Duration) bool {
	return s.Age(now) > maxAge
}

// IsLegacy reports whether the snapshot was synthesized for a pre-snapshot line
func (s *PriceSnapshot) IsLegacy() bool {
	return s.ManufacturerPrice.Source == SnapshotSourceCalculatedLegacy
}

// UnitManufacturerCost returns the per-unit cost including per-unit options.
// Accessories are excluded here because they are charged per line.
func (s *PriceSnapshot) UnitManufacturerCost() decimal.Decimal {
	cost := s.ManufacturerPrice.UnitCost
	for _, opt := range s.CustomerPrice.OptionsBreakdown {
		cost = cost.Add(opt.ManufacturerCost)
	}
	return cost
}

// AccessoriesManufacturerCost returns the per-line accessory cost
func (s *PriceSnapshot) AccessoriesManufacturerCost() decimal.Decimal {
	cost := decimal.Zero
	for _, acc := range s.CustomerPrice.AccessoriesBreakdown {
		cost = cost.Add(acc.ManufacturerCost)
	}
	return cost
}

// SynthesizeLegacySnapshot builds a snapshot for a line that predates
// snapshotting. The manufacturer cost is estimated at 60% of the customer
// unit price and the source is marked calculated_legacy so downstream
// consumers can tell estimate from captured fact.
func SynthesizeLegacySnapshot(unitPrice decimal.Decimal, quantity int, capturedAt time.Time) PriceSnapshot {
	unitCost := unitPrice.Mul(LegacyCostRatio).Round(2)
	marginAmount := unitPrice.Sub(unitCost)
	marginPct := decimal.Zero
	if !unitPrice.IsZero() {
		marginPct = marginAmount.Div(unitPrice).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return PriceSnapshot{
		CapturedAt: capturedAt,
		ManufacturerPrice: ManufacturerPrice{
			UnitCost: unitCost,
			Source:   SnapshotSourceCalculatedLegacy,
		},
		Margin: MarginDetail{
			Type:       "percentage",
			Value:      marginPct,
			Amount:     marginAmount,
			Percentage: marginPct,
		},
		CustomerPrice: CustomerPrice{
			UnitPrice:        unitPrice,
			LineTotal:        unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
			OptionsTotal:     decimal.Zero,
			AccessoriesTotal: decimal.Zero,
		},
	}
}

// Value implements driver.Valuer for JSONB storage
func (s PriceSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for database retrieval
func (s *PriceSnapshot) Scan(value any) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into PriceSnapshot", value)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, s)
}

// PriceSnapshots is the frozen per-unit snapshot list stored on an order item.
// Current data stores a JSON array; rows written before the plural column
// existed store a single JSON object. Scan normalizes both shapes into a
// slice so business logic never branches on shape again.
type PriceSnapshots []PriceSnapshot

// Primary returns the first snapshot, which carries the line's pricing
func (s PriceSnapshots) Primary() (PriceSnapshot, bool) {
	if len(s) == 0 {
		return PriceSnapshot{}, false
	}
	return s[0], true
}

// Value implements driver.Valuer for JSONB storage
func (s PriceSnapshots) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for database retrieval
func (s *PriceSnapshots) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into PriceSnapshots", value)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if data[0] == '{' {
		var single PriceSnapshot
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*s = PriceSnapshots{single}
		return nil
	}
	return json.Unmarshal(data, (*[]PriceSnapshot)(s))
}

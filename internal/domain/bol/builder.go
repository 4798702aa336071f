package bol

import (
	"strconv"
	"strings"
	"time"

	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/freightdesk/backend/internal/domain/shipment"
)

// DateLayout is the layout used for Date and PickupDate.
const DateLayout = "01/02/2006"

// Config holds the fixed values printed on every document.
type Config struct {
	// MaxLines is the number of commodity lines the form defines.
	MaxLines int
	// DescriptionSuffix is appended to the first SKU of each record.
	DescriptionSuffix string
	HUType            string
	PkgType           string
	NMFC              string
	FreightClass      string
	// InstructionPrefix precedes the PO id in Instructions.
	InstructionPrefix string

	// Raw checkbox values, resolved through valueobject.ParseCheckbox.
	MasterBOL          string
	TermPrepaid        string
	TermCollect        string
	TermCustomerCharge string
}

// DefaultConfig returns the standard form configuration.
func DefaultConfig() Config {
	return Config{
		MaxLines:          5,
		DescriptionSuffix: " - Furniture",
		HUType:            "PLT",
		PkgType:           "CTN",
		NMFC:              "79300",
		FreightClass:      "125",
		InstructionPrefix: "Reference PO#",
		TermPrepaid:       "Yes",
		TermCollect:       "Off",
	}
}

// Document is the output of Build for one group.
type Document struct {
	Key      string
	FileName string
	Mode     valueobject.WeightMode
	Fields   Fields
	Totals   shipment.AggregateTotals
	// Lines is the number of commodity lines emitted.
	Lines int
	// Overflow counts records with a description that did not fit in MaxLines.
	Overflow int
}

// Builder produces shipment document fields. It holds no mutable state and
// may be shared across goroutines.
type Builder struct {
	cfg        Config
	aggregator *shipment.Aggregator
	carriers   *shipment.CarrierResolver
}

// NewBuilder creates a builder. A non-positive MaxLines falls back to the
// default.
func NewBuilder(cfg Config, aggregator *shipment.Aggregator, carriers *shipment.CarrierResolver) *Builder {
	if cfg.MaxLines <= 0 {
		cfg.MaxLines = DefaultConfig().MaxLines
	}
	return &Builder{cfg: cfg, aggregator: aggregator, carriers: carriers}
}

// Config returns the effective configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// Build produces the document for g. It never fails.
func (b *Builder) Build(
	g *shipment.Group,
	wh shipment.WarehouseProfile,
	bill shipment.BillingProfile,
	asOf time.Time,
	mode valueobject.WeightMode,
) Document {
	totals := b.aggregator.Aggregate(g)
	rep := g.Representative()
	key := ""
	if g != nil {
		key = g.Key
	}

	f := blankFields(b.cfg.MaxLines)
	b.headerFields(f, key, rep, asOf)
	partyFields(f, wh, bill)
	b.checkboxFields(f)

	f[FieldNumPkgs] = strconv.FormatInt(totals.TotalPackages, 10)
	f[FieldTotalPkgs] = f[FieldNumPkgs]
	f[FieldPageTotal] = "1"
	if mode == valueobject.WeightModeRaw {
		rawWeightFields(f, totals)
	} else {
		estimatedWeightFields(f, totals)
	}

	lines, overflow := b.lineFields(f, g)

	return Document{
		Key:      key,
		FileName: FileName(key, rep.FirstSKU(), wh.FileCode(), rep.SCAC()),
		Mode:     mode,
		Fields:   f,
		Totals:   totals,
		Lines:    lines,
		Overflow: overflow,
	}
}

func (b *Builder) headerFields(f Fields, key string, rep shipment.OrderRecord, asOf time.Time) {
	to := rep.Destination
	f[FieldToName] = strings.TrimSpace(to.Name)
	f[FieldToCompany] = strings.TrimSpace(to.Company)
	f[FieldToAddress] = to.StreetLine()
	f[FieldToCityStateZip] = to.CityStateZip()
	f[FieldToPhone] = strings.TrimSpace(to.Phone)
	f[FieldCarrierName] = b.carriers.Resolve(rep.CarrierCode, rep.ObservedCarrierName())
	f[FieldSCAC] = rep.SCAC()
	f[FieldProNumber] = rep.TrackingNumber()
	f[FieldBOLNumber] = strings.TrimSpace(rep.Invoice)
	f[FieldInstructions] = b.instructions(key, rep.Instructions)
	if !asOf.IsZero() {
		f[FieldDate] = asOf.Format(DateLayout)
		f[FieldPickupDate] = f[FieldDate]
	}
}

func (b *Builder) instructions(po, custom string) string {
	parts := make([]string, 0, 2)
	if po != "" {
		parts = append(parts, strings.TrimSpace(b.cfg.InstructionPrefix+" "+po))
	}
	if c := strings.TrimSpace(custom); c != "" {
		parts = append(parts, c)
	}
	return strings.Join(parts, " ")
}

func partyFields(f Fields, wh shipment.WarehouseProfile, bill shipment.BillingProfile) {
	f[FieldBillName] = bill.Name
	f[FieldBillAddress] = bill.Street
	f[FieldBillCityStateZip] = bill.CityStateZip
	f[FieldFromName] = wh.Name
	f[FieldFromAddress] = wh.Street
	f[FieldFromCityStateZip] = wh.CityStateZip
	f[FieldFromSID] = wh.SID
}

func (b *Builder) checkboxFields(f Fields) {
	f[FieldMasterBOL] = valueobject.ParseCheckbox(b.cfg.MasterBOL).String()
	f[FieldTermPrepaid] = valueobject.ParseCheckbox(b.cfg.TermPrepaid).String()
	f[FieldTermCollect] = valueobject.ParseCheckbox(b.cfg.TermCollect).String()
	f[FieldTermCustChg] = valueobject.ParseCheckbox(b.cfg.TermCustomerCharge).String()
}

// rawWeightFields prints the summed source weight.
func rawWeightFields(f Fields, totals shipment.AggregateTotals) {
	w := strconv.FormatInt(totals.DisplayWeight, 10)
	f[FieldWeight] = w
	f[FieldTotalWeight] = w
}

// estimatedWeightFields prints the quantity-based estimate.
func estimatedWeightFields(f Fields, totals shipment.AggregateTotals) {
	w := strconv.FormatInt(totals.EstimatedWeight, 10)
	f[FieldWeight] = w
	f[FieldTotalWeight] = w
}

// lineFields emits one commodity line per record with a description, in
// group order. Records without a SKU produce no line.
func (b *Builder) lineFields(f Fields, g *shipment.Group) (lines, overflow int) {
	if g == nil {
		return 0, 0
	}
	for _, rec := range g.Records {
		desc := b.description(rec)
		if desc == "" {
			continue
		}
		if lines == b.cfg.MaxLines {
			overflow++
			continue
		}
		lines++
		qty := strconv.FormatInt(recordQuantity(rec), 10)
		f[LineField(LineDesc, lines)] = desc
		f[LineField(LineHUType, lines)] = b.cfg.HUType
		f[LineField(LinePkgType, lines)] = b.cfg.PkgType
		f[LineField(LineHUQty, lines)] = qty
		f[LineField(LinePkgQty, lines)] = qty
		f[LineField(LineNMFC, lines)] = b.cfg.NMFC
		f[LineField(LineClass, lines)] = b.cfg.FreightClass
	}
	return lines, overflow
}

func (b *Builder) description(rec shipment.OrderRecord) string {
	sku := rec.FirstSKU()
	if sku == "" {
		return ""
	}
	return sku + b.cfg.DescriptionSuffix
}

// recordQuantity sums the positive item quantities of one record.
func recordQuantity(rec shipment.OrderRecord) int64 {
	var total int64
	for _, it := range rec.Items {
		if q := it.Quantity.Int().Value; q > 0 {
			total += q
		}
	}
	return total
}

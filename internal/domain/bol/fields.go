package bol

import (
	"maps"
	"sort"
	"strconv"
)

// Header and party field names.
const (
	FieldToName         = "ToName"
	FieldToCompany      = "ToCompany"
	FieldToAddress      = "ToAddress"
	FieldToCityStateZip = "ToCityStateZip"
	FieldToPhone        = "ToPhone"
	FieldCarrierName    = "CarrierName"
	FieldSCAC           = "SCAC"
	FieldProNumber      = "ProNumber"
	FieldBOLNumber      = "BOLNumber"
	FieldInstructions   = "Instructions"
	FieldDate           = "Date"
	FieldPickupDate     = "PickupDate"

	FieldBillName         = "BillName"
	FieldBillAddress      = "BillAddress"
	FieldBillCityStateZip = "BillCityStateZip"
	FieldFromName         = "FromName"
	FieldFromAddress      = "FromAddress"
	FieldFromCityStateZip = "FromCityStateZip"
	FieldFromSID          = "FromSID"

	FieldNumPkgs     = "NumPkgs1"
	FieldTotalPkgs   = "TotalPkgs"
	FieldWeight      = "Weight1"
	FieldTotalWeight = "TotalWeight"
	FieldPageTotal   = "Page_ttl"

	FieldMasterBOL   = "MasterBOL"
	FieldTermPrepaid = "Term_Pre"
	FieldTermCollect = "Term_Collect"
	FieldTermCustChg = "Term_CustChg"
)

// Per-line field prefixes. The line index is appended, starting at 1.
const (
	LineDesc    = "Desc_"
	LineHUType  = "HU_Type_"
	LinePkgType = "Pkg_Type_"
	LineHUQty   = "HU_QTY_"
	LinePkgQty  = "Pkg_QTY_"
	LineNMFC    = "NMFC_"
	LineClass   = "Class_"
)

var headerFields = []string{
	FieldToName, FieldToCompany, FieldToAddress, FieldToCityStateZip, FieldToPhone,
	FieldCarrierName, FieldSCAC, FieldProNumber, FieldBOLNumber, FieldInstructions,
	FieldDate, FieldPickupDate,
	FieldBillName, FieldBillAddress, FieldBillCityStateZip,
	FieldFromName, FieldFromAddress, FieldFromCityStateZip, FieldFromSID,
	FieldNumPkgs, FieldTotalPkgs, FieldWeight, FieldTotalWeight, FieldPageTotal,
}

// CheckboxFields are rendered as Yes/Off tokens.
var CheckboxFields = []string{FieldMasterBOL, FieldTermPrepaid, FieldTermCollect, FieldTermCustChg}

var linePrefixes = []string{LineDesc, LineHUType, LinePkgType, LineHUQty, LinePkgQty, LineNMFC, LineClass}

// LineField returns the field name for prefix at line index i.
func LineField(prefix string, i int) string {
	return prefix + strconv.Itoa(i)
}

// FieldNames returns every key a document with maxLines lines carries.
func FieldNames(maxLines int) []string {
	names := make([]string, 0, len(headerFields)+len(CheckboxFields)+maxLines*len(linePrefixes))
	names = append(names, headerFields...)
	names = append(names, CheckboxFields...)
	for i := 1; i <= maxLines; i++ {
		for _, p := range linePrefixes {
			names = append(names, LineField(p, i))
		}
	}
	return names
}

// Fields maps form field names to values.
type Fields map[string]string

// Get returns the value of name, or "" when absent.
func (f Fields) Get(name string) string {
	return f[name]
}

// Keys returns the field names in sorted order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of f.
func (f Fields) Clone() Fields {
	return maps.Clone(f)
}

func blankFields(maxLines int) Fields {
	names := FieldNames(maxLines)
	f := make(Fields, len(names))
	for _, n := range names {
		f[n] = ""
	}
	return f
}

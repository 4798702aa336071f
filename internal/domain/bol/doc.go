// Package bol builds the field set of a Bill of Lading for one consolidated
// shipment group.
//
// The builder is pure: given the same group, profiles, date and weight mode
// it returns the same map. It never fails; missing source data becomes an
// empty string under the expected key. The form renderer receives the map
// and ignores keys its template does not define.
package bol

// Package wms models a warehouse create-order call: the request built from a
// consolidated group, and the lifecycle of a single submission.
//
// A submission moves Built -> Sent -> {Succeeded, Failed, Unknown} exactly
// once. Resubmitting after a correction is a new Submission built from an
// edited OrderRequest, never a resumed one.
package wms
